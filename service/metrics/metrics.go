package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the minting pipeline.
// Following the explicit dependency injection pattern, this struct
// is passed to all components that need to record metrics.
type Metrics struct {
	// Off-chain store metrics
	ipfsUploadsTotal   *prometheus.CounterVec
	ipfsUploadDuration *prometheus.HistogramVec
	ipfsUploadRetries  prometheus.Counter

	// Solana RPC metrics
	solanaRPCCallsTotal   *prometheus.CounterVec
	solanaRPCCallDuration *prometheus.HistogramVec

	// Confirmation metrics
	confirmationPollsTotal prometheus.Counter
	confirmationOutcomes   *prometheus.CounterVec

	// Pipeline metrics
	pipelineStageDuration *prometheus.HistogramVec
	pipelineRunsTotal     *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		ipfsUploadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ipfs_uploads_total",
				Help: "Total number of IPFS upload attempts by status",
			},
			[]string{"status"},
		),
		ipfsUploadDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ipfs_upload_duration_seconds",
				Help:    "Duration of IPFS uploads in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"status"},
		),
		ipfsUploadRetries: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ipfs_upload_retries_total",
				Help: "Total number of IPFS upload retry attempts",
			},
		),
		solanaRPCCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solana_rpc_calls_total",
				Help: "Total number of Solana RPC calls by method and status",
			},
			[]string{"method", "status"},
		),
		solanaRPCCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solana_rpc_call_duration_seconds",
				Help:    "Duration of Solana RPC calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method"},
		),
		confirmationPollsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "confirmation_polls_total",
				Help: "Total number of signature status polls while awaiting confirmation",
			},
		),
		confirmationOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "confirmation_outcomes_total",
				Help: "Terminal confirmation outcomes by kind",
			},
			[]string{"outcome"},
		),
		pipelineStageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pipeline_stage_duration_seconds",
				Help:    "Duration of each pipeline stage in seconds",
				Buckets: []float64{0.05, 0.25, 1.0, 2.5, 5.0, 15.0, 30.0, 60.0},
			},
			[]string{"stage"},
		),
		pipelineRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_runs_total",
				Help: "Total pipeline invocations by asset kind and terminal state",
			},
			[]string{"kind", "state"},
		),
	}
}

// RecordUpload records an upload attempt with its status and duration.
func (m *Metrics) RecordUpload(status string, durationSeconds float64) {
	m.ipfsUploadsTotal.WithLabelValues(status).Inc()
	m.ipfsUploadDuration.WithLabelValues(status).Observe(durationSeconds)
}

// RecordUploadRetry records a retried upload attempt.
func (m *Metrics) RecordUploadRetry() {
	m.ipfsUploadRetries.Inc()
}

// RecordRPCCall records a Solana RPC call with its status and duration.
func (m *Metrics) RecordRPCCall(method, status string, durationSeconds float64) {
	m.solanaRPCCallsTotal.WithLabelValues(method, status).Inc()
	m.solanaRPCCallDuration.WithLabelValues(method).Observe(durationSeconds)
}

// RecordConfirmationPoll records one signature status poll.
func (m *Metrics) RecordConfirmationPoll() {
	m.confirmationPollsTotal.Inc()
}

// RecordConfirmationOutcome records the terminal confirmation outcome.
func (m *Metrics) RecordConfirmationOutcome(outcome string) {
	m.confirmationOutcomes.WithLabelValues(outcome).Inc()
}

// RecordStageDuration records how long a pipeline stage took.
func (m *Metrics) RecordStageDuration(stage string, durationSeconds float64) {
	m.pipelineStageDuration.WithLabelValues(stage).Observe(durationSeconds)
}

// RecordPipelineRun records a completed pipeline invocation.
func (m *Metrics) RecordPipelineRun(kind, state string) {
	m.pipelineRunsTotal.WithLabelValues(kind, state).Inc()
}
