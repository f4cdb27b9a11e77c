package mint

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/solanahub/mintkit/service/metrics"
)

// RPCClient is an interface for the Solana RPC operations the pipeline needs.
// This allows us to mock the RPC layer in tests without hitting real Solana nodes.
type RPCClient interface {
	GetLatestBlockhash(
		ctx context.Context,
		commitment rpc.CommitmentType,
	) (*rpc.GetLatestBlockhashResult, error)

	GetMinimumBalanceForRentExemption(
		ctx context.Context,
		dataSize uint64,
		commitment rpc.CommitmentType,
	) (uint64, error)

	SendTransactionWithOpts(
		ctx context.Context,
		tx *solana.Transaction,
		opts rpc.TransactionOpts,
	) (solana.Signature, error)

	GetSignatureStatuses(
		ctx context.Context,
		searchTransactionHistory bool,
		signatures ...solana.Signature,
	) (*rpc.GetSignatureStatusesResult, error)

	GetBlockHeight(
		ctx context.Context,
		commitment rpc.CommitmentType,
	) (uint64, error)

	RequestAirdrop(
		ctx context.Context,
		recipient solana.PublicKey,
		lamports uint64,
		commitment rpc.CommitmentType,
	) (solana.Signature, error)
}

// ConfirmationOutcome is the terminal result of awaiting confirmation.
type ConfirmationOutcome string

const (
	// OutcomeConfirmed means the transaction reached the target commitment
	// and the program executed without error.
	OutcomeConfirmed ConfirmationOutcome = "confirmed"
	// OutcomeProgramError means the transaction landed but the on-chain
	// program returned an error; the asset was not created.
	OutcomeProgramError ConfirmationOutcome = "program-error"
	// OutcomeTimedOut means no terminal state was observed within budget.
	// The transaction may still land later.
	OutcomeTimedOut ConfirmationOutcome = "timed-out"
)

// SubmitOptions control pre-validation of a submission. The default
// (zero value) performs both the local expiry check and network preflight;
// SkipPreflight trades early error detection for latency.
type SubmitOptions struct {
	SkipPreflight       bool
	PreflightCommitment rpc.CommitmentType
}

// Engine submits fully-signed transactions and awaits their confirmation.
type Engine struct {
	rpc          RPCClient
	logger       *slog.Logger
	metrics      *metrics.Metrics
	pollInterval time.Duration
}

// NewEngine creates a submission and confirmation engine.
// If m is nil, no metrics are recorded.
func NewEngine(rpcClient RPCClient, m *metrics.Metrics, logger *slog.Logger) *Engine {
	return &Engine{
		rpc:          rpcClient,
		logger:       logger,
		metrics:      m,
		pollInterval: 2 * time.Second,
	}
}

// Submit sends a fully-signed transaction and returns its signature.
//
// When pre-validation is enabled (the default), the blockhash's validity
// window is checked locally first: a transaction whose lastValidBlockHeight
// has already passed is rejected before any network round-trip, since the
// network would unconditionally refuse it and it must be rebuilt with a
// fresh blockhash rather than resubmitted.
func (e *Engine) Submit(
	ctx context.Context,
	tx *solana.Transaction,
	lastValidBlockHeight uint64,
	opts SubmitOptions,
) (solana.Signature, error) {
	if !opts.SkipPreflight {
		height, err := e.rpcBlockHeight(ctx, opts.PreflightCommitment)
		if err != nil {
			return solana.Signature{}, fmt.Errorf("%w: checking block height: %v", ErrSubmissionRejected, err)
		}
		if height > lastValidBlockHeight {
			return solana.Signature{}, fmt.Errorf(
				"%w: blockhash expired at height %d (current %d), rebuild the transaction",
				ErrSubmissionRejected, lastValidBlockHeight, height,
			)
		}
	}

	start := time.Now()
	sig, err := e.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       opts.SkipPreflight,
		PreflightCommitment: opts.PreflightCommitment,
	})
	status := "success"
	if err != nil {
		status = "error"
	}
	if e.metrics != nil {
		e.metrics.RecordRPCCall("SendTransaction", status, time.Since(start).Seconds())
	}
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %v", ErrSubmissionRejected, err)
	}

	e.logger.InfoContext(ctx, "transaction submitted", "signature", sig.String())
	return sig, nil
}

// AwaitConfirmation polls the signature's status until it reaches the target
// commitment, the blockhash validity window passes, or ctx expires, whichever
// comes first. On expiry without a terminal state the outcome is ambiguous:
// the transaction may still land, so the error is ErrUnconfirmedTimeout and
// the caller decides whether to check again later.
func (e *Engine) AwaitConfirmation(
	ctx context.Context,
	sig solana.Signature,
	lastValidBlockHeight uint64,
	commitment rpc.CommitmentType,
) (ConfirmationOutcome, error) {
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for {
		if e.metrics != nil {
			e.metrics.RecordConfirmationPoll()
		}

		res, err := e.rpc.GetSignatureStatuses(ctx, false, sig)
		if err != nil {
			e.logger.WarnContext(ctx, "signature status poll failed",
				"signature", sig.String(),
				"error", err,
			)
		} else if len(res.Value) > 0 && res.Value[0] != nil {
			st := res.Value[0]
			if st.Err != nil {
				e.recordOutcome(OutcomeProgramError)
				return OutcomeProgramError, &ProgramExecutionError{
					Signature: sig,
					Detail:    fmt.Sprintf("%v", st.Err),
				}
			}
			if commitmentReached(st.ConfirmationStatus, commitment) {
				e.logger.InfoContext(ctx, "transaction confirmed",
					"signature", sig.String(),
					"commitment", string(st.ConfirmationStatus),
					"slot", st.Slot,
				)
				e.recordOutcome(OutcomeConfirmed)
				return OutcomeConfirmed, nil
			}
		}

		// The blockhash window passing without a terminal status means the
		// transaction can no longer be accepted; report the ambiguity.
		height, err := e.rpcBlockHeight(ctx, commitment)
		if err == nil && height > lastValidBlockHeight {
			e.recordOutcome(OutcomeTimedOut)
			return OutcomeTimedOut, fmt.Errorf(
				"%w: blockhash validity window passed for %s", ErrUnconfirmedTimeout, sig,
			)
		}

		select {
		case <-ctx.Done():
			e.recordOutcome(OutcomeTimedOut)
			return OutcomeTimedOut, fmt.Errorf("%w: %s: %v", ErrUnconfirmedTimeout, sig, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (e *Engine) rpcBlockHeight(ctx context.Context, commitment rpc.CommitmentType) (uint64, error) {
	start := time.Now()
	height, err := e.rpc.GetBlockHeight(ctx, commitment)
	status := "success"
	if err != nil {
		status = "error"
	}
	if e.metrics != nil {
		e.metrics.RecordRPCCall("GetBlockHeight", status, time.Since(start).Seconds())
	}
	return height, err
}

func (e *Engine) recordOutcome(outcome ConfirmationOutcome) {
	if e.metrics != nil {
		e.metrics.RecordConfirmationOutcome(string(outcome))
	}
}

// commitmentRank orders commitment depths so a deeper-than-requested status
// also satisfies the target.
func commitmentRank(s string) int {
	switch s {
	case string(rpc.CommitmentProcessed):
		return 1
	case string(rpc.CommitmentConfirmed):
		return 2
	case string(rpc.CommitmentFinalized):
		return 3
	default:
		return 0
	}
}

func commitmentReached(status rpc.ConfirmationStatusType, target rpc.CommitmentType) bool {
	return commitmentRank(string(status)) >= commitmentRank(string(target))
}
