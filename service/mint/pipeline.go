package mint

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/solanahub/mintkit/service/metadata"
	"github.com/solanahub/mintkit/service/metrics"
)

// State identifies where a pipeline invocation currently is. Transitions are
// one-way and follow the data-flow order; progress reporting and error
// attribution hang off these rather than off message strings.
type State string

const (
	StateIdle                 State = "idle"
	StateUploading            State = "uploading"
	StateComposingMetadata    State = "composing-metadata"
	StateDerivingAddresses    State = "deriving-addresses"
	StateBuildingInstructions State = "building-instructions"
	StateAwaitingSignature    State = "awaiting-signature"
	StateSubmitting           State = "submitting"
	StateConfirming           State = "confirming"
	StateSucceeded            State = "succeeded"
	StateFailed               State = "failed"
)

// StateObserver receives each state transition. Observers must not block;
// the pipeline calls them synchronously.
type StateObserver func(State)

// ContentStore uploads a payload to a content-addressed store and returns its
// public locator. Each call may mint a new address even for identical bytes.
type ContentStore interface {
	Store(ctx context.Context, payload []byte, contentType, name string) (string, error)
}

// Request describes the asset to create.
type Request struct {
	Name   string
	Symbol string

	// Decimals and Supply apply to fungible assets. For unique assets both
	// are ignored: supply is exactly one and decimals zero by construction.
	Decimals uint8
	Supply   uint64

	Image     []byte
	ImageMIME string
	ImageName string

	// Unique requests an NFT-class asset with a finalized master edition.
	Unique bool

	// SkipPreflight disables submission pre-validation.
	SkipPreflight bool
}

// Result is what survives the pipeline: everything else, including the
// ephemeral mint key, is discarded.
type Result struct {
	MintAddress string `json:"mintAddress"`
	Signature   string `json:"signature"`
	MetadataURI string `json:"metadataUri"`
}

// Pipeline runs the asset-creation flow end to end. Each invocation is
// independent: it owns a fresh ephemeral mint keypair and shares no mutable
// state with concurrent invocations.
type Pipeline struct {
	store      ContentStore
	rpc        RPCClient
	engine     *Engine
	signer     Signer
	logger     *slog.Logger
	metrics    *metrics.Metrics
	observer   StateObserver
	commitment rpc.CommitmentType
	budget     time.Duration
}

// PipelineOption configures optional pipeline behavior.
type PipelineOption func(*Pipeline)

// WithObserver registers a state transition observer.
func WithObserver(obs StateObserver) PipelineOption {
	return func(p *Pipeline) { p.observer = obs }
}

// WithCommitment sets the target commitment level (default confirmed).
func WithCommitment(c rpc.CommitmentType) PipelineOption {
	return func(p *Pipeline) { p.commitment = c }
}

// WithConfirmationBudget bounds how long the pipeline waits for confirmation
// (default 90s).
func WithConfirmationBudget(d time.Duration) PipelineOption {
	return func(p *Pipeline) { p.budget = d }
}

// WithMetrics attaches metrics collectors to the pipeline.
func WithMetrics(m *metrics.Metrics) PipelineOption {
	return func(p *Pipeline) { p.metrics = m }
}

// NewPipeline creates an asset-creation pipeline. The signer is the external
// authority: it pays fees and becomes mint, freeze, and update authority. It
// is an explicit dependency, never read from ambient state.
func NewPipeline(
	store ContentStore,
	rpcClient RPCClient,
	signer Signer,
	logger *slog.Logger,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		store:      store,
		rpc:        rpcClient,
		signer:     signer,
		logger:     logger,
		commitment: rpc.CommitmentConfirmed,
		budget:     90 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.engine = NewEngine(rpcClient, p.metrics, logger)
	return p
}

type derivedAddresses struct {
	metadata DerivedAccount
	edition  DerivedAccount
	err      error
}

// CreateAsset runs the full flow: upload image, compose and upload the
// descriptor, derive program addresses (concurrently with the uploads, the
// only legal parallel point), build the instruction set, assemble and
// dual-sign the transaction, submit, and await confirmation.
//
// Any stage failure aborts the remainder immediately. Already-uploaded
// off-chain content is not rolled back; orphaned uploads are an accepted
// cost, not an error.
func (p *Pipeline) CreateAsset(ctx context.Context, req Request) (*Result, error) {
	if err := p.validate(req); err != nil {
		return nil, err
	}
	kind := "token"
	if req.Unique {
		kind = "nft"
	}

	p.transition(ctx, StateIdle)

	// The ephemeral asset key. Generated once per invocation and never
	// regenerated afterwards: rebuilding with a fresh key after a partial
	// submission would create a second, distinct asset.
	mintKey, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, p.fail(ctx, kind, fmt.Errorf("generating mint keypair: %w", err))
	}
	mintAddr := mintKey.PublicKey()
	p.logger.InfoContext(ctx, "starting asset creation",
		"kind", kind,
		"name", req.Name,
		"symbol", req.Symbol,
		"mint", mintAddr.String(),
	)

	// Address derivation is pure and independent of the upload results, so it
	// runs alongside the upload stage.
	deriveCh := make(chan derivedAddresses, 1)
	go func() {
		var d derivedAddresses
		d.metadata, d.err = MetadataAddress(mintAddr)
		if d.err == nil && req.Unique {
			d.edition, d.err = EditionAddress(mintAddr)
		}
		deriveCh <- d
	}()

	p.transition(ctx, StateUploading)
	stageStart := time.Now()
	imageURI, err := p.store.Store(ctx, req.Image, req.ImageMIME, req.ImageName)
	if err != nil {
		return nil, p.fail(ctx, kind, fmt.Errorf("%w: storing image: %v", ErrUploadFailed, err))
	}
	p.recordStage(StateUploading, stageStart)

	p.transition(ctx, StateComposingMetadata)
	stageStart = time.Now()
	var desc *metadata.Descriptor
	if req.Unique {
		desc, err = metadata.ComposeUnique(req.Name, req.Symbol, imageURI, req.ImageMIME)
	} else {
		desc, err = metadata.Compose(req.Name, req.Symbol, imageURI, req.ImageMIME)
	}
	if err != nil {
		return nil, p.fail(ctx, kind, fmt.Errorf("%w: %v", ErrInvalidParameters, err))
	}
	doc, err := desc.Encode()
	if err != nil {
		return nil, p.fail(ctx, kind, fmt.Errorf("encoding descriptor: %w", err))
	}
	metadataURI, err := p.store.Store(ctx, doc, "application/json", "metadata.json")
	if err != nil {
		return nil, p.fail(ctx, kind, fmt.Errorf("%w: storing descriptor: %v", ErrUploadFailed, err))
	}
	p.recordStage(StateComposingMetadata, stageStart)

	p.transition(ctx, StateDerivingAddresses)
	derived := <-deriveCh
	if derived.err != nil {
		return nil, p.fail(ctx, kind, derived.err)
	}

	ata, _, err := solana.FindAssociatedTokenAddress(p.signer.PublicKey(), mintAddr)
	if err != nil {
		return nil, p.fail(ctx, kind, fmt.Errorf("deriving associated token account: %w", err))
	}

	p.transition(ctx, StateBuildingInstructions)
	stageStart = time.Now()
	rentLamports, err := p.minimumRent(ctx)
	if err != nil {
		return nil, p.fail(ctx, kind, fmt.Errorf("fetching rent-exempt reserve: %w", err))
	}
	instrs, err := BuildInstructions(BuildParams{
		Authority:         p.signer.PublicKey(),
		Mint:              mintAddr,
		OwnerTokenAccount: ata,
		Metadata:          derived.metadata.Address,
		Edition:           derived.edition.Address,
		Name:              req.Name,
		Symbol:            req.Symbol,
		MetadataURI:       metadataURI,
		Decimals:          req.Decimals,
		Supply:            req.Supply,
		RentLamports:      rentLamports,
		Unique:            req.Unique,
	})
	if err != nil {
		return nil, p.fail(ctx, kind, err)
	}

	// The blockhash is fetched immediately before assembly, never cached
	// from an earlier step, to keep as much of its validity window as
	// possible for the signing prompt and submission.
	blockhash, err := p.latestBlockhash(ctx)
	if err != nil {
		return nil, p.fail(ctx, kind, fmt.Errorf("fetching latest blockhash: %w", err))
	}
	tx, err := Assemble(instrs, p.signer.PublicKey(), blockhash.Value.Blockhash)
	if err != nil {
		return nil, p.fail(ctx, kind, err)
	}
	if err := CoSign(tx, mintKey); err != nil {
		return nil, p.fail(ctx, kind, err)
	}
	p.recordStage(StateBuildingInstructions, stageStart)

	// The only human-interaction suspension point. No pipeline timeout here;
	// the calling layer owns the cancel affordance via ctx.
	p.transition(ctx, StateAwaitingSignature)
	stageStart = time.Now()
	if err := p.signer.SignTransaction(ctx, tx); err != nil {
		return nil, p.fail(ctx, kind, fmt.Errorf("%w: %v", ErrSigningDeclined, err))
	}
	if err := tx.VerifySignatures(); err != nil {
		return nil, p.fail(ctx, kind, fmt.Errorf("%w: incomplete signatures: %v", ErrSigningDeclined, err))
	}
	p.recordStage(StateAwaitingSignature, stageStart)

	p.transition(ctx, StateSubmitting)
	stageStart = time.Now()
	sig, err := p.engine.Submit(ctx, tx, blockhash.Value.LastValidBlockHeight, SubmitOptions{
		SkipPreflight:       req.SkipPreflight,
		PreflightCommitment: p.commitment,
	})
	if err != nil {
		return nil, p.fail(ctx, kind, err)
	}
	p.recordStage(StateSubmitting, stageStart)

	p.transition(ctx, StateConfirming)
	stageStart = time.Now()
	confirmCtx, cancel := context.WithTimeout(ctx, p.budget)
	defer cancel()
	if _, err := p.engine.AwaitConfirmation(
		confirmCtx, sig, blockhash.Value.LastValidBlockHeight, p.commitment,
	); err != nil {
		return nil, p.fail(ctx, kind, err)
	}
	p.recordStage(StateConfirming, stageStart)

	p.transition(ctx, StateSucceeded)
	if p.metrics != nil {
		p.metrics.RecordPipelineRun(kind, string(StateSucceeded))
	}
	return &Result{
		MintAddress: mintAddr.String(),
		Signature:   sig.String(),
		MetadataURI: metadataURI,
	}, nil
}

func (p *Pipeline) validate(req Request) error {
	if req.Name == "" || req.Symbol == "" {
		return fmt.Errorf("%w: name and symbol are required", ErrInvalidParameters)
	}
	if len(req.Image) == 0 {
		return fmt.Errorf("%w: image payload is empty", ErrInvalidParameters)
	}
	if !req.Unique && req.Supply == 0 {
		return fmt.Errorf("%w: supply must be positive", ErrInvalidParameters)
	}
	if p.signer == nil || p.signer.PublicKey().IsZero() {
		return fmt.Errorf("%w: missing authority signer", ErrInvalidParameters)
	}
	return nil
}

func (p *Pipeline) transition(ctx context.Context, s State) {
	p.logger.DebugContext(ctx, "pipeline state", "state", string(s))
	if p.observer != nil {
		p.observer(s)
	}
}

func (p *Pipeline) fail(ctx context.Context, kind string, err error) error {
	p.transition(ctx, StateFailed)
	p.logger.ErrorContext(ctx, "asset creation failed", "kind", kind, "error", err)
	if p.metrics != nil {
		p.metrics.RecordPipelineRun(kind, string(StateFailed))
	}
	return err
}

func (p *Pipeline) recordStage(s State, start time.Time) {
	if p.metrics != nil {
		p.metrics.RecordStageDuration(string(s), time.Since(start).Seconds())
	}
}

func (p *Pipeline) minimumRent(ctx context.Context) (uint64, error) {
	start := time.Now()
	lamports, err := p.rpc.GetMinimumBalanceForRentExemption(ctx, mintAccountSize, p.commitment)
	p.recordRPC("GetMinimumBalanceForRentExemption", err, start)
	return lamports, err
}

func (p *Pipeline) latestBlockhash(ctx context.Context) (*rpc.GetLatestBlockhashResult, error) {
	start := time.Now()
	res, err := p.rpc.GetLatestBlockhash(ctx, p.commitment)
	p.recordRPC("GetLatestBlockhash", err, start)
	return res, err
}

func (p *Pipeline) recordRPC(method string, err error, start time.Time) {
	if p.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	p.metrics.RecordRPCCall(method, status, time.Since(start).Seconds())
}
