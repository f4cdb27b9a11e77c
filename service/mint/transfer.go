package mint

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
)

// Airdrop requests lamports from the cluster faucet for the recipient and
// waits for the grant to reach the given commitment. Only test clusters fund
// airdrops; mainnet endpoints refuse the request.
func (e *Engine) Airdrop(
	ctx context.Context,
	recipient solana.PublicKey,
	lamports uint64,
	commitment rpc.CommitmentType,
) (solana.Signature, error) {
	if recipient.IsZero() {
		return solana.Signature{}, fmt.Errorf("%w: airdrop recipient is unset", ErrInvalidParameters)
	}
	if lamports == 0 {
		return solana.Signature{}, fmt.Errorf("%w: airdrop amount must be positive", ErrInvalidParameters)
	}

	// The faucet grant has no client-chosen blockhash, so the current
	// validity window bounds the confirmation wait instead.
	latest, err := e.rpc.GetLatestBlockhash(ctx, commitment)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: fetching blockhash: %v", ErrSubmissionRejected, err)
	}

	start := time.Now()
	sig, err := e.rpc.RequestAirdrop(ctx, recipient, lamports, commitment)
	status := "success"
	if err != nil {
		status = "error"
	}
	if e.metrics != nil {
		e.metrics.RecordRPCCall("RequestAirdrop", status, time.Since(start).Seconds())
	}
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %v", ErrSubmissionRejected, err)
	}

	e.logger.InfoContext(ctx, "airdrop requested",
		"recipient", recipient.String(),
		"lamports", lamports,
		"signature", sig.String(),
	)

	if _, err := e.AwaitConfirmation(ctx, sig, latest.Value.LastValidBlockHeight, commitment); err != nil {
		return sig, err
	}
	return sig, nil
}

// TransferSOL moves lamports from the signer's account to the recipient in a
// single system transfer, then waits for the transaction to reach the given
// commitment. The signer pays the fee.
func (e *Engine) TransferSOL(
	ctx context.Context,
	signer Signer,
	recipient solana.PublicKey,
	lamports uint64,
	opts SubmitOptions,
	commitment rpc.CommitmentType,
) (solana.Signature, error) {
	if recipient.IsZero() {
		return solana.Signature{}, fmt.Errorf("%w: transfer recipient is unset", ErrInvalidParameters)
	}
	if lamports == 0 {
		return solana.Signature{}, fmt.Errorf("%w: transfer amount must be positive", ErrInvalidParameters)
	}

	latest, err := e.rpc.GetLatestBlockhash(ctx, commitment)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: fetching blockhash: %v", ErrSubmissionRejected, err)
	}

	ix := system.NewTransferInstruction(lamports, signer.PublicKey(), recipient).Build()
	tx, err := Assemble([]solana.Instruction{ix}, signer.PublicKey(), latest.Value.Blockhash)
	if err != nil {
		return solana.Signature{}, err
	}
	if err := signer.SignTransaction(ctx, tx); err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %v", ErrSigningDeclined, err)
	}
	if err := tx.VerifySignatures(); err != nil {
		return solana.Signature{}, fmt.Errorf("%w: incomplete signature set: %v", ErrSigningDeclined, err)
	}

	e.logger.DebugContext(ctx, "submitting transfer",
		"from", signer.PublicKey().String(),
		"to", recipient.String(),
		"lamports", lamports,
	)

	sig, err := e.Submit(ctx, tx, latest.Value.LastValidBlockHeight, opts)
	if err != nil {
		return solana.Signature{}, err
	}
	if _, err := e.AwaitConfirmation(ctx, sig, latest.Value.LastValidBlockHeight, commitment); err != nil {
		return sig, err
	}
	return sig, nil
}
