package mint

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRPCClient implements RPCClient for testing.
// It's behavior-focused: we set what it should return, not verify call sequences.
type mockRPCClient struct {
	blockhash            solana.Hash
	lastValidBlockHeight uint64
	blockHeight          uint64
	rentLamports         uint64

	sendErr   error
	sendCalls int
	sentSigs  []solana.Signature

	airdropErr   error
	airdropCalls int
	airdropSig   solana.Signature

	// statuses is consumed one entry per poll; the final entry repeats.
	statuses    [][]*rpc.SignatureStatusesResult
	statusCalls int
}

func (m *mockRPCClient) GetLatestBlockhash(
	ctx context.Context,
	commitment rpc.CommitmentType,
) (*rpc.GetLatestBlockhashResult, error) {
	return &rpc.GetLatestBlockhashResult{
		Value: &rpc.LatestBlockhashResult{
			Blockhash:            m.blockhash,
			LastValidBlockHeight: m.lastValidBlockHeight,
		},
	}, nil
}

func (m *mockRPCClient) GetMinimumBalanceForRentExemption(
	ctx context.Context,
	dataSize uint64,
	commitment rpc.CommitmentType,
) (uint64, error) {
	return m.rentLamports, nil
}

func (m *mockRPCClient) SendTransactionWithOpts(
	ctx context.Context,
	tx *solana.Transaction,
	opts rpc.TransactionOpts,
) (solana.Signature, error) {
	m.sendCalls++
	if m.sendErr != nil {
		return solana.Signature{}, m.sendErr
	}
	// The network identifies a transaction by its fee-payer signature, so
	// resubmitting identical bytes yields the identical reference.
	sig := tx.Signatures[0]
	m.sentSigs = append(m.sentSigs, sig)
	return sig, nil
}

func (m *mockRPCClient) GetSignatureStatuses(
	ctx context.Context,
	searchTransactionHistory bool,
	signatures ...solana.Signature,
) (*rpc.GetSignatureStatusesResult, error) {
	i := m.statusCalls
	if i >= len(m.statuses) {
		i = len(m.statuses) - 1
	}
	m.statusCalls++
	if i < 0 {
		return &rpc.GetSignatureStatusesResult{Value: []*rpc.SignatureStatusesResult{nil}}, nil
	}
	return &rpc.GetSignatureStatusesResult{Value: m.statuses[i]}, nil
}

func (m *mockRPCClient) GetBlockHeight(
	ctx context.Context,
	commitment rpc.CommitmentType,
) (uint64, error) {
	return m.blockHeight, nil
}

func (m *mockRPCClient) RequestAirdrop(
	ctx context.Context,
	recipient solana.PublicKey,
	lamports uint64,
	commitment rpc.CommitmentType,
) (solana.Signature, error) {
	m.airdropCalls++
	if m.airdropErr != nil {
		return solana.Signature{}, m.airdropErr
	}
	return m.airdropSig, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// signedTestTransaction builds a minimal fully-signed transaction for
// submission tests.
func signedTestTransaction(t *testing.T, blockhash solana.Hash) *solana.Transaction {
	t.Helper()
	from, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	to, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	ix := system.NewTransferInstruction(1, from.PublicKey(), to.PublicKey()).Build()
	tx, err := solana.NewTransaction([]solana.Instruction{ix}, blockhash, solana.TransactionPayer(from.PublicKey()))
	require.NoError(t, err)
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(from.PublicKey()) {
			return &from
		}
		return nil
	})
	require.NoError(t, err)
	return tx
}

func TestSubmit_FailsFastOnExpiredBlockhash(t *testing.T) {
	mock := &mockRPCClient{blockHeight: 101}
	engine := NewEngine(mock, nil, testLogger())
	tx := signedTestTransaction(t, solana.Hash{})

	_, err := engine.Submit(context.Background(), tx, 100, SubmitOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSubmissionRejected)

	// The whole point of pre-validation: no network round-trip for a
	// transaction the network would unconditionally reject.
	assert.Equal(t, 0, mock.sendCalls)
}

func TestSubmit_SkipPreflightBypassesExpiryCheck(t *testing.T) {
	mock := &mockRPCClient{blockHeight: 101}
	engine := NewEngine(mock, nil, testLogger())
	tx := signedTestTransaction(t, solana.Hash{})

	_, err := engine.Submit(context.Background(), tx, 100, SubmitOptions{SkipPreflight: true})
	require.NoError(t, err)
	assert.Equal(t, 1, mock.sendCalls)
}

func TestSubmit_NetworkRejection(t *testing.T) {
	mock := &mockRPCClient{
		blockHeight: 50,
		sendErr:     errors.New("Transaction simulation failed: InstructionError"),
	}
	engine := NewEngine(mock, nil, testLogger())
	tx := signedTestTransaction(t, solana.Hash{})

	_, err := engine.Submit(context.Background(), tx, 100, SubmitOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSubmissionRejected)
	assert.Contains(t, err.Error(), "simulation failed")
}

func TestSubmit_ResubmissionYieldsSameReference(t *testing.T) {
	mock := &mockRPCClient{blockHeight: 50}
	engine := NewEngine(mock, nil, testLogger())
	tx := signedTestTransaction(t, solana.Hash{})

	sig1, err := engine.Submit(context.Background(), tx, 100, SubmitOptions{})
	require.NoError(t, err)
	sig2, err := engine.Submit(context.Background(), tx, 100, SubmitOptions{})
	require.NoError(t, err)

	// Identical bytes can never mint a second asset: the reference is the
	// same and the ledger deduplicates by it.
	assert.Equal(t, sig1, sig2)
	assert.Equal(t, 2, mock.sendCalls)
}

func TestAwaitConfirmation_Confirmed(t *testing.T) {
	sig := solana.Signature{1, 2, 3}
	mock := &mockRPCClient{
		blockHeight: 50,
		statuses: [][]*rpc.SignatureStatusesResult{
			{{Slot: 100, ConfirmationStatus: rpc.ConfirmationStatusConfirmed}},
		},
	}
	engine := NewEngine(mock, nil, testLogger())

	outcome, err := engine.AwaitConfirmation(context.Background(), sig, 100, rpc.CommitmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, OutcomeConfirmed, outcome)
}

func TestAwaitConfirmation_DeeperCommitmentSatisfiesTarget(t *testing.T) {
	sig := solana.Signature{1}
	mock := &mockRPCClient{
		blockHeight: 50,
		statuses: [][]*rpc.SignatureStatusesResult{
			{{Slot: 100, ConfirmationStatus: rpc.ConfirmationStatusFinalized}},
		},
	}
	engine := NewEngine(mock, nil, testLogger())

	outcome, err := engine.AwaitConfirmation(context.Background(), sig, 100, rpc.CommitmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, OutcomeConfirmed, outcome)
}

func TestAwaitConfirmation_ProgramError(t *testing.T) {
	sig := solana.Signature{9}
	mock := &mockRPCClient{
		blockHeight: 50,
		statuses: [][]*rpc.SignatureStatusesResult{
			{{
				Slot:               100,
				ConfirmationStatus: rpc.ConfirmationStatusConfirmed,
				Err:                map[string]interface{}{"InstructionError": []interface{}{4, "Custom"}},
			}},
		},
	}
	engine := NewEngine(mock, nil, testLogger())

	outcome, err := engine.AwaitConfirmation(context.Background(), sig, 100, rpc.CommitmentConfirmed)
	require.Error(t, err)
	assert.Equal(t, OutcomeProgramError, outcome)

	var progErr *ProgramExecutionError
	require.ErrorAs(t, err, &progErr)
	assert.Equal(t, sig, progErr.Signature)
}

func TestAwaitConfirmation_ExpiryWithoutConfirmation(t *testing.T) {
	sig := solana.Signature{7}
	mock := &mockRPCClient{
		// Validity window already passed and no status ever appears.
		blockHeight: 200,
	}
	engine := NewEngine(mock, nil, testLogger())

	outcome, err := engine.AwaitConfirmation(context.Background(), sig, 100, rpc.CommitmentConfirmed)
	require.Error(t, err)
	assert.Equal(t, OutcomeTimedOut, outcome)
	assert.ErrorIs(t, err, ErrUnconfirmedTimeout)
}

func TestAwaitConfirmation_BudgetExhausted(t *testing.T) {
	sig := solana.Signature{8}
	mock := &mockRPCClient{
		// Window still open but the transaction never shows up.
		blockHeight: 50,
	}
	engine := NewEngine(mock, nil, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	outcome, err := engine.AwaitConfirmation(ctx, sig, 100, rpc.CommitmentConfirmed)
	require.Error(t, err)
	assert.Equal(t, OutcomeTimedOut, outcome)
	assert.ErrorIs(t, err, ErrUnconfirmedTimeout)
}
