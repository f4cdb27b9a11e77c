package mint

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// The pipeline surfaces every failure as one of these kinds. Callers classify
// with errors.Is; the underlying cause is preserved in the message so raw
// transport errors are never the sole diagnostic.
var (
	// ErrUploadFailed indicates the off-chain content store was unreachable or
	// rejected the payload. Recoverable by retrying the upload step.
	ErrUploadFailed = errors.New("off-chain upload failed")

	// ErrInvalidParameters indicates malformed caller input. Fatal, no retry.
	ErrInvalidParameters = errors.New("invalid mint parameters")

	// ErrSigningDeclined indicates the external signer refused to sign.
	// Fatal for this attempt; the user may restart the flow.
	ErrSigningDeclined = errors.New("signing declined")

	// ErrDerivationExhausted indicates no valid bump seed was found in the
	// probe range. Should never occur in practice, but is reported as its own
	// kind rather than a generic failure.
	ErrDerivationExhausted = errors.New("program address derivation exhausted")

	// ErrSubmissionRejected indicates the network synchronously refused the
	// transaction. Resubmitting identical bytes would fail identically.
	ErrSubmissionRejected = errors.New("transaction submission rejected")

	// ErrUnconfirmedTimeout indicates the network never reported a terminal
	// state within budget. The transaction may still land later; callers
	// should offer "check again" rather than rebuilding, since a rebuilt
	// transaction would mint a second, distinct asset.
	ErrUnconfirmedTimeout = errors.New("transaction unconfirmed within budget")
)

// ProgramExecutionError is the terminal outcome where the transaction reached
// the target commitment but the on-chain program returned an error. The asset
// was not created; the signature identifies the failed transaction.
type ProgramExecutionError struct {
	Signature solana.Signature
	Detail    string
}

func (e *ProgramExecutionError) Error() string {
	return fmt.Sprintf("transaction %s confirmed with program error: %s", e.Signature, e.Detail)
}
