package mint

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Signer is the external custodial signer: the caller's wallet. The pipeline
// only ever sees its public address and this signing capability; the private
// key stays with the caller.
type Signer interface {
	PublicKey() solana.PublicKey
	SignTransaction(ctx context.Context, tx *solana.Transaction) error
}

// Assemble merges the instruction set into one atomic transaction bound to
// the given recent blockhash, with the authority as fee payer.
func Assemble(
	instructions []solana.Instruction,
	feePayer solana.PublicKey,
	blockhash solana.Hash,
) (*solana.Transaction, error) {
	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(feePayer))
	if err != nil {
		return nil, fmt.Errorf("assembling transaction: %w", err)
	}
	return tx, nil
}

// CoSign applies the ephemeral mint key's signature. This runs before the
// external signer so the single-use key can be discarded as soon as the
// transaction carries its signature.
func CoSign(tx *solana.Transaction, mintKey solana.PrivateKey) error {
	_, err := tx.PartialSign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(mintKey.PublicKey()) {
			return &mintKey
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("co-signing with mint key: %w", err)
	}
	return nil
}

// KeypairSigner is a Signer backed by a local keypair, used by the CLI and in
// tests. Wallet-backed callers supply their own implementation.
type KeypairSigner struct {
	key solana.PrivateKey
}

// NewKeypairSigner wraps a private key as a Signer.
func NewKeypairSigner(key solana.PrivateKey) *KeypairSigner {
	return &KeypairSigner{key: key}
}

func (s *KeypairSigner) PublicKey() solana.PublicKey {
	return s.key.PublicKey()
}

func (s *KeypairSigner) SignTransaction(_ context.Context, tx *solana.Transaction) error {
	_, err := tx.PartialSign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.key.PublicKey()) {
			return &s.key
		}
		return nil
	})
	return err
}
