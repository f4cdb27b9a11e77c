package mint

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// maxBumpSeed is the canonical starting point for the bump probe. Derivation
// walks downward from here so that every implementation lands on the same
// (address, bump) pair for the same seeds.
const maxBumpSeed = 255

// DerivedAccount pairs a program-derived address with the bump seed that
// produced it.
type DerivedAccount struct {
	Address solana.PublicKey
	Bump    uint8
}

// DeriveAddress computes the program-derived address for the given seed tuple.
// It is a pure function: identical inputs always yield the identical result.
// Candidates that land on the ed25519 curve are skipped by decrementing the
// bump seed. The probe stops at 1, matching the canonical find-program-address
// range; exhausting it returns ErrDerivationExhausted.
func DeriveAddress(seeds [][]byte, program solana.PublicKey) (DerivedAccount, error) {
	probe := make([][]byte, len(seeds)+1)
	copy(probe, seeds)
	for bump := maxBumpSeed; bump >= 1; bump-- {
		probe[len(seeds)] = []byte{byte(bump)}
		addr, err := solana.CreateProgramAddress(probe, program)
		if err != nil {
			// Candidate is on the curve; try the next bump.
			continue
		}
		return DerivedAccount{Address: addr, Bump: uint8(bump)}, nil
	}
	return DerivedAccount{}, fmt.Errorf("%w: no valid bump for program %s", ErrDerivationExhausted, program)
}

// MetadataAddress derives the token-metadata account for a mint.
func MetadataAddress(mintAddr solana.PublicKey) (DerivedAccount, error) {
	return DeriveAddress([][]byte{
		[]byte("metadata"),
		TokenMetadataProgramID.Bytes(),
		mintAddr.Bytes(),
	}, TokenMetadataProgramID)
}

// EditionAddress derives the master edition account for a mint. It is layered
// under the metadata seeds with a trailing "edition" segment.
func EditionAddress(mintAddr solana.PublicKey) (DerivedAccount, error) {
	return DeriveAddress([][]byte{
		[]byte("metadata"),
		TokenMetadataProgramID.Bytes(),
		mintAddr.Bytes(),
		[]byte("edition"),
	}, TokenMetadataProgramID)
}
