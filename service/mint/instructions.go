package mint

import (
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
)

// mintAccountSize is the byte size of an SPL token mint account, used to
// compute the rent-exempt reserve.
const mintAccountSize = 82

// BuildParams bundles everything the instruction builder needs. All addresses
// are computed up front (deterministically or via a single RPC for the rent
// reserve); the builder itself performs no I/O.
type BuildParams struct {
	// Authority pays fees and becomes mint, freeze, and update authority.
	Authority solana.PublicKey
	// Mint is the ephemeral asset key's public address.
	Mint solana.PublicKey
	// OwnerTokenAccount is the authority's associated token account for the mint.
	OwnerTokenAccount solana.PublicKey
	// Metadata is the derived token-metadata address for the mint.
	Metadata solana.PublicKey
	// Edition is the derived master-edition address. Required when Unique.
	Edition solana.PublicKey

	Name        string
	Symbol      string
	MetadataURI string

	// Decimals and Supply describe the issuance. Supply is in whole units and
	// is scaled by 10^Decimals on-chain. For unique assets both are forced to
	// the one-of-one values (0 decimals, supply 1).
	Decimals uint8
	Supply   uint64

	// RentLamports is the network-computed minimum reserve for the mint account.
	RentLamports uint64

	// Unique marks an NFT-class asset: single supply, zero decimals, and a
	// trailing edition-finalization instruction.
	Unique bool
}

// mintAmount scales the whole-unit supply into base units, guarding against
// overflow of the on-chain u64.
func (p BuildParams) mintAmount() (uint64, error) {
	if p.Unique {
		return 1, nil
	}
	scale := uint64(1)
	for i := uint8(0); i < p.Decimals; i++ {
		scale *= 10
	}
	if p.Supply > math.MaxUint64/scale {
		return 0, fmt.Errorf("%w: supply %d with %d decimals overflows u64", ErrInvalidParameters, p.Supply, p.Decimals)
	}
	return p.Supply * scale, nil
}

func (p BuildParams) validate() error {
	if p.Authority.IsZero() {
		return fmt.Errorf("%w: missing authority address", ErrInvalidParameters)
	}
	if p.Mint.IsZero() {
		return fmt.Errorf("%w: missing mint address", ErrInvalidParameters)
	}
	if p.OwnerTokenAccount.IsZero() {
		return fmt.Errorf("%w: missing owner token account", ErrInvalidParameters)
	}
	if p.Metadata.IsZero() {
		return fmt.Errorf("%w: missing metadata address", ErrInvalidParameters)
	}
	if p.Unique && p.Edition.IsZero() {
		return fmt.Errorf("%w: missing edition address for unique asset", ErrInvalidParameters)
	}
	if !p.Unique && p.Supply == 0 {
		return fmt.Errorf("%w: supply must be positive", ErrInvalidParameters)
	}
	if p.Decimals > 9 {
		return fmt.Errorf("%w: decimals %d exceeds maximum of 9", ErrInvalidParameters, p.Decimals)
	}
	if p.Name == "" || p.Symbol == "" {
		return fmt.Errorf("%w: name and symbol are required", ErrInvalidParameters)
	}
	if p.MetadataURI == "" {
		return fmt.Errorf("%w: metadata URI is required", ErrInvalidParameters)
	}
	return nil
}

// BuildInstructions produces the ordered instruction set that creates the
// asset atomically:
//
//  1. allocate the mint account with the rent-exempt reserve
//  2. initialize the mint with the authority as mint and freeze authority
//  3. create the authority's associated token account
//  4. mint the full initial supply into it
//  5. register the off-chain descriptor at the metadata address
//  6. (unique assets only) finalize the master edition
//
// The order is load-bearing: allocation must precede initialization, the
// owning account must exist before issuance targets it, and metadata must be
// registered before the edition is finalized.
func BuildInstructions(p BuildParams) ([]solana.Instruction, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	decimals := p.Decimals
	if p.Unique {
		decimals = 0
	}
	amount, err := p.mintAmount()
	if err != nil {
		return nil, err
	}

	instrs := []solana.Instruction{
		system.NewCreateAccountInstruction(
			p.RentLamports,
			mintAccountSize,
			solana.TokenProgramID,
			p.Authority,
			p.Mint,
		).Build(),
		token.NewInitializeMint2Instruction(
			decimals,
			p.Authority,
			p.Authority,
			p.Mint,
		).Build(),
		associatedtokenaccount.NewCreateInstruction(
			p.Authority,
			p.Authority,
			p.Mint,
		).Build(),
		token.NewMintToInstruction(
			amount,
			p.Mint,
			p.OwnerTokenAccount,
			p.Authority,
			nil,
		).Build(),
	}

	metaIx, err := NewCreateMetadataAccountV3Instruction(CreateMetadataAccountV3Params{
		Metadata:        p.Metadata,
		Mint:            p.Mint,
		MintAuthority:   p.Authority,
		Payer:           p.Authority,
		UpdateAuthority: p.Authority,
		Data: DataV2{
			Name:                 p.Name,
			Symbol:               p.Symbol,
			URI:                  p.MetadataURI,
			SellerFeeBasisPoints: 0,
		},
		IsMutable: true,
	})
	if err != nil {
		return nil, err
	}
	instrs = append(instrs, metaIx)

	if p.Unique {
		editionIx, err := NewCreateMasterEditionV3Instruction(CreateMasterEditionV3Params{
			Edition:         p.Edition,
			Mint:            p.Mint,
			UpdateAuthority: p.Authority,
			MintAuthority:   p.Authority,
			Payer:           p.Authority,
			Metadata:        p.Metadata,
			MaxSupply:       0,
		})
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, editionIx)
	}

	return instrs, nil
}
