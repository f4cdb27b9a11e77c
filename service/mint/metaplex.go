package mint

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// TokenMetadataProgramID is the Metaplex token-metadata program.
var TokenMetadataProgramID = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

// Instruction discriminators from the token-metadata program's instruction enum.
const (
	instructionCreateMasterEditionV3   uint8 = 17
	instructionCreateMetadataAccountV3 uint8 = 33
)

// Creator is an on-chain metadata creator entry with a royalty share.
type Creator struct {
	Address  solana.PublicKey
	Verified bool
	Share    uint8
}

// Collection links a metadata account to a verified collection NFT.
type Collection struct {
	Verified bool
	Key      solana.PublicKey
}

// Uses configures consumable-NFT semantics.
type Uses struct {
	UseMethod uint8
	Remaining uint64
	Total     uint64
}

// DataV2 is the borsh-encoded metadata payload registered on-chain. Royalty
// and collection fields stay unset: the pipeline registers plain descriptors
// with no creator splits.
type DataV2 struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             *[]Creator  `bin:"optional"`
	Collection           *Collection `bin:"optional"`
	Uses                 *Uses       `bin:"optional"`
}

// collectionDetails is never populated here; the pointer exists only so the
// borsh encoder writes the None tag.
type collectionDetails struct {
	Variant uint8
	Size    uint64
}

type createMetadataAccountArgsV3 struct {
	Data              DataV2
	IsMutable         bool
	CollectionDetails *collectionDetails `bin:"optional"`
}

type createMasterEditionArgs struct {
	MaxSupply *uint64 `bin:"optional"`
}

// CreateMetadataAccountV3Params carries the fixed account set for registering
// metadata. Field order mirrors the on-chain account list.
type CreateMetadataAccountV3Params struct {
	Metadata        solana.PublicKey
	Mint            solana.PublicKey
	MintAuthority   solana.PublicKey
	Payer           solana.PublicKey
	UpdateAuthority solana.PublicKey
	Data            DataV2
	IsMutable       bool
}

// NewCreateMetadataAccountV3Instruction builds the token-metadata program
// instruction that registers the off-chain descriptor at the derived metadata
// address.
func NewCreateMetadataAccountV3Instruction(p CreateMetadataAccountV3Params) (solana.Instruction, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteUint8(instructionCreateMetadataAccountV3); err != nil {
		return nil, fmt.Errorf("encode discriminator: %w", err)
	}
	args := createMetadataAccountArgsV3{
		Data:      p.Data,
		IsMutable: p.IsMutable,
	}
	if err := enc.Encode(args); err != nil {
		return nil, fmt.Errorf("encode metadata args: %w", err)
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(p.Metadata).WRITE(),
		solana.Meta(p.Mint),
		solana.Meta(p.MintAuthority).SIGNER(),
		solana.Meta(p.Payer).WRITE().SIGNER(),
		solana.Meta(p.UpdateAuthority),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.SysVarRentPubkey),
	}
	return solana.NewInstruction(TokenMetadataProgramID, accounts, buf.Bytes()), nil
}

// CreateMasterEditionV3Params carries the fixed account set for finalizing a
// one-of-one edition. MaxSupply of zero means no prints can ever be made.
type CreateMasterEditionV3Params struct {
	Edition         solana.PublicKey
	Mint            solana.PublicKey
	UpdateAuthority solana.PublicKey
	MintAuthority   solana.PublicKey
	Payer           solana.PublicKey
	Metadata        solana.PublicKey
	MaxSupply       uint64
}

// NewCreateMasterEditionV3Instruction builds the edition-finalization
// instruction. After it executes, mint and freeze authority move to the
// edition PDA and supply is fixed at one.
func NewCreateMasterEditionV3Instruction(p CreateMasterEditionV3Params) (solana.Instruction, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteUint8(instructionCreateMasterEditionV3); err != nil {
		return nil, fmt.Errorf("encode discriminator: %w", err)
	}
	maxSupply := p.MaxSupply
	if err := enc.Encode(createMasterEditionArgs{MaxSupply: &maxSupply}); err != nil {
		return nil, fmt.Errorf("encode edition args: %w", err)
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(p.Edition).WRITE(),
		solana.Meta(p.Mint).WRITE(),
		solana.Meta(p.UpdateAuthority).SIGNER(),
		solana.Meta(p.MintAuthority).SIGNER(),
		solana.Meta(p.Payer).WRITE().SIGNER(),
		solana.Meta(p.Metadata).WRITE(),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.SysVarRentPubkey),
	}
	return solana.NewInstruction(TokenMetadataProgramID, accounts, buf.Bytes()), nil
}
