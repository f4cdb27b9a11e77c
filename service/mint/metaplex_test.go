package mint

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metadataParams(t *testing.T) CreateMetadataAccountV3Params {
	t.Helper()
	authority, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	mintKey, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	meta, err := MetadataAddress(mintKey.PublicKey())
	require.NoError(t, err)

	return CreateMetadataAccountV3Params{
		Metadata:        meta.Address,
		Mint:            mintKey.PublicKey(),
		MintAuthority:   authority.PublicKey(),
		Payer:           authority.PublicKey(),
		UpdateAuthority: authority.PublicKey(),
		Data: DataV2{
			Name:   "Test",
			Symbol: "TST",
			URI:    "https://gateway.test/ipfs/QmMetadata",
		},
		IsMutable: true,
	}
}

func TestCreateMetadataAccountV3_Encoding(t *testing.T) {
	p := metadataParams(t)

	ix, err := NewCreateMetadataAccountV3Instruction(p)
	require.NoError(t, err)
	assert.Equal(t, TokenMetadataProgramID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)

	// discriminator + three length-prefixed strings + u16 fee + three None
	// options + is_mutable + None collection details
	wantLen := 1 +
		4 + len(p.Data.Name) +
		4 + len(p.Data.Symbol) +
		4 + len(p.Data.URI) +
		2 + 1 + 1 + 1 + 1 + 1
	require.Len(t, data, wantLen)

	assert.Equal(t, byte(instructionCreateMetadataAccountV3), data[0])
	assert.Equal(t, uint32(len(p.Data.Name)), binary.LittleEndian.Uint32(data[1:5]))
	assert.Equal(t, []byte(p.Data.Name), data[5:5+len(p.Data.Name)])

	// No royalty or creator split fields are ever populated.
	feeOffset := 1 + 4 + len(p.Data.Name) + 4 + len(p.Data.Symbol) + 4 + len(p.Data.URI)
	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(data[feeOffset:feeOffset+2]))
	assert.Equal(t, byte(0), data[feeOffset+2], "creators must be None")
	assert.Equal(t, byte(0), data[feeOffset+3], "collection must be None")
	assert.Equal(t, byte(0), data[feeOffset+4], "uses must be None")
	assert.Equal(t, byte(1), data[feeOffset+5], "metadata must be mutable")
	assert.Equal(t, byte(0), data[feeOffset+6], "collection details must be None")
}

func TestCreateMetadataAccountV3_Accounts(t *testing.T) {
	p := metadataParams(t)

	ix, err := NewCreateMetadataAccountV3Instruction(p)
	require.NoError(t, err)

	accounts := ix.Accounts()
	require.Len(t, accounts, 7)

	assert.Equal(t, p.Metadata, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsWritable)
	assert.False(t, accounts[0].IsSigner)

	assert.Equal(t, p.Mint, accounts[1].PublicKey)
	assert.False(t, accounts[1].IsWritable)

	assert.Equal(t, p.MintAuthority, accounts[2].PublicKey)
	assert.True(t, accounts[2].IsSigner)

	assert.Equal(t, p.Payer, accounts[3].PublicKey)
	assert.True(t, accounts[3].IsSigner)
	assert.True(t, accounts[3].IsWritable)

	assert.Equal(t, p.UpdateAuthority, accounts[4].PublicKey)
	assert.Equal(t, solana.SystemProgramID, accounts[5].PublicKey)
	assert.Equal(t, solana.SysVarRentPubkey, accounts[6].PublicKey)
}

func TestCreateMasterEditionV3_Encoding(t *testing.T) {
	authority, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	mintKey, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	meta, err := MetadataAddress(mintKey.PublicKey())
	require.NoError(t, err)
	edition, err := EditionAddress(mintKey.PublicKey())
	require.NoError(t, err)

	ix, err := NewCreateMasterEditionV3Instruction(CreateMasterEditionV3Params{
		Edition:         edition.Address,
		Mint:            mintKey.PublicKey(),
		UpdateAuthority: authority.PublicKey(),
		MintAuthority:   authority.PublicKey(),
		Payer:           authority.PublicKey(),
		Metadata:        meta.Address,
		MaxSupply:       0,
	})
	require.NoError(t, err)
	assert.Equal(t, TokenMetadataProgramID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)

	// discriminator + Some tag + u64 max supply
	require.Len(t, data, 10)
	assert.Equal(t, byte(instructionCreateMasterEditionV3), data[0])
	assert.Equal(t, byte(1), data[1], "max supply must be Some")
	assert.Equal(t, uint64(0), binary.LittleEndian.Uint64(data[2:10]))

	accounts := ix.Accounts()
	require.Len(t, accounts, 9)
	assert.Equal(t, edition.Address, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsWritable)
	assert.True(t, accounts[2].IsSigner, "update authority signs")
	assert.True(t, accounts[3].IsSigner, "mint authority signs")
	assert.True(t, accounts[4].IsSigner, "payer signs")
	assert.Equal(t, meta.Address, accounts[5].PublicKey)
	assert.Equal(t, solana.TokenProgramID, accounts[6].PublicKey)
}
