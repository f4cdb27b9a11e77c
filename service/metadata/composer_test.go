package metadata

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose_DocumentShape(t *testing.T) {
	desc, err := Compose("Test", "TST", "https://gateway.test/ipfs/QmImage", "image/png")
	require.NoError(t, err)

	doc, err := desc.Encode()
	require.NoError(t, err)

	// Downstream indexers depend on these exact field names.
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(doc, &m))
	for _, field := range []string{"name", "symbol", "description", "image", "attributes", "properties"} {
		assert.Contains(t, m, field)
	}

	assert.Equal(t, "Test", m["name"])
	assert.Equal(t, "TST", m["symbol"])
	assert.Equal(t, "Test - Token created with IPFS storage", m["description"])
	assert.Equal(t, "https://gateway.test/ipfs/QmImage", m["image"])

	attrs, ok := m["attributes"].([]interface{})
	require.True(t, ok, "attributes must serialize as an array, not null")
	assert.Empty(t, attrs)

	props, ok := m["properties"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "image", props["category"])

	files, ok := props["files"].([]interface{})
	require.True(t, ok)
	require.Len(t, files, 1)
	file := files[0].(map[string]interface{})
	assert.Equal(t, "https://gateway.test/ipfs/QmImage", file["uri"])
	assert.Equal(t, "image/png", file["type"])
}

func TestCompose_RoundTrip(t *testing.T) {
	desc, err := Compose("Round", "TRIP", "https://gateway.test/ipfs/QmMedia", "image/gif")
	require.NoError(t, err)

	doc, err := desc.Encode()
	require.NoError(t, err)

	var decoded Descriptor
	require.NoError(t, json.Unmarshal(doc, &decoded))
	assert.Equal(t, *desc, decoded)
}

func TestComposeUnique_Description(t *testing.T) {
	desc, err := ComposeUnique("Art", "ART", "https://gateway.test/ipfs/QmArt", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "Art - NFT created with decentralized storage", desc.Description)
}

func TestCompose_Deterministic(t *testing.T) {
	a, err := Compose("Same", "SAME", "https://gateway.test/ipfs/Qm1", "image/png")
	require.NoError(t, err)
	b, err := Compose("Same", "SAME", "https://gateway.test/ipfs/Qm1", "image/png")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCompose_RejectsEmptyInputs(t *testing.T) {
	_, err := Compose("", "TST", "https://gateway.test/ipfs/Qm1", "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")

	_, err = Compose("Test", "", "https://gateway.test/ipfs/Qm1", "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "symbol is required")

	_, err = Compose("Test", "TST", "", "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "media locator is required")
}
