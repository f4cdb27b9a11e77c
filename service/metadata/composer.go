package metadata

import (
	"encoding/json"
	"fmt"
)

// Descriptor is the off-chain metadata document. Its field names are a fixed
// public format that downstream indexers depend on; do not rename them.
type Descriptor struct {
	Name        string      `json:"name"`
	Symbol      string      `json:"symbol"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Attributes  []Attribute `json:"attributes"`
	Properties  Properties  `json:"properties"`
}

// Attribute is a typed trait entry.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// Properties groups the media file references and their category.
type Properties struct {
	Files    []FileRef `json:"files"`
	Category string    `json:"category"`
}

// FileRef points at one stored media file.
type FileRef struct {
	URI  string `json:"uri"`
	Type string `json:"type"`
}

// Compose builds the descriptor for a fungible token. It is deterministic
// given its inputs; the description is templated from the name.
func Compose(name, symbol, mediaURI, mediaType string) (*Descriptor, error) {
	return compose(name, symbol, mediaURI, mediaType,
		fmt.Sprintf("%s - Token created with IPFS storage", name))
}

// ComposeUnique builds the descriptor for a unique (NFT-class) asset.
func ComposeUnique(name, symbol, mediaURI, mediaType string) (*Descriptor, error) {
	return compose(name, symbol, mediaURI, mediaType,
		fmt.Sprintf("%s - NFT created with decentralized storage", name))
}

func compose(name, symbol, mediaURI, mediaType, description string) (*Descriptor, error) {
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	if mediaURI == "" {
		return nil, fmt.Errorf("media locator is required")
	}
	return &Descriptor{
		Name:        name,
		Symbol:      symbol,
		Description: description,
		Image:       mediaURI,
		// Attributes must serialize as an empty array, never null.
		Attributes: []Attribute{},
		Properties: Properties{
			Files:    []FileRef{{URI: mediaURI, Type: mediaType}},
			Category: "image",
		},
	}, nil
}

// Encode serializes the descriptor for upload.
func (d *Descriptor) Encode() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}
