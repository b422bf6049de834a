package ir

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// MarshalJSON converts a node into its JSON representation. Opcodes are
// written as integers. Non-finite numbers cannot be represented in JSON and
// produce an error; use MarshalCBOR for them.
func MarshalJSON(n Node) ([]byte, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("ir: %w", err)
	}
	return data, nil
}

// UnmarshalJSON decodes a program from JSON and normalizes it. The input is
// not checked against the schema; see Validate.
func UnmarshalJSON(data []byte) (Node, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("ir: %w", err)
	}
	return Normalize(v)
}

type cborModes struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var getCBORModes = sync.OnceValues(func() (*cborModes, error) {
	enc, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	dec, err := cbor.DecOptions{MaxNestedLevels: MaxDepth + 1}.DecMode()
	if err != nil {
		return nil, err
	}
	return &cborModes{enc: enc, dec: dec}, nil
})

// MarshalCBOR converts a node into canonical CBOR. Equal nodes always
// produce identical bytes.
func MarshalCBOR(n Node) ([]byte, error) {
	modes, err := getCBORModes()
	if err != nil {
		return nil, fmt.Errorf("ir: %w", err)
	}
	data, err := modes.enc.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("ir: %w", err)
	}
	return data, nil
}

// UnmarshalCBOR decodes a program from CBOR and normalizes it.
func UnmarshalCBOR(data []byte) (Node, error) {
	modes, err := getCBORModes()
	if err != nil {
		return nil, fmt.Errorf("ir: %w", err)
	}
	var v any
	if err := modes.dec.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("ir: %w", err)
	}
	return Normalize(v)
}
