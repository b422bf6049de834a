package ir

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns the hex encoded BLAKE2b-256 hash of the canonical CBOR
// form of n. Structurally equal programs have equal fingerprints.
func Fingerprint(n Node) (string, error) {
	data, err := MarshalCBOR(n)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
