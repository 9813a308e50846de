package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainMapping prefixes mapping digests. The version suffix leaves room
// for a future change of canonical form.
const DomainMapping = "kgen/mapping/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Digest computes the content address of a resolved mapping.
// Two mappings with the same names, types and values have the same digest
// regardless of insertion order.
func Digest(m *Mapping) (string, error) {
	canonical, err := MarshalCanonical(m)
	if err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}
	return hashWithDomain(DomainMapping, canonical), nil
}

// MustDigest is like Digest but panics on error.
// Use only in tests or when the mapping is known to be valid.
func MustDigest(m *Mapping) string {
	d, err := Digest(m)
	if err != nil {
		panic(err)
	}
	return d
}
