// Package digest provides the hash strategies used to fingerprint
// executable memory regions: SHA-256 for collision resistance, or
// CRC-64/ECMA when the workload only needs to catch non-adversarial
// bit corruption at lower cost.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/crc64"
)

// Algorithm identifies a digest strategy. It is chosen once, at
// construction, and fixed for the lifetime of a run.
type Algorithm string

const (
	// SHA256 is the cryptographic strategy.
	SHA256 Algorithm = "sha256"
	// CRC64 is the fast-checksum strategy (CRC-64/ECMA polynomial).
	CRC64 Algorithm = "crc64"
)

// Digest is a rendered region fingerprint of the form "<algo>:<hex>".
// The algorithm prefix guarantees that digests computed under different
// algorithms never compare equal, so an algorithm switch invalidates
// any prior baseline instead of producing false divergences.
type Digest string

var crcTable = crc64.MakeTable(crc64.ECMA)

// ParseAlgorithm converts a user-supplied name into an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(name) {
	case SHA256:
		return SHA256, nil
	case CRC64:
		return CRC64, nil
	default:
		return "", fmt.Errorf("digest: unknown algorithm %q (want %q or %q)", name, SHA256, CRC64)
	}
}

// Hasher computes digests under a single fixed algorithm.
type Hasher struct {
	algo Algorithm
}

// New returns a Hasher for the given algorithm.
func New(algo Algorithm) (Hasher, error) {
	switch algo {
	case SHA256, CRC64:
		return Hasher{algo: algo}, nil
	default:
		return Hasher{}, fmt.Errorf("digest: unknown algorithm %q", algo)
	}
}

// Algorithm returns the strategy this Hasher was constructed with.
func (h Hasher) Algorithm() Algorithm {
	return h.algo
}

// Start returns a fresh hash state. Region bytes are streamed into it
// in chunks; Finish renders the accumulated state into a Digest.
func (h Hasher) Start() hash.Hash {
	switch h.algo {
	case CRC64:
		return crc64.New(crcTable)
	default:
		return sha256.New()
	}
}

// Finish renders a hash state produced by Start.
func (h Hasher) Finish(state hash.Hash) Digest {
	return Digest(string(h.algo) + ":" + hex.EncodeToString(state.Sum(nil)))
}

// Sum is a convenience for hashing a byte slice in one call.
func (h Hasher) Sum(b []byte) Digest {
	state := h.Start()
	state.Write(b)
	return h.Finish(state)
}
