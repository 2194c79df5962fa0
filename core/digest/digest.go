package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Hasher maps a structured value to a fixed-form digest string. Implementations
// must be pure: structurally equal input yields equal output for the process
// lifetime.
type Hasher interface {
	Sum(v interface{}) (string, error)
	// Sentinel returns the all-zero previous-digest seed, sized to the
	// digest representation.
	Sentinel() string
}

// Canonical serializes a value to its canonical byte form. encoding/json
// sorts map keys and keeps struct field order fixed, which is all the
// determinism the digest contract needs.
func Canonical(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("could not canonicalize value: %w", err)
	}
	return data, nil
}

// Legacy32 is the reference 32-bit rolling hash: fold canonical bytes into a
// signed 32-bit accumulator via h = h*31 + c, rendered as 8 lowercase hex
// characters. Trivially collidable; kept for compatibility with ledgers
// produced by the reference behavior, never for security.
type Legacy32 struct{}

func (Legacy32) Sum(v interface{}) (string, error) {
	data, err := Canonical(v)
	if err != nil {
		return "", err
	}
	var h int32
	for _, c := range data {
		h = h*31 + int32(c)
	}
	return fmt.Sprintf("%08x", uint32(h)), nil
}

func (Legacy32) Sentinel() string {
	return strings.Repeat("0", 16)
}

// SHA256 is the production-grade digest: canonical JSON hashed with SHA-256,
// rendered as 64 lowercase hex characters.
type SHA256 struct{}

func (SHA256) Sum(v interface{}) (string, error) {
	data, err := Canonical(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func (SHA256) Sentinel() string {
	return strings.Repeat("0", 64)
}

// ForAlgorithm resolves a configured algorithm name to a Hasher.
func ForAlgorithm(name string) (Hasher, error) {
	switch name {
	case "", "sha256":
		return SHA256{}, nil
	case "legacy32":
		return Legacy32{}, nil
	default:
		return nil, fmt.Errorf("unknown digest algorithm: %q", name)
	}
}
