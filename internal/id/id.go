// Package id generates identifiers for stored records.
package id

import (
	"fmt"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for record identifiers.
const (
	PrefixBook    = "book"
	PrefixUser    = "user"
	PrefixSession = "sess"
)

// Generate returns prefix-nanoid, e.g. "book-V1StGXR8_Z5jdHi6B-myT".
// It fails only when the system cannot supply secure randomness.
func Generate(prefix string) (string, error) {
	n, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + n, nil
}

// MustGenerate is like Generate but panics on failure.
func MustGenerate(prefix string) string {
	v, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return v
}

// Book returns a new book identifier.
func Book() (string, error) { return Generate(PrefixBook) }

// Batch returns a correlation id for one import call. Batches are never
// persisted as keys, so a plain UUID is enough.
func Batch() string {
	return uuid.NewString()
}
