// Package id generates prefixed identifiers for series records.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for each record kind. A prefix makes an id self-describing in logs
// and keeps ids of different kinds from colliding in shared key spaces.
const (
	PrefixSeries     = "series"
	PrefixMembership = "sw"
	PrefixWork       = "work"
	PrefixPseud      = "pseud"
	PrefixUser       = "user"
	PrefixTag        = "tag"
	PrefixToken      = "token"
)

// Generate creates an id of the form prefix-nanoid, e.g. "series-V1StGXR8_Z5jdHi6B-myT".
// Fails only when the system entropy source does.
func Generate(prefix string) (string, error) {
	nano, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + nano, nil
}

// MustGenerate is like Generate but panics on failure.
// Intended for seeding and tests.
func MustGenerate(prefix string) string {
	v, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return v
}
