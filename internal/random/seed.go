// Package random provides seed generation for simulation runs.
//
// A run is reproducible when its seed is known, so callers either pin a seed
// or let ResolveSeed draw a fresh one from crypto/rand and report it back.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// SeedSource records where a run's seed came from.
type SeedSource string

const (
	SeedSourceGenerated SeedSource = "generated"
	SeedSourcePinned    SeedSource = "pinned"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// ResolveSeed returns pinned when set, otherwise a seed from generate.
// A nil generate falls back to NewSeed.
func ResolveSeed(pinned *uint64, generate func() (uint64, error)) (uint64, SeedSource, error) {
	if pinned != nil {
		return *pinned, SeedSourcePinned, nil
	}
	if generate == nil {
		generate = NewSeed
	}
	seed, err := generate()
	if err != nil {
		return 0, "", err
	}
	return seed, SeedSourceGenerated, nil
}
