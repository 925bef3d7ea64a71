// Package stats provides the random source used by the simulator, dice
// helpers, and the undefined-aware Rate value.
package stats

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math/rand"
)

// Source is the randomness provider for a single simulation run.
//
// A Source is owned by one run and is not safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n). n must be > 0.
	Intn(n int) int
	// Float64 returns a random float in [0, 1).
	Float64() float64
}

// NewSource returns a deterministic source for seed.
func NewSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// DeriveSeed mixes a batch seed with a target key so each target gets an
// independent, reproducible stream.
func DeriveSeed(base int64, key string) int64 {
	h := fnv.New64a()
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(base))
	h.Write(b[:])
	h.Write([]byte(key))
	return int64(h.Sum64())
}
