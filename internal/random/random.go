// Package random supplies the uniform random sources the simulation draws from.
package random

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
	"time"
)

// Source is a uniform random source. *rand.Rand satisfies it.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// Intn returns a value in [0, n). It panics if n <= 0.
	Intn(n int) int
}

// NewSeeded returns a deterministic source derived from an arbitrary seed
// string. Two sources built from the same seed yield the same sequence.
func NewSeeded(seed string) *rand.Rand {
	hash := sha256.Sum256([]byte(seed))
	seedInt := int64(binary.BigEndian.Uint64(hash[:8]))
	return rand.New(rand.NewSource(seedInt))
}

// New returns a source seeded from the wall clock.
func New() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Uniform returns a value in [lo, hi).
func Uniform(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// IntRange returns an integer in [lo, hi], both inclusive.
func IntRange(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}
