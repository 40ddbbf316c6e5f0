package rng

import (
	"hash/fnv"
	"math/rand"

	"surveyml/ports"
)

// SeededRNG derives independent deterministic streams from one base seed.
type SeededRNG struct {
	seed int64
}

// NewSeededRNG creates a stream provider for the given base seed
func NewSeededRNG(seed int64) *SeededRNG {
	return &SeededRNG{seed: seed}
}

var _ ports.RNGPort = (*SeededRNG)(nil)

// Stream returns a generator whose sequence depends only on the base seed and name.
func (s *SeededRNG) Stream(name string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(name))
	return rand.New(rand.NewSource(s.seed ^ int64(h.Sum64())))
}

// Seed returns the base seed
func (s *SeededRNG) Seed() int64 {
	return s.seed
}
