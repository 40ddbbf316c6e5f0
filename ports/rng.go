package ports

import (
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// Stream returns a deterministic generator for a named operation (e.g. "split",
	// "random_forest/bootstrap"). The same name always yields the same sequence.
	Stream(name string) *rand.Rand
}
