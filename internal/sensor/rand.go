package sensor

import "math/rand/v2"

// Rand is the source of randomness used by the signal models.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	// Float64 returns a value in [0.0, 1.0)
	Float64() float64
	// IntN returns a value in [0, n)
	IntN(n int) int
}

// NewRand returns a deterministic source for the given seed
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewRandomRand returns a source seeded from the runtime's random state
func NewRandomRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// uniform draws from [lo, hi)
func uniform(r Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}
