package combat

import "math/rand"

// Random is the single uniform source behind every probability check in
// combat. *rand.Rand satisfies it.
type Random interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
}

// NewRandom returns a seeded source. A zero seed is used as-is, so callers
// that want a varying game pick their own seed.
func NewRandom(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// chance draws once and reports whether the draw falls under p.
func chance(rng Random, p float64) bool {
	return rng.Float64() < p
}
