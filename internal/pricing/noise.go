package pricing

import (
	"math/rand"
	"time"
)

// Noise is the pseudo-random source behind demand jitter and forecast
// noise. It is injectable so tests can pin deterministic sequences.
type Noise interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
}

// NewNoise returns a seeded noise source. *rand.Rand satisfies Noise
// directly.
func NewNoise(seed int64) Noise {
	return rand.New(rand.NewSource(seed))
}

// DefaultNoise seeds from the wall clock for production use.
func DefaultNoise() Noise {
	return NewNoise(time.Now().UnixNano())
}
