package recurrence

import (
	"slices"
	"time"
)

// Rand is the randomness Thin draws from. *rand.Rand from math/rand/v2
// satisfies it.
type Rand interface {
	IntN(n int) int
}

// Thin keeps max(1, floor(len(seq)*rate)) occurrences chosen uniformly
// without replacement and returns them in ascending order. A rate of 1 or
// more (or NaN) returns seq unchanged. seq is not modified.
func Thin(seq []time.Time, rate float64, rng Rand) []time.Time {
	if len(seq) == 0 || !(rate < 1) {
		return seq
	}
	k := int(float64(len(seq)) * rate)
	if k < 1 {
		k = 1
	}
	pool := slices.Clone(seq)
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return sortOccurrences(pool[:k])
}
