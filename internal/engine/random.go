package engine

import (
	"math/rand"
	"time"
)

func newRNG() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// weightedIndex draws an index with probability proportional to its share
// of the cumulative weight sum. Negative weights participate in the sum
// unclamped, shrinking the total and shifting probability mass toward
// later entries. When the total is not positive the draw falls back to
// index 0.
func weightedIndex(weights []float64, rng *rand.Rand) int {
	cumulative := make([]float64, len(weights)+1)
	for i, w := range weights {
		cumulative[i+1] = cumulative[i] + w
	}

	total := cumulative[len(cumulative)-1]
	draw := rng.Float64() * total

	for i := 0; i < len(weights); i++ {
		if draw < cumulative[i+1] {
			return i
		}
	}
	return 0
}

// randomInsert splices each extra entry into items at a random position.
func randomInsert(items, extras []string, rng *rand.Rand) []string {
	result := append([]string(nil), items...)
	for _, item := range extras {
		idx := rng.Intn(len(result) + 1)
		result = append(result, "")
		copy(result[idx+1:], result[idx:])
		result[idx] = item
	}
	return result
}
