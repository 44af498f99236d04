package engine

import (
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lazypower/resonate/internal/store"
)

// Candidate wraps a stored pref with a request-local working weight.
// Weight starts at the persisted value and is adjusted in place across
// selection rounds; it is never written back to the store.
type Candidate struct {
	Pref   store.Pref
	Weight float64
}

func newCandidates(prefs []store.Pref) []*Candidate {
	out := make([]*Candidate, len(prefs))
	for i := range prefs {
		out[i] = &Candidate{Pref: prefs[i], Weight: prefs[i].Weight}
	}
	return out
}

// selectCandidate draws one candidate from the combined pools.
//
// Recency-pool items enter the draw at their current weight. Weight-pool
// items are adjusted in place first: +1 when the video also sits in the
// recency pool, a time-of-day affinity boost, an exponential decay on the
// elapsed time since last play, and a degradation penalty over the same
// elapsed time. Because the adjustment mutates the candidates, boosts and
// decay accumulate across rounds within one request.
//
// Returns nil when both pools are empty.
func selectCandidate(latest, top []*Candidate, now time.Time, rng *rand.Rand) *Candidate {
	latest = rankedByRecency(latest)
	top = rankedByWeight(top)

	pool := make([]*Candidate, 0, len(latest)+len(top))
	latestIDs := make(map[string]bool, len(latest))

	for _, c := range latest {
		pool = append(pool, c)
		latestIDs[c.Pref.VideoID] = true
	}

	minuteOfDay := now.UTC().Hour()*60 + now.UTC().Minute()
	nowMS := now.UnixMilli()
	windowMS := float64(decayWindow.Milliseconds())

	for _, c := range top {
		if latestIDs[c.Pref.VideoID] {
			c.Weight += 1
		}

		c.Weight += timeOfDayBoost(c.Pref.TimePoints, minuteOfDay)

		elapsed := float64(nowMS - c.Pref.LastPlayedAtMS)
		decayFactor := math.Exp(-elapsed / windowMS)
		c.Weight *= decayFactor

		degradationFactor := math.Exp(-elapsed / windowMS)
		c.Weight -= (1 - degradationFactor) * 2

		pool = append(pool, c)
	}

	if len(pool) == 0 {
		return nil
	}

	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	weights := make([]float64, len(pool))
	for i, c := range pool {
		weights[i] = c.Weight
	}
	return pool[weightedIndex(weights, rng)]
}

// timeOfDayBoost sums per-play affinity for play times within an hour of
// the current minute of day. The difference is linear: times across
// midnight do not wrap.
func timeOfDayBoost(timePoints []string, minuteOfDay int) float64 {
	boost := 0.0
	for _, tp := range timePoints {
		parts := strings.SplitN(tp, ":", 2)
		if len(parts) != 2 {
			continue
		}
		hours, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		minutes, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}

		difference := math.Abs(float64(minuteOfDay - (hours*60 + minutes)))
		if difference <= 60 {
			boost += 1 - difference/60
		}
	}
	return boost
}

// rankedByRecency returns a freshest-first copy capped at poolLimit.
func rankedByRecency(pool []*Candidate) []*Candidate {
	out := append([]*Candidate(nil), pool...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Pref.LastPlayedAtMS > out[j].Pref.LastPlayedAtMS
	})
	if len(out) > poolLimit {
		out = out[:poolLimit]
	}
	return out
}

// rankedByWeight returns a heaviest-first copy capped at poolLimit,
// ordered by the current working weight.
func rankedByWeight(pool []*Candidate) []*Candidate {
	out := append([]*Candidate(nil), pool...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Weight > out[j].Weight
	})
	if len(out) > poolLimit {
		out = out[:poolLimit]
	}
	return out
}
