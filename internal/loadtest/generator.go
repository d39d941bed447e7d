package loadtest

import (
	"math"
	"math/rand/v2"
	"time"
)

// Attempt value ranges.
const (
	maxPoints    = 5000
	minTime      = 8.0
	timeSpread   = 120.0
	timeDecimals = 1000
)

// generateAttempts spreads n attempts round-robin over players. Points and
// times are coarse enough that ties occur.
func generateAttempts(players []string, n int, seed uint64) []Attempt {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))

	out := make([]Attempt, n)
	for i := range out {
		t := minTime + rng.Float64()*timeSpread
		out[i] = Attempt{
			Player: players[i%len(players)],
			Points: rng.Int64N(maxPoints/10) * 10,
			Time:   math.Round(t*timeDecimals) / timeDecimals,
		}
	}
	return out
}
