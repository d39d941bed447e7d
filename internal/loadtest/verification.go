package loadtest

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// ErrVerification marks a broken leaderboard or progress invariant.
var ErrVerification = errors.New("verification failed")

// VerifyLeaderboard checks both rankings are ordered, within capacity and
// hold exactly the best scores among attempts.
func VerifyLeaderboard(lb Leaderboard, attempts []Attempt, capacity int) error {
	times := make([]float64, len(attempts))
	points := make([]float64, len(attempts))
	for i, a := range attempts {
		times[i] = a.Time
		points[i] = float64(a.Points)
	}
	slices.Sort(times)
	slices.Sort(points)
	slices.Reverse(points)

	if err := verifyRanking("time", lb.TimeRanking, top(times, capacity), func(a, b float64) bool { return a < b }); err != nil {
		return err
	}
	return verifyRanking("points", lb.PointsRanking, top(points, capacity), func(a, b float64) bool { return a > b })
}

func top(scores []float64, n int) []float64 {
	if len(scores) > n {
		return scores[:n]
	}
	return scores
}

func verifyRanking(name string, got []Entry, want []float64, better func(a, b float64) bool) error {
	if len(got) != len(want) {
		return fmt.Errorf("%w: %s ranking has %d entries, want %d", ErrVerification, name, len(got), len(want))
	}
	for i, e := range got {
		if i > 0 && better(e.Score, got[i-1].Score) {
			return fmt.Errorf("%w: %s ranking out of order at %d", ErrVerification, name, i)
		}
		if e.Score != want[i] {
			return fmt.Errorf("%w: %s ranking slot %d holds %v, want %v", ErrVerification, name, i, e.Score, want[i])
		}
	}
	return nil
}

// VerifyProgress checks every player's stored bests against their attempts.
func VerifyProgress(levelID string, users []User, attempts []Attempt) error {
	want := make(map[string]Best)
	for _, a := range attempts {
		b, ok := want[a.Player]
		if !ok {
			want[a.Player] = Best{BestPoints: a.Points, BestTime: a.Time}
			continue
		}
		b.BestPoints = max(b.BestPoints, a.Points)
		b.BestTime = math.Min(b.BestTime, a.Time)
		want[a.Player] = b
	}

	for _, u := range users {
		exp, played := want[u.Username]
		got, stored := u.Progress[levelID]
		switch {
		case !played && !stored:
			continue
		case played != stored:
			return fmt.Errorf("%w: %s progress present=%t, want %t", ErrVerification, u.Username, stored, played)
		case got != exp:
			return fmt.Errorf("%w: %s progress %+v, want %+v", ErrVerification, u.Username, got, exp)
		}
	}
	return nil
}
