// Package ranking maintains the bounded per-level leaderboards.
//
// Lists are value types: every operation builds a new slice and never
// touches its input, so callers can keep the loaded copy for a
// compare-and-swap write.
package ranking

// DefaultCapacity bounds each ranking list.
const DefaultCapacity = 20

// Entry is one slot of a ranking list.
type Entry struct {
	Player string  `json:"player" bson:"player"`
	Score  float64 `json:"score"  bson:"score"`
}

// Better reports whether score a ranks ahead of score b.
type Better func(a, b float64) bool

// Faster ranks lower times first.
func Faster(a, b float64) bool { return a < b }

// Higher ranks higher points first.
func Higher(a, b float64) bool { return a > b }

// Outcome describes what an insert did.
type Outcome string

const (
	Created   Outcome = "created"
	Inserted  Outcome = "inserted"
	Appended  Outcome = "appended"
	Discarded Outcome = "discarded"
)

// Insert places entry at the first position whose score is not better than
// entry's, so an equal score lands ahead of the entries it ties with. The
// result is truncated to capacity. An entry that ranks behind everything is
// appended while there is room and discarded once the list is full.
func Insert(list []Entry, entry Entry, better Better, capacity int) ([]Entry, Outcome) {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	for i, cur := range list {
		if better(cur.Score, entry.Score) {
			continue
		}
		if i >= capacity {
			break
		}
		n := min(len(list)+1, capacity)
		out := make([]Entry, 0, n)
		out = append(out, list[:i]...)
		out = append(out, entry)
		out = append(out, list[i:n-1]...)
		return out, Inserted
	}
	if len(list) < capacity {
		out := make([]Entry, 0, len(list)+1)
		out = append(out, list...)
		return append(out, entry), Appended
	}
	return clone(list[:min(len(list), capacity)]), Discarded
}

// Sorted reports whether list is in rank order.
func Sorted(list []Entry, better Better) bool {
	for i := 1; i < len(list); i++ {
		if better(list[i].Score, list[i-1].Score) {
			return false
		}
	}
	return true
}

func clone(list []Entry) []Entry {
	out := make([]Entry, len(list))
	copy(out, list)
	return out
}
