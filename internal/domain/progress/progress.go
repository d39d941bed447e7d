// Package progress keeps a player's personal best for each level.
package progress

// Progress is one player's best result on one level.
type Progress struct {
	BestPoints int64   `json:"bestPoints" bson:"bestPoints"`
	BestTime   float64 `json:"bestTime"   bson:"bestTime"`
}

// Improvement reports which fields a merge changed.
type Improvement struct {
	First  bool
	Points bool
	Time   bool
}

// Any reports whether anything changed.
func (i Improvement) Any() bool { return i.First || i.Points || i.Time }

// Merge folds one attempt into the stored best. A nil existing value means
// this is the first attempt and it is recorded as-is. Points only go up and
// time only goes down; the fields move independently.
func Merge(existing *Progress, points int64, time float64) Progress {
	p, _ := MergeReport(existing, points, time)
	return p
}

// MergeReport is Merge plus what changed.
func MergeReport(existing *Progress, points int64, time float64) (Progress, Improvement) {
	if existing == nil {
		return Progress{BestPoints: points, BestTime: time}, Improvement{First: true}
	}
	out := *existing
	var imp Improvement
	if points > out.BestPoints {
		out.BestPoints = points
		imp.Points = true
	}
	if time < out.BestTime {
		out.BestTime = time
		imp.Time = true
	}
	return out, imp
}

// Book maps level id to progress. It is the typed form of the progress
// mapping held on a user record.
type Book map[string]Progress

// Record merges an attempt for levelID into a copy of the book.
func (b Book) Record(levelID string, points int64, time float64) (Book, Improvement) {
	var existing *Progress
	if p, ok := b[levelID]; ok {
		existing = &p
	}
	merged, imp := MergeReport(existing, points, time)
	out := make(Book, len(b)+1)
	for k, v := range b {
		out[k] = v
	}
	out[levelID] = merged
	return out, imp
}
