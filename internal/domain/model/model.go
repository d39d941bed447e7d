// Package model contains domain models passed between layers.
package model

import (
	"slices"
	"time"

	"github.com/okian/platformer/internal/domain/progress"
	"github.com/okian/platformer/internal/domain/ranking"
)

// User is a registered player.
// Version increments on every write and guards compare-and-swap updates.
type User struct {
	ID            string        `json:"id"            bson:"_id"`
	Username      string        `json:"username"      bson:"username"`
	PasswordHash  string        `json:"-"             bson:"password"`
	CreatedLevels []string      `json:"createdLevels" bson:"createdLevels"`
	SavedLevels   []string      `json:"savedLevels"   bson:"savedLevels"`
	Progress      progress.Book `json:"progress"      bson:"progress"`
	Version       int64         `json:"version"       bson:"version"`
	CreatedAt     time.Time     `json:"createdAt"     bson:"createdAt"`
}

// Clone returns a deep copy so a loaded record can be kept for the swap.
func (u User) Clone() User {
	out := u
	out.CreatedLevels = slices.Clone(u.CreatedLevels)
	out.SavedLevels = slices.Clone(u.SavedLevels)
	if u.Progress != nil {
		out.Progress = make(progress.Book, len(u.Progress))
		for k, v := range u.Progress {
			out.Progress[k] = v
		}
	}
	return out
}

// Level is a user-built level. JSON is opaque scene data.
type Level struct {
	ID           string    `json:"id"           bson:"_id"`
	Creator      string    `json:"creator"      bson:"creator"`
	JSON         string    `json:"json"         bson:"json"`
	Thumbnail    string    `json:"thumbnail"    bson:"thumbnail"`
	Version      int64     `json:"version"      bson:"version"`
	CreatedAt    time.Time `json:"createdAt"    bson:"createdAt"`
	LastModified time.Time `json:"lastModified" bson:"lastModified"`
}

// Leaderboard is the stored highscore record of one level; ID is the level id.
type Leaderboard struct {
	ID            string `json:"id" bson:"_id"`
	ranking.Board `bson:",inline"`
	Version       int64     `json:"version"   bson:"version"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Clone returns a deep copy.
func (l Leaderboard) Clone() Leaderboard {
	out := l
	out.TimeRanking = slices.Clone(l.TimeRanking)
	out.PointsRanking = slices.Clone(l.PointsRanking)
	return out
}

// AddUnique appends id to list unless present.
func AddUnique(list []string, id string) []string {
	if slices.Contains(list, id) {
		return list
	}
	return append(slices.Clone(list), id)
}

// Remove returns list without id.
func Remove(list []string, id string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
