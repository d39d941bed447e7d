// Package loadtest drives a running platformer API with concurrent score
// submissions and checks the resulting leaderboard and progress records.
package loadtest

import "time"

// Config holds configuration for a load run.
type Config struct {
	BaseURL     string        // Base URL of the service
	APIPath     string        // Prefix of the authenticated routes
	Players     int           // Accounts to register
	Submissions int           // Attempts to submit across all players
	Workers     int           // Concurrent submitters
	Capacity    int           // Expected leaderboard capacity
	Timeout     time.Duration // HTTP request timeout
	Seed        uint64        // Attempt generator seed; 0 picks one
	OutputFile  string        // Where generated attempts are written; empty skips
	Verbose     bool
}

// Attempt is one generated submission.
type Attempt struct {
	Player string  `json:"player"`
	Points int64   `json:"points"`
	Time   float64 `json:"time"`
}

// Entry mirrors a leaderboard slot.
type Entry struct {
	Player string  `json:"player"`
	Score  float64 `json:"score"`
}

// Leaderboard mirrors GET /api/highscore/{id}.
type Leaderboard struct {
	ID            string  `json:"id"`
	TimeRanking   []Entry `json:"timeRanking"`
	PointsRanking []Entry `json:"pointsRanking"`
}

// Best mirrors one progress entry of a user.
type Best struct {
	BestPoints int64   `json:"bestPoints"`
	BestTime   float64 `json:"bestTime"`
}

// User mirrors the parts of a user record the run checks.
type User struct {
	ID       string          `json:"id"`
	Username string          `json:"username"`
	Token    string          `json:"token"`
	Progress map[string]Best `json:"progress"`
}

// Stats holds run statistics.
type Stats struct {
	Generated  int
	Submitted  int
	Successful int
	Failed     int
	StartTime  time.Time
	Duration   time.Duration
}
