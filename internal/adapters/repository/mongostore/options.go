package mongostore

import "time"

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithTimeout bounds every single store call.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithCollections overrides the collection names.
func WithCollections(users, levels, leaderboards string) Option {
	return func(s *Store) {
		if users != "" {
			s.usersName = users
		}
		if levels != "" {
			s.levelsName = levels
		}
		if leaderboards != "" {
			s.leaderboardsName = leaderboards
		}
	}
}
