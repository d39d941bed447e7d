package revocation

import "time"

// Option applies a configuration option to the in-memory list.
type Option func(*inMemoryList)

// WithMaxSize bounds the number of ids kept. When full the oldest revocation
// is forgotten first. maxSize <= 0 means unbounded.
func WithMaxSize(maxSize int) Option {
	return func(l *inMemoryList) {
		l.maxSize = maxSize
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *inMemoryList) {
		if now != nil {
			l.now = now
		}
	}
}
