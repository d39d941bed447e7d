// Package revocation tracks logged-out token ids until they expire.
package revocation

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// List records revoked token ids.
type List interface {
	// Revoke records id until expiresAt. Revoking twice keeps the later expiry.
	Revoke(ctx context.Context, id string, expiresAt time.Time)

	// Revoked reports whether id is revoked and not yet expired.
	Revoked(ctx context.Context, id string) bool

	Size() int64
}

// node is one entry of the insertion-ordered list; head is the oldest.
type node struct {
	id        string
	expiresAt time.Time
	next      *node
}

func (n *node) reset() {
	n.id = ""
	n.expiresAt = time.Time{}
	n.next = nil
}

// inMemoryList keeps ids in insertion order so the oldest can be dropped in
// O(1) when the list is full. Expired ids are pruned from the head on write.
type inMemoryList struct {
	mu       sync.RWMutex
	entries  map[string]*node
	head     *node
	tail     *node
	maxSize  int // 0 or negative = unbounded
	size     atomic.Int64
	now      func() time.Time
	nodePool sync.Pool
}

// NewInMemoryList creates a revocation list.
func NewInMemoryList(opts ...Option) List {
	l := &inMemoryList{
		maxSize: 100_000,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.entries = make(map[string]*node)
	l.nodePool = sync.Pool{
		New: func() any {
			return &node{}
		},
	}
	return l
}

func (l *inMemoryList) Revoke(_ context.Context, id string, expiresAt time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneExpired()

	if n, ok := l.entries[id]; ok {
		if expiresAt.After(n.expiresAt) {
			n.expiresAt = expiresAt
		}
		return
	}
	if !expiresAt.After(l.now()) {
		return
	}
	if l.maxSize > 0 && len(l.entries) >= l.maxSize {
		l.popHead()
	}

	n := l.nodePool.Get().(*node)
	n.id = id
	n.expiresAt = expiresAt
	if l.tail == nil {
		l.head = n
	} else {
		l.tail.next = n
	}
	l.tail = n
	l.entries[id] = n
	l.size.Add(1)
}

func (l *inMemoryList) Revoked(_ context.Context, id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n, ok := l.entries[id]
	return ok && l.now().Before(n.expiresAt)
}

// pruneExpired drops expired entries from the head. Entries are roughly
// ordered by expiry since tokens share one lifetime; an extended entry in
// the middle waits until it reaches the head. Must hold l.mu.
func (l *inMemoryList) pruneExpired() {
	now := l.now()
	for l.head != nil && !now.Before(l.head.expiresAt) {
		l.popHead()
	}
}

// popHead removes the oldest entry. Must hold l.mu.
func (l *inMemoryList) popHead() {
	n := l.head
	if n == nil {
		return
	}
	l.head = n.next
	if l.head == nil {
		l.tail = nil
	}
	delete(l.entries, n.id)
	n.reset()
	l.nodePool.Put(n)
	l.size.Add(-1)
}

func (l *inMemoryList) Size() int64 {
	return l.size.Load()
}
