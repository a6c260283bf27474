package memory

import (
	"time"

	"github.com/yndnr/replikv/pkg/cmap"
)

// entry is a stored value with its optional expiry.
type entry struct {
	value     string
	expiresAt int64 // Unix milliseconds, valid when hasExpiry
	hasExpiry bool
}

func (e entry) expiredAt(nowMs int64) bool {
	return e.hasExpiry && e.expiresAt <= nowMs
}

// Store is a concurrent key-value store with lazy expiry.
type Store struct {
	entries *cmap.Map[string, entry]
	now     func() time.Time
	onEvict func(key string)
}

// Option configures the Store.
type Option func(*Store)

// WithClock sets the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithShardCount sets the number of map shards (power of two).
func WithShardCount(n int) Option {
	return func(s *Store) {
		s.entries = cmap.NewWithShards[string, entry](n)
	}
}

// WithEvictHook registers a function called after a read evicts an expired
// key.
func WithEvictHook(fn func(key string)) Option {
	return func(s *Store) {
		s.onEvict = fn
	}
}

// New creates a new in-memory store.
func New(opts ...Option) *Store {
	s := &Store{
		entries: cmap.New[string, entry](),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Set stores value under key without expiry, replacing any existing entry.
func (s *Store) Set(key, value string) {
	s.entries.Set(key, entry{value: value})
}

// SetWithTTL stores value under key, expiring ttl after now. A ttl of zero
// or less stores an entry that is already expired.
func (s *Store) SetWithTTL(key, value string, ttl time.Duration) {
	s.entries.Set(key, entry{
		value:     value,
		expiresAt: s.nowMs() + ttl.Milliseconds(),
		hasExpiry: true,
	})
}

// Get returns the value stored under key. Expired entries are reported as
// absent and removed.
func (s *Store) Get(key string) (string, bool) {
	e, ok := s.entries.Get(key)
	if !ok {
		return "", false
	}

	now := s.nowMs()
	if !e.expiredAt(now) {
		return e.value, true
	}

	// Re-check under the shard lock so a concurrent Set is not lost.
	evicted := s.entries.DeleteIf(key, func(cur entry) bool {
		return cur.expiredAt(now)
	})
	if evicted && s.onEvict != nil {
		s.onEvict(key)
	}
	return "", false
}

// Len returns the number of stored entries, including expired entries that
// have not been read since they expired.
func (s *Store) Len() int {
	return s.entries.Count()
}

func (s *Store) nowMs() int64 {
	return s.now().UnixMilli()
}
