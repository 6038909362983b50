package cache

import (
	"container/list"
	"errors"
	"sync"
	"time"
)

// DefaultCapacity is the total byte budget of a cache built from defaults.
const DefaultCapacity = 1049000

const defaultCleanupInterval = time.Minute

// Option is a functional option for building a Store
type Option func(*Store)

// entry stored in list.Element
type entry struct {
	url      string
	key      string
	payload  []byte
	storedAt time.Time
}

// Store is a byte-bounded LRU cache.
// The list runs from least recently used (front) to most recently used (back).
// One mutex covers every read and structural change.
type Store struct {
	mu       sync.Mutex
	capacity int
	usage    int
	ll       *list.List
	items    map[string]*list.Element
	stats    Stats
	now      func() time.Time

	ttl             time.Duration
	cleanupInterval time.Duration
	cleanupStop     chan struct{}
	cleanupRunning  bool
}

// WithTTL expires entries ttl after they were stored. Zero keeps entries until evicted.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl >= 0 {
			s.ttl = ttl
		} else {
			panic("ttl must be >= 0")
		}
	}
}

// WithCleanupInterval sets how often the cleanup daemon sweeps expired entries.
// The daemon only runs when a TTL is set.
func WithCleanupInterval(interval time.Duration) Option {
	return func(s *Store) {
		if interval > 0 {
			s.cleanupInterval = interval
		} else {
			panic("cleanup interval must be > 0")
		}
	}
}

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty Store holding at most capacity bytes of payload.
func New(capacity int, opts ...Option) (*Store, error) {
	if capacity <= 0 {
		return nil, errors.New("capacity must be > 0")
	}

	s := &Store{
		capacity:        capacity,
		ll:              list.New(),
		items:           make(map[string]*list.Element),
		now:             time.Now,
		cleanupInterval: defaultCleanupInterval,
		cleanupStop:     make(chan struct{}),
	}

	for _, o := range opts {
		o(s)
	}

	if s.ttl > 0 {
		s.StartCleanupDaemon()
	}
	return s, nil
}

// foldKey lowercases ASCII letters only, matching strcasecmp.
func foldKey(url string) string {
	for i := 0; i < len(url); i++ {
		if c := url[i]; 'A' <= c && c <= 'Z' {
			b := []byte(url)
			for j := i; j < len(b); j++ {
				if 'A' <= b[j] && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return url
}
