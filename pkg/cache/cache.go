package cache

// Cache is a bounded store of complete responses keyed by request URL.
// Keys compare case-insensitively. Implementations must be safe for
// concurrent use by every connection handler.
type Cache interface {
	// Lookup returns a private copy of the payload stored for url and marks it
	// as most recently used.
	Lookup(url string) ([]byte, bool)

	// Insert stores payload under url at the most recently used position,
	// evicting least recently used entries until it fits. An existing entry
	// for url is replaced.
	Insert(url string, payload []byte)

	// EvictOne drops the least recently used entry. It reports false when the
	// cache is empty.
	EvictOne() bool

	// Remove drops the entry for url, if any.
	Remove(url string) bool

	// Purge drops every entry.
	Purge()

	// Len returns the number of entries.
	Len() int

	// Usage returns the sum of the payload sizes of all entries.
	Usage() int

	// Capacity returns the byte budget the cache evicts to stay within.
	Capacity() int

	// Entries lists the entries from least to most recently used.
	Entries() []EntryInfo

	// Stats returns a snapshot of the counters.
	Stats() Stats

	// Snapshot returns sizes and counters read together under one lock.
	Snapshot() Snapshot

	// Close stops the cleanup daemon if running. The cache stays usable.
	Close()
}

// EntryInfo describes one cached entry without its payload.
type EntryInfo struct {
	URL  string `json:"url"`
	Size int    `json:"size"`
}

// Stats counts cache activity since creation.
type Stats struct {
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	Insertions  uint64 `json:"insertions"`
	Evictions   uint64 `json:"evictions"`
	Expirations uint64 `json:"expirations"`
}

// Snapshot is a consistent view of the cache occupancy and counters.
type Snapshot struct {
	Entries  int `json:"entries"`
	Usage    int `json:"usage"`
	Capacity int `json:"capacity"`
	Stats
}

var _ Cache = (*Store)(nil)
