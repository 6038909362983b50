package cache

import (
	"bytes"
	"container/list"
)

// Lookup returns a copy of the payload for url and moves the entry to the
// most recently used end. Expired entries are dropped and count as misses.
func (s *Store) Lookup(url string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	element, ok := s.items[foldKey(url)]
	if !ok {
		s.stats.Misses++
		return nil, false
	}
	e := element.Value.(*entry)

	if s.isExpired(e) {
		s.removeElement(element)
		s.stats.Expirations++
		s.stats.Misses++
		return nil, false
	}

	s.ll.MoveToBack(element)
	s.stats.Hits++
	return bytes.Clone(e.payload), true
}

// Insert stores a copy of payload under url.
// When the payload does not fit in the remaining headroom, entries are evicted
// from the least recently used end until it does. A payload larger than the
// whole capacity drains the cache and is stored anyway; callers keep objects
// below capacity.
func (s *Store) Insert(url string, payload []byte) {
	size := len(payload)
	key := foldKey(url)

	s.mu.Lock()
	defer s.mu.Unlock()

	// replace, never duplicate
	if element, ok := s.items[key]; ok {
		s.removeElement(element)
	}

	if size >= s.capacity-s.usage {
		for s.capacity-s.usage < size {
			if !s.evictOldest() {
				break
			}
		}
	}

	e := &entry{
		url:      url,
		key:      key,
		payload:  bytes.Clone(payload),
		storedAt: s.now(),
	}
	s.items[key] = s.ll.PushBack(e)
	s.usage += size
	s.stats.Insertions++
}

// EvictOne removes the least recently used entry.
func (s *Store) EvictOne() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictOldest()
}

// Remove deletes the entry for url (both the linked list node and the items map).
func (s *Store) Remove(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	element, ok := s.items[foldKey(url)]
	if !ok {
		return false
	}
	s.removeElement(element)
	return true
}

func (s *Store) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ll.Init()
	clear(s.items)
	s.usage = 0
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ll.Len()
}

func (s *Store) Usage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usage
}

func (s *Store) Capacity() int {
	return s.capacity
}

// Entries lists url and size of every entry, least recently used first.
func (s *Store) Entries() []EntryInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]EntryInfo, 0, s.ll.Len())
	for element := s.ll.Front(); element != nil; element = element.Next() {
		e := element.Value.(*entry)
		out = append(out, EntryInfo{URL: e.url, Size: len(e.payload)})
	}
	return out
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Entries:  s.ll.Len(),
		Usage:    s.usage,
		Capacity: s.capacity,
		Stats:    s.stats,
	}
}

// evictOldest drops the front of the list. Callers hold s.mu.
func (s *Store) evictOldest() bool {
	front := s.ll.Front()
	if front == nil {
		return false
	}
	s.removeElement(front)
	s.stats.Evictions++
	return true
}

// removeElement unlinks element and releases its bytes from usage. Callers hold s.mu.
func (s *Store) removeElement(element *list.Element) {
	e := s.ll.Remove(element).(*entry)
	delete(s.items, e.key)
	s.usage -= len(e.payload)
}

// isExpired reports whether e outlived the TTL. Zero TTL means no expiry.
func (s *Store) isExpired(e *entry) bool {
	if s.ttl <= 0 {
		return false
	}
	return s.now().Sub(e.storedAt) >= s.ttl
}
