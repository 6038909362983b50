package cache

import "time"

// Close stops cleanup cronjob if running.
func (s *Store) Close() {
	s.StopCleanupDaemon()
}

// StartCleanupDaemon starts a background goroutine that periodically evicts expired items.
func (s *Store) StartCleanupDaemon() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cleanupRunning || s.ttl <= 0 {
		return
	}
	s.cleanupRunning = true
	stop := s.cleanupStop

	go func() {
		ticker := time.NewTicker(s.cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.cleanupExpired()
			case <-stop:
				return
			}
		}
	}()
}

// StopCleanupDaemon stops the janitor if running.
func (s *Store) StopCleanupDaemon() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cleanupRunning {
		close(s.cleanupStop)
		s.cleanupStop = make(chan struct{})
		s.cleanupRunning = false
	}
}

// cleanupExpired walks the list and drops expired entries.
func (s *Store) cleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	current := s.ll.Front()
	for current != nil {
		next := current.Next()
		if s.isExpired(current.Value.(*entry)) {
			s.removeElement(current)
			s.stats.Expirations++
			removed++
		}
		current = next
	}
	return removed
}
