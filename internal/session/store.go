// Package session holds the per-session state that outlives a single plan
// execution: the dedup ledger of side effects already performed and the set
// of confirmations already surfaced. Sessions are keyed by an explicit
// session ID and expire after a TTL.
package session

import (
	"sync"
	"time"
)

// state is the mutable record for one session.
type state struct {
	effects      map[string]struct{}
	confirmed    map[string]struct{}
	lastActivity time.Time
}

// Store is a TTL-bounded in-memory session store. All mutations are
// serialized behind one mutex so strategies may fan out tasks concurrently.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*state
	ttl      time.Duration

	stopOnce sync.Once
	stop     chan struct{}
}

// NewStore creates a Store whose sessions expire ttl after their last
// activity. A background janitor runs every cleanupInterval.
func NewStore(ttl, cleanupInterval time.Duration) *Store {
	s := &Store{
		sessions: make(map[string]*state),
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go s.janitor(cleanupInterval)
	}
	return s
}

// Close stops the janitor.
func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Store) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.expire(time.Now())
		}
	}
}

func (s *Store) expire(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, st := range s.sessions {
		if now.Sub(st.lastActivity) > s.ttl {
			delete(s.sessions, id)
		}
	}
}

// get returns the session record, creating it if needed. Caller holds s.mu.
func (s *Store) get(sessionID string) *state {
	st, ok := s.sessions[sessionID]
	if !ok {
		st = &state{
			effects:   make(map[string]struct{}),
			confirmed: make(map[string]struct{}),
		}
		s.sessions[sessionID] = st
	}
	st.lastActivity = time.Now()
	return st
}

// Touch creates the session if needed and refreshes its activity clock.
func (s *Store) Touch(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(sessionID)
}

// SeenEffect reports whether fingerprint is already in the session's dedup
// ledger.
func (s *Store) SeenEffect(sessionID, fingerprint string) bool {
	if fingerprint == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, seen := s.get(sessionID).effects[fingerprint]
	return seen
}

// RecordEffect adds fingerprint to the session's dedup ledger.
func (s *Store) RecordEffect(sessionID, fingerprint string) {
	if fingerprint == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(sessionID).effects[fingerprint] = struct{}{}
}

// FirstConfirmation records the confirmation key and reports whether this
// was its first occurrence in the session. Later occurrences of the same key
// must not produce a new confirmation payload.
func (s *Store) FirstConfirmation(sessionID, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.get(sessionID)
	if _, seen := st.confirmed[key]; seen {
		return false
	}
	st.confirmed[key] = struct{}{}
	return true
}

// Len returns the number of live sessions. Used by tests and the stats
// endpoint.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
