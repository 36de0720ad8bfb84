package metrics

import "time"

// sessionSet maps an opaque bearer token to its last-seen time. It is
// guarded by Store.mu.
type sessionSet struct {
	lastSeen map[string]time.Time
}

func newSessionSet() *sessionSet {
	return &sessionSet{lastSeen: make(map[string]time.Time)}
}

func (ss *sessionSet) touch(token string, at time.Time) {
	ss.lastSeen[token] = at
}

// evict drops every entry last seen before cutoff and returns how many remain.
func (ss *sessionSet) evict(cutoff time.Time) int {
	for token, seen := range ss.lastSeen {
		if seen.Before(cutoff) {
			delete(ss.lastSeen, token)
		}
	}
	return len(ss.lastSeen)
}

func (ss *sessionSet) len() int {
	return len(ss.lastSeen)
}

// RecordActivity marks token as active now. Empty tokens are ignored.
// Tokens are not validated.
func (s *Store) RecordActivity(token string) {
	if token == "" {
		return
	}
	defer s.recoverPanic("record activity")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions.touch(token, s.now())
}

// RecalculateActiveUsers evicts sessions idle longer than the session TTL
// and sets the ActiveUsers gauge to the number that remain.
func (s *Store) RecalculateActiveUsers() int {
	defer s.recoverPanic("recalculate active users")
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.sessions.evict(s.now().Add(-s.sessionTTL))
	s.setGaugeLocked(ActiveUsers, float64(n))
	return n
}
