package metrics

import (
	"strings"
	"time"
)

// BeginRequest records an inbound request: totals and per-method counters
// with their windows, the "METHOD path" endpoint tally, and session
// activity for a bearer credential, if one is present.
func (s *Store) BeginRequest(method, path, authorization string) {
	defer s.recoverPanic("begin request")
	token := BearerToken(authorization)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.incLocked(Requests, 1)
	if c := methodCounter(method); c != Unknown {
		s.incLocked(c, 1)
	}
	s.countEndpointLocked(method + " " + path)
	if token != "" {
		s.sessions.touch(token, s.now())
	}
}

func (s *Store) countEndpointLocked(key string) {
	if _, ok := s.st.endpoints[key]; !ok && len(s.st.endpoints) >= s.maxEndpoints {
		key = OtherEndpoints
	}
	s.st.endpoints[key]++
}

// EndRequest records the completion of a request. Statuses of 400 and above
// count as errors; 500 and above also push a server_error sample at once.
func (s *Store) EndRequest(status int, elapsed time.Duration) {
	defer s.recoverPanic("end request")
	s.emit(s.endRequestLocked(status, elapsed))
}

func (s *Store) endRequestLocked(status int, elapsed time.Duration) []Sample {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sumLocked(Latency).add(ms(elapsed))
	s.st.statusCodes[status]++
	if status < 400 {
		return nil
	}
	s.incLocked(Errors, 1)
	if status < 500 {
		return nil
	}
	s.incLocked(ServerErrors, 1)
	return []Sample{sum("server_error", s.st.counters[ServerErrors], "1")}
}

// BearerToken extracts the credential from an "Authorization: Bearer <token>"
// header value. Other schemes yield "".
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
