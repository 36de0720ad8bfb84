package metrics

import "time"

// dedupe remembers when each key was last accepted. A key accepted within
// the policy TTL is rejected. It is guarded by Store.mu.
type dedupe struct {
	policy   DedupePolicy
	accepted map[string]time.Time
}

func newDedupe(p DedupePolicy) *dedupe {
	return &dedupe{policy: p, accepted: make(map[string]time.Time)}
}

// accept reports whether key should be counted at now. Rejected calls do
// not refresh the stored timestamp, so a steady stream of repeats is let
// through again once per TTL.
func (d *dedupe) accept(key string, now time.Time) bool {
	if last, ok := d.accepted[key]; ok && now.Sub(last) < d.policy.TTL {
		return false
	}
	d.accepted[key] = now
	if len(d.accepted) > d.policy.Capacity {
		d.evict(now)
	}
	return true
}

func (d *dedupe) evict(now time.Time) {
	for k, t := range d.accepted {
		if now.Sub(t) > d.policy.EvictAfter {
			delete(d.accepted, k)
		}
	}
}

func (d *dedupe) len() int {
	return len(d.accepted)
}
