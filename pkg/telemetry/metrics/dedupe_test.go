package metrics

import (
	"fmt"
	"testing"
	"time"
)

func TestDedupe_Accept(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d := newDedupe(DedupePolicy{TTL: 2 * time.Second, Capacity: 100, EvictAfter: 5 * time.Second})

	if !d.accept("k", now) {
		t.Fatal("first accept = false")
	}
	if d.accept("k", now.Add(time.Second)) {
		t.Error("repeat inside TTL was accepted")
	}
	if !d.accept("k", now.Add(2*time.Second)) {
		t.Error("repeat after TTL was rejected")
	}
	if !d.accept("other", now) {
		t.Error("distinct key was rejected")
	}
}

func TestDedupe_EvictsOverCapacity(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d := newDedupe(DedupePolicy{TTL: time.Second, Capacity: 3, EvictAfter: 5 * time.Second})

	for i := 0; i < 3; i++ {
		d.accept(fmt.Sprintf("old-%d", i), now)
	}
	if d.len() != 3 {
		t.Fatalf("len = %d, want 3", d.len())
	}

	d.accept("fresh", now.Add(6*time.Second))
	if d.len() != 1 {
		t.Errorf("len after eviction = %d, want 1", d.len())
	}
}
