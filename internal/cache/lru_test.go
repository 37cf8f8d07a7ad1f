package cache

import (
	"testing"
	"time"
)

type reportKey struct {
	kind    string
	version int64
}

func TestLRU_Eviction(t *testing.T) {
	c := NewLRU[reportKey, string](2, 0)

	c.Set(reportKey{"budget", 1}, "b1")
	c.Set(reportKey{"ledger", 1}, "l1")
	if _, ok := c.Get(reportKey{"budget", 1}); !ok {
		t.Fatal("budget v1 should be cached")
	}
	c.Set(reportKey{"budget", 2}, "b2")

	if _, ok := c.Get(reportKey{"ledger", 1}); ok {
		t.Fatal("least recently used entry should be evicted")
	}
	if v, ok := c.Get(reportKey{"budget", 1}); !ok || v != "b1" {
		t.Fatalf("budget v1 = %q, %v", v, ok)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d", c.Len())
	}

	hits, misses := c.Stats()
	if hits != 2 || misses != 1 {
		t.Fatalf("hits=%d misses=%d", hits, misses)
	}
}

func TestLRU_TTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewLRU[int64, int](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set(1, 100)
	c.Set(2, 200)
	now = now.Add(30 * time.Second)
	c.Set(3, 300)

	now = now.Add(45 * time.Second)
	if _, ok := c.Get(1); ok {
		t.Fatal("entry 1 should have expired")
	}
	if removed := c.CleanExpired(); removed != 1 {
		t.Fatalf("CleanExpired removed %d, want 1", removed)
	}
	if v, ok := c.Get(3); !ok || v != 300 {
		t.Fatalf("entry 3 = %d, %v", v, ok)
	}
}

func TestLRU_GetOrCompute(t *testing.T) {
	c := NewLRU[int64, int](4, 0)
	calls := 0
	compute := func() int { calls++; return 7 }

	for i := 0; i < 3; i++ {
		if got := c.GetOrCompute(5, compute); got != 7 {
			t.Fatalf("got %d", got)
		}
	}
	if calls != 1 {
		t.Fatalf("compute called %d times", calls)
	}

	c.Delete(5)
	c.GetOrCompute(5, compute)
	c.Purge()
	if calls != 2 || c.Len() != 0 {
		t.Fatalf("calls=%d len=%d", calls, c.Len())
	}
}

func TestManager(t *testing.T) {
	now := time.Now()
	c := NewLRU[string, int](4, time.Second)
	c.now = func() time.Time { return now }
	c.Set("a", 1)

	m := NewManager()
	m.Register(c)
	now = now.Add(2 * time.Second)
	if removed := m.CleanNow(); removed != 1 {
		t.Fatalf("CleanNow removed %d", removed)
	}

	m.StartCleanup(time.Millisecond)
	m.StartCleanup(time.Millisecond)
	m.Stop()
	m.Stop()
}
