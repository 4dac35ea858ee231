package vm

import (
	"testing"
)

func TestSiteCacheEmpty(t *testing.T) {
	var c SiteCache[*Shape, int]

	if _, ok := c.Lookup(NewShape("f")); ok {
		t.Error("Expected miss from empty cache")
	}
	if c.State != CacheEmpty {
		t.Errorf("Expected empty state, got %v", c.State)
	}
}

func TestSiteCacheMonomorphic(t *testing.T) {
	var c SiteCache[*Shape, int]
	shape := NewShape("f")

	// First update - becomes monomorphic
	if got := c.Update(shape, 7); got != CacheMonomorphic {
		t.Errorf("Expected monomorphic state, got %v", got)
	}
	if c.Count != 1 {
		t.Errorf("Expected count 1, got %d", c.Count)
	}

	// Lookup should hit
	v, ok := c.Lookup(shape)
	if !ok || v != 7 {
		t.Errorf("Expected cache hit with 7, got %d, %v", v, ok)
	}

	// Different shape should miss
	if _, ok := c.Lookup(NewShape("g")); ok {
		t.Error("Expected cache miss for different shape")
	}
}

func TestSiteCacheReplacesSameKey(t *testing.T) {
	var c SiteCache[*Shape, int]
	shape := NewShape("f")

	c.Update(shape, 1)
	c.Update(shape, 2)

	if c.State != CacheMonomorphic || c.Count != 1 {
		t.Fatalf("Expected monomorphic with 1 entry, got %v with %d", c.State, c.Count)
	}
	if v, _ := c.Lookup(shape); v != 2 {
		t.Errorf("Expected refreshed value 2, got %d", v)
	}
}

func TestSiteCacheUpgradeToPolymorphic(t *testing.T) {
	var c SiteCache[*Shape, int]
	s1, s2 := NewShape("s1"), NewShape("s2")

	c.Update(s1, 1)
	if got := c.Update(s2, 2); got != CachePolymorphic {
		t.Errorf("Expected polymorphic, got %v", got)
	}
	if c.Count != 2 {
		t.Errorf("Expected count 2, got %d", c.Count)
	}

	// Both should hit
	if v, ok := c.Lookup(s1); !ok || v != 1 {
		t.Error("Expected hit for s1")
	}
	if v, ok := c.Lookup(s2); !ok || v != 2 {
		t.Error("Expected hit for s2")
	}
}

func TestSiteCacheUpgradeToMegamorphic(t *testing.T) {
	var c SiteCache[*Shape, int]
	c.Limit = 3

	shapes := make([]*Shape, 4)
	for i := range shapes {
		shapes[i] = NewShape("s")
	}
	for i := 0; i < 3; i++ {
		c.Update(shapes[i], i)
	}
	if c.State != CachePolymorphic {
		t.Fatalf("Expected polymorphic at the limit, got %v", c.State)
	}

	if got := c.Update(shapes[3], 3); got != CacheMegamorphic {
		t.Errorf("Expected megamorphic, got %v", got)
	}
	if c.Count != 0 {
		t.Errorf("Expected entries cleared, got %d", c.Count)
	}

	// Megamorphic never hits and never caches again
	if _, ok := c.Lookup(shapes[0]); ok {
		t.Error("Expected megamorphic cache to miss")
	}
	c.Update(shapes[0], 0)
	if c.State != CacheMegamorphic {
		t.Errorf("Expected to stay megamorphic, got %v", c.State)
	}
}

func TestSiteCacheLimitClamped(t *testing.T) {
	var c SiteCache[int, int]
	c.Limit = 100

	for i := 0; i < MaxSiteEntries; i++ {
		c.Update(i, i)
	}
	if c.State != CachePolymorphic || c.Count != MaxSiteEntries {
		t.Fatalf("Expected %d polymorphic entries, got %v with %d", MaxSiteEntries, c.State, c.Count)
	}
	if c.Update(MaxSiteEntries, 0) != CacheMegamorphic {
		t.Error("Expected megamorphic past MaxSiteEntries")
	}
}

func TestSiteCacheHitRate(t *testing.T) {
	var c SiteCache[int, int]
	if c.HitRate() != 0 {
		t.Errorf("Expected 0 hit rate with no lookups, got %f", c.HitRate())
	}
	c.Hit()
	c.Hit()
	c.Hit()
	c.Miss()
	if c.HitRate() != 75 {
		t.Errorf("Expected 75%% hit rate, got %f", c.HitRate())
	}
}

func TestSiteCacheReset(t *testing.T) {
	var c SiteCache[int, int]
	c.Update(1, 1)
	c.Update(2, 2)
	c.Hit()
	c.Miss()

	c.Reset()

	if c.State != CacheEmpty || c.Count != 0 {
		t.Errorf("Expected empty cache after reset, got %v with %d", c.State, c.Count)
	}
	if c.Hits != 0 || c.Misses != 0 {
		t.Errorf("Expected cleared counters, got %d/%d", c.Hits, c.Misses)
	}
	if _, ok := c.Lookup(1); ok {
		t.Error("Expected miss after reset")
	}
}

func TestCacheStateString(t *testing.T) {
	tests := []struct {
		state CacheState
		want  string
	}{
		{CacheEmpty, "empty"},
		{CacheMonomorphic, "monomorphic"},
		{CachePolymorphic, "polymorphic"},
		{CacheMegamorphic, "megamorphic"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
