package vm

// Inline caching for access sites
//
// Every variable read, variable write, `$` field access and `@` slot access
// site owns a small cache of the shapes it has observed. Most sites only
// ever see one shape (monomorphic); some see a few (polymorphic); a site
// that sees too many gives up caching (megamorphic) and always takes the
// general path.
//
// A cached entry is only a hint: each site validates the entry against the
// current shape generation (or attribute layout version) before using it,
// and falls back to the general path on any mismatch.

// CacheState represents the current state of a site cache.
type CacheState uint8

const (
	CacheEmpty       CacheState = iota // No cached lookup yet
	CacheMonomorphic                   // Single shape cached
	CachePolymorphic                   // 2..limit entries
	CacheMegamorphic                   // Too many shapes, use full lookup
)

var cacheStateNames = [...]string{
	CacheEmpty:       "empty",
	CacheMonomorphic: "monomorphic",
	CachePolymorphic: "polymorphic",
	CacheMegamorphic: "megamorphic",
}

func (s CacheState) String() string { return cacheStateNames[s] }

// MaxSiteEntries is the largest polymorphic limit a site cache supports.
const MaxSiteEntries = 8

// DefaultSiteEntries is the polymorphic limit used when none is configured.
const DefaultSiteEntries = 4

// SiteEntry holds a single cached resolution.
type SiteEntry[K comparable, V any] struct {
	Key   K
	Value V
}

// SiteCache is the cache state for a single access site.
// It progresses through states: Empty -> Monomorphic -> Polymorphic -> Megamorphic
type SiteCache[K comparable, V any] struct {
	State   CacheState
	Entries [MaxSiteEntries]SiteEntry[K, V]
	Count   int // Number of valid entries (1 for mono, 2..Limit for poly)

	// Limit is the polymorphic limit; zero means DefaultSiteEntries.
	Limit int

	// Statistics for profiling
	Hits   uint64
	Misses uint64
}

func (c *SiteCache[K, V]) limit() int {
	if c.Limit <= 0 {
		return DefaultSiteEntries
	}
	if c.Limit > MaxSiteEntries {
		return MaxSiteEntries
	}
	return c.Limit
}

// Lookup returns the cached value for key. It does not count a hit or a
// miss: the caller does that with Hit or Miss once it has validated the
// entry.
func (c *SiteCache[K, V]) Lookup(key K) (V, bool) {
	switch c.State {
	case CacheMonomorphic:
		if c.Entries[0].Key == key {
			return c.Entries[0].Value, true
		}

	case CachePolymorphic:
		// Linear search through entries (typically 2-4 entries)
		for i := 0; i < c.Count; i++ {
			if c.Entries[i].Key == key {
				return c.Entries[i].Value, true
			}
		}

	case CacheMegamorphic, CacheEmpty:
		// Always miss for megamorphic or empty
	}

	var zero V
	return zero, false
}

// Hit records a validated cache hit.
func (c *SiteCache[K, V]) Hit() { c.Hits++ }

// Miss records a cache miss or a failed validation.
func (c *SiteCache[K, V]) Miss() { c.Misses++ }

// Update records a resolution for key, replacing any stale entry for the
// same key and potentially upgrading the cache state. It returns the new
// state so the caller can log transitions.
func (c *SiteCache[K, V]) Update(key K, value V) CacheState {
	switch c.State {
	case CacheEmpty:
		// First lookup - become monomorphic
		c.State = CacheMonomorphic
		c.Entries[0] = SiteEntry[K, V]{Key: key, Value: value}
		c.Count = 1

	case CacheMonomorphic, CachePolymorphic:
		for i := 0; i < c.Count; i++ {
			if c.Entries[i].Key == key {
				c.Entries[i].Value = value
				return c.State
			}
		}
		if c.Count < c.limit() {
			c.Entries[c.Count] = SiteEntry[K, V]{Key: key, Value: value}
			c.Count++
			c.State = CachePolymorphic
		} else {
			// Too many shapes - go megamorphic
			c.State = CacheMegamorphic
			c.clearEntries()
		}

	case CacheMegamorphic:
		// Stay megamorphic, don't cache anything
	}
	return c.State
}

// HitRate returns the cache hit rate as a percentage (0-100).
func (c *SiteCache[K, V]) HitRate() float64 {
	total := c.Hits + c.Misses
	if total == 0 {
		return 0
	}
	return float64(c.Hits) * 100 / float64(total)
}

// Reset clears the cache back to empty state.
func (c *SiteCache[K, V]) Reset() {
	c.State = CacheEmpty
	c.Hits = 0
	c.Misses = 0
	c.clearEntries()
}

func (c *SiteCache[K, V]) clearEntries() {
	for i := range c.Entries {
		c.Entries[i] = SiteEntry[K, V]{}
	}
	c.Count = 0
}
