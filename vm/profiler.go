package vm

// Site statistics. With Options.CollectStats set, every access site created
// through the VM is registered, and SiteStats reports the cache state and
// hit counts of each. The profile package persists these rows.

// site is implemented by every access site kind.
type site interface {
	stat() SiteStat
	reset()
}

// SiteStat is a snapshot of one access site's cache.
type SiteStat struct {
	Kind    string // read/normal, read/super, write/local, field, slot, ...
	Name    string // Variable, member or slot name
	State   CacheState
	Entries int // Cached shapes
	Hits    uint64
	Misses  uint64
}

// HitRate returns the hit rate as a percentage (0-100).
func (s SiteStat) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) * 100 / float64(total)
}

// SiteStats returns one row per registered site, in creation order.
func (vm *VM) SiteStats() []SiteStat {
	stats := make([]SiteStat, len(vm.sites))
	for i, s := range vm.sites {
		stats[i] = s.stat()
	}
	return stats
}

// SiteSummary holds aggregate cache statistics.
type SiteSummary struct {
	Sites       int
	Monomorphic int
	Polymorphic int
	Megamorphic int
	Hits        uint64
	Misses      uint64
}

// CollectSiteStats aggregates a set of site rows.
func CollectSiteStats(stats []SiteStat) SiteSummary {
	var sum SiteSummary
	for _, s := range stats {
		sum.Sites++
		sum.Hits += s.Hits
		sum.Misses += s.Misses
		switch s.State {
		case CacheMonomorphic:
			sum.Monomorphic++
		case CachePolymorphic:
			sum.Polymorphic++
		case CacheMegamorphic:
			sum.Megamorphic++
		}
	}
	return sum
}

// TopSites returns the n sites with the most misses, most first.
func (vm *VM) TopSites(n int) []SiteStat {
	all := vm.SiteStats()

	// Selection sort for the top n; n is small.
	for i := 0; i < n && i < len(all); i++ {
		maxIdx := i
		for j := i + 1; j < len(all); j++ {
			if all[j].Misses > all[maxIdx].Misses {
				maxIdx = j
			}
		}
		all[i], all[maxIdx] = all[maxIdx], all[i]
	}
	if n < len(all) {
		all = all[:n]
	}
	return all
}

// ResetSiteStats empties every registered site cache and clears its counters.
func (vm *VM) ResetSiteStats() {
	for _, s := range vm.sites {
		s.reset()
	}
}

func (s *ReadSite) reset()  { s.cache.Reset() }
func (s *WriteSite) reset() { s.cache.Reset() }
func (s *FieldSite) reset() { s.cache.Reset() }
func (s *SlotSite) reset()  { s.cache.Reset() }
