package cpu

// CacheEntry is one memoized decode result: the instruction found at Tag
// together with its cost tuple.
type CacheEntry struct {
	Tag         uint16
	Instruction Instruction
	Cycles      int
	Size        uint16
}

// DecodeCache is a direct-mapped memoization of decode results, indexed by
// address mod capacity. A lookup only hits when the stored entry's tag
// equals the requested address; indexing without the tag check would return
// a decode result for the wrong address on collision.
type DecodeCache struct {
	entries []CacheEntry
	valid   []bool

	hits   uint64
	misses uint64
}

// NewDecodeCache creates a cache with the given fixed capacity.
func NewDecodeCache(capacity int) *DecodeCache {
	if capacity <= 0 {
		panic("decode cache: capacity must be positive")
	}
	return &DecodeCache{
		entries: make([]CacheEntry, capacity),
		valid:   make([]bool, capacity),
	}
}

// Lookup returns the entry cached for the address. Aliasing addresses that
// share an index count as misses.
func (dc *DecodeCache) Lookup(address uint16) (CacheEntry, bool) {
	i := int(address) % len(dc.entries)
	if dc.valid[i] && dc.entries[i].Tag == address {
		dc.hits++
		return dc.entries[i], true
	}
	dc.misses++
	return CacheEntry{}, false
}

// Insert stores a decode result, evicting whatever shared its index.
func (dc *DecodeCache) Insert(address uint16, in Instruction, cycles int, size uint16) {
	i := int(address) % len(dc.entries)
	dc.entries[i] = CacheEntry{Tag: address, Instruction: in, Cycles: cycles, Size: size}
	dc.valid[i] = true
}

func (dc *DecodeCache) Hits() uint64   { return dc.hits }
func (dc *DecodeCache) Misses() uint64 { return dc.misses }

// HitRate is hits/(hits+misses), or 0 when no accesses have occurred.
func (dc *DecodeCache) HitRate() float64 {
	total := dc.hits + dc.misses
	if total == 0 {
		return 0
	}
	return float64(dc.hits) / float64(total)
}

// Clear drops all entries and resets the counters.
func (dc *DecodeCache) Clear() {
	for i := range dc.valid {
		dc.valid[i] = false
	}
	dc.hits = 0
	dc.misses = 0
}
