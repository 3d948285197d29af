package pipeline

import "sync"

// Budget enforces per-run caps on external calls. All methods are safe
// for concurrent use; an Allow that returns true has already counted
// the call.
type Budget struct {
	mu       sync.Mutex
	searches int
	fetches  int
	enriches int

	maxSearches int
	maxFetches  int
	maxEnrich   int
}

// NewBudget creates a Budget. Non-positive caps mean unlimited.
func NewBudget(maxSearches, maxFetches, maxEnrich int) *Budget {
	return &Budget{
		maxSearches: maxSearches,
		maxFetches:  maxFetches,
		maxEnrich:   maxEnrich,
	}
}

func (b *Budget) AllowSearch() bool { return b.allow(&b.searches, b.maxSearches) }
func (b *Budget) AllowFetch() bool  { return b.allow(&b.fetches, b.maxFetches) }
func (b *Budget) AllowEnrich() bool { return b.allow(&b.enriches, b.maxEnrich) }

func (b *Budget) allow(counter *int, limit int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if limit > 0 && *counter >= limit {
		return false
	}
	*counter++
	return true
}

// Snapshot reports calls consumed so far.
func (b *Budget) Snapshot() (searches, fetches, enriches int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.searches, b.fetches, b.enriches
}
