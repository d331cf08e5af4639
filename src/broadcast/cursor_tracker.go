package broadcast

import "sync"

// -----------------------------------------------------------------------------
// CursorTracker remembers, per symbol, the newest trade timestamp that has
// been broadcast. The next cycle only fetches trades strictly newer than the
// cursor, so a trade is broadcast at most once.
// -----------------------------------------------------------------------------

type CursorTracker struct {
	mu      sync.RWMutex
	cursors map[string]int64
}

// -----------------------------------------------------------------------------

// NewCursorTracker pre-seeds a zero cursor for every known symbol. Symbols
// that appear later start from zero implicitly
func NewCursorTracker(symbols []string) *CursorTracker {
	ct := &CursorTracker{
		cursors: make(map[string]int64, len(symbols)),
	}
	for _, symbol := range symbols {
		ct.cursors[symbol] = 0
	}
	return ct
}

// -----------------------------------------------------------------------------

// Get returns the cursor of one symbol, zero when unknown
func (ct *CursorTracker) Get(symbol string) int64 {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return ct.cursors[symbol]
}

// -----------------------------------------------------------------------------

// Advance moves the cursor forward. Attempts to move it backwards are ignored
func (ct *CursorTracker) Advance(symbol string, ts int64) {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	if ts > ct.cursors[symbol] {
		ct.cursors[symbol] = ts
	}
}

// -----------------------------------------------------------------------------

// Snapshot returns a copy of every cursor
func (ct *CursorTracker) Snapshot() map[string]int64 {
	ct.mu.RLock()
	defer ct.mu.RUnlock()

	result := make(map[string]int64, len(ct.cursors))
	for symbol, ts := range ct.cursors {
		result[symbol] = ts
	}
	return result
}
