package utils

import (
	"sort"

	"market-simulator/src/models"
)

// -----------------------------------------------------------------------------
// TradeRing is a fixed-size circular buffer of executed trades. Appends are
// expected in non-decreasing timestamp order, which GetSince relies on.
// Not safe for concurrent use, callers hold their own lock.
// -----------------------------------------------------------------------------

type TradeRing struct {
	data     []models.MTrade
	capacity int
	index    int // Next write position
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

// NewTradeRing creates a new buffer with fixed capacity
func NewTradeRing(capacity int) *TradeRing {
	if capacity <= 0 {
		capacity = 1000 // Default reasonable size
	}

	return &TradeRing{
		data:     make([]models.MTrade, capacity),
		capacity: capacity,
		index:    0,
		size:     0,
	}
}

// -----------------------------------------------------------------------------

// Append adds one trade, overwriting the oldest entry when full
func (tr *TradeRing) Append(trade models.MTrade) {
	tr.data[tr.index] = trade
	tr.index = (tr.index + 1) % tr.capacity

	// Update size (never exceeds capacity)
	if tr.size < tr.capacity {
		tr.size++
	}
}

// -----------------------------------------------------------------------------

// at returns the i-th element in logical order, 0 being the oldest
func (tr *TradeRing) at(i int) models.MTrade {
	var startIdx int
	if tr.size == tr.capacity {
		startIdx = tr.index
	}
	return tr.data[(startIdx+i)%tr.capacity]
}

// -----------------------------------------------------------------------------

// GetLatest returns the n newest trades in chronological order
func (tr *TradeRing) GetLatest(n int) []models.MTrade {
	if tr.size == 0 || n <= 0 {
		return []models.MTrade{}
	}

	count := n
	if n > tr.size {
		count = tr.size
	}

	result := make([]models.MTrade, count)
	for i := 0; i < count; i++ {
		result[i] = tr.at(tr.size - count + i)
	}

	return result
}

// -----------------------------------------------------------------------------

// GetAll returns all trades in insertion order (oldest to newest)
func (tr *TradeRing) GetAll() []models.MTrade {
	result := make([]models.MTrade, tr.size)
	for i := 0; i < tr.size; i++ {
		result[i] = tr.at(i)
	}
	return result
}

// -----------------------------------------------------------------------------

// GetSince returns trades with timestamps strictly greater than ts,
// oldest first. Binary search keeps this cheap on large rings
func (tr *TradeRing) GetSince(ts int64) []models.MTrade {
	if tr.size == 0 {
		return []models.MTrade{}
	}

	first := sort.Search(tr.size, func(i int) bool {
		return tr.at(i).Timestamp > ts
	})
	if first == tr.size {
		return []models.MTrade{}
	}

	result := make([]models.MTrade, tr.size-first)
	for i := first; i < tr.size; i++ {
		result[i-first] = tr.at(i)
	}

	return result
}

// -----------------------------------------------------------------------------

// Size returns current number of elements
func (tr *TradeRing) Size() int {
	return tr.size
}

// -----------------------------------------------------------------------------

// Capacity returns buffer capacity (fixed)
func (tr *TradeRing) Capacity() int {
	return tr.capacity
}

// -----------------------------------------------------------------------------

// Resize changes the capacity of the buffer.
// If newCapacity < size, oldest trades are dropped
func (tr *TradeRing) Resize(newCapacity int) {
	if newCapacity <= 0 || newCapacity == tr.capacity {
		return
	}

	count := tr.size
	if count > newCapacity {
		count = newCapacity
	}

	// Keep the newest 'count' trades
	newData := make([]models.MTrade, newCapacity)
	for i := 0; i < count; i++ {
		newData[i] = tr.at(tr.size - count + i)
	}

	tr.data = newData
	tr.capacity = newCapacity
	tr.size = count
	tr.index = count % newCapacity
}

// -----------------------------------------------------------------------------

// IsFull returns whether buffer is full
func (tr *TradeRing) IsFull() bool {
	return tr.size == tr.capacity
}

// -----------------------------------------------------------------------------

// Clear resets the buffer
func (tr *TradeRing) Clear() {
	tr.index = 0
	tr.size = 0
}
