package utils

import (
	"testing"

	"market-simulator/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

// mkTrade builds a trade whose id encodes its timestamp, handy for asserting
// order after wraps
func mkTrade(ts int64) models.MTrade {
	return models.MTrade{
		BuyOrderID:  "b",
		SellOrderID: "s",
		Price:       100.0,
		Quantity:    10,
		Timestamp:   ts,
	}
}

// -----------------------------------------------------------------------------

func TestTradeRingAppendAndGetAll(t *testing.T) {
	tr := NewTradeRing(5)

	assert.Equal(t, 0, tr.Size())
	assert.Equal(t, 5, tr.Capacity())
	assert.False(t, tr.IsFull())

	for ts := int64(1); ts <= 3; ts++ {
		tr.Append(mkTrade(ts))
	}

	all := tr.GetAll()
	require.Len(t, all, 3)
	assert.Equal(t, int64(1), all[0].Timestamp)
	assert.Equal(t, int64(3), all[2].Timestamp)
}

func TestTradeRingOverwritesOldestWhenFull(t *testing.T) {
	tr := NewTradeRing(3)

	for ts := int64(1); ts <= 5; ts++ {
		tr.Append(mkTrade(ts))
	}

	assert.True(t, tr.IsFull())
	assert.Equal(t, 3, tr.Size())

	all := tr.GetAll()
	require.Len(t, all, 3)
	// 1 and 2 were overwritten
	assert.Equal(t, int64(3), all[0].Timestamp)
	assert.Equal(t, int64(4), all[1].Timestamp)
	assert.Equal(t, int64(5), all[2].Timestamp)
}

func TestTradeRingGetLatest(t *testing.T) {
	tr := NewTradeRing(10)
	for ts := int64(1); ts <= 6; ts++ {
		tr.Append(mkTrade(ts))
	}

	t.Run("subset in chronological order", func(t *testing.T) {
		latest := tr.GetLatest(3)
		require.Len(t, latest, 3)
		assert.Equal(t, int64(4), latest[0].Timestamp)
		assert.Equal(t, int64(6), latest[2].Timestamp)
	})

	t.Run("more than stored returns everything", func(t *testing.T) {
		assert.Len(t, tr.GetLatest(100), 6)
	})

	t.Run("zero and negative return empty", func(t *testing.T) {
		assert.Empty(t, tr.GetLatest(0))
		assert.Empty(t, tr.GetLatest(-1))
	})
}

func TestTradeRingGetSince(t *testing.T) {
	tr := NewTradeRing(4)
	// Wrap once so the logical order differs from the physical one
	for ts := int64(10); ts <= 60; ts += 10 {
		tr.Append(mkTrade(ts))
	}
	// Ring now holds 30, 40, 50, 60

	t.Run("strictly greater than cutoff", func(t *testing.T) {
		since := tr.GetSince(40)
		require.Len(t, since, 2)
		assert.Equal(t, int64(50), since[0].Timestamp)
		assert.Equal(t, int64(60), since[1].Timestamp)
	})

	t.Run("cutoff before everything returns all", func(t *testing.T) {
		assert.Len(t, tr.GetSince(0), 4)
	})

	t.Run("cutoff at newest returns empty", func(t *testing.T) {
		assert.Empty(t, tr.GetSince(60))
	})

	t.Run("empty ring returns empty", func(t *testing.T) {
		assert.Empty(t, NewTradeRing(4).GetSince(0))
	})
}

func TestTradeRingResize(t *testing.T) {
	t.Run("shrink keeps the newest trades", func(t *testing.T) {
		tr := NewTradeRing(5)
		for ts := int64(1); ts <= 5; ts++ {
			tr.Append(mkTrade(ts))
		}

		tr.Resize(2)

		assert.Equal(t, 2, tr.Capacity())
		all := tr.GetAll()
		require.Len(t, all, 2)
		assert.Equal(t, int64(4), all[0].Timestamp)
		assert.Equal(t, int64(5), all[1].Timestamp)
	})

	t.Run("grow preserves contents and accepts more", func(t *testing.T) {
		tr := NewTradeRing(2)
		tr.Append(mkTrade(1))
		tr.Append(mkTrade(2))

		tr.Resize(4)
		tr.Append(mkTrade(3))

		assert.Equal(t, 4, tr.Capacity())
		all := tr.GetAll()
		require.Len(t, all, 3)
		assert.Equal(t, int64(1), all[0].Timestamp)
		assert.Equal(t, int64(3), all[2].Timestamp)
	})

	t.Run("invalid capacity is a no-op", func(t *testing.T) {
		tr := NewTradeRing(3)
		tr.Append(mkTrade(1))
		tr.Resize(0)
		assert.Equal(t, 3, tr.Capacity())
		assert.Equal(t, 1, tr.Size())
	})
}

func TestTradeRingClear(t *testing.T) {
	tr := NewTradeRing(3)
	for ts := int64(1); ts <= 3; ts++ {
		tr.Append(mkTrade(ts))
	}

	tr.Clear()

	assert.Equal(t, 0, tr.Size())
	assert.Empty(t, tr.GetAll())

	// Reusable after clear
	tr.Append(mkTrade(9))
	require.Equal(t, 1, tr.Size())
	assert.Equal(t, int64(9), tr.GetAll()[0].Timestamp)
}

func TestTradeRingDefaultCapacity(t *testing.T) {
	tr := NewTradeRing(0)
	assert.Equal(t, 1000, tr.Capacity())
}
