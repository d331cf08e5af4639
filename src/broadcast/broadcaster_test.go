package broadcast

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"market-simulator/src/helpers"
	"market-simulator/src/logger"
	"market-simulator/src/models"
	"market-simulator/src/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

// fakeMarket serves canned snapshots and trade logs. It deliberately does NOT
// implement GetTradesSince, exercising the filter fallback
type fakeMarket struct {
	mu        sync.Mutex
	symbols   []string
	snapshots map[string]*models.MSnapshot
	trades    map[string][]models.MTrade
	snapErrs  map[string]error
}

func newFakeMarket(symbols ...string) *fakeMarket {
	m := &fakeMarket{
		symbols:   symbols,
		snapshots: make(map[string]*models.MSnapshot),
		trades:    make(map[string][]models.MTrade),
		snapErrs:  make(map[string]error),
	}
	for _, symbol := range symbols {
		m.snapshots[symbol] = &models.MSnapshot{
			Symbol:    symbol,
			Price:     100.0,
			Bid:       99.95,
			Ask:       100.05,
			Timestamp: time.Now().UnixMilli(),
		}
	}
	return m
}

func (m *fakeMarket) addTrade(symbol string, ts int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades[symbol] = append(m.trades[symbol], models.MTrade{
		BuyOrderID:  fmt.Sprintf("b-%d", ts),
		SellOrderID: fmt.Sprintf("s-%d", ts),
		Price:       100.0,
		Quantity:    10,
		Timestamp:   ts,
	})
}

func (m *fakeMarket) Symbols() []string { return m.symbols }

func (m *fakeMarket) GetSnapshot(symbol string) (*models.MSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.snapErrs[symbol]; err != nil {
		return nil, err
	}
	snap, ok := m.snapshots[symbol]
	if !ok {
		return nil, helpers.NewNotFoundError("Symbol %s not found", symbol)
	}
	return snap, nil
}

func (m *fakeMarket) GetAllSnapshots() map[string]*models.MSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshots
}

func (m *fakeMarket) GetTrades(symbol string) ([]models.MTrade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.MTrade(nil), m.trades[symbol]...), nil
}

func (m *fakeMarket) RunSimulation(ctx context.Context, config *models.MSimulationConfig) (*models.MSimulationResults, error) {
	return &models.MSimulationResults{}, nil
}

// incrementalMarket adds the incremental feed on top of fakeMarket
type incrementalMarket struct {
	*fakeMarket
	sinceCalls int
}

func (m *incrementalMarket) GetTradesSince(symbol string, since int64) ([]models.MTrade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sinceCalls++
	var result []models.MTrade
	for _, trade := range m.trades[symbol] {
		if trade.Timestamp > since {
			result = append(result, trade)
		}
	}
	return result, nil
}

// -----------------------------------------------------------------------------

// fakeSink records every broadcast event
type fakeSink struct {
	mu     sync.Mutex
	events []*models.MEvent
}

func (s *fakeSink) BroadcastEvent(event *models.MEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *fakeSink) byType(eventType string) []*models.MEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*models.MEvent
	for _, event := range s.events {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}

func (s *fakeSink) count(eventType string) int {
	return len(s.byType(eventType))
}

// -----------------------------------------------------------------------------

// fakeJournal records saved rows and can be told to fail, either permanently
// via err or for the next failures calls only
type fakeJournal struct {
	mu       sync.Mutex
	rows     []models.MSymbolTrade
	err      error
	failures int
}

func (j *fakeJournal) Initialize() error { return nil }

func (j *fakeJournal) SaveTradesBulk(rows []models.MSymbolTrade) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.failures > 0 {
		j.failures--
		return fmt.Errorf("transient journal failure")
	}
	if j.err != nil {
		return j.err
	}
	j.rows = append(j.rows, rows...)
	return nil
}

func (j *fakeJournal) RecentTrades(symbol string, limit int) ([]models.MTrade, error) {
	return nil, nil
}

func (j *fakeJournal) CleanupOldData() error { return nil }
func (j *fakeJournal) Close() error          { return nil }

func (j *fakeJournal) saved() []models.MSymbolTrade {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]models.MSymbolTrade(nil), j.rows...)
}

// -----------------------------------------------------------------------------

func testConfig(maxTrades int) models.MBroadcastConfig {
	return models.MBroadcastConfig{IntervalSeconds: 0.01, MaxTradesPerCycle: maxTrades}
}

func quietLogger() *logger.Logger {
	return logger.NewLogger("error", "broadcast-test")
}

// -----------------------------------------------------------------------------

func TestCycleBroadcastsSnapshotsAndTrades(t *testing.T) {
	market := &incrementalMarket{fakeMarket: newFakeMarket("AAPL", "GOOGL")}
	market.addTrade("AAPL", 100)
	market.addTrade("AAPL", 200)
	market.addTrade("GOOGL", 150)

	sink := &fakeSink{}
	journal := &fakeJournal{}
	cursors := NewCursorTracker(market.Symbols())

	b := NewBroadcaster(testConfig(50), market, sink, cursors, journal, nil, quietLogger())
	b.Cycle()

	// One snapshot per symbol
	assert.Equal(t, 2, sink.count(models.EventSnapshot))

	tradeEvents := sink.byType(models.EventTrade)
	require.Len(t, tradeEvents, 3)

	var aapl, googl []int64
	for _, event := range tradeEvents {
		switch event.Symbol {
		case "AAPL":
			aapl = append(aapl, event.Trade.Timestamp)
		case "GOOGL":
			googl = append(googl, event.Trade.Timestamp)
		}
	}
	assert.Equal(t, []int64{100, 200}, aapl)
	assert.Equal(t, []int64{150}, googl)

	// Each cursor lands on its own symbol's newest trade
	assert.Equal(t, int64(200), cursors.Get("AAPL"))
	assert.Equal(t, int64(150), cursors.Get("GOOGL"))

	assert.Len(t, journal.saved(), 3)

	// A second cycle with no new trades repeats snapshots only
	b.Cycle()
	assert.Equal(t, 3, sink.count(models.EventTrade))
	assert.Equal(t, 4, sink.count(models.EventSnapshot))
}

func TestCycleDeduplicatesAcrossCycles(t *testing.T) {
	market := &incrementalMarket{fakeMarket: newFakeMarket("AAPL")}
	market.addTrade("AAPL", 10)
	market.addTrade("AAPL", 20)

	sink := &fakeSink{}
	cursors := NewCursorTracker(market.Symbols())
	b := NewBroadcaster(testConfig(50), market, sink, cursors, nil, nil, quietLogger())

	b.Cycle()
	assert.Equal(t, 2, sink.count(models.EventTrade))

	// Nothing new: snapshots repeat, trades do not
	b.Cycle()
	assert.Equal(t, 2, sink.count(models.EventTrade))
	assert.Equal(t, 2, sink.count(models.EventSnapshot))

	market.addTrade("AAPL", 30)
	b.Cycle()

	tradeEvents := sink.byType(models.EventTrade)
	require.Len(t, tradeEvents, 3)
	assert.Equal(t, int64(30), tradeEvents[2].Trade.Timestamp)
}

func TestCycleCapsEmissionButAdvancesCursor(t *testing.T) {
	market := &incrementalMarket{fakeMarket: newFakeMarket("AAPL")}
	for ts := int64(1); ts <= 5; ts++ {
		market.addTrade("AAPL", ts)
	}

	sink := &fakeSink{}
	journal := &fakeJournal{}
	cursors := NewCursorTracker(market.Symbols())
	b := NewBroadcaster(testConfig(2), market, sink, cursors, journal, nil, quietLogger())

	b.Cycle()

	// Only the newest two go on the wire
	tradeEvents := sink.byType(models.EventTrade)
	require.Len(t, tradeEvents, 2)
	assert.Equal(t, int64(4), tradeEvents[0].Trade.Timestamp)
	assert.Equal(t, int64(5), tradeEvents[1].Trade.Timestamp)

	// The skipped trades are never revisited
	assert.Equal(t, int64(5), cursors.Get("AAPL"))
	b.Cycle()
	assert.Equal(t, 2, sink.count(models.EventTrade))

	// The journal only sees what went on the wire
	assert.Len(t, journal.saved(), 2)
}

func TestCycleFallbackWithoutIncrementalFeed(t *testing.T) {
	market := newFakeMarket("AAPL")
	market.addTrade("AAPL", 1)
	market.addTrade("AAPL", 2)

	sink := &fakeSink{}
	cursors := NewCursorTracker(market.Symbols())
	b := NewBroadcaster(testConfig(50), market, sink, cursors, nil, nil, quietLogger())

	b.Cycle()
	assert.Equal(t, 2, sink.count(models.EventTrade))

	// The fallback still honors the cursor
	b.Cycle()
	assert.Equal(t, 2, sink.count(models.EventTrade))
}

func TestCyclePrefersIncrementalFeed(t *testing.T) {
	market := &incrementalMarket{fakeMarket: newFakeMarket("AAPL")}
	market.addTrade("AAPL", 1)

	sink := &fakeSink{}
	cursors := NewCursorTracker(market.Symbols())
	b := NewBroadcaster(testConfig(50), market, sink, cursors, nil, nil, quietLogger())

	b.Cycle()

	market.mu.Lock()
	calls := market.sinceCalls
	market.mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestCycleIsolatesFailingSymbols(t *testing.T) {
	market := &incrementalMarket{fakeMarket: newFakeMarket("BAD", "GOOD")}
	market.snapErrs["BAD"] = fmt.Errorf("snapshot unavailable")
	market.addTrade("GOOD", 1)

	sink := &fakeSink{}
	cursors := NewCursorTracker(market.Symbols())
	b := NewBroadcaster(testConfig(50), market, sink, cursors, nil, nil, quietLogger())

	b.Cycle()

	// BAD contributed nothing, GOOD went through untouched
	snapshots := sink.byType(models.EventSnapshot)
	require.Len(t, snapshots, 1)
	assert.Equal(t, "GOOD", snapshots[0].Symbol)
	assert.Equal(t, 1, sink.count(models.EventTrade))
}

func TestCycleToleratesJournalFailure(t *testing.T) {
	market := &incrementalMarket{fakeMarket: newFakeMarket("AAPL")}
	market.addTrade("AAPL", 1)

	sink := &fakeSink{}
	journal := &fakeJournal{err: fmt.Errorf("disk full")}
	cursors := NewCursorTracker(market.Symbols())
	b := NewBroadcaster(testConfig(50), market, sink, cursors, journal, nil, quietLogger())

	b.Cycle()

	assert.Equal(t, 1, sink.count(models.EventTrade))
	assert.Equal(t, int64(1), cursors.Get("AAPL"))
}

func TestCycleRetriesTransientJournalFailure(t *testing.T) {
	market := &incrementalMarket{fakeMarket: newFakeMarket("AAPL")}
	market.addTrade("AAPL", 1)

	sink := &fakeSink{}
	journal := &fakeJournal{failures: 1}
	cursors := NewCursorTracker(market.Symbols())
	b := NewBroadcaster(testConfig(50), market, sink, cursors, journal, nil, quietLogger())

	b.Cycle()

	// The first attempt failed, the retry landed the rows
	assert.Len(t, journal.saved(), 1)
	assert.Equal(t, 1, sink.count(models.EventTrade))
}

func TestCycleFeedsFactChecker(t *testing.T) {
	market := &incrementalMarket{fakeMarket: newFakeMarket("AAPL")}
	market.addTrade("AAPL", 1)
	market.addTrade("AAPL", 2)

	sink := &fakeSink{}
	checker := validation.NewFactChecker(quietLogger())
	cursors := NewCursorTracker(market.Symbols())
	b := NewBroadcaster(testConfig(50), market, sink, cursors, nil, checker, quietLogger())

	b.Cycle()

	// One snapshot check plus one per trade
	stats := checker.Stats()
	assert.Equal(t, int64(3), stats.ChecksPerformed)
	assert.Equal(t, int64(3), stats.ChecksPassed)
}

func TestCycleWithNilMarket(t *testing.T) {
	b := NewBroadcaster(testConfig(50), nil, &fakeSink{}, NewCursorTracker(nil), nil, nil, quietLogger())
	assert.NotPanics(t, func() { b.Cycle() })
}

// -----------------------------------------------------------------------------

func TestStartRunsUntilCancelled(t *testing.T) {
	market := &incrementalMarket{fakeMarket: newFakeMarket("AAPL")}
	sink := &fakeSink{}
	cursors := NewCursorTracker(market.Symbols())
	b := NewBroadcaster(testConfig(50), market, sink, cursors, nil, nil, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	require.NoError(t, b.Start(ctx, &wg))

	// Wait for at least one tick to land
	deadline := time.Now().Add(2 * time.Second)
	for sink.count(models.EventSnapshot) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Greater(t, sink.count(models.EventSnapshot), 0)

	cancel()
	wg.Wait()

	// The loop is down, no more ticks
	settled := sink.count(models.EventSnapshot)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, sink.count(models.EventSnapshot))
}
