package validation

import (
	"math"
	"sync"

	"market-simulator/src/analysis/core"
	"market-simulator/src/logger"
	"market-simulator/src/models"
)

// -----------------------------------------------------------------------------
// FactChecker sanity-checks the data leaving the broadcast cycle and keeps
// running counters exposed over the API. A failed check never blocks a
// broadcast, it only counts and logs.
// -----------------------------------------------------------------------------

const (
	// Trades whose price sits this many standard deviations away from the
	// symbol's running mean count as failed
	priceZScoreLimit = 6.0

	// Trades this many times larger than the running average quantity count
	// as failed
	quantityAnomalyLimit = 20.0
)

type FactChecker struct {
	mu sync.RWMutex

	performed int64
	passed    int64
	failed    int64

	priceStats    map[string]*runningStats
	quantityStats runningStats
	logger        *logger.Logger
}

// -----------------------------------------------------------------------------

// runningStats tracks mean and variance incrementally (Welford)
type runningStats struct {
	count int64
	mean  float64
	m2    float64
}

func (s *runningStats) update(x float64) {
	s.count++
	delta := x - s.mean
	s.mean += delta / float64(s.count)
	s.m2 += delta * (x - s.mean)
}

func (s *runningStats) std() float64 {
	if s.count < 2 {
		return 0
	}
	return math.Sqrt(s.m2 / float64(s.count))
}

// -----------------------------------------------------------------------------

// NewFactChecker creates an empty checker
func NewFactChecker(log *logger.Logger) *FactChecker {
	return &FactChecker{
		priceStats: make(map[string]*runningStats),
		logger:     log,
	}
}

// -----------------------------------------------------------------------------

// CheckTrade validates one trade before broadcast
func (f *FactChecker) CheckTrade(symbol string, trade *models.MTrade) bool {
	if trade == nil {
		f.RecordCheck(false)
		return false
	}

	passed := trade.Price > 0 &&
		trade.Quantity > 0 &&
		trade.Timestamp > 0 &&
		trade.BuyOrderID != "" &&
		trade.SellOrderID != ""

	f.mu.Lock()
	if passed {
		stats, ok := f.priceStats[symbol]
		if !ok {
			stats = &runningStats{}
			f.priceStats[symbol] = stats
		}

		z := core.CalculateZScore(trade.Price, stats.mean, stats.std())
		if stats.count > 10 && math.Abs(z) > priceZScoreLimit {
			passed = false
		}

		ratio := core.CalculateAnomalyRatio(float64(trade.Quantity), f.quantityStats.mean)
		if f.quantityStats.count > 10 && ratio > quantityAnomalyLimit {
			passed = false
		}

		stats.update(trade.Price)
		f.quantityStats.update(float64(trade.Quantity))
	}
	f.mu.Unlock()

	if !passed {
		f.logger.Warning("Trade failed fact check: %s price=%.2f quantity=%d", symbol, trade.Price, trade.Quantity)
	}

	f.RecordCheck(passed)
	return passed
}

// -----------------------------------------------------------------------------

// CheckSnapshot validates one market snapshot before broadcast
func (f *FactChecker) CheckSnapshot(snapshot *models.MSnapshot) bool {
	if snapshot == nil {
		f.RecordCheck(false)
		return false
	}

	passed := snapshot.Price > 0 &&
		snapshot.Bid > 0 &&
		snapshot.Ask >= snapshot.Bid &&
		snapshot.Volume >= 0 &&
		snapshot.TradeCount >= 0 &&
		snapshot.Timestamp > 0

	if !passed {
		f.logger.Warning("Snapshot failed fact check: %s price=%.2f bid=%.2f ask=%.2f", snapshot.Symbol, snapshot.Price, snapshot.Bid, snapshot.Ask)
	}

	f.RecordCheck(passed)
	return passed
}

// -----------------------------------------------------------------------------

// CheckResults validates the internal consistency of a finished run's results.
// Symbols that never traded report an all-zero summary, which passes
func (f *FactChecker) CheckResults(results *models.MSimulationResults) bool {
	if results == nil {
		f.RecordCheck(false)
		return false
	}

	passed := results.Steps >= 0 &&
		results.TotalTrades >= 0 &&
		results.DurationSeconds >= 0

	var tradeSum int64
	for symbol, summary := range results.Symbols {
		if summary.High < summary.Low ||
			summary.Open > summary.High || summary.Open < summary.Low ||
			summary.Close > summary.High || summary.Close < summary.Low ||
			summary.Volume < 0 || summary.Trades < 0 {
			f.logger.Warning("Results failed fact check: %s open=%.2f high=%.2f low=%.2f close=%.2f", symbol, summary.Open, summary.High, summary.Low, summary.Close)
			passed = false
		}
		tradeSum += summary.Trades
	}

	if passed && tradeSum != results.TotalTrades {
		f.logger.Warning("Results failed fact check: %s trade counts disagree (%d vs %d)", results.SimulationID, tradeSum, results.TotalTrades)
		passed = false
	}

	f.RecordCheck(passed)
	return passed
}

// -----------------------------------------------------------------------------

// RecordCheck counts one validation outcome
func (f *FactChecker) RecordCheck(passed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.performed++
	if passed {
		f.passed++
	} else {
		f.failed++
	}
}

// -----------------------------------------------------------------------------

// Stats returns the running totals
func (f *FactChecker) Stats() models.MFactCheckStats {
	f.mu.RLock()
	defer f.mu.RUnlock()

	accuracy := 0.0
	if f.performed > 0 {
		accuracy = float64(f.passed) / float64(f.performed)
	}

	return models.MFactCheckStats{
		ChecksPerformed: f.performed,
		ChecksPassed:    f.passed,
		ChecksFailed:    f.failed,
		Accuracy:        accuracy,
	}
}
