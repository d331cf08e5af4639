package engine

import (
	"math/rand"
	"sync"
	"time"

	"market-simulator/src/helpers"
	"market-simulator/src/logger"
	"market-simulator/src/models"
	"market-simulator/src/utils"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// MarketEngine simulates order flow for a set of symbols. Prices follow a
// bounded random walk in decimal arithmetic, executed trades land in
// per-symbol ring buffers that the broadcast cycle drains.
// -----------------------------------------------------------------------------

const (
	defaultInitialPrice   = 100.0
	defaultTickVolatility = 0.002
	maxTradesPerStep      = 3
	maxTradeQuantity      = 100
)

var minPrice = decimal.NewFromFloat(0.01)

type MarketEngine struct {
	mu sync.RWMutex

	symbols     []string
	prices      map[string]decimal.Decimal
	tradeLogs   map[string]*utils.TradeRing
	volumes     map[string]int64
	tradeCounts map[string]int64

	tickVolatility float64
	timeScale      float64
	logCapacity    int
	calendar       *utils.TradingCalendar
	rng            *rand.Rand
	logger         *logger.Logger
}

// -----------------------------------------------------------------------------

// NewMarketEngine creates an engine pre-seeded with the configured symbols
func NewMarketEngine(cfg models.MEngineConfig, log *logger.Logger) *MarketEngine {
	tickVolatility := cfg.TickVolatility
	if tickVolatility <= 0 {
		tickVolatility = defaultTickVolatility
	}

	timeScale := cfg.TimeScale
	if timeScale <= 0 {
		timeScale = 1.0
	}

	logCapacity := cfg.TradeLogCapacity
	if logCapacity <= 0 {
		logCapacity = helpers.RecommendedTradeLogCapacity(len(cfg.Symbols))
	}

	e := &MarketEngine{
		prices:         make(map[string]decimal.Decimal),
		tradeLogs:      make(map[string]*utils.TradeRing),
		volumes:        make(map[string]int64),
		tradeCounts:    make(map[string]int64),
		tickVolatility: tickVolatility,
		timeScale:      timeScale,
		logCapacity:    logCapacity,
		calendar:       utils.GetCalendar(cfg.CalendarMIC),
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:         log,
	}

	for _, symbol := range cfg.Symbols {
		price := defaultInitialPrice
		if p, ok := cfg.InitialPrices[symbol]; ok {
			price = p
		}
		e.addSymbol(symbol, price)
	}

	return e
}

// -----------------------------------------------------------------------------

// addSymbol registers a symbol at the given starting price. Caller must not
// hold the lock
func (e *MarketEngine) addSymbol(symbol string, price float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.prices[symbol]; exists {
		return
	}

	e.symbols = append(e.symbols, symbol)
	e.prices[symbol] = decimal.NewFromFloat(price).Round(2)
	e.tradeLogs[symbol] = utils.NewTradeRing(e.logCapacity)
	e.logger.Info("Symbol %s added at %.2f", symbol, price)
}

// -----------------------------------------------------------------------------

// EnsureSymbols adds any symbols the engine does not simulate yet, at the
// default starting price
func (e *MarketEngine) EnsureSymbols(symbols []string) {
	for _, symbol := range symbols {
		e.mu.RLock()
		_, exists := e.prices[symbol]
		e.mu.RUnlock()

		if !exists {
			e.addSymbol(symbol, defaultInitialPrice)
		}
	}
}

// -----------------------------------------------------------------------------

// Symbols returns the simulated symbols in registration order
func (e *MarketEngine) Symbols() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	result := make([]string, len(e.symbols))
	copy(result, e.symbols)
	return result
}

// -----------------------------------------------------------------------------

// GetSnapshot returns the current market state of one symbol
func (e *MarketEngine) GetSnapshot(symbol string) (*models.MSnapshot, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	price, ok := e.prices[symbol]
	if !ok {
		return nil, helpers.NewNotFoundError("Symbol %s not found", symbol)
	}

	return e.snapshotLocked(symbol, price), nil
}

// -----------------------------------------------------------------------------

// GetAllSnapshots returns the current market state of every symbol
func (e *MarketEngine) GetAllSnapshots() map[string]*models.MSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	result := make(map[string]*models.MSnapshot, len(e.symbols))
	for _, symbol := range e.symbols {
		result[symbol] = e.snapshotLocked(symbol, e.prices[symbol])
	}
	return result
}

// -----------------------------------------------------------------------------

// snapshotLocked builds one snapshot. Caller holds at least the read lock
func (e *MarketEngine) snapshotLocked(symbol string, price decimal.Decimal) *models.MSnapshot {
	now := time.Now()

	// Synthetic quote spread of 0.1% around the last price
	halfSpread := decimal.NewFromFloat(0.0005)
	bid := price.Mul(decimal.NewFromInt(1).Sub(halfSpread)).Round(2)
	ask := price.Mul(decimal.NewFromInt(1).Add(halfSpread)).Round(2)

	return &models.MSnapshot{
		Symbol:     symbol,
		Price:      price.InexactFloat64(),
		Bid:        bid.InexactFloat64(),
		Ask:        ask.InexactFloat64(),
		Volume:     e.volumes[symbol],
		TradeCount: e.tradeCounts[symbol],
		Session:    e.calendar.Session(now),
		Timestamp:  now.UnixMilli(),
	}
}

// -----------------------------------------------------------------------------

// GetTrades returns the full buffered trade log of one symbol, oldest first
func (e *MarketEngine) GetTrades(symbol string) ([]models.MTrade, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ring, ok := e.tradeLogs[symbol]
	if !ok {
		return nil, helpers.NewNotFoundError("Symbol %s not found", symbol)
	}
	return ring.GetAll(), nil
}

// -----------------------------------------------------------------------------

// GetTradesSince returns trades newer than the given timestamp, oldest first
func (e *MarketEngine) GetTradesSince(symbol string, since int64) ([]models.MTrade, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ring, ok := e.tradeLogs[symbol]
	if !ok {
		return nil, helpers.NewNotFoundError("Symbol %s not found", symbol)
	}
	return ring.GetSince(since), nil
}
