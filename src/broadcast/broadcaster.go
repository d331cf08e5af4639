package broadcast

import (
	"context"
	"fmt"
	"sync"
	"time"

	"market-simulator/src/helpers"
	"market-simulator/src/interfaces"
	"market-simulator/src/logger"
	"market-simulator/src/models"
)

const (
	journalSaveRetries = 3
	journalRetryDelay  = 50 * time.Millisecond
)

// -----------------------------------------------------------------------------
// Broadcaster drives the periodic fan-out cycle. Every interval it pushes one
// snapshot per symbol plus the trades executed since the previous cycle. A
// failing symbol never takes the cycle down for the others.
// -----------------------------------------------------------------------------

type Broadcaster struct {
	market interfaces.IMarketEngine

	// Resolved once at construction so the cycle never probes capabilities
	feed interfaces.IIncrementalTradeFeed

	sink        interfaces.IEventSink
	cursors     *CursorTracker
	journal     interfaces.ITradeJournal
	factChecker interfaces.IFactChecker

	interval          time.Duration
	maxTradesPerCycle int

	logger       *logger.Logger
	errorHandler *helpers.ErrorHandler
}

// -----------------------------------------------------------------------------

// NewBroadcaster wires the cycle. journal and factChecker may be nil, which
// disables journaling and validation respectively
func NewBroadcaster(
	cfg models.MBroadcastConfig,
	market interfaces.IMarketEngine,
	sink interfaces.IEventSink,
	cursors *CursorTracker,
	journal interfaces.ITradeJournal,
	factChecker interfaces.IFactChecker,
	log *logger.Logger,
) *Broadcaster {
	interval := time.Duration(cfg.IntervalSeconds * float64(time.Second))
	if interval <= 0 {
		interval = time.Second
	}

	maxTrades := cfg.MaxTradesPerCycle
	if maxTrades <= 0 {
		maxTrades = 50
	}

	feed, _ := market.(interfaces.IIncrementalTradeFeed)

	return &Broadcaster{
		market:            market,
		feed:              feed,
		sink:              sink,
		cursors:           cursors,
		journal:           journal,
		factChecker:       factChecker,
		interval:          interval,
		maxTradesPerCycle: maxTrades,
		logger:            log,
		errorHandler:      helpers.NewErrorHandler(),
	}
}

// -----------------------------------------------------------------------------

// Start launches the broadcast loop until ctx is cancelled
func (b *Broadcaster) Start(ctx context.Context, wg *sync.WaitGroup) error {
	wg.Add(1)
	go b.run(ctx, wg)
	return nil
}

// -----------------------------------------------------------------------------

func (b *Broadcaster) run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	b.logger.Info("Broadcaster started (interval: %v)", b.interval)
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Broadcaster stopped")
			return
		case <-ticker.C:
			b.Cycle()
		}
	}
}

// -----------------------------------------------------------------------------

// Cycle runs one broadcast pass over every simulated symbol
func (b *Broadcaster) Cycle() {
	if b.market == nil {
		return
	}

	for _, symbol := range b.market.Symbols() {
		if err := b.broadcastSymbol(symbol); err != nil {
			b.errorHandler.Handle(err, fmt.Sprintf("broadcast cycle for %s", symbol))
		}
	}
}

// -----------------------------------------------------------------------------

// broadcastSymbol pushes the snapshot and the new trades of one symbol
func (b *Broadcaster) broadcastSymbol(symbol string) error {
	snapshot, err := b.market.GetSnapshot(symbol)
	if err != nil {
		return err
	}

	if b.factChecker != nil {
		b.factChecker.CheckSnapshot(snapshot)
	}
	b.sink.BroadcastEvent(models.NewSnapshotEvent(symbol, snapshot))

	since := b.cursors.Get(symbol)
	trades, err := b.fetchNewTrades(symbol, since)
	if err != nil {
		return err
	}
	if len(trades) == 0 {
		return nil
	}

	// The cursor covers every new trade, even the ones the per-cycle cap
	// keeps off the wire. A trade missed this way is gone for good
	maxTs := since
	for _, t := range trades {
		if t.Timestamp > maxTs {
			maxTs = t.Timestamp
		}
	}
	b.cursors.Advance(symbol, maxTs)

	emit := trades
	if len(emit) > b.maxTradesPerCycle {
		emit = emit[len(emit)-b.maxTradesPerCycle:]
	}

	journalRows := make([]models.MSymbolTrade, 0, len(emit))
	for i := range emit {
		trade := emit[i]
		if b.factChecker != nil {
			b.factChecker.CheckTrade(symbol, &trade)
		}
		b.sink.BroadcastEvent(models.NewTradeEvent(symbol, &trade))
		journalRows = append(journalRows, models.MSymbolTrade{Symbol: symbol, Trade: trade})
	}

	// A journal failure only costs the journal rows, never the broadcast
	if b.journal != nil {
		_, err := helpers.RetryWithBackoff("journal save", journalSaveRetries, journalRetryDelay, func() (interface{}, error) {
			return nil, b.journal.SaveTradesBulk(journalRows)
		})
		if err != nil {
			b.errorHandler.Handle(err, "journal save")
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// fetchNewTrades prefers the incremental feed and falls back to filtering the
// full log
func (b *Broadcaster) fetchNewTrades(symbol string, since int64) ([]models.MTrade, error) {
	if b.feed != nil {
		return b.feed.GetTradesSince(symbol, since)
	}

	all, err := b.market.GetTrades(symbol)
	if err != nil {
		return nil, err
	}

	var result []models.MTrade
	for _, t := range all {
		if t.Timestamp > since {
			result = append(result, t)
		}
	}
	return result, nil
}
