package simulation

import (
	"context"
	"sync"
	"time"

	"market-simulator/src/helpers"
	"market-simulator/src/interfaces"
	"market-simulator/src/logger"
	"market-simulator/src/models"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Controller manages concurrent simulation runs. Each run owns a cancellable
// context and a background goroutine, the controller archives terminal runs
// into a bounded history. A run reaches exactly one terminal outcome even
// when a manual stop races natural completion.
// -----------------------------------------------------------------------------

type runState struct {
	id        string
	config    *models.MSimulationConfig
	startTime time.Time
	status    string
	cancel    context.CancelFunc
	done      chan struct{}
}

type Controller struct {
	mu      sync.Mutex
	active  map[string]*runState
	history []models.MHistoryEntry

	historyLimit int
	defaults     models.MSimulationDefaults

	market      interfaces.IMarketEngine
	sink        interfaces.IEventSink
	factChecker interfaces.IFactChecker
	logger      *logger.Logger
	wg          sync.WaitGroup
}

// -----------------------------------------------------------------------------

// NewController creates a controller with no active runs. factChecker may be
// nil, which disables results validation
func NewController(
	defaults models.MSimulationDefaults,
	market interfaces.IMarketEngine,
	sink interfaces.IEventSink,
	factChecker interfaces.IFactChecker,
	log *logger.Logger,
) *Controller {
	historyLimit := defaults.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = 50
	}

	return &Controller{
		active:       make(map[string]*runState),
		historyLimit: historyLimit,
		defaults:     defaults,
		market:       market,
		sink:         sink,
		factChecker:  factChecker,
		logger:       log,
	}
}

// -----------------------------------------------------------------------------

// SetSink attaches the event sink after construction. The controller and the
// server reference each other, so one side is wired late. Call before the
// first Start
func (c *Controller) SetSink(sink interfaces.IEventSink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sink = sink
}

// -----------------------------------------------------------------------------

// Start launches a new run in the background and announces it
func (c *Controller) Start(config *models.MSimulationConfig) (*models.MSimulationResponse, error) {
	if c.market == nil {
		return nil, helpers.NewEngineUnavailableError()
	}

	if config == nil {
		config = &models.MSimulationConfig{}
	}
	config.ApplyDefaults(c.defaults)

	if config.Duration <= 0 {
		return nil, helpers.NewValidationError("duration must be greater than 0")
	}
	if config.TimeStep <= 0 {
		return nil, helpers.NewValidationError("time_step must be greater than 0")
	}

	simulationID := "sim_" + uuid.New().String()
	ctx, cancel := context.WithCancel(context.Background())

	run := &runState{
		id:        simulationID,
		config:    config,
		startTime: time.Now(),
		status:    models.SimulationRunning,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	c.mu.Lock()
	c.active[simulationID] = run
	c.mu.Unlock()

	c.wg.Add(1)
	go c.runSimulation(ctx, run)

	if c.sink != nil {
		c.sink.BroadcastEvent(models.NewSimulationStartedEvent(simulationID, config))
	}
	c.logger.Info("Simulation %s started (duration: %.0fs, symbols: %d)", simulationID, config.Duration, len(config.Symbols))

	return &models.MSimulationResponse{
		SimulationID: simulationID,
		Status:       models.SimulationRunning,
		StartTime:    unixSeconds(run.startTime),
		Duration:     config.Duration,
		Agents:       config.Agents,
	}, nil
}

// -----------------------------------------------------------------------------

// runSimulation drives one run to its terminal state and archives it
func (c *Controller) runSimulation(ctx context.Context, run *runState) {
	defer c.wg.Done()
	defer close(run.done)

	results, err := c.market.RunSimulation(ctx, run.config)

	c.mu.Lock()

	// A manual stop may have won the race against natural completion. The
	// stop already removed the run and announced it, nothing left to do
	if run.status == models.SimulationStopped {
		c.mu.Unlock()
		return
	}

	delete(c.active, run.id)

	if err != nil {
		run.status = models.SimulationError
		c.appendHistoryLocked(models.MHistoryEntry{
			SimulationID: run.id,
			StartedAt:    unixSeconds(run.startTime),
			Duration:     run.config.Duration,
			Agents:       run.config.Agents,
			Results:      nil,
			Error:        err.Error(),
		})
		c.mu.Unlock()

		c.logger.Error("Simulation %s error: %v", run.id, err)
		return
	}

	run.status = models.SimulationCompleted
	results.SimulationID = run.id
	c.appendHistoryLocked(models.MHistoryEntry{
		SimulationID: run.id,
		StartedAt:    unixSeconds(run.startTime),
		Duration:     run.config.Duration,
		Agents:       run.config.Agents,
		Results:      results,
	})
	c.mu.Unlock()

	// An implausible result is tallied and logged, never withheld
	if c.factChecker != nil {
		c.factChecker.CheckResults(results)
	}
	if c.sink != nil {
		c.sink.BroadcastEvent(models.NewSimulationCompletedEvent(run.id, results))
	}
	c.logger.Info("Simulation %s completed", run.id)
}

// -----------------------------------------------------------------------------

// Stop cancels one active run. Stopped runs are not archived
func (c *Controller) Stop(simulationID string) error {
	c.mu.Lock()
	run, ok := c.active[simulationID]
	if !ok {
		c.mu.Unlock()
		return helpers.NewNotFoundError("Simulation %s not found", simulationID)
	}

	run.status = models.SimulationStopped
	delete(c.active, simulationID)
	c.mu.Unlock()

	run.cancel()

	if c.sink != nil {
		c.sink.BroadcastEvent(models.NewSimulationStoppedEvent(simulationID))
	}
	c.logger.Info("Simulation %s stopped", simulationID)
	return nil
}

// -----------------------------------------------------------------------------

// Status reports one active run. Duration is the elapsed time in seconds
func (c *Controller) Status(simulationID string) (*models.MSimulationStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	run, ok := c.active[simulationID]
	if !ok {
		return nil, helpers.NewNotFoundError("Simulation %s not found", simulationID)
	}

	return &models.MSimulationStatus{
		SimulationID: run.id,
		Status:       run.status,
		StartTime:    unixSeconds(run.startTime),
		Duration:     time.Since(run.startTime).Seconds(),
		Config:       *run.config,
	}, nil
}

// -----------------------------------------------------------------------------

// History returns the most recent archived runs, newest last. A non-positive
// limit falls back to the default of 50
func (c *Controller) History(limit int) []models.MHistoryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}
	if limit > len(c.history) {
		limit = len(c.history)
	}

	tail := c.history[len(c.history)-limit:]
	result := make([]models.MHistoryEntry, len(tail))
	copy(result, tail)
	return result
}

// -----------------------------------------------------------------------------

// ActiveCount returns the number of live runs
func (c *Controller) ActiveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.active)
}

// -----------------------------------------------------------------------------

// StopAll cancels every active run and waits for their goroutines to finish
func (c *Controller) StopAll() {
	c.mu.Lock()
	runs := make([]*runState, 0, len(c.active))
	for id, run := range c.active {
		run.status = models.SimulationStopped
		delete(c.active, id)
		runs = append(runs, run)
	}
	c.mu.Unlock()

	for _, run := range runs {
		run.cancel()
		if c.sink != nil {
			c.sink.BroadcastEvent(models.NewSimulationStoppedEvent(run.id))
		}
		c.logger.Info("Simulation %s stopped", run.id)
	}

	c.wg.Wait()
}

// -----------------------------------------------------------------------------

// appendHistoryLocked archives one terminal run, evicting the oldest entries
// beyond the limit. Caller holds the lock
func (c *Controller) appendHistoryLocked(entry models.MHistoryEntry) {
	c.history = append(c.history, entry)
	if len(c.history) > c.historyLimit {
		c.history = c.history[len(c.history)-c.historyLimit:]
	}
}

// -----------------------------------------------------------------------------

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
