package helpers

import (
	"fmt"
	"market-simulator/src/logger"
	"strings"
	"time"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type MarketSimulatorError struct {
	Message string
	Cause   error
}

func (e *MarketSimulatorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *MarketSimulatorError) Unwrap() error {
	return e.Cause
}

// Distinct error types so the API layer can map failures to status codes
type ConfigurationError struct{ MarketSimulatorError }
type EngineUnavailableError struct{ MarketSimulatorError }
type NotFoundError struct{ MarketSimulatorError }
type SimulationError struct{ MarketSimulatorError }
type DatabaseError struct{ MarketSimulatorError }
type ValidationError struct{ MarketSimulatorError }

// -----------------------------------------------------------------------------

// NewNotFoundError reports a missing symbol, simulation or agent
func NewNotFoundError(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{MarketSimulatorError{Message: fmt.Sprintf(format, args...)}}
}

// NewEngineUnavailableError reports operations attempted before the market
// engine is initialized
func NewEngineUnavailableError() *EngineUnavailableError {
	return &EngineUnavailableError{MarketSimulatorError{Message: "Market simulator not initialized"}}
}

// NewValidationError reports a rejected request body or parameter
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{MarketSimulatorError{Message: fmt.Sprintf(format, args...)}}
}

// NewDatabaseError reports a failed journal operation
func NewDatabaseError(format string, args ...interface{}) *DatabaseError {
	return &DatabaseError{MarketSimulatorError{Message: fmt.Sprintf(format, args...)}}
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts to execute the operation up to maxRetries times with exponential backoff.
func RetryWithBackoff(operation string, maxRetries int, baseDelay time.Duration, fn func() (interface{}, error)) (interface{}, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		res, err := fn()
		if err == nil {
			return res, nil
		}

		lastErr = err
		if attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		fmt.Printf("Warning: Attempt %d/%d failed for %s: %v. Retrying in %v\n", attempt+1, maxRetries, operation, err, delay)
		time.Sleep(delay)
	}

	return nil, lastErr
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

type ErrorHandler struct {
	Logger                 *logger.Logger
	ErrorCount             int
	MaxErrorsBeforeRestart int
}

func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{
		Logger:                 logger.NewLogger("info", "ErrorHandler"),
		ErrorCount:             0,
		MaxErrorsBeforeRestart: 10,
	}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) ResetErrorCount() {
	e.ErrorCount = 0
}

// -----------------------------------------------------------------------------

// ExecuteWithRetry encapsulates logic to execute a function, retry on failure, and categorize errors.
func (e *ErrorHandler) ExecuteWithRetry(operation string, fn func() (interface{}, error), maxRetries int) (interface{}, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		res, err := fn()
		if err == nil {
			// Success: Recover stats
			if e.ErrorCount > 0 {
				e.ErrorCount--
			}
			return res, nil
		}

		// Handle Error
		if attempt == maxRetries-1 {
			e.ErrorCount++
			e.Logger.Error("%s failed (attempt %d/%d): %v", operation, attempt+1, maxRetries, err)

			// Wrap into specific error types based on context if simpler heuristics apply
			lowerOp := strings.ToLower(operation)
			if strings.Contains(lowerOp, "journal") || strings.Contains(lowerOp, "save") {
				return nil, &DatabaseError{MarketSimulatorError{Message: fmt.Sprintf("%s failed", operation), Cause: err}}
			} else if strings.Contains(lowerOp, "simulation") {
				return nil, &SimulationError{MarketSimulatorError{Message: fmt.Sprintf("%s failed", operation), Cause: err}}
			} else {
				return nil, &MarketSimulatorError{Message: fmt.Sprintf("%s failed", operation), Cause: err}
			}
		}

		// Log warning and wait
		e.Logger.Warning("%s failed (attempt %d/%d): %v", operation, attempt+1, maxRetries, err)
		delay := time.Duration(1<<attempt) * time.Second
		time.Sleep(delay)
	}

	return nil, &MarketSimulatorError{Message: fmt.Sprintf("%s failed after %d attempts", operation, maxRetries)}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) Handle(err error, context string) {
	if err != nil {
		e.Logger.Error("Error in %s: %v", context, err)
	}
}
