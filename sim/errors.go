package sim

import (
	"errors"
	"fmt"
)

// ErrNoTradingData reports that the price series has no trading day at or
// after a required date (start, step, or end). Fatal to the run: the engine
// returns it instead of a partial result.
var ErrNoTradingData = errors.New("no trading data available")

// ErrMissingPrice reports an internal consistency fault: a date selected by
// the calendar has no matching price row. Not retryable.
var ErrMissingPrice = errors.New("no price for trading day")

// ValidationError rejects malformed inputs before the simulation starts.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
