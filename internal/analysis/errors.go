package analysis

import "fmt"

// NoDataError reports that the price source returned an empty series for
// the requested symbol/period. User-visible, not fatal.
type NoDataError struct {
	Symbol string
	Period string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no data found for %s (period %s)", e.Symbol, e.Period)
}

// ComputationError reports a failure during indicator computation or
// summary arithmetic. The underlying cause is preserved for the boundary
// to surface; it is never retried.
type ComputationError struct {
	Op  string
	Err error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("analysis: %s: %v", e.Op, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }
