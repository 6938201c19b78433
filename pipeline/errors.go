package pipeline

import "errors"

var (
	// ErrStopped reports that a pipeline has been cancelled. The nic
	// facets do not return it: RxEnd.Produce returns nil on
	// cancellation.
	ErrStopped = errors.New("pipeline: stopped")
)
