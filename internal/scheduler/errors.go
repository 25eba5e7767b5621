package scheduler

import "errors"

var (
	// ErrInvalidPeriod indicates a cycle period outside [MinPeriodMs, MaxPeriodMs].
	ErrInvalidPeriod = errors.New("scheduler: cycle period out of range")

	// ErrStopped indicates WaitNextCycle was called after Stop.
	ErrStopped = errors.New("scheduler: stopped")

	// ErrAffinityUnsupported indicates CPU pinning is not available on this platform.
	ErrAffinityUnsupported = errors.New("scheduler: cpu affinity not supported on this platform")
)
