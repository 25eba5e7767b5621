// Package clock provides the monotonic time source and absolute-deadline
// sleeper used by the scheduler and the function blocks.
//
// Instants are expressed as a [time.Duration] offset on the monotonic clock.
// Only differences between instants are meaningful.
package clock

import (
	"errors"
	"time"
)

// ErrInterrupted indicates an absolute sleep returned before its deadline.
var ErrInterrupted = errors.New("clock: sleep interrupted")

// Clock reads a monotonic instant.
type Clock interface {
	Now() time.Duration
}

// Sleeper blocks the calling goroutine until an absolute monotonic deadline.
type Sleeper interface {
	SleepUntil(deadline time.Duration) error
}

// Func adapts a function to the Clock interface.
type Func func() time.Duration

func (f Func) Now() time.Duration { return f() }

// Seconds converts an instant or interval to floating-point seconds.
func Seconds(d time.Duration) float64 {
	return d.Seconds()
}

// Millis converts an interval to floating-point milliseconds.
func Millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
