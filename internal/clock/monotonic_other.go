//go:build !linux

package clock

import "time"

type monotonic struct{}

// Monotonic returns a Clock backed by the runtime's monotonic reading.
func Monotonic() Clock { return monotonic{} }

func (monotonic) Now() time.Duration { return fallbackNow() }

type absoluteSleeper struct{}

// AbsoluteSleeper returns a Sleeper that converts the absolute deadline to a
// relative sleep. Platforms without clock_nanosleep get this best effort.
func AbsoluteSleeper() Sleeper { return absoluteSleeper{} }

func (absoluteSleeper) SleepUntil(deadline time.Duration) error {
	if d := deadline - fallbackNow(); d > 0 {
		time.Sleep(d)
	}
	return nil
}
