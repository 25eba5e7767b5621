//go:build linux

package clock

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

type monotonic struct{}

// Monotonic returns a Clock backed by CLOCK_MONOTONIC.
func Monotonic() Clock { return monotonic{} }

func (monotonic) Now() time.Duration {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return fallbackNow()
	}
	return time.Duration(ts.Nano())
}

type absoluteSleeper struct{}

// AbsoluteSleeper returns a Sleeper that uses clock_nanosleep with
// TIMER_ABSTIME on CLOCK_MONOTONIC, so wakeups do not drift with the time
// spent between calls.
func AbsoluteSleeper() Sleeper { return absoluteSleeper{} }

func (absoluteSleeper) SleepUntil(deadline time.Duration) error {
	ts := unix.NsecToTimespec(int64(deadline))
	err := unix.ClockNanosleep(unix.CLOCK_MONOTONIC, unix.TIMER_ABSTIME, &ts, nil)
	if err == nil {
		return nil
	}
	if errors.Is(err, unix.EINTR) {
		return ErrInterrupted
	}
	return err
}
