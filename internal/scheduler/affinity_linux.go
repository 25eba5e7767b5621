//go:build linux

package scheduler

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// pinToCore locks the goroutine to its OS thread and restricts that thread to
// core. The lock is kept for the life of the goroutine.
func pinToCore(core int) error {
	runtime.LockOSThread()
	var set unix.CPUSet
	set.Zero()
	set.Set(core)
	return unix.SchedSetaffinity(0, &set)
}
