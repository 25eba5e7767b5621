// Package scheduler paces a fixed-period control loop on the monotonic clock.
//
// Deadlines form a fixed arithmetic sequence from the anchor taken at
// construction: each [Scheduler.WaitNextCycle] advances the deadline by
// exactly one period and sleeps until it. An overrunning cycle therefore
// shortens the following sleeps instead of shifting every later wakeup.
//
//	s, err := scheduler.New(scheduler.Config{PeriodMs: 100, ThresholdPercent: 110})
//	for s.Running() {
//		start := s.CycleStart()
//		step()
//		s.CycleEnd(start)
//		_ = s.WaitNextCycle()
//	}
package scheduler
