package scheduler

// minSentinel seeds MinCycleMs so the first sample always replaces it.
const minSentinel = 999999.0

// Stats is the rolling record of measured cycle times.
type Stats struct {
	CycleCount   uint64
	TimeoutCount uint64
	AvgCycleMs   float64
	MaxCycleMs   float64
	MinCycleMs   float64
}

func newStats() Stats {
	return Stats{MinCycleMs: minSentinel}
}

// observe folds one elapsed sample into the record and reports whether it
// exceeded thresholdMs.
func (s *Stats) observe(elapsedMs, thresholdMs float64) bool {
	s.CycleCount++
	s.AvgCycleMs += (elapsedMs - s.AvgCycleMs) / float64(s.CycleCount)
	if elapsedMs > s.MaxCycleMs {
		s.MaxCycleMs = elapsedMs
	}
	if elapsedMs < s.MinCycleMs {
		s.MinCycleMs = elapsedMs
	}
	if elapsedMs > thresholdMs {
		s.TimeoutCount++
		return true
	}
	return false
}

// OverrunRatio returns the fraction of cycles that overran.
func (s Stats) OverrunRatio() float64 {
	if s.CycleCount == 0 {
		return 0
	}
	return float64(s.TimeoutCount) / float64(s.CycleCount)
}
