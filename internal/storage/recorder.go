package storage

import (
	"maps"

	"github.com/san-kum/plcrt/internal/executor"
)

// Recorder is an executor observer that keeps cycles for a later Save.
// A positive limit keeps only the most recent cycles.
type Recorder struct {
	limit  int
	cycles []Cycle
}

func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

func (r *Recorder) OnCycle(rec executor.CycleRecord) {
	r.cycles = append(r.cycles, Cycle{
		Cycle:      rec.Cycle,
		IntervalMs: rec.IntervalMs,
		ElapsedMs:  rec.ElapsedMs,
		Overrun:    rec.Overrun,
		Samples:    maps.Clone(rec.Samples),
	})
	if r.limit > 0 && len(r.cycles) > r.limit {
		r.cycles = r.cycles[len(r.cycles)-r.limit:]
	}
}

func (r *Recorder) Cycles() []Cycle { return r.cycles }
