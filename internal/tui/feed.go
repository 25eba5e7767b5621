package tui

import (
	"maps"

	"github.com/san-kum/plcrt/internal/executor"
	"github.com/san-kum/plcrt/internal/fb"
	"github.com/san-kum/plcrt/internal/scheduler"
)

// Update is one cycle as seen by the dashboard.
type Update struct {
	Record executor.CycleRecord
	Params map[string]float64
	Stats  scheduler.Stats
}

// Feed is an executor observer that hands cycles to the dashboard. It runs
// on the loop goroutine, so it may read the program's parameters and the
// scheduler's stats directly. When the dashboard falls behind, cycles are
// dropped rather than delaying the loop.
type Feed struct {
	params  fb.Configurable
	stats   func() scheduler.Stats
	updates chan Update
	dropped uint64
}

func NewFeed(params fb.Configurable, stats func() scheduler.Stats, buffer int) *Feed {
	if buffer < 1 {
		buffer = 1
	}
	return &Feed{
		params:  params,
		stats:   stats,
		updates: make(chan Update, buffer),
	}
}

func (f *Feed) OnCycle(rec executor.CycleRecord) {
	u := Update{Record: rec}
	u.Record.Samples = maps.Clone(rec.Samples)
	if f.params != nil {
		u.Params = f.params.GetParams()
	}
	if f.stats != nil {
		u.Stats = f.stats()
	}
	select {
	case f.updates <- u:
	default:
		f.dropped++
	}
}

func (f *Feed) Updates() <-chan Update { return f.updates }

// Dropped is only meaningful once the loop has stopped.
func (f *Feed) Dropped() uint64 { return f.dropped }
