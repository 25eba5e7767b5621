// Package executor runs a step program under a cyclic scheduler: mark the
// cycle start, run one step, mark the cycle end, wait for the next deadline.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/plcrt/internal/clock"
	"github.com/san-kum/plcrt/internal/fb"
	"github.com/san-kum/plcrt/internal/scheduler"
)

// tuneQueue bounds the pending parameter changes between two cycles.
const tuneQueue = 64

// ErrTuneQueueFull indicates too many parameter changes are pending.
var ErrTuneQueueFull = errors.New("executor: tune queue full")

// Step is the user logic driven once per cycle.
type Step interface {
	Init(ctx context.Context) error
	Step(ctx context.Context) error
}

// Sampler is implemented by steps that publish named values each cycle.
type Sampler interface {
	Samples() map[string]float64
}

// CycleRecord describes one completed cycle. IntervalMs is the time since
// the previous cycle started, zero for the first cycle.
type CycleRecord struct {
	Cycle      uint64
	IntervalMs float64
	ElapsedMs  float64
	Overrun    bool
	Err        error
	Samples    map[string]float64
}

// Observer is notified on the loop goroutine after every cycle. It must not
// block.
type Observer interface {
	OnCycle(rec CycleRecord)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(CycleRecord)

func (f ObserverFunc) OnCycle(rec CycleRecord) { f(rec) }

// Config controls loop termination and thread placement.
type Config struct {
	// CPUAffinity pins the loop thread; -1 leaves it unpinned.
	CPUAffinity int
	// MaxCycles stops the loop after that many cycles; 0 runs until cancelled.
	MaxCycles uint64
}

// Summary reports how a run ended.
type Summary struct {
	Cycles     uint64
	StepErrors uint64
	WaitErrors uint64
	Stats      scheduler.Stats
}

type tuneRequest struct {
	name  string
	value float64
}

// Executor composes a scheduler with a step.
type Executor struct {
	sched     *scheduler.Scheduler
	step      Step
	cfg       Config
	observers []Observer
	tunes     chan tuneRequest
	log       *slog.Logger
}

// New returns an executor. A nil logger selects slog.Default.
func New(sched *scheduler.Scheduler, step Step, cfg Config, log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}
	return &Executor{
		sched: sched,
		step:  step,
		cfg:   cfg,
		tunes: make(chan tuneRequest, tuneQueue),
		log:   log,
	}
}

func (e *Executor) AddObserver(o Observer) { e.observers = append(e.observers, o) }

// Tune queues a parameter change for the step. It is applied on the loop
// goroutine before the next cycle, so the step's blocks are never touched
// concurrently. Safe to call from any goroutine.
func (e *Executor) Tune(name string, value float64) error {
	select {
	case e.tunes <- tuneRequest{name: name, value: value}:
		return nil
	default:
		return ErrTuneQueueFull
	}
}

// Run calls the step's Init once and then cycles until ctx is cancelled, the
// cycle budget is spent or the scheduler is stopped. Step failures and timing
// faults are logged and counted; only an Init failure ends Run with an error.
func (e *Executor) Run(ctx context.Context) (*Summary, error) {
	if err := e.step.Init(ctx); err != nil {
		e.log.Error("step init failed", slog.Any("error", err))
		e.sched.Stop()
		return nil, fmt.Errorf("init: %w", err)
	}

	_ = e.sched.SetCPUAffinity(e.cfg.CPUAffinity)

	e.log.Info("executor started", slog.Int64("cycle_period_ms", e.sched.Period().Milliseconds()))

	sum := &Summary{}
	sampler, _ := e.step.(Sampler)
	var prevStart time.Duration

	for e.sched.Running() {
		select {
		case <-ctx.Done():
			e.sched.Stop()
			continue
		default:
		}

		e.applyTunes()

		before := e.sched.Stats().TimeoutCount
		start := e.sched.CycleStart()
		var interval float64
		if sum.Cycles > 0 {
			interval = clock.Millis(start - prevStart)
		}
		prevStart = start
		stepErr := e.runStep(ctx)
		elapsed := e.sched.CycleEnd(start)
		sum.Cycles++

		if stepErr != nil {
			sum.StepErrors++
			e.log.Error("step failed", slog.Uint64("cycle", sum.Cycles), slog.Any("error", stepErr))
		}

		if len(e.observers) > 0 {
			rec := CycleRecord{
				Cycle:      sum.Cycles,
				IntervalMs: interval,
				ElapsedMs:  elapsed,
				Overrun:    e.sched.Stats().TimeoutCount > before,
				Err:        stepErr,
			}
			if sampler != nil {
				rec.Samples = sampler.Samples()
			}
			for _, o := range e.observers {
				o.OnCycle(rec)
			}
		}

		if e.cfg.MaxCycles > 0 && sum.Cycles >= e.cfg.MaxCycles {
			e.sched.Stop()
			break
		}

		if err := e.sched.WaitNextCycle(); err != nil {
			if errors.Is(err, scheduler.ErrStopped) {
				break
			}
			sum.WaitErrors++
		}
	}

	sum.Stats = e.sched.Stats()
	e.log.Info("executor stopped",
		slog.Uint64("cycles", sum.Stats.CycleCount),
		slog.Float64("avg_ms", sum.Stats.AvgCycleMs),
		slog.Uint64("timeouts", sum.Stats.TimeoutCount),
		slog.Uint64("step_errors", sum.StepErrors))
	return sum, nil
}

// runStep invokes the step, turning a panic into an error so one bad cycle
// cannot take the loop down.
func (e *Executor) runStep(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("step panic: %v", r)
		}
	}()
	return e.step.Step(ctx)
}

func (e *Executor) applyTunes() {
	for {
		select {
		case req := <-e.tunes:
			c, ok := e.step.(fb.Configurable)
			if !ok {
				e.log.Warn("step is not tunable", slog.String("param", req.name))
				continue
			}
			if err := c.SetParam(req.name, req.value); err != nil {
				e.log.Warn("tune rejected",
					slog.String("param", req.name),
					slog.Float64("value", req.value),
					slog.Any("error", err))
			}
		default:
			return
		}
	}
}
