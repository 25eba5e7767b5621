package executor_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/plcrt/internal/clock"
	"github.com/san-kum/plcrt/internal/executor"
	"github.com/san-kum/plcrt/internal/fb"
	"github.com/san-kum/plcrt/internal/scheduler"
)

// fakeStep advances the manual clock by cost on every step and can be told
// to fail or panic on chosen cycles.
type fakeStep struct {
	mc      *clock.Manual
	cost    func(n int) time.Duration
	failOn  map[int]bool
	panicOn map[int]bool
	initErr error
	onStep  func(n int)

	inits int
	steps int
	gain  float64
}

func (f *fakeStep) Init(ctx context.Context) error {
	f.inits++
	return f.initErr
}

func (f *fakeStep) Step(ctx context.Context) error {
	f.steps++
	n := f.steps
	if f.cost != nil {
		f.mc.Advance(f.cost(n))
	}
	if f.onStep != nil {
		f.onStep(n)
	}
	if f.panicOn[n] {
		panic("boom")
	}
	if f.failOn[n] {
		return errors.New("step failed")
	}
	return nil
}

func (f *fakeStep) Samples() map[string]float64 {
	return map[string]float64{"gain": f.gain, "step": float64(f.steps)}
}

func (f *fakeStep) GetParams() map[string]float64 { return map[string]float64{"gain": f.gain} }

func (f *fakeStep) SetParam(name string, v float64) error {
	if name != "gain" {
		return fb.ErrUnknownParam
	}
	f.gain = v
	return nil
}

var _ = Describe("Executor", func() {
	var (
		mc    *clock.Manual
		sched *scheduler.Scheduler
		step  *fakeStep
		log   *slog.Logger
	)

	BeforeEach(func() {
		mc = clock.NewManual(time.Second)
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
		var err error
		sched, err = scheduler.New(scheduler.Config{PeriodMs: 100, ThresholdPercent: 50},
			scheduler.WithClock(mc), scheduler.WithSleeper(mc), scheduler.WithLogger(log))
		Expect(err).NotTo(HaveOccurred())
		step = &fakeStep{mc: mc, failOn: map[int]bool{}, panicOn: map[int]bool{}}
	})

	It("runs init once and stops after the cycle budget", func() {
		ex := executor.New(sched, step, executor.Config{CPUAffinity: -1, MaxCycles: 25}, log)
		sum, err := ex.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		Expect(step.inits).To(Equal(1))
		Expect(step.steps).To(Equal(25))
		Expect(sum.Cycles).To(Equal(uint64(25)))
		Expect(sum.Stats.CycleCount).To(Equal(uint64(25)))
		Expect(sched.Running()).To(BeFalse())
		// 24 waits between 25 cycles
		Expect(mc.Deadlines()).To(HaveLen(24))
	})

	It("keeps cycling through step failures and panics", func() {
		step.failOn[2] = true
		step.panicOn[4] = true
		ex := executor.New(sched, step, executor.Config{CPUAffinity: -1, MaxCycles: 6}, log)

		var recs []executor.CycleRecord
		ex.AddObserver(executor.ObserverFunc(func(r executor.CycleRecord) { recs = append(recs, r) }))

		sum, err := ex.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(sum.Cycles).To(Equal(uint64(6)))
		Expect(sum.StepErrors).To(Equal(uint64(2)))

		Expect(recs).To(HaveLen(6))
		Expect(recs[1].Err).To(MatchError("step failed"))
		Expect(recs[3].Err).To(MatchError(ContainSubstring("step panic: boom")))
		Expect(recs[5].Err).NotTo(HaveOccurred())
		Expect(recs[5].Samples).To(HaveKeyWithValue("step", 6.0))
	})

	It("flags overrunning cycles in the records", func() {
		step.cost = func(n int) time.Duration {
			if n == 3 {
				return 80 * time.Millisecond
			}
			return 10 * time.Millisecond
		}
		ex := executor.New(sched, step, executor.Config{CPUAffinity: -1, MaxCycles: 5}, log)

		var overruns []uint64
		var intervals []float64
		ex.AddObserver(executor.ObserverFunc(func(r executor.CycleRecord) {
			intervals = append(intervals, r.IntervalMs)
			if r.Overrun {
				overruns = append(overruns, r.Cycle)
			}
		}))

		sum, err := ex.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(overruns).To(Equal([]uint64{3}))
		Expect(intervals).To(Equal([]float64{0, 100, 100, 100, 100}))
		Expect(sum.Stats.TimeoutCount).To(Equal(uint64(1)))
		Expect(sum.Stats.MaxCycleMs).To(BeNumerically("~", 80, 1e-9))
	})

	It("stops when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		step.onStep = func(n int) {
			if n == 7 {
				cancel()
			}
		}
		ex := executor.New(sched, step, executor.Config{CPUAffinity: -1}, log)
		sum, err := ex.Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(sum.Cycles).To(Equal(uint64(7)))
		Expect(sched.Running()).To(BeFalse())
	})

	It("counts interrupted waits without stopping", func() {
		mc.FailNext(clock.ErrInterrupted)
		ex := executor.New(sched, step, executor.Config{CPUAffinity: -1, MaxCycles: 3}, log)
		sum, err := ex.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(sum.WaitErrors).To(Equal(uint64(1)))
		Expect(sum.Cycles).To(Equal(uint64(3)))
	})

	It("fails without cycling when init fails", func() {
		step.initErr = errors.New("no script")
		ex := executor.New(sched, step, executor.Config{CPUAffinity: -1}, log)
		sum, err := ex.Run(context.Background())
		Expect(sum).To(BeNil())
		Expect(err).To(MatchError(ContainSubstring("init: no script")))
		Expect(step.steps).To(BeZero())
		Expect(sched.Running()).To(BeFalse())
	})

	It("applies queued tuning between cycles", func() {
		ex := executor.New(sched, step, executor.Config{CPUAffinity: -1, MaxCycles: 4}, log)
		step.onStep = func(n int) {
			if n == 2 {
				Expect(ex.Tune("gain", 2.5)).To(Succeed())
				Expect(ex.Tune("bogus", 1)).To(Succeed())
				Expect(step.gain).To(BeZero())
			}
		}

		var gains []float64
		ex.AddObserver(executor.ObserverFunc(func(r executor.CycleRecord) {
			gains = append(gains, r.Samples["gain"])
		}))

		_, err := ex.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(gains).To(Equal([]float64{0, 0, 2.5, 2.5}))
	})

	It("rejects tuning when the queue is full", func() {
		ex := executor.New(sched, step, executor.Config{CPUAffinity: -1}, log)
		var err error
		for i := 0; i < 100 && err == nil; i++ {
			err = ex.Tune("gain", float64(i))
		}
		Expect(err).To(MatchError(executor.ErrTuneQueueFull))
	})
})
