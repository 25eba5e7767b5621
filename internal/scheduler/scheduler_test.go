package scheduler_test

import (
	"bytes"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/plcrt/internal/clock"
	"github.com/san-kum/plcrt/internal/scheduler"
)

var _ = Describe("Scheduler", func() {
	var (
		mc  *clock.Manual
		buf *bytes.Buffer
		s   *scheduler.Scheduler
	)

	anchor := 10 * time.Second

	newScheduler := func(periodMs, threshold int) (*scheduler.Scheduler, error) {
		return scheduler.New(
			scheduler.Config{PeriodMs: periodMs, ThresholdPercent: threshold},
			scheduler.WithClock(mc),
			scheduler.WithSleeper(mc),
			scheduler.WithLogger(slog.New(slog.NewTextHandler(buf, nil))),
		)
	}

	// cycle runs one synthetic cycle that takes d of measured time.
	cycle := func(d time.Duration) float64 {
		start := s.CycleStart()
		mc.Advance(d)
		return s.CycleEnd(start)
	}

	BeforeEach(func() {
		mc = clock.NewManual(anchor)
		buf = &bytes.Buffer{}
		var err error
		s, err = newScheduler(100, 110)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("construction", func() {
		DescribeTable("period validation",
			func(periodMs int, ok bool) {
				_, err := newScheduler(periodMs, 100)
				if ok {
					Expect(err).NotTo(HaveOccurred())
				} else {
					Expect(err).To(MatchError(scheduler.ErrInvalidPeriod))
				}
			},
			Entry("below range", 9, false),
			Entry("lower bound", 10, true),
			Entry("typical", 100, true),
			Entry("upper bound", 1000, true),
			Entry("above range", 1001, false),
			Entry("zero", 0, false),
		)

		It("starts running with a sentinel minimum", func() {
			Expect(s.Running()).To(BeTrue())
			st := s.Stats()
			Expect(st.CycleCount).To(BeZero())
			Expect(st.MinCycleMs).To(Equal(999999.0))
			Expect(s.NextWakeup()).To(Equal(anchor))
			Expect(s.Period()).To(Equal(100 * time.Millisecond))
		})
	})

	Describe("cycle statistics", func() {
		It("tracks the mean, min and max of measured cycles", func() {
			durations := []time.Duration{5, 15, 10, 30, 2}
			sum := 0.0
			for _, d := range durations {
				elapsed := cycle(d * time.Millisecond)
				Expect(elapsed).To(BeNumerically("~", float64(d), 1e-9))
				sum += float64(d)
			}

			st := s.Stats()
			Expect(st.CycleCount).To(Equal(uint64(len(durations))))
			Expect(st.AvgCycleMs).To(BeNumerically("~", sum/float64(len(durations)), 1e-9))
			Expect(st.MinCycleMs).To(BeNumerically("~", 2, 1e-9))
			Expect(st.MaxCycleMs).To(BeNumerically("~", 30, 1e-9))
			Expect(st.TimeoutCount).To(BeZero())
		})

		It("counts each overrunning cycle exactly once", func() {
			cycle(110 * time.Millisecond)
			Expect(s.Stats().TimeoutCount).To(BeZero())

			cycle(111 * time.Millisecond)
			Expect(s.Stats().TimeoutCount).To(Equal(uint64(1)))

			cycle(500 * time.Millisecond)
			Expect(s.Stats().TimeoutCount).To(Equal(uint64(2)))

			cycle(1 * time.Millisecond)
			Expect(s.Stats().TimeoutCount).To(Equal(uint64(2)))
			Expect(s.Stats().OverrunRatio()).To(BeNumerically("~", 0.5, 1e-12))

			Expect(buf.String()).To(ContainSubstring("cycle overrun"))
			Expect(buf.String()).To(ContainSubstring("level=WARN"))
		})

		It("logs a summary every thousand cycles", func() {
			for range 1000 {
				cycle(time.Millisecond)
			}
			Expect(buf.String()).To(ContainSubstring("scheduler stats"))
			Expect(buf.String()).To(ContainSubstring("cycles=1000"))
		})
	})

	Describe("waiting", func() {
		It("schedules deadlines as a fixed sequence from the anchor", func() {
			for range 3 {
				Expect(s.WaitNextCycle()).To(Succeed())
			}
			// an overrun does not shift later deadlines
			mc.Advance(250 * time.Millisecond)
			Expect(s.WaitNextCycle()).To(Succeed())
			Expect(s.WaitNextCycle()).To(Succeed())

			Expect(mc.Deadlines()).To(Equal([]time.Duration{
				anchor + 100*time.Millisecond,
				anchor + 200*time.Millisecond,
				anchor + 300*time.Millisecond,
				anchor + 400*time.Millisecond,
				anchor + 500*time.Millisecond,
			}))
			Expect(mc.Now()).To(Equal(anchor + 550*time.Millisecond))
		})

		It("reports an interrupted sleep and keeps the schedule", func() {
			mc.FailNext(clock.ErrInterrupted)
			Expect(s.WaitNextCycle()).To(MatchError(clock.ErrInterrupted))
			Expect(buf.String()).To(ContainSubstring("scheduler sleep interrupted"))

			Expect(s.WaitNextCycle()).To(Succeed())
			Expect(s.NextWakeup()).To(Equal(anchor + 200*time.Millisecond))
			Expect(s.Running()).To(BeTrue())
		})

		It("fails immediately once stopped", func() {
			s.Stop()
			Expect(s.Running()).To(BeFalse())
			Expect(s.WaitNextCycle()).To(MatchError(scheduler.ErrStopped))
			Expect(mc.Deadlines()).To(BeEmpty())

			s.Stop()
			Expect(s.Running()).To(BeFalse())
		})
	})

	Describe("cpu affinity", func() {
		It("treats a negative core as a successful no-op", func() {
			Expect(s.SetCPUAffinity(-1)).To(Succeed())
		})
	})

	Describe("on the real monotonic clock", func() {
		It("paces cycles at the configured period", func() {
			paced, err := scheduler.New(
				scheduler.Config{PeriodMs: 10, ThresholdPercent: 1000},
				scheduler.WithLogger(slog.New(slog.NewTextHandler(buf, nil))),
			)
			Expect(err).NotTo(HaveOccurred())

			began := time.Now()
			for range 5 {
				start := paced.CycleStart()
				paced.CycleEnd(start)
				Expect(paced.WaitNextCycle()).To(Succeed())
			}
			Expect(time.Since(began)).To(BeNumerically(">=", 45*time.Millisecond))
			Expect(paced.Stats().CycleCount).To(Equal(uint64(5)))
		})
	})
})
