package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/plcrt/internal/clock"
)

const (
	MinPeriodMs = 10
	MaxPeriodMs = 1000

	// summaryEvery is the number of cycles between statistics log lines.
	summaryEvery = 1000
)

// Config holds the scheduler construction parameters.
type Config struct {
	PeriodMs         int
	ThresholdPercent int
}

// ThresholdMs returns the elapsed time above which a cycle counts as an overrun.
func (c Config) ThresholdMs() float64 {
	return float64(c.PeriodMs) * float64(c.ThresholdPercent) / 100.0
}

// Validate checks the period range.
func (c Config) Validate() error {
	if c.PeriodMs < MinPeriodMs || c.PeriodMs > MaxPeriodMs {
		return fmt.Errorf("%w: %d ms (want %d..%d)", ErrInvalidPeriod, c.PeriodMs, MinPeriodMs, MaxPeriodMs)
	}
	return nil
}

type options struct {
	clock   clock.Clock
	sleeper clock.Sleeper
	logger  *slog.Logger
}

// Option configures a Scheduler.
type Option func(*options)

func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

func WithSleeper(s clock.Sleeper) Option {
	return func(o *options) { o.sleeper = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Scheduler owns the wakeup deadline and cycle statistics of one loop. It is
// driven from a single goroutine.
type Scheduler struct {
	cfg     Config
	period  time.Duration
	next    time.Duration
	stats   Stats
	running bool

	clock   clock.Clock
	sleeper clock.Sleeper
	log     *slog.Logger
}

// New validates cfg and anchors the first deadline at the current monotonic
// time.
func New(cfg Config, opts ...Option) (*Scheduler, error) {
	o := options{
		clock:   clock.Monotonic(),
		sleeper: clock.AbsoluteSleeper(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(); err != nil {
		o.logger.Error("invalid scheduler parameters", slog.Int("cycle_period_ms", cfg.PeriodMs))
		return nil, err
	}

	s := &Scheduler{
		cfg:     cfg,
		period:  time.Duration(cfg.PeriodMs) * time.Millisecond,
		stats:   newStats(),
		running: true,
		clock:   o.clock,
		sleeper: o.sleeper,
		log:     o.logger,
	}
	s.next = s.clock.Now()

	s.log.Info("scheduler initialized",
		slog.Int("cycle_period_ms", cfg.PeriodMs),
		slog.Int("timeout_threshold_percent", cfg.ThresholdPercent))
	return s, nil
}

// SetCPUAffinity pins the calling goroutine's OS thread to core. A negative
// core leaves scheduling alone and succeeds. Failures are logged and returned
// but do not affect the scheduler.
func (s *Scheduler) SetCPUAffinity(core int) error {
	if core < 0 {
		s.log.Debug("cpu affinity not set", slog.Int("cpu_core", core))
		return nil
	}
	if err := pinToCore(core); err != nil {
		if errors.Is(err, ErrAffinityUnsupported) {
			s.log.Warn("cpu affinity not supported on this platform")
		} else {
			s.log.Error("set cpu affinity failed", slog.Int("cpu_core", core), slog.Any("error", err))
		}
		return err
	}
	s.log.Info("pinned to cpu core", slog.Int("cpu_core", core))
	return nil
}

// CycleStart returns the current monotonic instant.
func (s *Scheduler) CycleStart() time.Duration {
	return s.clock.Now()
}

// CycleEnd measures the time since start in milliseconds and folds it into
// the statistics. An overrun is counted and logged; the cycle is not aborted.
func (s *Scheduler) CycleEnd(start time.Duration) float64 {
	elapsed := clock.Millis(s.clock.Now() - start)
	threshold := s.cfg.ThresholdMs()

	if s.stats.observe(elapsed, threshold) {
		s.log.Warn("cycle overrun",
			slog.Float64("elapsed_ms", elapsed),
			slog.Float64("threshold_ms", threshold),
			slog.Uint64("cycle", s.stats.CycleCount))
	}

	if s.stats.CycleCount%summaryEvery == 0 {
		s.log.Info("scheduler stats",
			slog.Uint64("cycles", s.stats.CycleCount),
			slog.Float64("avg_ms", s.stats.AvgCycleMs),
			slog.Float64("max_ms", s.stats.MaxCycleMs),
			slog.Float64("min_ms", s.stats.MinCycleMs),
			slog.Uint64("timeouts", s.stats.TimeoutCount))
	}
	return elapsed
}

// WaitNextCycle advances the deadline by one period and blocks until it. An
// interrupted sleep is reported; the next call continues from the advanced
// deadline.
func (s *Scheduler) WaitNextCycle() error {
	if !s.running {
		return ErrStopped
	}
	s.next += s.period
	if err := s.sleeper.SleepUntil(s.next); err != nil {
		s.log.Warn("scheduler sleep interrupted", slog.Any("error", err))
		return err
	}
	return nil
}

// Stop marks the scheduler stopped. Later WaitNextCycle calls fail at once.
func (s *Scheduler) Stop() {
	if !s.running {
		return
	}
	s.running = false
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) Running() bool { return s.running }

// Stats returns a copy of the statistics.
func (s *Scheduler) Stats() Stats { return s.stats }

func (s *Scheduler) Config() Config { return s.cfg }

// Period returns the cycle period.
func (s *Scheduler) Period() time.Duration { return s.period }

// NextWakeup returns the most recently scheduled deadline, or the anchor
// before the first wait.
func (s *Scheduler) NextWakeup() time.Duration { return s.next }
