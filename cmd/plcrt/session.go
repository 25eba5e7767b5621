package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/san-kum/plcrt/internal/clock"
	"github.com/san-kum/plcrt/internal/config"
	"github.com/san-kum/plcrt/internal/executor"
	"github.com/san-kum/plcrt/internal/fb"
	"github.com/san-kum/plcrt/internal/logging"
	"github.com/san-kum/plcrt/internal/program"
	"github.com/san-kum/plcrt/internal/scheduler"
	"github.com/san-kum/plcrt/internal/storage"
)

// recordLimit bounds the cycles kept in memory for a stored run.
const recordLimit = 1_000_000

// loadConfig resolves the configuration: defaults or preset, then the
// config file, then PLCRT_* variables (.env included), then flags.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.Runtime.Program = args[0]
	}
	flags := cmd.Flags()
	if flags.Changed("period") {
		cfg.Runtime.CyclePeriodMs = periodMs
	}
	if flags.Changed("cycles") {
		cfg.Runtime.MaxCycles = maxCycles
	}
	if flags.Changed("cpu") {
		cfg.Performance.CPUAffinity = cpu
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type session struct {
	cfg      *config.Config
	log      *logging.Logger
	sched    *scheduler.Scheduler
	prog     program.Program
	exec     *executor.Executor
	recorder *storage.Recorder
}

func newSession(cfg *config.Config) (*session, error) {
	log, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		File:        cfg.Logging.File,
		MaxSizeMB:   cfg.Logging.MaxSizeMB,
		BackupCount: cfg.Logging.BackupCount,
		Console:     cfg.Logging.Console,
	})
	if err != nil {
		return nil, err
	}

	sched, err := scheduler.New(scheduler.Config{
		PeriodMs:         cfg.Runtime.CyclePeriodMs,
		ThresholdPercent: cfg.Runtime.TimeoutThresholdPercent,
	}, scheduler.WithLogger(log.Logger))
	if err != nil {
		log.Close()
		return nil, err
	}

	blocks := fb.NewRegistry(cfg.Performance.MaxFunctionBlocks,
		fb.WithClock(clock.Monotonic()),
		fb.WithLogger(log.Logger))

	prog, err := program.NewRegistry().Get(cfg.Runtime.Program, program.Env{
		Blocks: blocks,
		Config: cfg,
		Dt:     clock.Seconds(sched.Period()),
		Log:    log.Logger,
	})
	if err != nil {
		log.Close()
		return nil, err
	}

	ex := executor.New(sched, prog, executor.Config{
		CPUAffinity: cfg.Performance.CPUAffinity,
		MaxCycles:   cfg.Runtime.MaxCycles,
	}, log.Logger)

	s := &session{cfg: cfg, log: log, sched: sched, prog: prog, exec: ex}
	if save {
		s.recorder = storage.NewRecorder(recordLimit)
		ex.AddObserver(s.recorder)
	}

	log.Info("runtime configured",
		slog.String("program", cfg.Runtime.Program),
		slog.Int("cycle_period_ms", cfg.Runtime.CyclePeriodMs),
		slog.Int("timeout_threshold_percent", cfg.Runtime.TimeoutThresholdPercent),
		slog.Int("cpu_affinity", cfg.Performance.CPUAffinity))
	return s, nil
}

func (s *session) run(ctx context.Context) (*executor.Summary, error) {
	return s.exec.Run(ctx)
}

// store saves the recorded cycles and returns the run id, or "" when
// recording is off.
func (s *session) store(sum *executor.Summary) (string, error) {
	if s.recorder == nil || sum == nil {
		return "", nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}
	return st.Save(storage.RunMetadata{
		Program:          s.cfg.Runtime.Program,
		PeriodMs:         s.cfg.Runtime.CyclePeriodMs,
		ThresholdPercent: s.cfg.Runtime.TimeoutThresholdPercent,
		Cycles:           sum.Cycles,
		Stats:            summaryStats(sum),
		Params:           s.prog.GetParams(),
		Config:           s.cfg,
	}, s.recorder.Cycles())
}

func (s *session) close() {
	s.log.Close()
}

func summaryStats(sum *executor.Summary) map[string]float64 {
	st := sum.Stats
	minMs := st.MinCycleMs
	if st.CycleCount == 0 {
		minMs = 0
	}
	return map[string]float64{
		"cycle_count":   float64(st.CycleCount),
		"timeout_count": float64(st.TimeoutCount),
		"avg_cycle_ms":  st.AvgCycleMs,
		"max_cycle_ms":  st.MaxCycleMs,
		"min_cycle_ms":  minMs,
		"overrun_ratio": st.OverrunRatio(),
		"step_errors":   float64(sum.StepErrors),
		"wait_errors":   float64(sum.WaitErrors),
	}
}
