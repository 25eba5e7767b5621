package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/plcrt/internal/config"
	"github.com/san-kum/plcrt/internal/program"
	"github.com/san-kum/plcrt/internal/tuning"
)

func tuneGains(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	var ranges [][]float64
	for _, spec := range []string{kpGrid, kiGrid, kdGrid} {
		vals, err := parseFloats(spec)
		if err != nil {
			return err
		}
		ranges = append(ranges, vals)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dt := float64(cfg.Runtime.CyclePeriodMs) / 1000
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	eval := tuning.ProgramEvaluator(program.NewRegistry(), "pid_temperature", cfg, tuneCycles, dt, "error", quiet)

	g := tuning.NewGridSearch([]string{"kp", "ki", "kd"}, ranges)
	res, err := g.Search(ctx, eval)
	if err != nil {
		return err
	}

	fmt.Printf("evaluated %d candidates over %d cycles of %.3f s (%d failed)\n",
		res.Evaluated, tuneCycles, dt, res.Failed)
	fmt.Printf("best: kp=%g ki=%g kd=%g  iae=%.4f\n",
		res.Params["kp"], res.Params["ki"], res.Params["kd"], res.Score)

	if writeConfig != "" {
		cfg.Blocks.PID.Kp = res.Params["kp"]
		cfg.Blocks.PID.Ki = res.Params["ki"]
		cfg.Blocks.PID.Kd = res.Params["kd"]
		if err := config.Save(writeConfig, cfg); err != nil {
			return err
		}
		fmt.Printf("config written to %s\n", writeConfig)
	}
	return nil
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q: %w", p, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty range %q", s)
	}
	return out, nil
}

func showConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	out, err := cfg.YAML()
	if err != nil {
		return err
	}
	fmt.Print(out)

	if writeConfig != "" {
		return config.Save(writeConfig, cfg)
	}
	return nil
}
