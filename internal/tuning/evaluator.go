package tuning

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/plcrt/internal/analysis"
	"github.com/san-kum/plcrt/internal/config"
	"github.com/san-kum/plcrt/internal/fb"
	"github.com/san-kum/plcrt/internal/program"
)

// ProgramEvaluator runs a fresh instance of the named program for cycles
// steps of dt seconds per candidate, applying the candidate through
// SetParam after Init, and scores it with the integral of |key|.
func ProgramEvaluator(
	programs *program.Registry,
	name string,
	cfg *config.Config,
	cycles int,
	dt float64,
	key string,
	log *slog.Logger,
) Evaluator {
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		env := program.Env{
			Blocks: fb.NewRegistry(cfg.Performance.MaxFunctionBlocks, fb.WithLogger(log)),
			Config: cfg,
			Dt:     dt,
			Log:    log,
		}
		p, err := programs.Get(name, env)
		if err != nil {
			return 0, err
		}
		if err := p.Init(ctx); err != nil {
			return 0, err
		}
		for k, v := range params {
			if err := p.SetParam(k, v); err != nil {
				return 0, fmt.Errorf("set %s: %w", k, err)
			}
		}

		iae := analysis.NewIAE(key)
		for i := 0; i < cycles; i++ {
			if err := p.Step(ctx); err != nil {
				return 0, err
			}
			iae.Observe(p.Samples(), dt)
		}
		return iae.Value(), nil
	}
}
