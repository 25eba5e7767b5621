package tuning

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/plcrt/internal/config"
	"github.com/san-kum/plcrt/internal/program"
)

func TestGridSearchFindsMinimum(t *testing.T) {
	g := NewGridSearch([]string{"x", "y"}, [][]float64{{-1, 0, 1, 2}, {0, 3, 6}})
	res, err := g.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		dx, dy := p["x"]-1, p["y"]-3
		return dx*dx + dy*dy, nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"x": 1, "y": 3}, res.Params)
	assert.Zero(t, res.Score)
	assert.Equal(t, 12, res.Evaluated)
}

func TestGridSearchSkipsFailures(t *testing.T) {
	g := NewGridSearch([]string{"x"}, [][]float64{{1, 2, 3}})
	res, err := g.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		if p["x"] == 1 {
			return 0, errors.New("unstable")
		}
		return p["x"], nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.Params["x"])
	assert.Equal(t, 1, res.Failed)

	_, err = g.Search(context.Background(), func(context.Context, map[string]float64) (float64, error) {
		return 0, errors.New("nope")
	})
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestGridSearchHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := NewGridSearch([]string{"x"}, [][]float64{{1, 2}})
	_, err := g.Search(ctx, func(context.Context, map[string]float64) (float64, error) { return 0, nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTunePIDTemperature(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Program.Noise = 0
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	eval := ProgramEvaluator(program.NewRegistry(), "pid_temperature", cfg, 600, 0.1, "error", log)
	base, err := eval(context.Background(), map[string]float64{})
	require.NoError(t, err)

	g := NewGridSearch(
		[]string{"kp", "ki", "kd"},
		[][]float64{{1, 2, 5}, {0.5, 1}, {0, 0.1}},
	)
	res, err := g.Search(context.Background(), eval)
	require.NoError(t, err)
	assert.Equal(t, 12, res.Evaluated)
	assert.Zero(t, res.Failed)
	assert.LessOrEqual(t, res.Score, base)
	assert.Equal(t, map[string]float64{"kp": 2, "ki": 0.5, "kd": 0}, res.Params)

	_, err = eval(context.Background(), map[string]float64{"gain": 1})
	assert.Error(t, err)
}
