package fb

import (
	"testing"
	"time"

	"github.com/san-kum/plcrt/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLagFirstStepHalfway(t *testing.T) {
	f, err := newTestRegistry().NewFirstOrderLag(1.0)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, f.Compute(1.0, 1.0), 1e-12)
	assert.InDelta(t, 0.75, f.Compute(1.0, 1.0), 1e-12)
	assert.InDelta(t, 0.75, f.Output(), 1e-12)
}

func TestLagTracksInputForLargeDt(t *testing.T) {
	reg := newTestRegistry()
	prevGap := 1.0
	for _, dt := range []float64{1, 10, 1e3, 1e6} {
		f, err := reg.NewFirstOrderLag(1.0)
		require.NoError(t, err)
		gap := 1.0 - f.Compute(1.0, dt)
		assert.Less(t, gap, prevGap)
		prevGap = gap
	}
	assert.Less(t, prevGap, 1e-5)
}

func TestLagHoldsForTinyDt(t *testing.T) {
	f, err := newTestRegistry().NewFirstOrderLag(10)
	require.NoError(t, err)
	assert.Less(t, f.Compute(100, 1e-9), 1e-6)
}

func TestLagClampsTimeConstant(t *testing.T) {
	reg := newTestRegistry()
	f, err := reg.NewFirstOrderLag(0)
	require.NoError(t, err)
	assert.Equal(t, 0.001, f.TimeConstant())

	f.SetTimeConstant(5e6)
	assert.Equal(t, 1e6, f.TimeConstant())

	f.SetTimeConstant(2.5)
	assert.Equal(t, 2.5, f.TimeConstant())

	fresh, err := reg.NewFirstOrderLag(5e6)
	require.NoError(t, err)
	f.SetTimeConstant(5e6)
	assert.Equal(t, fresh.TimeConstant(), f.TimeConstant())
}

func TestLagAutoDtAndReset(t *testing.T) {
	mc := clock.NewManual(time.Hour)
	f, err := newTestRegistry(WithClock(mc)).NewFirstOrderLag(0.1)
	require.NoError(t, err)

	// first auto-timed call uses 0.1s, alpha = 0.5
	assert.InDelta(t, 0.5, f.Compute(1, 0), 1e-12)

	mc.Advance(100 * time.Millisecond)
	assert.InDelta(t, 0.75, f.Compute(1, -1), 1e-12)

	f.Reset()
	assert.Equal(t, 0.0, f.Output())
	mc.Advance(10 * time.Second)
	assert.InDelta(t, 0.5, f.Compute(1, 0), 1e-12)
}

func TestLagConfigurable(t *testing.T) {
	f, err := newTestRegistry().NewFirstOrderLag(3)
	require.NoError(t, err)

	require.NoError(t, f.SetParam("T", 4))
	assert.Equal(t, map[string]float64{"T": 4}, f.GetParams())
	assert.ErrorIs(t, f.SetParam("alpha", 1), ErrUnknownParam)
}
