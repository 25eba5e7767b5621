package fb

import (
	"testing"
	"time"

	"github.com/san-kum/plcrt/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIDRejectsInvertedOutputRange(t *testing.T) {
	reg := newTestRegistry()
	for _, bounds := range [][2]float64{{10, 10}, {10, 0}} {
		p, err := reg.NewPID(PIDConfig{Kp: 1, OutputMin: bounds[0], OutputMax: bounds[1]})
		assert.Nil(t, p)
		assert.ErrorIs(t, err, ErrInvalidOutputRange)
	}
	assert.Equal(t, 0, reg.Len())
}

func TestPIDClampsGains(t *testing.T) {
	reg := newTestRegistry()
	p, err := reg.NewPID(PIDConfig{Kp: -5, Ki: 2e6, Kd: 3, OutputMin: -1, OutputMax: 1})
	require.NoError(t, err)

	params := p.Params()
	assert.Equal(t, 0.0, params.Kp)
	assert.Equal(t, 1e6, params.Ki)
	assert.Equal(t, 3.0, params.Kd)
	assert.Equal(t, -1.0, params.OutputMin)
	assert.Equal(t, 1.0, params.OutputMax)
}

func TestPIDZeroErrorGivesZeroOutput(t *testing.T) {
	p, err := newTestRegistry().NewPID(PIDConfig{Kp: 2, Ki: 0, Kd: 1, OutputMin: -100, OutputMax: 100})
	require.NoError(t, err)

	for range 50 {
		assert.Equal(t, 0.0, p.Compute(10, 10, 0.1))
	}
	assert.Equal(t, 0.0, p.State().Integral)
}

func TestPIDProportionalOnly(t *testing.T) {
	reg := newTestRegistry()
	p, err := reg.NewPID(PIDConfig{Kp: 1, OutputMin: -100, OutputMax: 100})
	require.NoError(t, err)
	for _, dt := range []float64{0.01, 0.1, 1, 10} {
		assert.Equal(t, 10.0, p.Compute(10, 0, dt))
	}

	narrow, err := reg.NewPID(PIDConfig{Kp: 1, OutputMin: 0, OutputMax: 5})
	require.NoError(t, err)
	assert.Equal(t, 5.0, narrow.Compute(10, 0, 0.1))
	assert.Equal(t, 0.0, narrow.Compute(0, 10, 0.1))
}

func TestPIDIntegralAndDerivative(t *testing.T) {
	reg := newTestRegistry()

	pi, err := reg.NewPID(PIDConfig{Ki: 1, OutputMin: -100, OutputMax: 100})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, pi.Compute(1, 0, 0.5), 1e-12)
	assert.InDelta(t, 1.0, pi.Compute(1, 0, 0.5), 1e-12)
	assert.InDelta(t, 1.0, pi.State().Integral, 1e-12)

	pd, err := reg.NewPID(PIDConfig{Kd: 1, OutputMin: -100, OutputMax: 100})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, pd.Compute(1, 0, 0.5), 1e-12)
	// constant error: derivative vanishes
	assert.InDelta(t, 0.0, pd.Compute(1, 0, 0.5), 1e-12)
	assert.Equal(t, 1.0, pd.LastError())
	assert.Equal(t, 1.0, pd.State().PrevError)
}

func TestPIDAntiWindup(t *testing.T) {
	p, err := newTestRegistry().NewPID(PIDConfig{Kp: 1, Ki: 1, OutputMin: 0, OutputMax: 10})
	require.NoError(t, err)

	var integral float64
	for i := range 200 {
		out := p.Compute(1000, 0, 0.1)
		assert.Equal(t, 10.0, out)
		if i > 0 {
			assert.Equal(t, integral, p.State().Integral, "integral grew while saturated")
		}
		integral = p.State().Integral
	}
	assert.LessOrEqual(t, integral, 10.0)
}

func TestPIDWindupRecovery(t *testing.T) {
	p, err := newTestRegistry().NewPID(PIDConfig{Ki: 1, OutputMin: -10, OutputMax: 10})
	require.NoError(t, err)

	for range 100 {
		p.Compute(1000, 0, 0.1)
	}
	// the integrator did not run away, so a reversed error pulls the output
	// off the rail within a few cycles
	out := 10.0
	for range 5 {
		out = p.Compute(0, 5, 0.1)
	}
	assert.Less(t, out, 10.0)
}

func TestPIDAutoDt(t *testing.T) {
	mc := clock.NewManual(time.Minute)
	p, err := newTestRegistry(WithClock(mc)).NewPID(PIDConfig{Ki: 1, OutputMin: -100, OutputMax: 100})
	require.NoError(t, err)

	assert.InDelta(t, 0.1, p.Compute(1, 0, 0), 1e-12)

	mc.Advance(500 * time.Millisecond)
	assert.InDelta(t, 0.6, p.Compute(1, 0, 0), 1e-12)

	// an explicit dt leaves the auto-timing reference untouched
	mc.Advance(time.Second)
	assert.InDelta(t, 0.7, p.Compute(1, 0, 0.1), 1e-12)
	assert.InDelta(t, 1.7, p.Compute(1, 0, 0), 1e-12)

	p.Reset()
	assert.Equal(t, PIDState{}, p.State())
	assert.Equal(t, 0.0, p.LastError())
	assert.InDelta(t, 0.1, p.Compute(1, 0, 0), 1e-12)
}

func TestPIDResetKeepsParams(t *testing.T) {
	p, err := newTestRegistry().NewPID(PIDConfig{Kp: 2, Ki: 3, Kd: 4, OutputMin: -1000, OutputMax: 1000})
	require.NoError(t, err)
	before := p.Params()
	p.Compute(5, 1, 0.1)
	p.Reset()
	assert.Equal(t, before, p.Params())
}

func TestPIDSetGainsRoundTrip(t *testing.T) {
	reg := newTestRegistry()
	raw := PIDConfig{Kp: -3, Ki: 4.5, Kd: 5e7, OutputMin: 0, OutputMax: 100}

	fresh, err := reg.NewPID(raw)
	require.NoError(t, err)

	p, err := reg.NewPID(PIDConfig{Kp: 1, Ki: 1, Kd: 1, OutputMin: 0, OutputMax: 100})
	require.NoError(t, err)
	p.SetGains(&raw.Kp, &raw.Ki, &raw.Kd)

	assert.Equal(t, fresh.Params(), p.Params())
}

func TestPIDSetGainsPartial(t *testing.T) {
	p, err := newTestRegistry().NewPID(PIDConfig{Kp: 1, Ki: 2, Kd: 3, OutputMin: 0, OutputMax: 1})
	require.NoError(t, err)

	ki := 7.0
	p.SetGains(nil, &ki, nil)
	assert.Equal(t, PIDParams{Kp: 1, Ki: 7, Kd: 3, OutputMin: 0, OutputMax: 1}, p.Params())
}

func TestPIDConfigurable(t *testing.T) {
	p, err := newTestRegistry().NewPID(PIDConfig{Kp: 1, Ki: 2, Kd: 3, OutputMin: 0, OutputMax: 1})
	require.NoError(t, err)

	var c Configurable = p
	require.NoError(t, c.SetParam("Kd", 9))
	assert.Equal(t, map[string]float64{"Kp": 1, "Ki": 2, "Kd": 9}, c.GetParams())

	require.NoError(t, c.SetParam("Kp", -1))
	assert.Equal(t, 0.0, p.Params().Kp)

	assert.ErrorIs(t, c.SetParam("output_max", 5), ErrUnknownParam)
}
