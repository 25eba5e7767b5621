package fb

import (
	"log/slog"

	"github.com/san-kum/plcrt/internal/clock"
)

const (
	gainMin = 0.0
	gainMax = 1e6
)

// PIDConfig holds the raw construction parameters of a PID block.
type PIDConfig struct {
	Kp        float64
	Ki        float64
	Kd        float64
	OutputMin float64
	OutputMax float64
}

// PIDParams is the validated parameter set of a PID block.
type PIDParams struct {
	Kp        float64
	Ki        float64
	Kd        float64
	OutputMin float64
	OutputMax float64
}

// PIDState is the path-dependent state of a PID block.
type PIDState struct {
	Integral  float64
	PrevError float64
}

// PID is a position-form PID controller with output clamping and
// integrator rollback while saturated.
type PID struct {
	header    Header
	params    PIDParams
	state     PIDState
	lastError float64
	clock     clock.Clock
	log       *slog.Logger
}

func newPID(id uint32, cfg PIDConfig, c clock.Clock, log *slog.Logger) *PID {
	p := &PID{
		header: Header{Type: TypePID, ID: id},
		params: PIDParams{
			Kp:        ValidateAndClamp(log, cfg.Kp, gainMin, gainMax, "Kp"),
			Ki:        ValidateAndClamp(log, cfg.Ki, gainMin, gainMax, "Ki"),
			Kd:        ValidateAndClamp(log, cfg.Kd, gainMin, gainMax, "Kd"),
			OutputMin: cfg.OutputMin,
			OutputMax: cfg.OutputMax,
		},
		clock: c,
		log:   log,
	}
	log.Info("pid created",
		slog.Uint64("id", uint64(id)),
		slog.Float64("kp", p.params.Kp),
		slog.Float64("ki", p.params.Ki),
		slog.Float64("kd", p.params.Kd),
		slog.Float64("output_min", p.params.OutputMin),
		slog.Float64("output_max", p.params.OutputMax))
	return p
}

func (p *PID) Header() Header { return p.header }

// Compute returns the limited controller output for setpoint sp and process
// value pv. A dt <= 0 is replaced by the time since the previous auto-timed
// call.
func (p *PID) Compute(sp, pv, dt float64) float64 {
	err := sp - pv
	dt = p.header.resolveDt(dt, p.clock)

	output := p.params.Kp * err

	p.state.Integral += err * dt
	output += p.params.Ki * p.state.Integral

	if dt > 0 {
		derivative := (err - p.state.PrevError) / dt
		output += p.params.Kd * derivative
	}

	p.state.PrevError = err
	p.lastError = err

	limited := Clamp(output, p.params.OutputMin, p.params.OutputMax)

	// stop integrating while the output is pinned
	if limited != output && p.params.Ki > 0 {
		p.state.Integral -= err * dt
	}

	return limited
}

// SetGains updates the non-nil gains, clamping each into [0, 1e6]. Output
// bounds are fixed at creation.
func (p *PID) SetGains(kp, ki, kd *float64) {
	if kp != nil {
		p.params.Kp = ValidateAndClamp(p.log, *kp, gainMin, gainMax, "Kp")
	}
	if ki != nil {
		p.params.Ki = ValidateAndClamp(p.log, *ki, gainMin, gainMax, "Ki")
	}
	if kd != nil {
		p.params.Kd = ValidateAndClamp(p.log, *kd, gainMin, gainMax, "Kd")
	}
	p.log.Info("pid gains updated",
		slog.Uint64("id", uint64(p.header.ID)),
		slog.Float64("kp", p.params.Kp),
		slog.Float64("ki", p.params.Ki),
		slog.Float64("kd", p.params.Kd))
}

// Params returns a snapshot of the parameters.
func (p *PID) Params() PIDParams { return p.params }

// State returns a snapshot of the integrator and previous error.
func (p *PID) State() PIDState { return p.state }

// LastError returns the error seen by the most recent Compute.
func (p *PID) LastError() float64 { return p.lastError }

// Reset clears the integrator, the derivative memory and the auto-dt
// timestamp. Parameters are kept.
func (p *PID) Reset() {
	p.state = PIDState{}
	p.lastError = 0
	p.header.clearTiming()
	p.log.Info("pid reset", slog.Uint64("id", uint64(p.header.ID)))
}

// GetParams returns the tunable gains.
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp": p.params.Kp,
		"Ki": p.params.Ki,
		"Kd": p.params.Kd,
	}
}

// SetParam adjusts a single gain by name.
func (p *PID) SetParam(name string, value float64) error {
	switch name {
	case "Kp":
		p.SetGains(&value, nil, nil)
	case "Ki":
		p.SetGains(nil, &value, nil)
	case "Kd":
		p.SetGains(nil, nil, &value)
	default:
		return &BlockError{Type: TypePID, ID: p.header.ID, Op: "set " + name, Err: ErrUnknownParam}
	}
	return nil
}
