package program

import (
	"context"

	"github.com/san-kum/plcrt/internal/fb"
)

// halfPeriodCycles is how long the square-wave target holds each level.
const halfPeriodCycles = 50

// RampLimit drives a square-wave target between zero and the setpoint
// through a rate limiter and a clamp.
type RampLimit struct {
	env Env

	ramp  *fb.Ramp
	limit *fb.Limit

	setpoint float64
	cycle    uint64
	samples  map[string]float64
}

func NewRampLimit(env Env) *RampLimit {
	return &RampLimit{
		env:      env,
		setpoint: env.Config.Program.Setpoint,
	}
}

func (r *RampLimit) Name() string { return "ramp_limit" }

func (r *RampLimit) Init(ctx context.Context) error {
	if r.ramp != nil {
		return ErrAlreadyInit
	}
	blocks := r.env.Config.Blocks

	ramp, err := r.env.Blocks.NewRamp(blocks.Ramp.RisingRate, blocks.Ramp.FallingRate)
	if err != nil {
		return err
	}
	limit, err := r.env.Blocks.NewLimit(blocks.Limit.Min, blocks.Limit.Max)
	if err != nil {
		r.env.Blocks.Release(ramp)
		return err
	}
	// start from rest so the first rising edge is rate limited
	ramp.Reset(0)
	r.ramp, r.limit = ramp, limit
	return nil
}

func (r *RampLimit) target() float64 {
	if (r.cycle/halfPeriodCycles)%2 == 1 {
		return r.setpoint
	}
	return 0
}

func (r *RampLimit) Step(ctx context.Context) error {
	if r.ramp == nil {
		return ErrNotInitialized
	}
	target := r.target()
	r.cycle++

	ramped, err := r.ramp.Compute(target, r.env.Dt)
	if err != nil {
		return err
	}
	out := r.limit.Compute(ramped)

	r.samples = map[string]float64{
		"target": target,
		"ramped": ramped,
		"output": out,
	}
	return nil
}

func (r *RampLimit) Samples() map[string]float64 { return r.samples }

func (r *RampLimit) GetParams() map[string]float64 {
	params := map[string]float64{"setpoint": r.setpoint}
	if r.ramp != nil {
		for k, v := range r.ramp.GetParams() {
			params[k] = v
		}
		for k, v := range r.limit.GetParams() {
			params[k] = v
		}
	}
	return params
}

func (r *RampLimit) SetParam(name string, value float64) error {
	if name == "setpoint" {
		r.setpoint = value
		return nil
	}
	if r.ramp == nil {
		return ErrNotInitialized
	}
	switch name {
	case "rising_rate", "falling_rate":
		return r.ramp.SetParam(name, value)
	case "min", "max":
		return r.limit.SetParam(name, value)
	}
	return unknownParam(name)
}
