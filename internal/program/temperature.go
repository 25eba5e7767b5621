package program

import (
	"context"
	"math/rand"

	"github.com/san-kum/plcrt/internal/fb"
	"github.com/san-kum/plcrt/internal/plant"
)

// PIDTemperature holds a heated body at a setpoint. Each cycle the noisy
// measurement is smoothed by a first-order lag, the PID computes the heater
// drive, the limit clamps it and the plant advances one period.
type PIDTemperature struct {
	env Env

	lag   *fb.FirstOrderLag
	pid   *fb.PID
	limit *fb.Limit

	thermal *plant.Thermal
	rk4     *plant.RK4
	rng     *rand.Rand

	setpoint    float64
	temperature float64
	t           float64
	samples     map[string]float64
}

func NewPIDTemperature(env Env) *PIDTemperature {
	return &PIDTemperature{
		env:      env,
		setpoint: env.Config.Program.Setpoint,
	}
}

func (p *PIDTemperature) Name() string { return "pid_temperature" }

func (p *PIDTemperature) Init(ctx context.Context) error {
	if p.pid != nil {
		return ErrAlreadyInit
	}
	blocks := p.env.Config.Blocks

	lag, err := p.env.Blocks.NewFirstOrderLag(blocks.Lag.TimeConstant)
	if err != nil {
		return err
	}
	pid, err := p.env.Blocks.NewPID(fb.PIDConfig{
		Kp:        blocks.PID.Kp,
		Ki:        blocks.PID.Ki,
		Kd:        blocks.PID.Kd,
		OutputMin: blocks.PID.OutputMin,
		OutputMax: blocks.PID.OutputMax,
	})
	if err != nil {
		p.env.Blocks.Release(lag)
		return err
	}
	limit, err := p.env.Blocks.NewLimit(blocks.Limit.Min, blocks.Limit.Max)
	if err != nil {
		p.env.Blocks.Release(lag)
		p.env.Blocks.Release(pid)
		return err
	}
	p.lag, p.pid, p.limit = lag, pid, limit

	prog := p.env.Config.Program
	p.thermal = plant.NewThermal(prog.Ambient)
	p.rk4 = plant.NewRK4()
	p.rng = rand.New(rand.NewSource(prog.Seed))
	p.temperature = prog.Ambient

	p.env.Log.Info("program initialized",
		"program", p.Name(),
		"setpoint", p.setpoint,
		"pid_id", pid.Header().ID,
		"lag_id", lag.Header().ID)
	return nil
}

func (p *PIDTemperature) Step(ctx context.Context) error {
	if p.pid == nil {
		return ErrNotInitialized
	}
	dt := p.env.Dt

	measured := p.temperature + p.env.Config.Program.Noise*p.rng.NormFloat64()
	filtered := p.lag.Compute(measured, dt)
	drive := p.limit.Compute(p.pid.Compute(p.setpoint, filtered, dt))

	x := p.rk4.Step(p.thermal, plant.State{p.temperature}, []float64{drive}, p.t, dt)
	p.temperature = x[0]
	p.t += dt

	p.samples = map[string]float64{
		"setpoint":    p.setpoint,
		"temperature": p.temperature,
		"measured":    measured,
		"filtered":    filtered,
		"output":      drive,
		"error":       p.pid.LastError(),
	}
	return nil
}

func (p *PIDTemperature) Samples() map[string]float64 { return p.samples }

func (p *PIDTemperature) Temperature() float64 { return p.temperature }

func (p *PIDTemperature) GetParams() map[string]float64 {
	params := map[string]float64{"setpoint": p.setpoint}
	if p.pid != nil {
		g := p.pid.Params()
		params["kp"] = g.Kp
		params["ki"] = g.Ki
		params["kd"] = g.Kd
		params["time_constant"] = p.lag.TimeConstant()
	}
	return params
}

func (p *PIDTemperature) SetParam(name string, value float64) error {
	if name == "setpoint" {
		p.setpoint = value
		return nil
	}
	if p.pid == nil {
		return ErrNotInitialized
	}
	switch name {
	case "kp":
		return p.pid.SetParam("Kp", value)
	case "ki":
		return p.pid.SetParam("Ki", value)
	case "kd":
		return p.pid.SetParam("Kd", value)
	case "time_constant":
		return p.lag.SetParam("T", value)
	}
	return unknownParam(name)
}
