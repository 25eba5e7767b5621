// Package program holds the built-in step programs the executor can run.
package program

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/san-kum/plcrt/internal/config"
	"github.com/san-kum/plcrt/internal/fb"
)

var (
	ErrNotInitialized = errors.New("program: not initialized")
	ErrAlreadyInit    = errors.New("program: already initialized")
	ErrInvalidDt      = errors.New("program: cycle dt must be positive")
)

// Program is a step with named samples and tunable parameters.
type Program interface {
	Name() string
	Init(ctx context.Context) error
	Step(ctx context.Context) error
	Samples() map[string]float64
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Env is what a program is built from.
type Env struct {
	Blocks *fb.Registry
	Config *config.Config
	// Dt is the cycle period in seconds passed to every block.
	Dt  float64
	Log *slog.Logger
}

type Factory func(env Env) Program

type entry struct {
	description string
	factory     Factory
}

type Registry struct {
	programs map[string]entry
}

func NewRegistry() *Registry {
	r := &Registry{programs: make(map[string]entry)}

	r.Register("pid_temperature", "heater under PID control with filtered noisy measurement",
		func(env Env) Program { return NewPIDTemperature(env) })
	r.Register("ramp_limit", "square-wave setpoint shaped by a ramp and a limit",
		func(env Env) Program { return NewRampLimit(env) })
	r.Register("idle", "empty step for timing benchmarks",
		func(env Env) Program { return NewIdle() })

	return r
}

func (r *Registry) Register(name, description string, f Factory) {
	r.programs[name] = entry{description: description, factory: f}
}

// Get builds the named program. A nil block registry or logger is replaced
// by an unlimited registry and slog.Default.
func (r *Registry) Get(name string, env Env) (Program, error) {
	e, ok := r.programs[name]
	if !ok {
		return nil, fmt.Errorf("unknown program: %s", name)
	}
	if env.Dt <= 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrInvalidDt)
	}
	if env.Config == nil {
		env.Config = config.DefaultConfig()
	}
	if env.Log == nil {
		env.Log = slog.Default()
	}
	if env.Blocks == nil {
		env.Blocks = fb.NewRegistry(0, fb.WithLogger(env.Log))
	}
	return e.factory(env), nil
}

func (r *Registry) Describe(name string) string {
	return r.programs[name].description
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.programs))
	for name := range r.programs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func unknownParam(name string) error {
	return fmt.Errorf("%w: %s", fb.ErrUnknownParam, name)
}
