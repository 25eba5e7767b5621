package program

import "context"

// Idle does no work. Running it measures the scheduler's own jitter.
type Idle struct{}

func NewIdle() *Idle { return &Idle{} }

func (Idle) Name() string { return "idle" }

func (Idle) Init(context.Context) error { return nil }

func (Idle) Step(context.Context) error { return nil }

func (Idle) Samples() map[string]float64 { return nil }

func (Idle) GetParams() map[string]float64 { return map[string]float64{} }

func (Idle) SetParam(name string, _ float64) error { return unknownParam(name) }
