package fb

import (
	"log/slog"
	"math"
)

// Ramp limits how fast its output may follow the input, with separate
// rising and falling rates in units per second.
type Ramp struct {
	header      Header
	rising      float64
	falling     float64
	output      float64
	initialized bool
	log         *slog.Logger
}

func newRamp(id uint32, rising, falling float64, log *slog.Logger) *Ramp {
	log.Debug("ramp created",
		slog.Uint64("id", uint64(id)),
		slog.Float64("rising_rate", rising),
		slog.Float64("falling_rate", falling))
	return &Ramp{
		header:  Header{Type: TypeRamp, ID: id},
		rising:  rising,
		falling: falling,
		log:     log,
	}
}

func (r *Ramp) Header() Header { return r.header }

// Compute moves the output toward input by at most rate*dt. The first call
// after creation snaps straight to input.
func (r *Ramp) Compute(input, dt float64) (float64, error) {
	if dt <= 0 {
		return 0, &BlockError{Type: TypeRamp, ID: r.header.ID, Op: "compute", Err: ErrNonPositiveDt}
	}

	if !r.initialized {
		r.output = input
		r.initialized = true
		return r.output, nil
	}

	diff := input - r.output
	maxChange := r.falling * dt
	if diff > 0 {
		maxChange = r.rising * dt
	}

	if math.Abs(diff) <= maxChange {
		r.output = input
	} else {
		r.output += math.Copysign(maxChange, diff)
	}
	return r.output, nil
}

// SetRates replaces both rates. Negative rates are rejected and the previous
// rates are kept.
func (r *Ramp) SetRates(rising, falling float64) error {
	if rising < 0 || falling < 0 {
		return &BlockError{Type: TypeRamp, ID: r.header.ID, Op: "set rates", Err: ErrNegativeRate}
	}
	r.rising = rising
	r.falling = falling
	return nil
}

// Rates returns the rising and falling rates.
func (r *Ramp) Rates() (rising, falling float64) {
	return r.rising, r.falling
}

// Output returns the current limited value.
func (r *Ramp) Output() float64 { return r.output }

// Initialized reports whether the ramp has a starting value.
func (r *Ramp) Initialized() bool { return r.initialized }

// Reset sets the output to initial and marks the ramp initialized, so the
// next Compute is rate limited from initial.
func (r *Ramp) Reset(initial float64) {
	r.output = initial
	r.initialized = true
}

func (r *Ramp) GetParams() map[string]float64 {
	return map[string]float64{
		"rising_rate":  r.rising,
		"falling_rate": r.falling,
	}
}

func (r *Ramp) SetParam(name string, value float64) error {
	switch name {
	case "rising_rate":
		return r.SetRates(value, r.falling)
	case "falling_rate":
		return r.SetRates(r.rising, value)
	}
	return &BlockError{Type: TypeRamp, ID: r.header.ID, Op: "set " + name, Err: ErrUnknownParam}
}
