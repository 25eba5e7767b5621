package fb

import (
	"log/slog"

	"github.com/san-kum/plcrt/internal/clock"
)

const (
	timeConstantMin = 0.001
	timeConstantMax = 1e6
)

// FirstOrderLag smooths its input with alpha = dt/(T+dt), the discrete form
// of H(s) = 1/(Ts+1).
type FirstOrderLag struct {
	header Header
	t      float64
	prev   float64
	clock  clock.Clock
	log    *slog.Logger
}

func newFirstOrderLag(id uint32, t float64, c clock.Clock, log *slog.Logger) *FirstOrderLag {
	f := &FirstOrderLag{
		header: Header{Type: TypeFirstOrderLag, ID: id},
		t:      ValidateAndClamp(log, t, timeConstantMin, timeConstantMax, "T"),
		clock:  c,
		log:    log,
	}
	log.Info("first order lag created",
		slog.Uint64("id", uint64(id)),
		slog.Float64("T", f.t))
	return f
}

func (f *FirstOrderLag) Header() Header { return f.header }

// Compute filters input over a step of dt seconds. A dt <= 0 is replaced by
// the time since the previous auto-timed call.
func (f *FirstOrderLag) Compute(input, dt float64) float64 {
	dt = f.header.resolveDt(dt, f.clock)
	alpha := dt / (f.t + dt)
	out := alpha*input + (1-alpha)*f.prev
	f.prev = out
	return out
}

// SetTimeConstant clamps t into [0.001, 1e6] and applies it.
func (f *FirstOrderLag) SetTimeConstant(t float64) {
	f.t = ValidateAndClamp(f.log, t, timeConstantMin, timeConstantMax, "T")
	f.log.Info("first order lag updated",
		slog.Uint64("id", uint64(f.header.ID)),
		slog.Float64("T", f.t))
}

// TimeConstant returns T in seconds.
func (f *FirstOrderLag) TimeConstant() float64 { return f.t }

// Output returns the most recent output.
func (f *FirstOrderLag) Output() float64 { return f.prev }

// Reset zeroes the output memory and the auto-dt timestamp.
func (f *FirstOrderLag) Reset() {
	f.prev = 0
	f.header.clearTiming()
	f.log.Info("first order lag reset", slog.Uint64("id", uint64(f.header.ID)))
}

func (f *FirstOrderLag) GetParams() map[string]float64 {
	return map[string]float64{"T": f.t}
}

func (f *FirstOrderLag) SetParam(name string, value float64) error {
	if name != "T" {
		return &BlockError{Type: TypeFirstOrderLag, ID: f.header.ID, Op: "set " + name, Err: ErrUnknownParam}
	}
	f.SetTimeConstant(value)
	return nil
}
