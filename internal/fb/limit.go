package fb

import "log/slog"

// Limit clamps its input to [min, max]. It keeps no state between calls.
type Limit struct {
	header Header
	min    float64
	max    float64
}

func newLimit(id uint32, min, max float64, log *slog.Logger) *Limit {
	log.Debug("limit created",
		slog.Uint64("id", uint64(id)),
		slog.Float64("min", min),
		slog.Float64("max", max))
	return &Limit{
		header: Header{Type: TypeLimit, ID: id},
		min:    min,
		max:    max,
	}
}

func (l *Limit) Header() Header { return l.header }

func (l *Limit) Compute(input float64) float64 {
	return Clamp(input, l.min, l.max)
}

// SetLimits replaces the bounds. min > max is rejected and the previous
// bounds are kept.
func (l *Limit) SetLimits(min, max float64) error {
	if min > max {
		return &BlockError{Type: TypeLimit, ID: l.header.ID, Op: "set limits", Err: ErrInvalidRange}
	}
	l.min = min
	l.max = max
	return nil
}

func (l *Limit) Limits() (min, max float64) {
	return l.min, l.max
}

func (l *Limit) GetParams() map[string]float64 {
	return map[string]float64{"min": l.min, "max": l.max}
}

func (l *Limit) SetParam(name string, value float64) error {
	switch name {
	case "min":
		return l.SetLimits(value, l.max)
	case "max":
		return l.SetLimits(l.min, value)
	}
	return &BlockError{Type: TypeLimit, ID: l.header.ID, Op: "set " + name, Err: ErrUnknownParam}
}
