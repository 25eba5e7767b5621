package fb

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/san-kum/plcrt/internal/clock"
)

// defaultDt is the time step used on the first auto-timed compute call.
const defaultDt = 0.1

// Type tags a function block kind.
type Type int

const (
	TypePID Type = iota
	TypeFirstOrderLag
	TypeRamp
	TypeLimit

	numTypes
)

func (t Type) String() string {
	switch t {
	case TypePID:
		return "pid"
	case TypeFirstOrderLag:
		return "first_order_lag"
	case TypeRamp:
		return "ramp"
	case TypeLimit:
		return "limit"
	default:
		return "unknown"
	}
}

// Header is the identity shared by every block.
type Header struct {
	Type Type
	ID   uint32

	lastUpdate time.Duration
	timed      bool
}

// resolveDt returns dt unchanged when positive. Otherwise it derives the step
// from the monotonic clock since the previous auto-timed call, falling back to
// defaultDt on the first one.
func (h *Header) resolveDt(dt float64, c clock.Clock) float64 {
	if dt > 0 {
		return dt
	}
	now := c.Now()
	if h.timed {
		dt = clock.Seconds(now - h.lastUpdate)
	} else {
		dt = defaultDt
	}
	h.lastUpdate = now
	h.timed = true
	return dt
}

func (h *Header) clearTiming() {
	h.lastUpdate = 0
	h.timed = false
}

// Block is implemented by every function block.
type Block interface {
	Header() Header
}

// Configurable exposes named parameters for live tuning.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// IDAllocator hands out instance identifiers, counting independently per
// block type. The first identifier of each type is 1.
type IDAllocator struct {
	counters [numTypes]atomic.Uint32
}

// Next returns the next identifier for t.
func (a *IDAllocator) Next(t Type) uint32 {
	if t < 0 || t >= numTypes {
		return 0
	}
	return a.counters[t].Add(1)
}

type options struct {
	clock  clock.Clock
	logger *slog.Logger
}

// Option configures a Registry.
type Option func(*options)

// WithClock sets the clock blocks use when dt <= 0.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger sets the logger for parameter diagnostics and lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}
