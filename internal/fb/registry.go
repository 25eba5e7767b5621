package fb

import (
	"log/slog"

	"github.com/san-kum/plcrt/internal/clock"
)

// Registry creates function blocks, assigns their identifiers and tracks the
// live set against an optional capacity.
type Registry struct {
	ids      IDAllocator
	capacity int
	blocks   []Block
	clock    clock.Clock
	log      *slog.Logger
}

// NewRegistry returns a registry holding at most capacity blocks. A capacity
// of zero or less means unlimited.
func NewRegistry(capacity int, opts ...Option) *Registry {
	o := options{
		clock:  clock.Monotonic(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Registry{
		capacity: capacity,
		clock:    o.clock,
		log:      o.logger,
	}
}

func (r *Registry) admit(t Type) (uint32, error) {
	if r.capacity > 0 && len(r.blocks) >= r.capacity {
		return 0, &BlockError{Type: t, Op: "create", Err: ErrRegistryFull}
	}
	return r.ids.Next(t), nil
}

func (r *Registry) track(b Block) {
	r.blocks = append(r.blocks, b)
}

// NewPID validates cfg and creates a PID block.
func (r *Registry) NewPID(cfg PIDConfig) (*PID, error) {
	if cfg.OutputMin >= cfg.OutputMax {
		r.log.Error("pid create failed",
			slog.Float64("output_min", cfg.OutputMin),
			slog.Float64("output_max", cfg.OutputMax))
		return nil, &BlockError{Type: TypePID, Op: "create", Err: ErrInvalidOutputRange}
	}
	id, err := r.admit(TypePID)
	if err != nil {
		return nil, err
	}
	p := newPID(id, cfg, r.clock, r.log)
	r.track(p)
	return p, nil
}

// NewFirstOrderLag creates a lag block with time constant t seconds.
func (r *Registry) NewFirstOrderLag(t float64) (*FirstOrderLag, error) {
	id, err := r.admit(TypeFirstOrderLag)
	if err != nil {
		return nil, err
	}
	f := newFirstOrderLag(id, t, r.clock, r.log)
	r.track(f)
	return f, nil
}

// NewRamp creates a rate limiter. Both rates must be non-negative.
func (r *Registry) NewRamp(rising, falling float64) (*Ramp, error) {
	if rising < 0 || falling < 0 {
		return nil, &BlockError{Type: TypeRamp, Op: "create", Err: ErrNegativeRate}
	}
	id, err := r.admit(TypeRamp)
	if err != nil {
		return nil, err
	}
	rp := newRamp(id, rising, falling, r.log)
	r.track(rp)
	return rp, nil
}

// NewLimit creates a limiter over [min, max].
func (r *Registry) NewLimit(min, max float64) (*Limit, error) {
	if min > max {
		return nil, &BlockError{Type: TypeLimit, Op: "create", Err: ErrInvalidRange}
	}
	id, err := r.admit(TypeLimit)
	if err != nil {
		return nil, err
	}
	l := newLimit(id, min, max, r.log)
	r.track(l)
	return l, nil
}

// Release removes b from the registry, freeing its capacity slot. It reports
// whether b was registered.
func (r *Registry) Release(b Block) bool {
	for i, cur := range r.blocks {
		if cur == b {
			r.blocks = append(r.blocks[:i], r.blocks[i+1:]...)
			h := b.Header()
			r.log.Info("function block released",
				slog.String("type", h.Type.String()),
				slog.Uint64("id", uint64(h.ID)))
			return true
		}
	}
	return false
}

// Len returns the number of live blocks.
func (r *Registry) Len() int { return len(r.blocks) }

// Blocks returns the live blocks in creation order.
func (r *Registry) Blocks() []Block {
	out := make([]Block, len(r.blocks))
	copy(out, r.blocks)
	return out
}
