package fb

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOutputRange indicates a PID created with output_min >= output_max.
	ErrInvalidOutputRange = errors.New("fb: output_min must be less than output_max")

	// ErrInvalidRange indicates a limit with min_value > max_value.
	ErrInvalidRange = errors.New("fb: min_value must not exceed max_value")

	// ErrNegativeRate indicates a ramp rate below zero.
	ErrNegativeRate = errors.New("fb: ramp rates must be non-negative")

	// ErrNonPositiveDt indicates a compute call that requires dt > 0.
	ErrNonPositiveDt = errors.New("fb: dt must be positive")

	// ErrUnknownParam indicates SetParam was called with a name the block does not expose.
	ErrUnknownParam = errors.New("fb: unknown parameter")

	// ErrRegistryFull indicates the registry reached its block capacity.
	ErrRegistryFull = errors.New("fb: function block capacity reached")
)

// BlockError wraps a block failure with the block identity and operation.
type BlockError struct {
	Type Type
	ID   uint32
	Op   string
	Err  error
}

func (e *BlockError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s %s: %v", e.Type, e.Op, e.Err)
	}
	return fmt.Sprintf("%s#%d %s: %v", e.Type, e.ID, e.Op, e.Err)
}

func (e *BlockError) Unwrap() error {
	return e.Err
}
