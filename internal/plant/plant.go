// Package plant holds simulated processes the built-in programs control.
package plant

// State is the plant state vector.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// Dynamics returns dx/dt for state x under input u.
type Dynamics interface {
	Derive(x State, u []float64, t float64) State
	StateDim() int
}
