// Package fb implements the standard control function blocks driven by the
// cyclic executor:
//
//   - [PID]: position-form PID controller with anti-windup
//   - [FirstOrderLag]: discrete approximation of 1/(Ts+1)
//   - [Ramp]: rising/falling rate limiter
//   - [Limit]: hard output limiter
//
// # Usage
//
//	reg := fb.NewRegistry(32)
//	pid, err := reg.NewPID(fb.PIDConfig{Kp: 3, Ki: 0.2, Kd: 0.5, OutputMin: 0, OutputMax: 100})
//	u := pid.Compute(setpoint, measured, 0.1)
//
// Blocks are owned by a single goroutine and are not safe for concurrent use.
// Passing dt <= 0 to the PID and lag blocks makes them derive the time step
// from the [Clock] they were created with.
package fb
