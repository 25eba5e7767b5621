// Package analysis evaluates recorded runs.
//
// Timing:
//
//   - [CycleStability]: interval statistics against the target period,
//     with the share of cycles within ±5 % and a 95 % pass mark
//   - [DominantFrequency]: strongest periodic component of the jitter
//
// Control quality is measured with [Metric] implementations such as
// [IAE] and [ControlEffort], fed cycle by cycle:
//
//	iae := analysis.NewIAE("error")
//	vals := analysis.Evaluate(samples, dt, iae)
package analysis
