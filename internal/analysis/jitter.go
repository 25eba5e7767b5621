package analysis

import (
	"errors"
	"math"
	"sort"
)

const (
	// TolerancePercent is the allowed deviation of a cycle interval from
	// the target period.
	TolerancePercent = 5.0
	// PassPercent is the share of in-tolerance cycles a run needs to pass.
	PassPercent = 95.0
)

var ErrNoSamples = errors.New("analysis: no samples")

type StabilityReport struct {
	Count               int
	TargetMs            float64
	ToleranceMs         float64
	Mean                float64
	Median              float64
	StdDev              float64
	Min                 float64
	Max                 float64
	WithinTolerance     int
	PercentWithin       float64
	MaxDeviation        float64
	MaxDeviationPercent float64
}

func (r StabilityReport) Passed() bool {
	return r.PercentWithin >= PassPercent
}

// CycleStability summarizes measured cycle intervals in milliseconds
// against targetMs.
func CycleStability(intervals []float64, targetMs float64) (StabilityReport, error) {
	n := len(intervals)
	if n == 0 {
		return StabilityReport{}, ErrNoSamples
	}

	r := StabilityReport{
		Count:       n,
		TargetMs:    targetMs,
		ToleranceMs: targetMs * TolerancePercent / 100,
		Min:         math.Inf(1),
		Max:         math.Inf(-1),
	}

	sum := 0.0
	for _, v := range intervals {
		sum += v
		r.Min = math.Min(r.Min, v)
		r.Max = math.Max(r.Max, v)

		dev := math.Abs(v - targetMs)
		r.MaxDeviation = math.Max(r.MaxDeviation, dev)
		if v >= targetMs-r.ToleranceMs && v <= targetMs+r.ToleranceMs {
			r.WithinTolerance++
		}
	}
	r.Mean = sum / float64(n)

	if n > 1 {
		ss := 0.0
		for _, v := range intervals {
			d := v - r.Mean
			ss += d * d
		}
		r.StdDev = math.Sqrt(ss / float64(n-1))
	}

	sorted := append([]float64(nil), intervals...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		r.Median = sorted[n/2]
	} else {
		r.Median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	r.PercentWithin = float64(r.WithinTolerance) / float64(n) * 100
	if targetMs > 0 {
		r.MaxDeviationPercent = r.MaxDeviation / targetMs * 100
	}
	return r, nil
}
