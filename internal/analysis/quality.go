package analysis

import "math"

// Metric accumulates a figure of merit over the samples of a run.
type Metric interface {
	Name() string
	Observe(samples map[string]float64, dt float64)
	Value() float64
	Reset()
}

// IAE is the integral of the absolute value of one sample channel,
// usually the control error.
type IAE struct {
	key string
	sum float64
}

func NewIAE(key string) *IAE {
	return &IAE{key: key}
}

func (m *IAE) Name() string { return "iae" }

func (m *IAE) Observe(samples map[string]float64, dt float64) {
	m.sum += math.Abs(samples[m.key]) * dt
}

func (m *IAE) Value() float64 { return m.sum }

func (m *IAE) Reset() { m.sum = 0 }

// ControlEffort is the mean absolute value of the controller output.
type ControlEffort struct {
	key     string
	sum     float64
	samples int
}

func NewControlEffort(key string) *ControlEffort {
	return &ControlEffort{key: key}
}

func (c *ControlEffort) Name() string {
	return "control_effort"
}

func (c *ControlEffort) Observe(samples map[string]float64, dt float64) {
	c.sum += math.Abs(samples[c.key])
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// Evaluate resets metrics, feeds every sample set and returns the values
// keyed by metric name.
func Evaluate(samples []map[string]float64, dt float64, metrics ...Metric) map[string]float64 {
	for _, m := range metrics {
		m.Reset()
	}
	for _, s := range samples {
		for _, m := range metrics {
			m.Observe(s, dt)
		}
	}
	out := make(map[string]float64, len(metrics))
	for _, m := range metrics {
		out[m.Name()] = m.Value()
	}
	return out
}
