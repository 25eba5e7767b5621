package plant

// Thermal is a heated body losing heat to its surroundings by Newton
// cooling:
//
//	dT/dt = HeatGain*u - Cooling*(T - Ambient)
//
// u is the heater drive in percent.
type Thermal struct {
	HeatGain float64
	Cooling  float64
	Ambient  float64
}

// NewThermal returns a heater where full drive (100 %) settles 100 °C above
// ambient, with a 4 s time constant.
func NewThermal(ambient float64) *Thermal {
	return &Thermal{
		HeatGain: 0.25,
		Cooling:  0.25,
		Ambient:  ambient,
	}
}

func (th *Thermal) StateDim() int { return 1 }

func (th *Thermal) Derive(x State, u []float64, t float64) State {
	drive := 0.0
	if len(u) > 0 {
		drive = u[0]
	}
	return State{th.HeatGain*drive - th.Cooling*(x[0]-th.Ambient)}
}

// SteadyState returns the temperature reached under constant drive u.
func (th *Thermal) SteadyState(u float64) float64 {
	return th.Ambient + th.HeatGain*u/th.Cooling
}

func (th *Thermal) GetParams() map[string]float64 {
	return map[string]float64{
		"heat_gain": th.HeatGain,
		"cooling":   th.Cooling,
		"ambient":   th.Ambient,
	}
}
