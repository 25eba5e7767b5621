package config

import "sort"

// Presets adjust runtime timing and placement over the defaults.
var Presets = map[string]func(*Config){
	"default": func(c *Config) {},
	"fast": func(c *Config) {
		c.Runtime.CyclePeriodMs = 10
		c.Runtime.TimeoutThresholdPercent = 150
		c.Blocks.Lag.TimeConstant = 0.05
	},
	"slow": func(c *Config) {
		c.Runtime.CyclePeriodMs = 1000
		c.Blocks.Lag.TimeConstant = 2.0
	},
	"pinned": func(c *Config) {
		c.Runtime.CyclePeriodMs = 50
		c.Performance.CPUAffinity = 1
	},
}

// GetPreset returns the defaults with the named preset applied, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
