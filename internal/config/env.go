package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	EnvCyclePeriodMs    = "PLCRT_CYCLE_PERIOD_MS"
	EnvThresholdPercent = "PLCRT_TIMEOUT_THRESHOLD_PERCENT"
	EnvCPUAffinity      = "PLCRT_CPU_AFFINITY"
	EnvLogLevel         = "PLCRT_LOG_LEVEL"
	EnvProgram          = "PLCRT_PROGRAM"
)

// LoadDotEnv loads variables from the given files (".env" when none are
// named). Missing files are ignored and variables already set in the
// process environment win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from PLCRT_* variables read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(EnvCyclePeriodMs); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCyclePeriodMs, err)
		}
		c.Runtime.CyclePeriodMs = n
	}
	if v, ok := lookup(EnvThresholdPercent); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvThresholdPercent, err)
		}
		c.Runtime.TimeoutThresholdPercent = n
	}
	if v, ok := lookup(EnvCPUAffinity); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCPUAffinity, err)
		}
		c.Performance.CPUAffinity = n
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.Logging.Level = v
	}
	if v, ok := lookup(EnvProgram); ok {
		c.Runtime.Program = v
	}
	return nil
}
