package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultCyclePeriodMs     = 100
	DefaultThresholdPercent  = 110
	DefaultProgram           = "pid_temperature"
	DefaultLogLevel          = "INFO"
	DefaultLogFile           = "runtime.log"
	DefaultLogMaxSizeMB      = 10
	DefaultLogBackupCount    = 3
	DefaultCPUAffinity       = -1
	DefaultMaxFunctionBlocks = 32

	MinCyclePeriodMs = 10
	MaxCyclePeriodMs = 1000
)

var (
	ErrInvalidPeriod    = errors.New("config: cycle_period_ms must be in [10, 1000]")
	ErrInvalidThreshold = errors.New("config: timeout_threshold_percent must be positive")
	ErrNoProgram        = errors.New("config: program must be set")
	ErrInvalidCapacity  = errors.New("config: max_function_blocks must be positive")
)

type Config struct {
	Runtime     RuntimeConfig     `yaml:"runtime"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
	Blocks      BlocksConfig      `yaml:"blocks"`
	Program     ProgramConfig     `yaml:"program"`
}

type RuntimeConfig struct {
	CyclePeriodMs           int    `yaml:"cycle_period_ms"`
	TimeoutThresholdPercent int    `yaml:"timeout_threshold_percent"`
	Program                 string `yaml:"program"`
	MaxCycles               uint64 `yaml:"max_cycles"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	File        string `yaml:"file"`
	MaxSizeMB   int    `yaml:"max_size_mb"`
	BackupCount int    `yaml:"backup_count"`
	Console     bool   `yaml:"console"`
}

type PerformanceConfig struct {
	CPUAffinity       int `yaml:"cpu_affinity"`
	MaxFunctionBlocks int `yaml:"max_function_blocks"`
}

type BlocksConfig struct {
	PID   PIDConfig   `yaml:"pid"`
	Lag   LagConfig   `yaml:"lag"`
	Ramp  RampConfig  `yaml:"ramp"`
	Limit LimitConfig `yaml:"limit"`
}

type PIDConfig struct {
	Kp        float64 `yaml:"kp"`
	Ki        float64 `yaml:"ki"`
	Kd        float64 `yaml:"kd"`
	OutputMin float64 `yaml:"output_min"`
	OutputMax float64 `yaml:"output_max"`
}

type LagConfig struct {
	TimeConstant float64 `yaml:"time_constant"`
}

type RampConfig struct {
	RisingRate  float64 `yaml:"rising_rate"`
	FallingRate float64 `yaml:"falling_rate"`
}

type LimitConfig struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// ProgramConfig parameterizes the built-in programs.
type ProgramConfig struct {
	Setpoint float64 `yaml:"setpoint"`
	Ambient  float64 `yaml:"ambient"`
	Noise    float64 `yaml:"noise"`
	Seed     int64   `yaml:"seed"`
}

func DefaultConfig() *Config {
	return &Config{
		Runtime: RuntimeConfig{
			CyclePeriodMs:           DefaultCyclePeriodMs,
			TimeoutThresholdPercent: DefaultThresholdPercent,
			Program:                 DefaultProgram,
		},
		Logging: LoggingConfig{
			Level:       DefaultLogLevel,
			File:        DefaultLogFile,
			MaxSizeMB:   DefaultLogMaxSizeMB,
			BackupCount: DefaultLogBackupCount,
			Console:     true,
		},
		Performance: PerformanceConfig{
			CPUAffinity:       DefaultCPUAffinity,
			MaxFunctionBlocks: DefaultMaxFunctionBlocks,
		},
		Blocks: BlocksConfig{
			PID:   PIDConfig{Kp: 2.0, Ki: 0.5, Kd: 0.1, OutputMin: 0, OutputMax: 100},
			Lag:   LagConfig{TimeConstant: 0.5},
			Ramp:  RampConfig{RisingRate: 5.0, FallingRate: 10.0},
			Limit: LimitConfig{Min: 0, Max: 100},
		},
		Program: ProgramConfig{
			Setpoint: 50.0,
			Ambient:  20.0,
			Noise:    0.1,
			Seed:     1,
		},
	}
}

// Load reads a YAML file over the defaults. Keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Runtime.CyclePeriodMs < MinCyclePeriodMs || c.Runtime.CyclePeriodMs > MaxCyclePeriodMs {
		return fmt.Errorf("%w: got %d", ErrInvalidPeriod, c.Runtime.CyclePeriodMs)
	}
	if c.Runtime.TimeoutThresholdPercent <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidThreshold, c.Runtime.TimeoutThresholdPercent)
	}
	if c.Runtime.Program == "" {
		return ErrNoProgram
	}
	if c.Performance.MaxFunctionBlocks <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidCapacity, c.Performance.MaxFunctionBlocks)
	}
	return nil
}

// YAML renders the effective configuration.
func (c *Config) YAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
