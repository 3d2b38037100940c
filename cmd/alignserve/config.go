package main

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pointalign/pointalign/pkg/errors"
	"github.com/pointalign/pointalign/robust"
)

// Config holds the service settings. Kernel method names use the enumeration
// spelling from the robust package (L2, L1, Huber, Cauchy, GemanMcClure,
// Tukey, Generalized).
type Config struct {
	Listen   string       `yaml:"listen"`
	LogLevel string       `yaml:"log_level"`
	Kernel   KernelConfig `yaml:"kernel"`
	ICP      ICPConfig    `yaml:"icp"`
}

type KernelConfig struct {
	Method robust.Method `yaml:"method"`
	Scale  float64       `yaml:"scale"`
	Shape  float64       `yaml:"shape"`
}

type ICPConfig struct {
	MaxIterations             int     `yaml:"max_iterations"`
	Tolerance                 float64 `yaml:"tolerance"`
	MaxCorrespondenceDistance float64 `yaml:"max_correspondence_distance"`
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() Config {
	return Config{
		Listen:   ":8722",
		LogLevel: "info",
		Kernel: KernelConfig{
			Method: robust.Huber,
			Scale:  0.05,
		},
		ICP: ICPConfig{
			MaxIterations:             30,
			Tolerance:                 1e-6,
			MaxCorrespondenceDistance: 0.5,
		},
	}
}

// LoadConfig reads a YAML config file over the defaults and validates the
// kernel by resolving it once.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}

	if _, err := robust.Resolve[float64](cfg.Kernel.kernel()); err != nil {
		return cfg, errors.Wrap(err, "validating kernel config")
	}
	if cfg.ICP.MaxIterations <= 0 {
		return cfg, errors.NewValidationError("icp.max_iterations", "must be positive", cfg.ICP.MaxIterations)
	}
	return cfg, nil
}

func (k KernelConfig) kernel() robust.Kernel {
	return robust.Kernel{Method: k.Method, Scale: k.Scale, Shape: k.Shape}
}
