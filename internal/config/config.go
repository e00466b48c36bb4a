package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/fibermodes/internal/eigen"
	"github.com/san-kum/fibermodes/internal/fiber"
	"github.com/san-kum/fibermodes/internal/modes"
	"github.com/san-kum/fibermodes/internal/operator"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWavelength = 1.55
	DefaultNModes     = 6
	DefaultBoundary   = "close"
	DefaultPoisson    = 0.5
	DefaultRadius     = 4.1
	DefaultNA         = 0.14
	DefaultN1         = 1.45
	DefaultAlpha      = 2.0
	DefaultNPoints    = 64
	DefaultAreaSize   = 30.0
	DefaultDataDir    = "./runs"
)

// ErrInvalidConfig indicates a configuration that cannot drive a solve.
var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Fiber   FiberConfig  `yaml:"fiber"`
	Solver  SolverConfig `yaml:"solver"`
	DataDir string       `yaml:"data_dir"`
	Workers int          `yaml:"workers"`
}

type FiberConfig struct {
	Profile  string  `yaml:"profile"` // step or grin
	Radius   float64 `yaml:"radius"`
	NA       float64 `yaml:"na"`
	N1       float64 `yaml:"n1"`
	Alpha    float64 `yaml:"alpha"`
	NPoints  int     `yaml:"npoints"`
	AreaSize float64 `yaml:"area_size"`
}

type SolverConfig struct {
	Wavelength float64  `yaml:"wavelength"`
	NModesMax  int      `yaml:"n_modes_max"`
	Boundary   string   `yaml:"boundary"`
	Curvature  *float64 `yaml:"curvature,omitempty"`
	Poisson    float64  `yaml:"poisson"`
	DenseLimit int      `yaml:"dense_limit,omitempty"`
	MaxKrylov  int      `yaml:"max_krylov,omitempty"`
	Tolerance  float64  `yaml:"tolerance,omitempty"`
	Seed       int64    `yaml:"seed,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Fiber: FiberConfig{
			Profile:  "step",
			Radius:   DefaultRadius,
			NA:       DefaultNA,
			N1:       DefaultN1,
			Alpha:    DefaultAlpha,
			NPoints:  DefaultNPoints,
			AreaSize: DefaultAreaSize,
		},
		Solver: SolverConfig{
			Wavelength: DefaultWavelength,
			NModesMax:  DefaultNModes,
			Boundary:   DefaultBoundary,
			Poisson:    DefaultPoisson,
		},
		DataDir: DefaultDataDir,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
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

// Validate checks the values a solve depends on.
func (c *Config) Validate() error {
	switch c.Fiber.Profile {
	case "step", "grin":
	default:
		return fmt.Errorf("%w: unknown profile %q", ErrInvalidConfig, c.Fiber.Profile)
	}
	if c.Solver.Wavelength <= 0 {
		return fmt.Errorf("%w: wavelength must be positive", ErrInvalidConfig)
	}
	if c.Solver.NModesMax <= 0 {
		return fmt.Errorf("%w: n_modes_max must be positive", ErrInvalidConfig)
	}
	if c.Solver.Curvature != nil && *c.Solver.Curvature == 0 {
		return fmt.Errorf("%w: curvature must be non-zero when set", ErrInvalidConfig)
	}
	if _, err := operator.ParseBoundary(c.Solver.Boundary); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) FiberParams() fiber.Params {
	return fiber.Params{
		Radius:   c.Fiber.Radius,
		NA:       c.Fiber.NA,
		N1:       c.Fiber.N1,
		Alpha:    c.Fiber.Alpha,
		NPoints:  c.Fiber.NPoints,
		AreaSize: c.Fiber.AreaSize,
	}
}

// BuildProfile samples the configured fiber.
func (c *Config) BuildProfile() (*fiber.Grid, error) {
	if c.Fiber.Profile == "grin" {
		return fiber.NewGRIN(c.FiberParams())
	}
	return fiber.NewStepIndex(c.FiberParams())
}

func (c *Config) EigenOptions() eigen.Options {
	return eigen.Options{
		DenseLimit: c.Solver.DenseLimit,
		MaxKrylov:  c.Solver.MaxKrylov,
		Tolerance:  c.Solver.Tolerance,
		Seed:       c.Solver.Seed,
	}
}

func (c *Config) SolveOptions() (modes.SolveOptions, error) {
	b, err := operator.ParseBoundary(c.Solver.Boundary)
	if err != nil {
		return modes.SolveOptions{}, err
	}
	return modes.SolveOptions{
		NModesMax: c.Solver.NModesMax,
		Boundary:  b,
		Curvature: c.Solver.Curvature,
	}, nil
}
