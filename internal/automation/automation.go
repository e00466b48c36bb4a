package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/san-kum/fibermodes/internal/config"
	"github.com/san-kum/fibermodes/internal/modes"
	"github.com/san-kum/fibermodes/internal/storage"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrEmptyScenario indicates a scenario without steps.
var ErrEmptyScenario = errors.New("automation: scenario has no steps")

// Scenario defines a scripted sequence of solves
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single solve. Config holds a partial configuration
// decoded on top of the preset, or on top of the defaults when no preset
// is named.
type ScenarioStep struct {
	Name   string    `yaml:"name"`
	Preset string    `yaml:"preset"`
	Config yaml.Node `yaml:"config"`
}

// StepResult records the outcome of one step.
type StepResult struct {
	Name      string
	RunID     string
	NumModes  int
	Saturated bool
	Elapsed   time.Duration
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, ErrEmptyScenario
	}
	return &scenario, nil
}

// Resolve builds the validated configuration of a step.
func (s *ScenarioStep) Resolve() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.FindPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("%w: unknown preset %q", config.ErrInvalidConfig, s.Preset)
		}
	}
	if !s.Config.IsZero() {
		if err := s.Config.Decode(cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Solve runs the mode solver for a configuration.
func Solve(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*modes.ModeSet, time.Duration, error) {
	grid, err := cfg.BuildProfile()
	if err != nil {
		return nil, 0, err
	}
	opts, err := cfg.SolveOptions()
	if err != nil {
		return nil, 0, err
	}

	s := modes.NewSolver(logger)
	s.SetIndexProfile(grid)
	s.SetWavelength(cfg.Solver.Wavelength)
	if err := s.SetPoisson(cfg.Solver.Poisson); err != nil {
		return nil, 0, err
	}
	s.SetEigenOptions(cfg.EigenOptions())

	start := time.Now()
	set, err := s.Solve(ctx, opts)
	if err != nil {
		return nil, 0, err
	}
	return set, time.Since(start), nil
}

// Metadata describes a solve for the run store.
func Metadata(cfg *config.Config, elapsed time.Duration) storage.RunMetadata {
	return storage.RunMetadata{
		Boundary: cfg.Solver.Boundary,
		Poisson:  cfg.Solver.Poisson,
		Fiber: storage.FiberMetadata{
			Profile:  cfg.Fiber.Profile,
			Radius:   cfg.Fiber.Radius,
			NA:       cfg.Fiber.NA,
			N1:       cfg.Fiber.N1,
			Alpha:    cfg.Fiber.Alpha,
			NPoints:  cfg.Fiber.NPoints,
			AreaSize: cfg.Fiber.AreaSize,
		},
		Elapsed: elapsed.Seconds(),
	}
}

// RunScenario executes all steps in order and saves each mode set to st.
// It stops at the first failing step and returns the results so far.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store, logger *zap.Logger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i := range scenario.Steps {
		step := &scenario.Steps[i]
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		log := logger.With(zap.String("step", name), zap.Int("index", i+1))

		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, name, err)
		}
		log.Info("solving",
			zap.String("profile", cfg.Fiber.Profile),
			zap.Float64("wavelength", cfg.Solver.Wavelength))

		set, elapsed, err := Solve(ctx, cfg, log)
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, name, err)
		}
		runID, err := st.Save(Metadata(cfg, elapsed), set)
		if err != nil {
			return results, fmt.Errorf("step %d (%s) save: %w", i+1, name, err)
		}

		results = append(results, StepResult{
			Name:      name,
			RunID:     runID,
			NumModes:  set.Number(),
			Saturated: set.Saturated(),
			Elapsed:   elapsed,
		})
	}

	return results, nil
}
