package config

import "sort"

var Presets = map[string]map[string]*Config{
	"step": {
		"smf28": {
			Fiber:  FiberConfig{Profile: "step", Radius: 4.1, NA: 0.14, N1: 1.4504, NPoints: 64, AreaSize: 30},
			Solver: SolverConfig{Wavelength: 1.55, NModesMax: 4, Boundary: "close", Poisson: 0.17},
		},
		"fewmode": {
			Fiber:  FiberConfig{Profile: "step", Radius: 7.5, NA: 0.13, N1: 1.45, NPoints: 64, AreaSize: 40},
			Solver: SolverConfig{Wavelength: 1.55, NModesMax: 10, Boundary: "close", Poisson: 0.17},
		},
		"si50": {
			Fiber:  FiberConfig{Profile: "step", Radius: 25, NA: 0.22, N1: 1.45, NPoints: 128, AreaSize: 70},
			Solver: SolverConfig{Wavelength: 1.55, NModesMax: 60, Boundary: "close", Poisson: 0.17},
		},
	},
	"grin": {
		"grin50": {
			Fiber:  FiberConfig{Profile: "grin", Radius: 25, NA: 0.2, N1: 1.45, Alpha: 2, NPoints: 128, AreaSize: 60},
			Solver: SolverConfig{Wavelength: 1.55, NModesMax: 60, Boundary: "close", Poisson: 0.17},
		},
		"grin62": {
			Fiber:  FiberConfig{Profile: "grin", Radius: 31.25, NA: 0.275, N1: 1.45, Alpha: 2, NPoints: 128, AreaSize: 80},
			Solver: SolverConfig{Wavelength: 1.55, NModesMax: 100, Boundary: "close", Poisson: 0.17},
		},
	},
}

// GetPreset returns a copy of the named preset for a profile kind, or nil.
func GetPreset(profile, preset string) *Config {
	profilePresets, ok := Presets[profile]
	if !ok {
		return nil
	}
	cfg, ok := profilePresets[preset]
	if !ok {
		return nil
	}
	return cfg.clone()
}

// FindPreset looks a preset up by name across all profile kinds.
func FindPreset(preset string) *Config {
	for profile := range Presets {
		if cfg := GetPreset(profile, preset); cfg != nil {
			return cfg
		}
	}
	return nil
}

func ListPresets(profile string) []string {
	profilePresets, ok := Presets[profile]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(profilePresets))
	for name := range profilePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Config) clone() *Config {
	out := *c
	if c.Solver.Curvature != nil {
		r := *c.Solver.Curvature
		out.Solver.Curvature = &r
	}
	if out.DataDir == "" {
		out.DataDir = DefaultDataDir
	}
	return &out
}
