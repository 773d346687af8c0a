package config

import "sort"

// Presets builds the named scenes. Each call returns a fresh Config.
var Presets = map[string]func() *Config{
	"dam_break": DefaultConfig,
	"inflow": func() *Config {
		cfg := DefaultConfig()
		cfg.Scene = "inflow"
		ell := cfg.Lattice.Spacing
		cfg.Injectors = []InjectorConfig{
			{X: ell * 0.5, Y: 0.5, VX: 1.0, Count: 10},
			{X: cfg.Tank.Width - ell*0.5, Y: 0.5, VX: -1.0, Count: 10},
		}
		return cfg
	},
	"jet": func() *Config {
		cfg := DefaultConfig()
		cfg.Scene = "jet"
		cfg.Tank = RectConfig{Width: 0.4, Height: 0.3}
		cfg.Liquid = nil
		cfg.Injectors = []InjectorConfig{
			{X: cfg.Lattice.Spacing * 0.5, Y: 0.2, VX: 1.5, Count: 8},
		}
		return cfg
	},
	"still_water": func() *Config {
		cfg := DefaultConfig()
		cfg.Scene = "still_water"
		cfg.Tank = RectConfig{Width: 0.2, Height: 0.15}
		cfg.Liquid = []RectConfig{{Width: 0.2, Height: 0.1}}
		return cfg
	},
}

func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
