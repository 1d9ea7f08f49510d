package config

import "sort"

var (
	pointUp = []float64{90, 0, 0}
	origin  = []float64{0, 0, 0}
)

func withScene(scene SceneConfig, tweak func(*Config)) *Config {
	cfg := DefaultConfig()
	cfg.Scene = scene
	if tweak != nil {
		tweak(cfg)
	}
	return cfg
}

var Presets = map[string]*Config{
	"single": withScene(SceneConfig{
		Dipoles: []DipoleConfig{{Position: origin, Rotation: pointUp, Moment: 1}},
	}, nil),
	"antiparallel": withScene(SceneConfig{
		Dipoles: []DipoleConfig{
			{Position: []float64{-0.5, 0, 0}, Rotation: pointUp, Moment: 1},
			{Position: []float64{0.5, 0, 0}, Rotation: pointUp, Moment: -1},
		},
	}, nil),
	"parallel": withScene(SceneConfig{
		Dipoles: []DipoleConfig{
			{Position: []float64{-0.5, 0, 0}, Rotation: pointUp, Moment: 1},
			{Position: []float64{0.5, 0, 0}, Rotation: pointUp, Moment: 1},
		},
	}, nil),
	"bar": withScene(SceneConfig{
		Bars: []BarConfig{{Position: origin, Rotation: pointUp, Size: []float64{0.4, 0.4, 1}, Density: 400, Moment: 0.25}},
	}, func(c *Config) { c.Trace.Adaptive = true }),
	"quad": withScene(SceneConfig{
		Dipoles: []DipoleConfig{
			{Position: []float64{-0.6, -0.6, 0}, Rotation: pointUp, Moment: 1},
			{Position: []float64{0.6, -0.6, 0}, Rotation: pointUp, Moment: -1},
			{Position: []float64{0.6, 0.6, 0}, Rotation: pointUp, Moment: 1},
			{Position: []float64{-0.6, 0.6, 0}, Rotation: pointUp, Moment: -1},
		},
	}, func(c *Config) {
		c.Trace.MaxSteps = 600
		c.Dynamics.Duration = 10
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
