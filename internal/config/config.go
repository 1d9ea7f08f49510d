package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/magfield/internal/dynamo"
	"github.com/san-kum/magfield/internal/fieldline"
	"github.com/san-kum/magfield/internal/magnet"
	"github.com/san-kum/magfield/internal/transform"
)

const (
	DefaultBoundsSize = 4.0
	DefaultDt         = 1.0 / 60
	DefaultDuration   = 5.0
)

var (
	ErrUnknownFormat   = errors.New("config: unknown file format (want .yaml, .yml or .toml)")
	ErrInvalidUnits    = errors.New("config: pixels_per_meter must be positive")
	ErrInvalidBounds   = errors.New("config: bounds must be positive")
	ErrInvalidTrace    = errors.New("config: invalid trace settings")
	ErrInvalidDynamics = errors.New("config: invalid dynamics settings")
	ErrInvalidScene    = errors.New("config: invalid scene")
)

type Config struct {
	Units    UnitsConfig    `yaml:"units" toml:"units"`
	Bounds   BoundsConfig   `yaml:"bounds" toml:"bounds"`
	Trace    TraceConfig    `yaml:"trace" toml:"trace"`
	Dynamics DynamicsConfig `yaml:"dynamics" toml:"dynamics"`
	Scene    SceneConfig    `yaml:"scene" toml:"scene"`
}

type UnitsConfig struct {
	PixelsPerMeter float64 `yaml:"pixels_per_meter" toml:"pixels_per_meter"`
}

type BoundsConfig struct {
	Width  float64 `yaml:"width" toml:"width"`
	Height float64 `yaml:"height" toml:"height"`
	Depth  float64 `yaml:"depth" toml:"depth"`
}

type TraceConfig struct {
	StepSize         float64 `yaml:"step_size" toml:"step_size"`
	MaxSteps         int     `yaml:"max_steps" toml:"max_steps"`
	AdaptiveMinStep  float64 `yaml:"adaptive_min_step" toml:"adaptive_min_step"`
	AdaptiveMaxStep  float64 `yaml:"adaptive_max_step" toml:"adaptive_max_step"`
	AdaptiveFieldRef float64 `yaml:"adaptive_field_ref" toml:"adaptive_field_ref"`
	Adaptive         bool    `yaml:"adaptive" toml:"adaptive"`
	Workers          int     `yaml:"workers" toml:"workers"`
}

type DynamicsConfig struct {
	Mass            float64 `yaml:"mass" toml:"mass"`
	MomentOfInertia float64 `yaml:"moment_of_inertia" toml:"moment_of_inertia"`
	ForceClamp      float64 `yaml:"force_clamp" toml:"force_clamp"`
	TorqueClamp     float64 `yaml:"torque_clamp" toml:"torque_clamp"`
	GradientStep    float64 `yaml:"gradient_step" toml:"gradient_step"`
	Speed           float64 `yaml:"speed" toml:"speed"`
	Reverse         bool    `yaml:"reverse" toml:"reverse"`
	Dt              float64 `yaml:"dt" toml:"dt"`
	Duration        float64 `yaml:"duration" toml:"duration"`
}

type SceneConfig struct {
	Dipoles []DipoleConfig `yaml:"dipoles,omitempty" toml:"dipoles,omitempty"`
	Bars    []BarConfig    `yaml:"bars,omitempty" toml:"bars,omitempty"`
}

// DipoleConfig places one dipole. Rotation is XYZ Euler angles in degrees.
type DipoleConfig struct {
	Position   []float64 `yaml:"position" toml:"position"`
	Rotation   []float64 `yaml:"rotation,omitempty" toml:"rotation,omitempty"`
	Moment     float64   `yaml:"moment" toml:"moment"`
	SeedCount  int       `yaml:"seed_count,omitempty" toml:"seed_count,omitempty"`
	SeedRadius float64   `yaml:"seed_radius,omitempty" toml:"seed_radius,omitempty"`
}

type BarConfig struct {
	Position []float64 `yaml:"position" toml:"position"`
	Rotation []float64 `yaml:"rotation,omitempty" toml:"rotation,omitempty"`
	Size     []float64 `yaml:"size" toml:"size"`
	Density  float64   `yaml:"density" toml:"density"`
	Moment   float64   `yaml:"moment" toml:"moment"`
}

// DefaultConfig has every knob set and an empty scene.
func DefaultConfig() *Config {
	tr := fieldline.DefaultConfig()
	dyn := dynamo.DefaultParams()
	return &Config{
		Units: UnitsConfig{PixelsPerMeter: magnet.DefaultPixelsPerMeter},
		Bounds: BoundsConfig{
			Width:  DefaultBoundsSize,
			Height: DefaultBoundsSize,
			Depth:  DefaultBoundsSize,
		},
		Trace: TraceConfig{
			StepSize:         tr.StepSize,
			MaxSteps:         tr.MaxSteps,
			AdaptiveMinStep:  tr.AdaptiveMinStep,
			AdaptiveMaxStep:  tr.AdaptiveMaxStep,
			AdaptiveFieldRef: tr.AdaptiveFieldRef,
		},
		Dynamics: DynamicsConfig{
			Mass:            dyn.Mass,
			MomentOfInertia: dyn.MomentOfInertia,
			ForceClamp:      dyn.ForceClamp,
			TorqueClamp:     dyn.TorqueClamp,
			GradientStep:    dyn.GradientStep,
			Speed:           dyn.Speed,
			Dt:              DefaultDt,
			Duration:        DefaultDuration,
		},
	}
}

// Load reads a yaml or toml file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	switch format(path) {
	case "yaml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	case "toml":
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	switch format(path) {
	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0644)
	case "toml":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return toml.NewEncoder(f).Encode(cfg)
	}
	return fmt.Errorf("%s: %w", path, ErrUnknownFormat)
}

func format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	}
	return ""
}

func (c *Config) Validate() error {
	if c.Units.PixelsPerMeter <= 0 {
		return ErrInvalidUnits
	}
	if c.Bounds.Width <= 0 || c.Bounds.Height <= 0 || c.Bounds.Depth <= 0 {
		return fmt.Errorf("%gx%gx%g: %w", c.Bounds.Width, c.Bounds.Height, c.Bounds.Depth, ErrInvalidBounds)
	}

	t := c.Trace
	switch {
	case t.StepSize <= 0:
		return fmt.Errorf("%w: step_size %g", ErrInvalidTrace, t.StepSize)
	case t.MaxSteps <= 0:
		return fmt.Errorf("%w: max_steps %d", ErrInvalidTrace, t.MaxSteps)
	case t.AdaptiveMinStep <= 0 || t.AdaptiveMaxStep < t.AdaptiveMinStep:
		return fmt.Errorf("%w: adaptive steps [%g, %g]", ErrInvalidTrace, t.AdaptiveMinStep, t.AdaptiveMaxStep)
	case t.AdaptiveFieldRef <= 0:
		return fmt.Errorf("%w: adaptive_field_ref %g", ErrInvalidTrace, t.AdaptiveFieldRef)
	case t.Workers < 0:
		return fmt.Errorf("%w: workers %d", ErrInvalidTrace, t.Workers)
	}

	if err := c.DynamicsParams().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDynamics, err)
	}
	if c.Dynamics.Dt <= 0 || c.Dynamics.Duration < 0 {
		return fmt.Errorf("%w: dt %g duration %g", ErrInvalidDynamics, c.Dynamics.Dt, c.Dynamics.Duration)
	}

	for i, d := range c.Scene.Dipoles {
		if !optionalVec(d.Position) || !optionalVec(d.Rotation) {
			return fmt.Errorf("%w: dipole %d needs 3-component position and rotation", ErrInvalidScene, i)
		}
		if d.SeedCount < 0 || d.SeedRadius < 0 {
			return fmt.Errorf("%w: dipole %d seeds", ErrInvalidScene, i)
		}
	}
	for i, b := range c.Scene.Bars {
		if !optionalVec(b.Position) || !optionalVec(b.Rotation) || len(b.Size) != 3 {
			return fmt.Errorf("%w: bar %d needs 3-component position, rotation and size", ErrInvalidScene, i)
		}
		if b.Density <= 0 {
			return fmt.Errorf("%w: bar %d density %g", ErrInvalidScene, i, b.Density)
		}
	}
	return nil
}

func optionalVec(v []float64) bool { return len(v) == 0 || len(v) == 3 }

// Box is the bounding volume centred on the origin.
func (c *Config) Box() transform.Box {
	return transform.NewBox(c.Bounds.Width, c.Bounds.Height, c.Bounds.Depth)
}

func (c *Config) TraceParams() fieldline.Config {
	return fieldline.Config{
		StepSize:         c.Trace.StepSize,
		MaxSteps:         c.Trace.MaxSteps,
		AdaptiveMinStep:  c.Trace.AdaptiveMinStep,
		AdaptiveMaxStep:  c.Trace.AdaptiveMaxStep,
		AdaptiveFieldRef: c.Trace.AdaptiveFieldRef,
		Adaptive:         c.Trace.Adaptive,
		Workers:          c.Trace.Workers,
	}
}

func (c *Config) DynamicsParams() dynamo.Params {
	return dynamo.Params{
		Mass:            c.Dynamics.Mass,
		MomentOfInertia: c.Dynamics.MomentOfInertia,
		ForceClamp:      c.Dynamics.ForceClamp,
		TorqueClamp:     c.Dynamics.TorqueClamp,
		GradientStep:    c.Dynamics.GradientStep,
		Speed:           c.Dynamics.Speed,
		Reverse:         c.Dynamics.Reverse,
	}
}

// Steps is the number of Dt steps in Duration, at least one.
func (c *Config) Steps() int {
	return max(1, int(c.Dynamics.Duration/c.Dynamics.Dt+0.5))
}

// Vec3 converts a config triple; missing components are zero.
func Vec3(v []float64) mgl64.Vec3 {
	var out mgl64.Vec3
	copy(out[:], v)
	return out
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	if c.Scene.Dipoles != nil {
		out.Scene.Dipoles = make([]DipoleConfig, len(c.Scene.Dipoles))
		for i, d := range c.Scene.Dipoles {
			d.Position = cloneFloats(d.Position)
			d.Rotation = cloneFloats(d.Rotation)
			out.Scene.Dipoles[i] = d
		}
	}
	if c.Scene.Bars != nil {
		out.Scene.Bars = make([]BarConfig, len(c.Scene.Bars))
		for i, b := range c.Scene.Bars {
			b.Position = cloneFloats(b.Position)
			b.Rotation = cloneFloats(b.Rotation)
			b.Size = cloneFloats(b.Size)
			out.Scene.Bars[i] = b
		}
	}
	return &out
}

func cloneFloats(v []float64) []float64 {
	if v == nil {
		return nil
	}
	return append([]float64(nil), v...)
}
