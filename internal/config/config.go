package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/mpsfluid/internal/mps"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSpacing    = 0.005
	DefaultReNon      = 3.1
	DefaultIntervalMs = 1
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Scene     string           `yaml:"scene"`
	Physics   PhysicsConfig    `yaml:"physics"`
	Lattice   LatticeConfig    `yaml:"lattice"`
	TimeStep  TimeStepConfig   `yaml:"time_step"`
	Collision CollisionConfig  `yaml:"collision"`
	Stages    StagesConfig     `yaml:"stages"`
	Tank      RectConfig       `yaml:"tank"`
	Liquid    []RectConfig     `yaml:"liquid"`
	Injectors []InjectorConfig `yaml:"injectors"`
	Domain    *BoundsConfig    `yaml:"domain,omitempty"`
	Runner    RunnerConfig     `yaml:"runner"`
}

type PhysicsConfig struct {
	Density    float64    `yaml:"density"`
	Viscosity  float64    `yaml:"viscosity"`
	Gravity    [2]float64 `yaml:"gravity"`
	SoundSpeed float64    `yaml:"sound_speed"`
}

type LatticeConfig struct {
	Spacing float64 `yaml:"spacing"`
	ReNon   float64 `yaml:"re_non"`
}

type TimeStepConfig struct {
	DtMax        float64 `yaml:"dt_max"`
	CourantMax   float64 `yaml:"courant_max"`
	DiffusionMax float64 `yaml:"diffusion_max"`
	BFCourantMax float64 `yaml:"bfcourant_max"`
}

type CollisionConfig struct {
	Distance    float64 `yaml:"distance"`
	Coefficient float64 `yaml:"coefficient"`
}

type StagesConfig struct {
	Viscosity      bool `yaml:"viscosity"`
	Collision      bool `yaml:"collision"`
	Injector       bool `yaml:"injector"`
	AdaptiveDt     bool `yaml:"adaptive_dt"`
	BodyForceLimit bool `yaml:"body_force_limit"`
}

type RectConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// InjectorConfig describes a column of Count injectors stacked upward from
// (X, Y), one particle spacing apart.
type InjectorConfig struct {
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	VX    float64 `yaml:"vx"`
	VY    float64 `yaml:"vy"`
	Count int     `yaml:"count"`
}

type BoundsConfig struct {
	MinX float64 `yaml:"min_x"`
	MinY float64 `yaml:"min_y"`
	MaxX float64 `yaml:"max_x"`
	MaxY float64 `yaml:"max_y"`
}

type RunnerConfig struct {
	IntervalMs    int  `yaml:"interval_ms"`
	StartActive   bool `yaml:"start_active"`
	IncludeGhosts bool `yaml:"include_ghosts"`
	Workers       int  `yaml:"workers"`
}

func DefaultConfig() *Config {
	return &Config{
		Scene: "dam_break",
		Physics: PhysicsConfig{
			Density:    1.0e3,
			Viscosity:  1.0e-6,
			Gravity:    [2]float64{0, -10},
			SoundSpeed: 10.0,
		},
		Lattice: LatticeConfig{Spacing: DefaultSpacing, ReNon: DefaultReNon},
		TimeStep: TimeStepConfig{
			DtMax:        5.0e-4,
			CourantMax:   0.1,
			DiffusionMax: 0.1,
			BFCourantMax: 0.1,
		},
		Collision: CollisionConfig{Distance: 0.9, Coefficient: 0.5},
		Stages: StagesConfig{
			Viscosity:      true,
			Collision:      true,
			Injector:       true,
			AdaptiveDt:     true,
			BodyForceLimit: true,
		},
		Tank:   RectConfig{Width: 0.8, Height: 0.6},
		Liquid: []RectConfig{{Width: 0.2, Height: 0.4}},
		Runner: RunnerConfig{IntervalMs: DefaultIntervalMs, StartActive: true, Workers: 1},
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

// Params maps the configuration onto the engine constants.
func (c *Config) Params() mps.Params {
	return mps.Params{
		Density:         c.Physics.Density,
		Viscosity:       c.Physics.Viscosity,
		Gravity:         mps.Vec2{X: c.Physics.Gravity[0], Y: c.Physics.Gravity[1]},
		Spacing:         c.Lattice.Spacing,
		ReNon:           c.Lattice.ReNon,
		SoundSpeed:      c.Physics.SoundSpeed,
		DtMax:           c.TimeStep.DtMax,
		CourantMax:      c.TimeStep.CourantMax,
		DiffusionMax:    c.TimeStep.DiffusionMax,
		BFCourantMax:    c.TimeStep.BFCourantMax,
		CollisionDist:   c.Collision.Distance,
		CollisionCoef:   c.Collision.Coefficient,
		Domain:          c.DomainBounds(),
		EnableViscosity: c.Stages.Viscosity,
		EnableCollision: c.Stages.Collision,
		EnableInjector:  c.Stages.Injector,
		AdaptiveDt:      c.Stages.AdaptiveDt,
		BodyForceLimit:  c.Stages.BodyForceLimit,
		Workers:         c.Runner.Workers,
	}
}

// View is the tank interior, used to frame the presentation.
func (c *Config) View() mps.Bounds {
	t := c.Tank
	return mps.Bounds{MinX: t.X, MinY: t.Y, MaxX: t.X + t.Width, MaxY: t.Y + t.Height}
}

// DomainBounds returns the configured domain, or the tank grown by its wall
// thickness plus a margin of two particles when none is set.
func (c *Config) DomainBounds() mps.Bounds {
	if d := c.Domain; d != nil {
		return mps.Bounds{MinX: d.MinX, MinY: d.MinY, MaxX: d.MaxX, MaxY: d.MaxY}
	}
	layers := mps.WallLayers(c.Lattice.ReNon)
	return c.View().Expand(float64(layers+2) * c.Lattice.Spacing)
}

// Build assembles the initial particles and injectors.
func (c *Config) Build() ([]mps.Particle, []mps.Injector) {
	ell := c.Lattice.Spacing
	var ps []mps.Particle
	for _, l := range c.Liquid {
		ps = append(ps, mps.FillFluid(l.rect(), ell)...)
	}
	ps = append(ps, mps.FillTank(c.Tank.rect(), ell, mps.WallLayers(c.Lattice.ReNon))...)

	var in []mps.Injector
	for _, ic := range c.Injectors {
		in = append(in, mps.InjectorColumn(mps.Vec2{X: ic.X, Y: ic.Y}, mps.Vec2{X: ic.VX, Y: ic.VY}, ic.Count, ell)...)
	}
	return ps, in
}

// NewSimulation validates the configuration and builds the engine from it.
func (c *Config) NewSimulation() (*mps.Simulation, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	ps, in := c.Build()
	return mps.New(c.Params(), ps, in)
}

func (c *Config) Validate() error {
	if c.Tank.Width <= 0 || c.Tank.Height <= 0 {
		return fmt.Errorf("%w: tank must have positive size, got %gx%g", ErrInvalidConfig, c.Tank.Width, c.Tank.Height)
	}
	for i, l := range c.Liquid {
		if l.Width < 0 || l.Height < 0 {
			return fmt.Errorf("%w: liquid[%d] has negative size", ErrInvalidConfig, i)
		}
	}
	for i, ic := range c.Injectors {
		if ic.Count < 0 {
			return fmt.Errorf("%w: injectors[%d] has negative count", ErrInvalidConfig, i)
		}
	}
	if c.Runner.IntervalMs < 0 {
		return fmt.Errorf("%w: runner interval must be non-negative", ErrInvalidConfig)
	}
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (r RectConfig) rect() mps.Rect {
	return mps.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}
