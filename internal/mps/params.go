package mps

import (
	"fmt"
	"math"
)

// Params holds the constants of a run. They are fixed once a Simulation is built.
type Params struct {
	Density    float64 // kg/m^3
	Viscosity  float64 // kinematic, m^2/s
	Gravity    Vec2    // m/s^2
	Spacing    float64 // initial particle distance, m
	ReNon      float64 // interaction radius in units of Spacing
	SoundSpeed float64 // m/s, artificial

	DtMax        float64
	CourantMax   float64
	DiffusionMax float64
	BFCourantMax float64

	CollisionDist float64 // in units of Spacing
	CollisionCoef float64 // restitution

	Domain Bounds

	EnableViscosity bool
	EnableCollision bool
	EnableInjector  bool
	AdaptiveDt      bool
	BodyForceLimit  bool

	// Workers > 1 splits order-independent per-particle loops.
	Workers int
}

// DefaultParams returns the constants of the reference dam-break setup.
func DefaultParams() Params {
	return Params{
		Density:         1.0e3,
		Viscosity:       1.0e-6,
		Gravity:         Vec2{0, -10},
		Spacing:         0.005,
		ReNon:           3.1,
		SoundSpeed:      10.0,
		DtMax:           5.0e-4,
		CourantMax:      0.1,
		DiffusionMax:    0.1,
		BFCourantMax:    0.1,
		CollisionDist:   0.9,
		CollisionCoef:   0.5,
		Domain:          Bounds{-0.1, -0.1, 0.9, 0.7},
		EnableViscosity: true,
		EnableCollision: true,
		EnableInjector:  true,
		AdaptiveDt:      true,
		BodyForceLimit:  true,
		Workers:         1,
	}
}

// Radius returns the interaction radius re.
func (p Params) Radius() float64 { return p.ReNon * p.Spacing }

func (p Params) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"density", p.Density},
		{"spacing", p.Spacing},
		{"re_non", p.ReNon},
		{"sound_speed", p.SoundSpeed},
		{"dt_max", p.DtMax},
		{"courant_max", p.CourantMax},
		{"diffusion_max", p.DiffusionMax},
	}
	for _, c := range positive {
		if !(c.v > 0) || math.IsInf(c.v, 0) {
			return fmt.Errorf("%w: %s must be positive, got %g", ErrInvalidParams, c.name, c.v)
		}
	}
	if p.Viscosity < 0 {
		return fmt.Errorf("%w: viscosity must be non-negative, got %g", ErrInvalidParams, p.Viscosity)
	}
	if p.BodyForceLimit && !(p.BFCourantMax > 0) {
		return fmt.Errorf("%w: bfcourant_max must be positive, got %g", ErrInvalidParams, p.BFCourantMax)
	}
	if p.EnableCollision && !(p.CollisionDist > 0) {
		return fmt.Errorf("%w: collision_dist must be positive, got %g", ErrInvalidParams, p.CollisionDist)
	}
	if !p.Gravity.IsFinite() {
		return fmt.Errorf("%w: gravity must be finite", ErrInvalidParams)
	}
	if p.Domain.Empty() {
		return fmt.Errorf("%w: empty domain %+v", ErrInvalidParams, p.Domain)
	}
	return nil
}
