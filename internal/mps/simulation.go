package mps

import (
	"fmt"

	"github.com/san-kum/mpsfluid/internal/spatial"
)

const minChunk = 256

// Simulation owns the particle state of one run. It is not safe for
// concurrent use; a single goroutine drives Update.
type Simulation struct {
	params    Params
	particles Particles
	injectors []Injector
	grid      *spatial.Grid

	step int
	time float64
	dt   float64

	re, re2  float64
	indexed  Bounds
	pnd0     float64
	lambda0  float64
	limits   StepLimits
	velFrom  []Vec2
	posFrom  []Vec2
	gradient []Vec2
}

// New builds a simulation from a validated parameter set and an initial
// scene. The particle and injector slices are copied.
func New(p Params, particles []Particle, injectors []Injector) (*Simulation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s := &Simulation{
		params:    p,
		particles: append(Particles(nil), particles...),
		injectors: append([]Injector(nil), injectors...),
		re:        p.Radius(),
		pnd0:      ReferenceDensity(p.ReNon),
		lambda0:   Lambda(p.ReNon, p.Spacing),
		limits:    p.stepLimits(),
	}
	s.re2 = s.re * s.re
	// walls within re of the domain take part in sums that need their own
	// neighbors, hence two radii
	s.indexed = p.Domain.Expand(2 * s.re)
	s.rebuild()
	return s, nil
}

func (s *Simulation) Params() Params            { return s.params }
func (s *Simulation) Step() int                 { return s.step }
func (s *Simulation) Time() float64             { return s.time }
func (s *Simulation) LastDt() float64           { return s.dt }
func (s *Simulation) Particles() Particles      { return s.particles }
func (s *Simulation) Injectors() []Injector     { return s.injectors }
func (s *Simulation) Grid() *spatial.Grid       { return s.grid }
func (s *Simulation) ReferenceDensity() float64 { return s.pnd0 }

// Update advances the simulation by one tick and returns the step size used.
func (s *Simulation) Update() float64 {
	dt := s.stepSize()

	s.rebuild()
	s.captureVelocities()
	if s.params.EnableViscosity {
		s.diffuse(dt)
	} else {
		s.applyBodyForce(dt)
	}
	if s.params.EnableCollision {
		s.captureVelocities()
		s.collide()
	}
	s.advect(dt)

	s.rebuild()
	s.computePressure()
	s.correctPressure(dt)

	if s.params.EnableInjector {
		s.inject(dt)
	}
	s.retire()

	s.step++
	s.time += dt
	s.dt = dt
	return dt
}

func (s *Simulation) stepSize() float64 {
	if !s.params.AdaptiveDt {
		return s.params.DtMax
	}
	viscosity := 0.0
	if s.params.EnableViscosity {
		viscosity = s.params.Viscosity
	}
	return s.limits.StepSize(maxSpeed(s.particles), s.params.Gravity.Len(), viscosity, s.params.Spacing)
}

func (s *Simulation) rebuild() {
	b := s.indexed
	s.grid = spatial.BuildWithin(s.particles, s.re, b.MinX, b.MinY, b.MaxX, b.MaxY)
}

func (s *Simulation) captureVelocities() {
	s.velFrom = grow(s.velFrom, len(s.particles))
	for i := range s.particles {
		s.velFrom[i] = s.particles[i].Vel
	}
}

func (s *Simulation) capturePositions() {
	s.posFrom = grow(s.posFrom, len(s.particles))
	for i := range s.particles {
		s.posFrom[i] = s.particles[i].Pos
	}
}

// forEach runs fn for every particle index, in parallel when configured.
// buf is scratch for neighbor queries, private to the calling worker.
func (s *Simulation) forEach(fn func(i int, buf []int) []int) {
	parallelFor(len(s.particles), s.params.Workers, minChunk, func(start, end int) {
		buf := make([]int, 0, 64)
		for i := start; i < end; i++ {
			buf = fn(i, buf[:0])
		}
	})
}

// Validate reports the first particle whose position or velocity is not finite.
func (s *Simulation) Validate() error {
	for i := range s.particles {
		p := &s.particles[i]
		if p.Type == Ghost {
			continue
		}
		if !p.Pos.IsFinite() || !p.Vel.IsFinite() || !finite(p.Pressure) {
			return &SimulationError{
				Step:     s.step,
				Time:     s.time,
				Particle: i,
				Wrapped:  fmt.Errorf("%w: particle %d (%s)", ErrInvalidState, i, p.Type),
			}
		}
	}
	return nil
}

// Counts returns the number of particles of each type, indexed by ParticleType.
func (s *Simulation) Counts() [4]int {
	var c [4]int
	for i := range s.particles {
		c[s.particles[i].Type]++
	}
	return c
}

func grow(v []Vec2, n int) []Vec2 {
	if cap(v) < n {
		return make([]Vec2, n)
	}
	return v[:n]
}
