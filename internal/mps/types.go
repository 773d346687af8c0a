package mps

import "math"

// Dim is the spatial dimension of the engine.
const Dim = 2

// ParticleType tags what a particle takes part in. The order matters:
// stages compare against it, so Fluid < Wall < Dummy < Ghost.
type ParticleType uint8

const (
	Fluid ParticleType = iota
	Wall
	Dummy
	Ghost
)

func (t ParticleType) String() string {
	switch t {
	case Fluid:
		return "fluid"
	case Wall:
		return "wall"
	case Dummy:
		return "dummy"
	case Ghost:
		return "ghost"
	}
	return "unknown"
}

type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }
func (v Vec2) Dot(o Vec2) float64   { return v.X*o.X + v.Y*o.Y }
func (v Vec2) LenSq() float64       { return v.X*v.X + v.Y*v.Y }
func (v Vec2) Len() float64         { return math.Sqrt(v.LenSq()) }
func (v Vec2) IsFinite() bool       { return finite(v.X) && finite(v.Y) }

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

type Particle struct {
	Type     ParticleType
	Pos      Vec2
	Vel      Vec2
	Pressure float64
}

// Active reports whether the particle still takes part in the physics.
func (p *Particle) Active() bool { return p.Type != Ghost }

// Particles implements spatial.Positions; Ghosts are reported inactive.
type Particles []Particle

func (ps Particles) Len() int { return len(ps) }

func (ps Particles) At(i int) (float64, float64, bool) {
	p := &ps[i]
	return p.Pos.X, p.Pos.Y, p.Type != Ghost
}

// Injector is a fixed inflow site. Flux is the volume injected since the
// last particle was spawned there.
type Injector struct {
	Pos  Vec2
	Vel  Vec2
	Flux float64
}

// Bounds is an axis-aligned box; points on the edge are inside.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

func (b Bounds) Contains(p Vec2) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Empty reports whether the box has no area.
func (b Bounds) Empty() bool { return b.MaxX <= b.MinX || b.MaxY <= b.MinY }

// Expand grows the box by m on every side.
func (b Bounds) Expand(m float64) Bounds {
	return Bounds{b.MinX - m, b.MinY - m, b.MaxX + m, b.MaxY + m}
}
