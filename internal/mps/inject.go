package mps

import "math"

// inject accumulates inflow at every injector and spawns a Fluid particle
// once a full particle volume (Spacing²) has entered. While another
// particle still overlaps the site nothing spawns and the flux is kept; an
// overlapping Fluid particle is pushed at the inflow velocity.
func (s *Simulation) inject(dt float64) {
	ell := s.params.Spacing
	volume := ell * ell
	var buf []int

	for k := range s.injectors {
		in := &s.injectors[k]
		in.Flux += ell * in.Vel.Len() * dt
		if in.Flux < volume {
			continue
		}

		nearest, r2min := -1, math.Inf(1)
		buf = s.grid.AppendNeighbors(buf[:0], in.Pos.X, in.Pos.Y)
		for _, j := range buf {
			if s.particles[j].Type == Ghost {
				continue
			}
			if r2 := s.particles[j].Pos.Sub(in.Pos).LenSq(); r2 < r2min {
				nearest, r2min = j, r2
			}
		}
		if nearest >= 0 && r2min < volume {
			if s.particles[nearest].Type == Fluid {
				s.particles[nearest].Vel = in.Vel
			}
			continue
		}

		s.particles = append(s.particles, Particle{
			Type: Fluid,
			Pos:  in.Pos,
			Vel:  in.Vel,
		})
		in.Flux = 0
	}
}
