package mps

// diffuse applies v_i += (ν∇²v + g)·dt to every Fluid particle. The
// Laplacian is taken over velocities captured before the stage, so the
// result does not depend on iteration order.
func (s *Simulation) diffuse(dt float64) {
	coef := 2 * Dim / (s.pnd0 * s.lambda0)
	nu, g := s.params.Viscosity, s.params.Gravity
	ps, vel := s.particles, s.velFrom

	s.forEach(func(i int, buf []int) []int {
		if ps[i].Type != Fluid {
			return buf
		}
		xi, vi := ps[i].Pos, vel[i]
		var lap Vec2
		buf = s.grid.AppendNeighbors(buf, xi.X, xi.Y)
		for _, j := range buf {
			if j == i {
				continue
			}
			r2 := ps[j].Pos.Sub(xi).LenSq()
			if r2 >= s.re2 || r2 == 0 {
				continue
			}
			w := Weight(r2, s.re2)
			lap = lap.Add(vel[j].Sub(vi).Scale(w))
		}
		lap = lap.Scale(coef)
		ps[i].Vel = ps[i].Vel.Add(lap.Scale(nu).Add(g).Scale(dt))
		return buf
	})
}

// applyBodyForce is the diffusion stage with viscosity switched off.
func (s *Simulation) applyBodyForce(dt float64) {
	dv := s.params.Gravity.Scale(dt)
	for i := range s.particles {
		if s.particles[i].Type == Fluid {
			s.particles[i].Vel = s.particles[i].Vel.Add(dv)
		}
	}
}
