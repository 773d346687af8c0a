package mps

// collide corrects Fluid particles that approach a neighbor closer than
// CollisionDist·Spacing. Each particle is corrected on its own from the
// velocities captured before the stage; the pair is not solved jointly.
func (s *Simulation) collide() {
	cr := s.params.CollisionDist * s.params.Spacing
	cr2 := cr * cr
	k := (1.0 + s.params.CollisionCoef) / 2.0
	ps, vel := s.particles, s.velFrom

	s.forEach(func(i int, buf []int) []int {
		if ps[i].Type != Fluid {
			return buf
		}
		xi, vi := ps[i].Pos, vel[i]
		buf = s.grid.AppendNeighbors(buf, xi.X, xi.Y)
		for _, j := range buf {
			if j == i {
				continue
			}
			xij := ps[j].Pos.Sub(xi)
			r2 := xij.LenSq()
			if r2 >= cr2 || r2 == 0 {
				continue
			}
			approach := xij.Dot(vel[j].Sub(vi))
			if approach < 0 {
				ps[i].Vel = ps[i].Vel.Add(xij.Scale(approach * k / r2))
			}
		}
		return buf
	})
}
