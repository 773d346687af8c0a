package mps

// computePressure sets p = (pnd/pnd0 - 1)·ρc² for Fluid and Wall particles,
// clamped at zero. Dummy particles keep zero pressure.
func (s *Simulation) computePressure() {
	coef := s.params.Density * s.params.SoundSpeed * s.params.SoundSpeed
	inv := 1.0 / s.pnd0
	ps := s.particles

	s.forEach(func(i int, buf []int) []int {
		if ps[i].Type > Wall {
			return buf
		}
		xi := ps[i].Pos
		pnd := 0.0
		buf = s.grid.AppendNeighbors(buf, xi.X, xi.Y)
		for _, j := range buf {
			if j == i {
				continue
			}
			if r2 := ps[j].Pos.Sub(xi).LenSq(); r2 < s.re2 && r2 > 0 {
				pnd += Weight(r2, s.re2)
			}
		}
		pnd *= inv
		if pnd > 1.0 {
			ps[i].Pressure = (pnd - 1.0) * coef
		} else {
			ps[i].Pressure = 0.0
		}
		return buf
	})
}

// correctPressure applies the symmetric pressure gradient to Fluid
// velocities and positions. Every gradient is evaluated on the positions
// from before the pass and applied afterwards.
func (s *Simulation) correctPressure(dt float64) {
	n := len(s.particles)
	s.capturePositions()
	s.gradient = grow(s.gradient, n)
	coef := Dim / s.pnd0
	ps, pos, grad := s.particles, s.posFrom, s.gradient

	s.forEach(func(i int, buf []int) []int {
		grad[i] = Vec2{}
		if ps[i].Type != Fluid {
			return buf
		}
		xi, pi := pos[i], ps[i].Pressure
		var g Vec2
		buf = s.grid.AppendNeighbors(buf, xi.X, xi.Y)
		for _, j := range buf {
			if j == i {
				continue
			}
			xij := pos[j].Sub(xi)
			r2 := xij.LenSq()
			if r2 >= s.re2 || r2 == 0 {
				continue
			}
			w := Weight(r2, s.re2)
			g = g.Add(xij.Scale((pi + ps[j].Pressure) * w / r2))
		}
		grad[i] = g.Scale(coef)
		return buf
	})

	dtRho := dt / s.params.Density
	dt2Rho := dt * dt / s.params.Density
	for i := 0; i < n; i++ {
		if ps[i].Type != Fluid {
			continue
		}
		ps[i].Vel = ps[i].Vel.Sub(grad[i].Scale(dtRho))
		ps[i].Pos = ps[i].Pos.Sub(grad[i].Scale(dt2Rho))
	}
}
