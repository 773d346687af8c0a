package mps

// advect moves every Fluid particle by v·dt.
func (s *Simulation) advect(dt float64) {
	for i := range s.particles {
		p := &s.particles[i]
		if p.Type != Fluid {
			continue
		}
		p.Pos = p.Pos.Add(p.Vel.Scale(dt))
	}
}
