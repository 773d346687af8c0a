package mps

// retire turns Fluid particles that left the domain into Ghosts. The
// transition is one-way; a Ghost keeps its last position and nothing else.
func (s *Simulation) retire() int {
	n := 0
	for i := range s.particles {
		p := &s.particles[i]
		if p.Type != Fluid || s.params.Domain.Contains(p.Pos) {
			continue
		}
		p.Type = Ghost
		p.Vel = Vec2{}
		p.Pressure = 0
		n++
	}
	return n
}
