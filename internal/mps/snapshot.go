package mps

import "time"

// Snapshot is an independent copy of the state after a tick. Slices are
// parallel: entry k of Types describes Positions[2k:2k+2].
type Snapshot struct {
	Step       int
	Time       float64
	Dt         float64
	Processing time.Duration
	Active     bool

	Positions  []float64
	Velocities []float64
	Pressures  []float64
	Types      []ParticleType
}

// Len returns the number of particles in the snapshot.
func (s *Snapshot) Len() int { return len(s.Types) }

// Snapshot copies the current state. Ghosts are left out unless
// includeGhosts is set.
func (s *Simulation) Snapshot(includeGhosts bool) Snapshot {
	n := 0
	for i := range s.particles {
		if includeGhosts || s.particles[i].Type != Ghost {
			n++
		}
	}
	snap := Snapshot{
		Step:       s.step,
		Time:       s.time,
		Dt:         s.dt,
		Positions:  make([]float64, 0, 2*n),
		Velocities: make([]float64, 0, 2*n),
		Pressures:  make([]float64, 0, n),
		Types:      make([]ParticleType, 0, n),
	}
	for i := range s.particles {
		p := &s.particles[i]
		if !includeGhosts && p.Type == Ghost {
			continue
		}
		snap.Positions = append(snap.Positions, p.Pos.X, p.Pos.Y)
		snap.Velocities = append(snap.Velocities, p.Vel.X, p.Vel.Y)
		snap.Pressures = append(snap.Pressures, p.Pressure)
		snap.Types = append(snap.Types, p.Type)
	}
	return snap
}

// Speed returns the velocity magnitude of particle k.
func (s *Snapshot) Speed(k int) float64 {
	return Vec2{s.Velocities[2*k], s.Velocities[2*k+1]}.Len()
}

// Clone returns a copy whose slices share no storage with s.
func (s *Snapshot) Clone() Snapshot {
	c := *s
	c.Positions = append([]float64(nil), s.Positions...)
	c.Velocities = append([]float64(nil), s.Velocities...)
	c.Pressures = append([]float64(nil), s.Pressures...)
	c.Types = append([]ParticleType(nil), s.Types...)
	return c
}
