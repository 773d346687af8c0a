package mps

import (
	"errors"
	"math"
	"testing"
)

func testParams() Params {
	p := DefaultParams()
	p.Gravity = Vec2{}
	p.AdaptiveDt = false
	p.DtMax = 1e-3
	p.Domain = Bounds{-1, -1, 1, 1}
	return p
}

func mustNew(t *testing.T, p Params, ps []Particle, in []Injector) *Simulation {
	t.Helper()
	s, err := New(p, ps, in)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func smallDamBreak(p Params) ([]Particle, []Injector) {
	tank := Rect{Width: 0.2, Height: 0.2}
	ps := FillFluid(Rect{Width: 0.1, Height: 0.1}, p.Spacing)
	ps = append(ps, FillTank(tank, p.Spacing, WallLayers(p.ReNon))...)
	return ps, nil
}

func TestNew_InvalidParams(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Params)
	}{
		{"zero spacing", func(p *Params) { p.Spacing = 0 }},
		{"negative density", func(p *Params) { p.Density = -1 }},
		{"zero dt_max", func(p *Params) { p.DtMax = 0 }},
		{"negative viscosity", func(p *Params) { p.Viscosity = -1 }},
		{"nan courant", func(p *Params) { p.CourantMax = math.NaN() }},
		{"empty domain", func(p *Params) { p.Domain = Bounds{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.edit(&p)
			if _, err := New(p, nil, nil); !errors.Is(err, ErrInvalidParams) {
				t.Errorf("New error = %v, want ErrInvalidParams", err)
			}
		})
	}
}

func TestNew_FarFluidParticle(t *testing.T) {
	p := DefaultParams()
	ps := FillFluid(Rect{Width: 0.02, Height: 0.02}, p.Spacing)
	far := len(ps)
	ps = append(ps, Particle{Type: Fluid, Pos: Vec2{1e9, 1e9}})

	s := mustNew(t, p, ps, nil)
	if s.Grid().Len() != far {
		t.Errorf("grid indexes %d particles, want %d", s.Grid().Len(), far)
	}
	s.Update()
	if got := s.Particles()[far].Type; got != Ghost {
		t.Errorf("far particle type = %v, want Ghost", got)
	}
	for i := 0; i < far; i++ {
		if s.Particles()[i].Type != Fluid {
			t.Fatalf("particle %d retired", i)
		}
	}
}

func TestStepSize_ViscosityDisabled(t *testing.T) {
	p := testParams()
	p.AdaptiveDt = true
	p.Viscosity = 1.0
	p.EnableViscosity = false
	s := mustNew(t, p, nil, nil)
	if dt := s.stepSize(); dt != p.DtMax {
		t.Errorf("stepSize = %v, want dt_max %v", dt, p.DtMax)
	}

	p.EnableViscosity = true
	s = mustNew(t, p, nil, nil)
	if dt := s.stepSize(); dt >= p.DtMax {
		t.Errorf("stepSize = %v, want diffusion bound below %v", dt, p.DtMax)
	}
}

func TestUpdate_EmptyScene(t *testing.T) {
	s := mustNew(t, testParams(), nil, nil)
	dt := s.Update()
	if dt != 1e-3 {
		t.Errorf("dt = %v, want dt_max", dt)
	}
	if s.Step() != 1 || s.Time() != dt {
		t.Errorf("step=%d time=%v after one tick", s.Step(), s.Time())
	}
	if s.Grid().Len() != 0 {
		t.Errorf("grid has %d entries", s.Grid().Len())
	}
}

func TestUpdate_NoForcingNoDisplacement(t *testing.T) {
	p := testParams()
	gap := 3 * p.Radius()
	var ps []Particle
	for k := 0; k < 5; k++ {
		ps = append(ps, Particle{Type: Fluid, Pos: Vec2{gap * float64(k), 0.1}})
	}
	s := mustNew(t, p, ps, nil)
	for k := 0; k < 10; k++ {
		s.Update()
	}
	for i, got := range s.Particles() {
		if got.Pos != ps[i].Pos || got.Vel != (Vec2{}) {
			t.Errorf("particle %d moved to %+v with velocity %+v", i, got.Pos, got.Vel)
		}
	}
}

func TestAdvect_ZeroVelocity(t *testing.T) {
	ps, _ := smallDamBreak(testParams())
	s := mustNew(t, testParams(), ps, nil)
	s.advect(1e-3)
	for i, got := range s.Particles() {
		if got.Pos != ps[i].Pos {
			t.Fatalf("particle %d displaced", i)
		}
	}
}

func TestDiffuse_PullsVelocitiesTogether(t *testing.T) {
	p := testParams()
	p.Viscosity = 1e-3
	ps := []Particle{
		{Type: Fluid, Pos: Vec2{0, 0}, Vel: Vec2{1, 0}},
		{Type: Fluid, Pos: Vec2{p.Spacing, 0}, Vel: Vec2{-1, 0}},
	}
	s := mustNew(t, p, ps, nil)
	s.captureVelocities()
	s.diffuse(1e-4)

	v0, v1 := s.particles[0].Vel.X, s.particles[1].Vel.X
	if !(v0 < 1) || !(v1 > -1) {
		t.Errorf("velocities did not relax: v0=%v v1=%v", v0, v1)
	}
	if math.Abs(v0+v1) > 1e-12 {
		t.Errorf("relaxation not symmetric: v0=%v v1=%v", v0, v1)
	}
}

func TestDiffuse_AddsGravityToFluidOnly(t *testing.T) {
	p := testParams()
	p.Gravity = Vec2{0, -10}
	ps := []Particle{
		{Type: Fluid, Pos: Vec2{0, 0}},
		{Type: Wall, Pos: Vec2{0.5, 0}},
		{Type: Dummy, Pos: Vec2{-0.5, 0}},
	}
	s := mustNew(t, p, ps, nil)
	s.captureVelocities()
	s.diffuse(1e-3)

	if got := s.particles[0].Vel; math.Abs(got.Y+0.01) > 1e-15 || got.X != 0 {
		t.Errorf("fluid velocity = %+v, want (0, -0.01)", got)
	}
	for _, i := range []int{1, 2} {
		if s.particles[i].Vel != (Vec2{}) {
			t.Errorf("%s particle gained velocity %+v", s.particles[i].Type, s.particles[i].Vel)
		}
	}
}

func TestCollide_ApproachingPair(t *testing.T) {
	p := testParams()
	ps := []Particle{
		{Type: Fluid, Pos: Vec2{0, 0}, Vel: Vec2{1, 0}},
		{Type: Fluid, Pos: Vec2{0.004, 0}, Vel: Vec2{-1, 0}},
	}
	s := mustNew(t, p, ps, nil)
	s.captureVelocities()
	s.collide()

	if got := s.particles[0].Vel.X; math.Abs(got+0.5) > 1e-12 {
		t.Errorf("v0 = %v, want -0.5", got)
	}
	if got := s.particles[1].Vel.X; math.Abs(got-0.5) > 1e-12 {
		t.Errorf("v1 = %v, want 0.5", got)
	}
}

func TestCollide_SeparatingPairUntouched(t *testing.T) {
	p := testParams()
	ps := []Particle{
		{Type: Fluid, Pos: Vec2{0, 0}, Vel: Vec2{-1, 0}},
		{Type: Fluid, Pos: Vec2{0.004, 0}, Vel: Vec2{1, 0}},
	}
	s := mustNew(t, p, ps, nil)
	s.captureVelocities()
	s.collide()
	if s.particles[0].Vel.X != -1 || s.particles[1].Vel.X != 1 {
		t.Errorf("separating pair changed: %+v %+v", s.particles[0].Vel, s.particles[1].Vel)
	}
}

func TestComputePressure_UnderdenseIsZero(t *testing.T) {
	p := testParams()
	ell := p.Spacing
	ps := []Particle{
		{Type: Fluid, Pos: Vec2{0, 0}, Pressure: 123},
		{Type: Wall, Pos: Vec2{ell, 0}},
		{Type: Wall, Pos: Vec2{-ell, 0}},
		{Type: Dummy, Pos: Vec2{0, -ell}},
	}
	s := mustNew(t, p, ps, nil)
	s.computePressure()
	for i, got := range s.Particles() {
		if got.Pressure != 0 {
			t.Errorf("particle %d (%s) pressure = %v, want 0", i, got.Type, got.Pressure)
		}
	}
}

func TestPressure_CompressedBlockPushesOutward(t *testing.T) {
	p := testParams()
	ps := FillFluid(Rect{X: -0.0275, Y: -0.0275, Width: 0.055, Height: 0.055}, p.Spacing)
	for i := range ps {
		ps[i].Pos = ps[i].Pos.Scale(0.7)
	}
	s := mustNew(t, p, ps, nil)
	s.computePressure()

	center := s.particles[60]
	if !(center.Pressure > 0) {
		t.Fatalf("center pressure = %v, want > 0", center.Pressure)
	}

	s.correctPressure(1e-3)
	// right edge, middle row
	edge := s.particles[5*11+10]
	if !(edge.Vel.X > 0) {
		t.Errorf("edge velocity = %+v, want outward", edge.Vel)
	}
	for i, got := range s.Particles() {
		if got.Pressure < 0 {
			t.Fatalf("particle %d has negative pressure %v", i, got.Pressure)
		}
	}
}

func TestInject_SpawnsAfterFullVolume(t *testing.T) {
	p := testParams()
	p.Spacing = 0.01
	in := []Injector{{Pos: Vec2{0, 0}, Vel: Vec2{1, 0}}}
	s := mustNew(t, p, nil, in)

	spawnedAt := 0
	for k := 1; k <= 12 && spawnedAt == 0; k++ {
		s.Update()
		if len(s.Particles()) > 0 {
			spawnedAt = k
		}
	}
	if spawnedAt < 10 || spawnedAt > 11 {
		t.Fatalf("spawned at tick %d, want about 10", spawnedAt)
	}
	got := s.Particles()[0]
	if got.Type != Fluid || got.Vel != (Vec2{1, 0}) || got.Pressure != 0 {
		t.Errorf("spawned %+v", got)
	}
	if s.Injectors()[0].Flux != 0 {
		t.Errorf("flux = %v after spawn, want 0", s.Injectors()[0].Flux)
	}
}

func TestInject_OverlapForcesVelocity(t *testing.T) {
	p := testParams()
	p.Spacing = 0.01
	ps := []Particle{{Type: Fluid, Pos: Vec2{0.002, 0}}}
	in := []Injector{{Pos: Vec2{0, 0}, Vel: Vec2{1, 0}, Flux: 1e-4}}
	s := mustNew(t, p, ps, in)
	s.Update()

	if n := len(s.Particles()); n != 1 {
		t.Fatalf("particle count = %d, want 1", n)
	}
	if got := s.Particles()[0].Vel; got != (Vec2{1, 0}) {
		t.Errorf("overlapping particle velocity = %+v, want injector velocity", got)
	}
	if f := s.Injectors()[0].Flux; !(f > 1e-4) {
		t.Errorf("flux = %v, want kept above threshold", f)
	}
}

func TestRetire_GhostsStayFrozen(t *testing.T) {
	p := testParams()
	p.Gravity = Vec2{0, -10}
	p.Domain = Bounds{0, 0, 1, 1}
	ps := []Particle{
		{Type: Fluid, Pos: Vec2{1.5, 0.5}, Vel: Vec2{1, 1}},
		{Type: Fluid, Pos: Vec2{0.5, 0.5}},
	}
	s := mustNew(t, p, ps, nil)
	s.Update()

	ghost := s.Particles()[0]
	if ghost.Type != Ghost || ghost.Vel != (Vec2{}) || ghost.Pressure != 0 {
		t.Fatalf("out-of-domain particle = %+v, want zeroed ghost", ghost)
	}
	for k := 0; k < 20; k++ {
		s.Update()
	}
	if got := s.Particles()[0]; got != ghost {
		t.Errorf("ghost changed from %+v to %+v", ghost, got)
	}
	if s.Particles()[1].Pos.Y >= 0.5 {
		t.Error("fluid particle did not fall")
	}
	if c := s.Counts(); c[Ghost] != 1 || c[Fluid] != 1 {
		t.Errorf("counts = %v", c)
	}
}

func TestUpdate_WorkersDeterministic(t *testing.T) {
	p := DefaultParams()
	p.Domain = Bounds{-0.1, -0.1, 0.3, 0.3}
	ps, _ := smallDamBreak(p)

	serial := mustNew(t, p, ps, nil)
	p.Workers = 4
	parallel := mustNew(t, p, ps, nil)
	for k := 0; k < 10; k++ {
		serial.Update()
		parallel.Update()
	}
	a, b := serial.Particles(), parallel.Particles()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("particle %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestValidate(t *testing.T) {
	ps := []Particle{
		{Type: Fluid, Pos: Vec2{0, 0}},
		{Type: Fluid, Pos: Vec2{0.5, 0}, Vel: Vec2{math.NaN(), 0}},
	}
	s := mustNew(t, testParams(), ps, nil)
	err := s.Validate()
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Validate = %v, want ErrInvalidState", err)
	}
	var se *SimulationError
	if !errors.As(err, &se) || se.Particle != 1 {
		t.Errorf("Validate error = %#v, want particle 1", err)
	}
}

func TestSnapshot_Ghosts(t *testing.T) {
	ps := []Particle{
		{Type: Fluid, Pos: Vec2{0.1, 0.2}, Vel: Vec2{3, 4}},
		{Type: Ghost, Pos: Vec2{5, 5}},
		{Type: Wall, Pos: Vec2{0.3, 0.4}},
	}
	s := mustNew(t, testParams(), ps, nil)

	snap := s.Snapshot(false)
	if snap.Len() != 2 || len(snap.Positions) != 4 {
		t.Fatalf("snapshot without ghosts has %d particles", snap.Len())
	}
	if snap.Positions[2] != 0.3 || snap.Types[1] != Wall {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if snap.Speed(0) != 5 {
		t.Errorf("Speed(0) = %v, want 5", snap.Speed(0))
	}

	snap.Positions[0] = 99
	if s.Particles()[0].Pos.X == 99 {
		t.Error("snapshot shares memory with the simulation")
	}
	if all := s.Snapshot(true); all.Len() != 3 {
		t.Errorf("snapshot with ghosts has %d particles", all.Len())
	}
}

func TestSnapshot_Clone(t *testing.T) {
	ps := []Particle{{Type: Fluid, Pos: Vec2{0.1, 0.2}, Vel: Vec2{1, 0}, Pressure: 3}}
	s := mustNew(t, testParams(), ps, nil)
	snap := s.Snapshot(false)
	c := snap.Clone()

	snap.Positions[0] = 9
	snap.Velocities[0] = 9
	snap.Pressures[0] = 9
	snap.Types[0] = Wall
	if c.Positions[0] != 0.1 || c.Velocities[0] != 1 || c.Pressures[0] != 3 || c.Types[0] != Fluid {
		t.Errorf("clone shares storage: %+v", c)
	}
}
