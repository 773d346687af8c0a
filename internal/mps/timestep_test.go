package mps

import (
	"math"
	"math/rand"
	"testing"
)

func TestStepSize(t *testing.T) {
	l := StepLimits{DtMax: 5e-4, CourantMax: 0.1, DiffusionMax: 0.1, BFCourantMax: 0.1, UseBodyForce: true}

	tests := []struct {
		name                string
		vel, g, nu, spacing float64
		want                float64
	}{
		{"at rest", 0, 0, 0, 0.005, 5e-4},
		{"courant bound", 10, 0, 0, 0.005, 5e-5},
		{"diffusion bound", 0, 0, 1.0, 0.005, 2.5e-6},
		{"body force bound", 0, 1e4, 0, 0.005, math.Sqrt(0.1 * 0.005 / 1e4)},
		{"loose limits", 1, 10, 1e-6, 0.005, 5e-4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := l.StepSize(tt.vel, tt.g, tt.nu, tt.spacing)
			if math.Abs(got-tt.want) > 1e-15 {
				t.Errorf("StepSize = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStepSize_BodyForceDisabled(t *testing.T) {
	l := StepLimits{DtMax: 5e-4, CourantMax: 0.1, DiffusionMax: 0.1, BFCourantMax: 0.1}
	if got := l.StepSize(0, 1e6, 0, 0.005); got != 5e-4 {
		t.Errorf("StepSize = %v, want dt_max", got)
	}
}

func TestStepSize_Bounded(t *testing.T) {
	l := StepLimits{DtMax: 1e-3, CourantMax: 0.2, DiffusionMax: 0.1, BFCourantMax: 0.1, UseBodyForce: true}
	rng := rand.New(rand.NewSource(3))
	inputs := []float64{0, 1e-300, 1e300, math.Inf(1)}

	for k := 0; k < 10000; k++ {
		vel, g, nu := rng.ExpFloat64()*10, rng.ExpFloat64()*20, rng.ExpFloat64()*1e-3
		if k < len(inputs) {
			vel, g, nu = inputs[k], inputs[k], inputs[k]
		}
		dt := l.StepSize(vel, g, nu, 0.01)
		if !(dt > 0) || dt > l.DtMax {
			t.Fatalf("StepSize(%g, %g, %g) = %g, want in (0, %g]", vel, g, nu, dt, l.DtMax)
		}
	}
}

func TestMaxSpeed_IgnoresGhosts(t *testing.T) {
	ps := Particles{
		{Type: Fluid, Vel: Vec2{3, 4}},
		{Type: Ghost, Vel: Vec2{100, 0}},
	}
	if got := maxSpeed(ps); got != 5 {
		t.Errorf("maxSpeed = %v, want 5", got)
	}
}
