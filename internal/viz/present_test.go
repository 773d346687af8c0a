package viz

import (
	"math"
	"testing"

	"github.com/san-kum/mpsfluid/internal/mps"
)

func snapshotOf(types []mps.ParticleType, pos, vel []float64) *mps.Snapshot {
	return &mps.Snapshot{
		Positions:  pos,
		Velocities: vel,
		Pressures:  make([]float64, len(types)),
		Types:      types,
	}
}

func TestRamp(t *testing.T) {
	tests := []struct {
		x    float64
		want Color
	}{
		{0, Color{0, 0, 1}},
		{0.5, Color{0, 1, 0}},
		{1, Color{1, 0, 0}},
		{0.25, Color{0, 1, 1}},
	}
	for _, tt := range tests {
		if got := Ramp(tt.x); got != tt.want {
			t.Errorf("Ramp(%v) = %+v, want %+v", tt.x, got, tt.want)
		}
	}
}

func TestColorHex(t *testing.T) {
	if got := (Color{0, 0, 1}).Hex(); got != "#0000ff" {
		t.Errorf("expected #0000ff, got %s", got)
	}
	if got := DummyColor.Hex(); got != "#808080" {
		t.Errorf("expected #808080, got %s", got)
	}
	if got := (Color{2, -1, 0}).Hex(); got != "#ff0000" {
		t.Errorf("expected clamped #ff0000, got %s", got)
	}
}

func TestColors(t *testing.T) {
	snap := snapshotOf(
		[]mps.ParticleType{mps.Fluid, mps.Fluid, mps.Wall, mps.Dummy},
		make([]float64, 8),
		[]float64{0, 0, 0, 2, 0, 0, 0, 0},
	)
	got := Colors(snap)
	want := []Color{{0, 0, 1}, {1, 0, 0}, WallColor, DummyColor}
	for k := range want {
		if got[k] != want[k] {
			t.Errorf("particle %d: got %+v, want %+v", k, got[k], want[k])
		}
	}
}

func TestColorsUniformSpeed(t *testing.T) {
	snap := snapshotOf([]mps.ParticleType{mps.Fluid, mps.Fluid}, make([]float64, 4), []float64{1, 0, 0, 1})
	for k, c := range Colors(snap) {
		if c != (Color{0, 1, 0}) {
			t.Errorf("particle %d: expected mid-ramp green, got %+v", k, c)
		}
	}
	lo, hi := SpeedRange(snap)
	if lo != 0.5 || hi != 1.5 {
		t.Errorf("expected widened range [0.5, 1.5], got [%v, %v]", lo, hi)
	}
}

func TestColorsEmpty(t *testing.T) {
	snap := snapshotOf(nil, nil, nil)
	if got := Colors(snap); len(got) != 0 {
		t.Errorf("expected no colors, got %d", len(got))
	}
}

func TestSizes(t *testing.T) {
	snap := snapshotOf([]mps.ParticleType{mps.Fluid, mps.Wall, mps.Dummy, mps.Ghost}, make([]float64, 8), make([]float64, 8))
	want := []float64{FluidSize, BoundarySize, BoundarySize, FluidSize}
	got := Sizes(snap)
	for k := range want {
		if got[k] != want[k] {
			t.Errorf("particle %d: size %v, want %v", k, got[k], want[k])
		}
	}
}

func TestPoints(t *testing.T) {
	snap := snapshotOf([]mps.ParticleType{mps.Fluid, mps.Fluid}, []float64{2, 1, 1, 0.5}, make([]float64, 4))
	got := Points(snap, mps.Bounds{MinX: 0, MinY: 0, MaxX: 2, MaxY: 1})
	want := []float64{0.5, 0.25, 0, 0, 0, 0}
	if len(got) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(got))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("value %d: got %v, want %v", i, got[i], want[i])
		}
	}
}
