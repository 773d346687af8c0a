package viz

import (
	"math"

	"github.com/san-kum/mpsfluid/internal/mps"
)

const (
	BoundarySize = 5.0
	FluidSize    = 3.0
)

// Color is an RGB triple in [0, 1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

var (
	DummyColor = Color{0.5, 0.5, 0.5}
	WallColor  = Color{1, 1, 1}
)

func (c Color) Hex() string {
	return hexColor(channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float64) int {
	return int(math.Round(clamp(v, 0, 1) * 255))
}

// Ramp maps x in [0, 1] onto blue, green and red.
func Ramp(x float64) Color {
	return Color{
		R: clamp(2-4*math.Abs(x-1), 0, 1),
		G: clamp(2-4*math.Abs(x-0.5), 0, 1),
		B: clamp(2-4*math.Abs(x), 0, 1),
	}
}

func clamp(x, lo, hi float64) float64 {
	return math.Min(hi, math.Max(x, lo))
}

// Points centers the snapshot on the view box and scales its longer side
// to one. The result is flattened x, y, z triples with z always zero.
func Points(snap *mps.Snapshot, view mps.Bounds) []float64 {
	cx := (view.MinX + view.MaxX) / 2
	cy := (view.MinY + view.MaxY) / 2
	scale := 1.0
	if extent := math.Max(view.MaxX-view.MinX, view.MaxY-view.MinY); extent > 0 {
		scale = 1 / extent
	}
	n := snap.Len()
	out := make([]float64, 0, 3*n)
	for k := 0; k < n; k++ {
		out = append(out,
			(snap.Positions[2*k]-cx)*scale,
			(snap.Positions[2*k+1]-cy)*scale,
			0)
	}
	return out
}

// SpeedRange returns the speed span over every particle in the snapshot,
// widened by half a unit each way when it is degenerate.
func SpeedRange(snap *mps.Snapshot) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for k := 0; k < snap.Len(); k++ {
		v := snap.Speed(k)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if snap.Len() == 0 {
		lo, hi = 0, 0
	}
	if hi == lo {
		hi += 0.5
		lo -= 0.5
	}
	return lo, hi
}

// Colors tints fluid by normalized speed. Boundary particles get flat colors.
func Colors(snap *mps.Snapshot) []Color {
	lo, hi := SpeedRange(snap)
	out := make([]Color, snap.Len())
	for k, t := range snap.Types {
		switch t {
		case mps.Fluid:
			out[k] = Ramp((snap.Speed(k) - lo) / (hi - lo))
		case mps.Dummy:
			out[k] = DummyColor
		default:
			out[k] = WallColor
		}
	}
	return out
}

func Sizes(snap *mps.Snapshot) []float64 {
	out := make([]float64, snap.Len())
	for k, t := range snap.Types {
		if t == mps.Wall || t == mps.Dummy {
			out[k] = BoundarySize
		} else {
			out[k] = FluidSize
		}
	}
	return out
}
