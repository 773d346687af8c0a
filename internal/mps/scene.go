package mps

import "math"

// Rect is an axis-aligned region filled with particles, origin at (X, Y).
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// latticeCount is the number of lattice cells that fit a length.
func latticeCount(length, spacing float64) int {
	return int(math.Floor(length/spacing + 0.5))
}

// FillFluid places Fluid particles at the cell centers of a square lattice
// covering r.
func FillFluid(r Rect, spacing float64) []Particle {
	numX, numY := latticeCount(r.Width, spacing), latticeCount(r.Height, spacing)
	ret := make([]Particle, 0, numX*numY)
	for ny := 0; ny < numY; ny++ {
		for nx := 0; nx < numX; nx++ {
			ret = append(ret, Particle{
				Type: Fluid,
				Pos:  r.cell(nx, ny, numX, numY),
			})
		}
	}
	return ret
}

// WallLayers is the thickness, in particles, of a tank wall for the given
// interaction radius: one Wall layer and enough Dummy layers behind it to
// give Wall particles full density support.
func WallLayers(reNon float64) int {
	return int(math.Floor(reNon)) + 1
}

// FillTank surrounds the tank interior r with layers of boundary particles.
// The layer touching the interior is Wall; the rest is Dummy.
func FillTank(r Rect, spacing float64, layers int) []Particle {
	numX, numY := latticeCount(r.Width, spacing), latticeCount(r.Height, spacing)
	var ret []Particle
	for ny := -layers; ny < numY+layers; ny++ {
		for nx := -layers; nx < numX+layers; nx++ {
			if nx >= 0 && nx < numX && ny >= 0 && ny < numY {
				continue
			}
			t := Dummy
			if nx >= -1 && nx <= numX && ny >= -1 && ny <= numY {
				t = Wall
			}
			ret = append(ret, Particle{Type: t, Pos: r.cell(nx, ny, numX, numY)})
		}
	}
	return ret
}

// InjectorColumn places n injectors stacked upward from start, Spacing apart,
// all with velocity v.
func InjectorColumn(start, v Vec2, n int, spacing float64) []Injector {
	ret := make([]Injector, n)
	for i := range ret {
		ret[i] = Injector{Pos: Vec2{start.X, start.Y + spacing*float64(i)}, Vel: v}
	}
	return ret
}

func (r Rect) cell(nx, ny, numX, numY int) Vec2 {
	return Vec2{
		X: r.Width*(float64(nx)+0.5)/float64(numX) + r.X,
		Y: r.Height*(float64(ny)+0.5)/float64(numY) + r.Y,
	}
}
