package spatial

import "math"

// Positions is the set of points a Grid indexes. Inactive entries are skipped.
type Positions interface {
	Len() int
	At(i int) (x, y float64, active bool)
}

// Grid maps cells to the indices of the positions they contain. Members of
// cell b are values[offsets[b]:offsets[b+1]], in ascending index order.
type Grid struct {
	cellSize   float64
	inv        float64
	minX, minY float64
	numX, numY int
	offsets    []int
	values     []int
}

// Build indexes every active position into cells of edge cellSize. An empty
// set of positions yields an empty grid whose queries return nothing.
func Build(p Positions, cellSize float64) *Grid {
	inf := math.Inf(1)
	return BuildWithin(p, cellSize, -inf, -inf, inf, inf)
}

// BuildWithin is Build restricted to positions inside the closed box
// [minX, maxX] x [minY, maxY]. Positions outside it are not indexed, so the
// grid never spans more than the box no matter how far a point strays.
func BuildWithin(p Positions, cellSize, minX, minY, maxX, maxY float64) *Grid {
	g := &Grid{cellSize: cellSize, inv: 1.0 / cellSize, offsets: []int{0}}
	n := p.Len()
	indexed := func(i int) (float64, float64, bool) {
		x, y, ok := p.At(i)
		if !ok || !finite(x, y) || x < minX || x > maxX || y < minY || y > maxY {
			return 0, 0, false
		}
		return x, y, true
	}

	first := true
	hiX, hiY := 0.0, 0.0
	for i := 0; i < n; i++ {
		x, y, ok := indexed(i)
		if !ok {
			continue
		}
		if first {
			g.minX, hiX, g.minY, hiY = x, x, y, y
			first = false
			continue
		}
		g.minX, hiX = math.Min(g.minX, x), math.Max(hiX, x)
		g.minY, hiY = math.Min(g.minY, y), math.Max(hiY, y)
	}
	if first {
		return g
	}

	g.numX = int((hiX-g.minX)*g.inv) + 1
	g.numY = int((hiY-g.minY)*g.inv) + 1
	total := g.numX * g.numY

	cells := make([]int, n)
	counts := make([]int, total+1)
	for i := 0; i < n; i++ {
		cells[i] = -1
		x, y, ok := indexed(i)
		if !ok {
			continue
		}
		bx, by := g.cellOf(x, y)
		b := bx + g.numX*by
		cells[i] = b
		counts[b+1]++
	}
	for b := 0; b < total; b++ {
		counts[b+1] += counts[b]
	}
	g.offsets = counts

	g.values = make([]int, counts[total])
	fill := make([]int, total)
	copy(fill, counts[:total])
	for i, b := range cells {
		if b < 0 {
			continue
		}
		g.values[fill[b]] = i
		fill[b]++
	}
	return g
}

// Len returns the number of indexed positions.
func (g *Grid) Len() int { return len(g.values) }

// Dims returns the number of cells along x and y.
func (g *Grid) Dims() (int, int) { return g.numX, g.numY }

// CellSize returns the cell edge the grid was built with.
func (g *Grid) CellSize() float64 { return g.cellSize }

// Cell returns the linear cell id of (x, y), or -1 when the point lies
// outside the grid.
func (g *Grid) Cell(x, y float64) int {
	if g.numX == 0 || !finite(x, y) {
		return -1
	}
	fx := math.Floor((x - g.minX) * g.inv)
	fy := math.Floor((y - g.minY) * g.inv)
	if fx < 0 || fy < 0 || fx >= float64(g.numX) || fy >= float64(g.numY) {
		return -1
	}
	return int(fx) + g.numX*int(fy)
}

// Neighbors returns the indices stored in the 3x3 block of cells around (x, y).
func (g *Grid) Neighbors(x, y float64) []int {
	return g.AppendNeighbors(nil, x, y)
}

// AppendNeighbors appends the members of the 3x3 block of cells around
// (x, y) to dst and returns the extended slice.
func (g *Grid) AppendNeighbors(dst []int, x, y float64) []int {
	if g.numX == 0 || !finite(x, y) {
		return dst
	}
	fx := math.Floor((x - g.minX) * g.inv)
	fy := math.Floor((y - g.minY) * g.inv)
	// a point more than one cell beyond the grid has no neighbors
	if fx < -1 || fy < -1 || fx > float64(g.numX) || fy > float64(g.numY) {
		return dst
	}
	bx, by := int(fx), int(fy)
	for cy := max(by-1, 0); cy <= min(by+1, g.numY-1); cy++ {
		for cx := max(bx-1, 0); cx <= min(bx+1, g.numX-1); cx++ {
			b := cx + g.numX*cy
			dst = append(dst, g.values[g.offsets[b]:g.offsets[b+1]]...)
		}
	}
	return dst
}

func (g *Grid) cellOf(x, y float64) (int, int) {
	bx := int((x - g.minX) * g.inv)
	by := int((y - g.minY) * g.inv)
	return min(bx, g.numX-1), min(by, g.numY-1)
}

func finite(x, y float64) bool {
	return !math.IsNaN(x) && !math.IsNaN(y) && !math.IsInf(x, 0) && !math.IsInf(y, 0)
}
