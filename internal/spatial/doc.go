// Package spatial provides the uniform bucket grid used for neighbor queries.
//
// A [Grid] is built from a set of positions and a cell edge equal to the
// interaction radius. Querying the 3x3 block of cells around a point returns
// every indexed position within one cell edge of that point; callers apply
// the exact radius test themselves.
//
//	g := spatial.Build(particles, re)
//	for _, j := range g.Neighbors(x, y) {
//	    ...
//	}
//
// Grids are immutable once built and are rebuilt from scratch whenever the
// positions they index move.
package spatial
