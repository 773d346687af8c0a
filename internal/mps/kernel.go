package mps

import "math"

// Weight is the MPS kernel sqrt(re²/r²) - 1 for r² < re², zero beyond.
// It diverges at r = 0; callers never evaluate self-interaction.
func Weight(r2, re2 float64) float64 {
	if r2 < re2 {
		return math.Sqrt(re2/r2) - 1.0
	}
	return 0.0
}

// ReferenceDensity is the number density pnd0 of a particle surrounded by a
// regular square lattice, with the radius given in lattice units.
func ReferenceDensity(reNon float64) float64 {
	ret := 0.0
	lattice(reNon, func(d2 float64) {
		ret += Weight(d2, reNon*reNon)
	})
	return ret
}

// Lambda is the λ0 coefficient that normalizes the discrete Laplacian.
func Lambda(reNon, spacing float64) float64 {
	ret := 0.0
	lattice(reNon, func(d2 float64) {
		ret += Weight(d2, reNon*reNon) * d2
	})
	return ret * spacing * spacing / ReferenceDensity(reNon)
}

// lattice visits the squared length of every nonzero integer offset within
// ceil(reNon) cells of the origin.
func lattice(reNon float64, fn func(d2 float64)) {
	delta := int(math.Ceil(reNon))
	for ny := -delta; ny <= delta; ny++ {
		for nx := -delta; nx <= delta; nx++ {
			if nx == 0 && ny == 0 {
				continue
			}
			fn(float64(nx*nx + ny*ny))
		}
	}
}
