package mps

import "math"

// StepLimits are the stability maxima used to pick dt each tick.
type StepLimits struct {
	DtMax        float64
	CourantMax   float64
	DiffusionMax float64
	// BFCourantMax is applied only when UseBodyForce is set.
	BFCourantMax float64
	UseBodyForce bool
}

// StepSize returns min(dt_max, courant, diffusion, body-force) limits.
// Terms with a zero (or non-finite) denominator fall back to DtMax, and any
// term that is not a positive finite number is ignored, so the result always
// lies in (0, DtMax] for DtMax > 0.
func (l StepLimits) StepSize(velMax, gravity, viscosity, spacing float64) float64 {
	dt := l.DtMax
	limit := func(c float64) {
		if c > 0 && !math.IsInf(c, 0) && c < dt {
			dt = c
		}
	}
	if velMax > 0 {
		limit(l.CourantMax * spacing / velMax)
	}
	if viscosity > 0 {
		limit(l.DiffusionMax * spacing * spacing / viscosity)
	}
	if l.UseBodyForce && gravity > 0 {
		limit(math.Sqrt(l.BFCourantMax * spacing / gravity))
	}
	return dt
}

func (p Params) stepLimits() StepLimits {
	return StepLimits{
		DtMax:        p.DtMax,
		CourantMax:   p.CourantMax,
		DiffusionMax: p.DiffusionMax,
		BFCourantMax: p.BFCourantMax,
		UseBodyForce: p.BodyForceLimit,
	}
}

// maxSpeed is the largest velocity magnitude over active particles.
func maxSpeed(ps Particles) float64 {
	vsq := 0.0
	for i := range ps {
		if ps[i].Type == Ghost {
			continue
		}
		if v := ps[i].Vel.LenSq(); v > vsq {
			vsq = v
		}
	}
	return math.Sqrt(vsq)
}
