// Package mps implements a 2-D Moving-Particle-Semi-implicit fluid engine
// with a weakly-compressible pressure model.
//
// A [Simulation] owns a slice of [Particle] values and a set of inflow
// [Injector] sites. Each call to [Simulation.Update] runs one tick:
//
//  1. pick dt from the velocity, diffusion and body-force limits
//  2. index particles into a bucket grid of edge re
//  3. viscous diffusion plus gravity
//  4. collision correction of approaching pairs
//  5. advection of tentative positions
//  6. re-index, compute pressure from number density, correct by its gradient
//  7. inflow injection
//  8. retire Fluid particles that left the domain as Ghosts
//
// Scenes are assembled with [FillFluid], [FillTank] and [InjectorColumn].
//
// # Thread Safety
//
// A Simulation is NOT safe for concurrent use. Share state with other
// goroutines through [Simulation.Snapshot], which returns an independent copy.
package mps
