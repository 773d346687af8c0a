// Package analysis extracts oscillation frequencies from run telemetry.
//
// Telemetry is sampled once per tick, and adaptive stepping makes the tick
// spacing uneven, so series are first resampled onto a uniform time grid
// with [Resample] before [PowerSpectrum] is taken.
package analysis
