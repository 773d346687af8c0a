// Package viz turns snapshots into things a person can look at.
//
// The presentation helpers [Points], [Colors] and [Sizes] produce the
// per-particle arrays a point-cloud renderer consumes. [Model] is a Bubble
// Tea viewer that draws each snapshot on a braille [Canvas], tinted by
// speed, next to a short telemetry panel.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
