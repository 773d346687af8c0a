// Package sim schedules an [mps.Simulation] and hands its state to consumers.
//
// A [Runner] is the only mutator of the simulation. It ticks either on a
// fixed interval ([Runner.Run], [Runner.Start]) or on demand
// ([Runner.Tick], [Runner.RunSteps]); every tick runs the whole pipeline
// before the next one starts. After each tick the runner publishes an
// independent [mps.Snapshot] on [Runner.Snapshots] and accepts [Control]
// messages through [Runner.Apply].
package sim
