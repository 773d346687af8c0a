// Package stream publishes simulation snapshots to browsers over a
// websocket and feeds their control messages back to the runner.
//
// Each tick becomes one JSON [Frame]. Clients may send {"active": bool} to
// pause or resume the simulation. Slow clients skip frames instead of
// holding up the simulation goroutine.
package stream
