package stream

import (
	"github.com/san-kum/mpsfluid/internal/mps"
	"github.com/san-kum/mpsfluid/internal/viz"
)

// Frame is the wire form of a snapshot.
type Frame struct {
	Points         []float64   `json:"points"`
	Colors         []viz.Color `json:"colors"`
	Sizes          []float64   `json:"sizes"`
	Steps          int         `json:"steps"`
	Time           float64     `json:"time"`
	ProcessingTime float64     `json:"processingTime"`
	Active         bool        `json:"active"`
}

// NewFrame converts a snapshot. ProcessingTime is in milliseconds.
func NewFrame(snap *mps.Snapshot, view mps.Bounds) Frame {
	return Frame{
		Points:         viz.Points(snap, view),
		Colors:         viz.Colors(snap),
		Sizes:          viz.Sizes(snap),
		Steps:          snap.Step,
		Time:           snap.Time,
		ProcessingTime: float64(snap.Processing.Microseconds()) / 1000,
		Active:         snap.Active,
	}
}
