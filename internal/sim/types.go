package sim

import (
	"time"

	"github.com/san-kum/mpsfluid/internal/mps"
)

// Observer is notified on the simulation goroutine after every tick. The
// snapshot is shared with other observers and must not be modified.
type Observer interface {
	OnTick(snap *mps.Snapshot)
}

type Metric interface {
	Name() string
	Observe(snap *mps.Snapshot)
	Value() float64
	Reset()
}

// Control is the input a consumer sends back to the runner. Nil fields
// leave the current value unchanged.
type Control struct {
	Active *bool `json:"active,omitempty"`
}

type Config struct {
	Interval      time.Duration
	StartActive   bool
	IncludeGhosts bool
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Interval:      time.Millisecond,
		StartActive:   true,
		ValidateState: true,
	}
}

type Result struct {
	StepsTaken int
	Time       float64
	Elapsed    time.Duration
	Metrics    map[string]float64
	Errors     []error
}
