package mps

import "errors"

// Domain errors for engine construction and state checks.
var (
	// ErrInvalidParams indicates a constant that would make the scheme undefined.
	ErrInvalidParams = errors.New("mps: invalid parameters")

	// ErrInvalidState indicates a particle with a NaN or Inf position or velocity.
	ErrInvalidState = errors.New("mps: invalid state (NaN or Inf detected)")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step     int
	Time     float64
	Particle int
	Wrapped  error
}

func (e *SimulationError) Error() string {
	return e.Wrapped.Error()
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
