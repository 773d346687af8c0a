package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/san-kum/mpsfluid/internal/mps"
)

var ErrRunning = errors.New("sim: runner already started")

// Runner drives a Simulation from a single goroutine and hands snapshots
// to consumers. Tick, Run and RunSteps must not be called concurrently;
// Apply and Snapshots are safe from any goroutine.
type Runner struct {
	sim       *mps.Simulation
	cfg       Config
	active    atomic.Bool
	observers []Observer
	metrics   []Metric
	out       chan mps.Snapshot
	logger    *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(s *mps.Simulation, cfg Config) *Runner {
	r := &Runner{
		sim:       s,
		cfg:       cfg,
		observers: make([]Observer, 0),
		metrics:   make([]Metric, 0),
		out:       make(chan mps.Snapshot, 1),
		logger:    slog.Default(),
	}
	r.active.Store(cfg.StartActive)
	return r
}

func (r *Runner) SetLogger(l *slog.Logger) { r.logger = l }
func (r *Runner) AddMetric(m Metric)       { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer)   { r.observers = append(r.observers, o) }

// Simulation returns the driven simulation. Only the runner's goroutine may
// touch it while the runner is started.
func (r *Runner) Simulation() *mps.Simulation { return r.sim }

// Apply takes a control message from a consumer.
func (r *Runner) Apply(c Control) {
	if c.Active != nil {
		r.active.Store(*c.Active)
	}
}

func (r *Runner) Active() bool { return r.active.Load() }

// Snapshots delivers the latest snapshot. A slow consumer misses
// intermediate ticks rather than stalling the simulation. Values received
// here share no storage with the snapshots given to observers.
func (r *Runner) Snapshots() <-chan mps.Snapshot { return r.out }

// Tick runs one full pipeline pass if the runner is active and publishes
// the resulting snapshot.
func (r *Runner) Tick() mps.Snapshot {
	active := r.active.Load()
	start := time.Now()
	if active {
		r.sim.Update()
	}
	snap := r.sim.Snapshot(r.cfg.IncludeGhosts)
	snap.Processing = time.Since(start)
	snap.Active = active

	for _, m := range r.metrics {
		m.Observe(&snap)
	}
	for _, o := range r.observers {
		o.OnTick(&snap)
	}
	if len(r.metrics) > 0 || len(r.observers) > 0 {
		// observers may retain the pointer; the channel gets its own slices
		r.publish(snap.Clone())
	} else {
		r.publish(snap)
	}
	return snap
}

func (r *Runner) publish(snap mps.Snapshot) {
	select {
	case r.out <- snap:
		return
	default:
	}
	select {
	case <-r.out:
	default:
	}
	select {
	case r.out <- snap:
	default:
	}
}

// Run ticks on a fixed interval until ctx is done. A tick in progress always
// completes before Run returns.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.validateConfig(); err != nil {
		return err
	}
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.logger.Info("runner started", "interval", r.cfg.Interval, "particles", len(r.sim.Particles()))
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("runner stopped", "step", r.sim.Step(), "time", r.sim.Time())
			return ctx.Err()
		case <-ticker.C:
		}
		r.Tick()
		if err := r.check(); err != nil {
			r.logger.Error("simulation diverged", "err", err)
			return err
		}
	}
}

// RunSteps ticks n times back to back, without a timer.
func (r *Runner) RunSteps(ctx context.Context, n int) (*Result, error) {
	if n <= 0 {
		return nil, fmt.Errorf("steps must be positive, got %d", n)
	}
	for _, m := range r.metrics {
		m.Reset()
	}
	result := &Result{Metrics: make(map[string]float64), Errors: make([]error, 0)}
	start := time.Now()

	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			r.finish(result, start)
			return result, ctx.Err()
		default:
		}
		snap := r.Tick()
		if snap.Active {
			result.StepsTaken++
		}
		if err := r.check(); err != nil {
			result.Errors = append(result.Errors, err)
			break
		}
	}
	r.finish(result, start)
	return result, nil
}

func (r *Runner) finish(result *Result, start time.Time) {
	result.Time = r.sim.Time()
	result.Elapsed = time.Since(start)
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (r *Runner) check() error {
	if !r.cfg.ValidateState {
		return nil
	}
	return r.sim.Validate()
}

// Start runs the runner on its own goroutine until Stop is called or ctx is done.
func (r *Runner) Start(ctx context.Context) error {
	if err := r.validateConfig(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return ErrRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			r.logger.Error("runner exited", "err", err)
		}
	}(r.done)
	return nil
}

// Stop cancels a started runner and waits for the current tick to finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (r *Runner) validateConfig() error {
	if r.cfg.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", r.cfg.Interval)
	}
	if r.sim == nil {
		return fmt.Errorf("runner has no simulation")
	}
	return nil
}
