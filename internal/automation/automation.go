package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/mpsfluid/internal/config"
	"github.com/san-kum/mpsfluid/internal/metrics"
	"github.com/san-kum/mpsfluid/internal/mps"
	"github.com/san-kum/mpsfluid/internal/sim"
	"github.com/san-kum/mpsfluid/internal/storage"
)

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Runs        []ScenarioRun `yaml:"runs"`
}

// ScenarioRun is a single run in a scenario. Config, when set, is loaded
// instead of Preset; Params are applied on top of either.
type ScenarioRun struct {
	Preset  string             `yaml:"preset"`
	Config  string             `yaml:"config"`
	Steps   int                `yaml:"steps"`
	Workers int                `yaml:"workers"`
	Params  map[string]float64 `yaml:"params"`
	Save    bool               `yaml:"save"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// Outcome is everything a finished headless run produced.
type Outcome struct {
	Config  *config.Config
	Result  *sim.Result
	Records []metrics.Record
	Final   mps.Snapshot
	RunID   string
}

// NewRunner builds the simulation and a runner configured from cfg.
func NewRunner(cfg *config.Config, logger *slog.Logger) (*sim.Runner, error) {
	s, err := cfg.NewSimulation()
	if err != nil {
		return nil, err
	}
	rc := sim.DefaultConfig()
	if cfg.Runner.IntervalMs > 0 {
		rc.Interval = time.Duration(cfg.Runner.IntervalMs) * time.Millisecond
	}
	rc.StartActive = cfg.Runner.StartActive
	rc.IncludeGhosts = cfg.Runner.IncludeGhosts

	r := sim.New(s, rc)
	r.SetLogger(logger)
	logger.Debug("simulation built",
		"scene", cfg.Scene,
		"particles", len(s.Particles()),
		"injectors", len(s.Injectors()),
		"pnd0", s.ReferenceDensity(),
	)
	return r, nil
}

// Execute runs cfg for the given number of ticks with activation forced on.
// A diverged run still returns its outcome, with the divergence in
// Result.Errors.
func Execute(ctx context.Context, cfg *config.Config, steps int, logger *slog.Logger) (*Outcome, error) {
	runner, err := NewRunner(cfg, logger)
	if err != nil {
		return nil, err
	}
	active := true
	runner.Apply(sim.Control{Active: &active})

	collector := metrics.NewCollector(steps)
	runner.AddMetric(collector)
	runner.AddMetric(metrics.NewPeakPressure())

	result, err := runner.RunSteps(ctx, steps)
	if result == nil {
		return nil, err
	}
	return &Outcome{
		Config:  cfg,
		Result:  result,
		Records: collector.Records(),
		Final:   runner.Simulation().Snapshot(false),
	}, err
}

// Save stores the outcome as a new run and records its ID.
func (o *Outcome) Save(st *storage.Store) (string, error) {
	meta := storage.RunMetadata{
		Scene:     o.Config.Scene,
		Steps:     o.Result.StepsTaken,
		SimTime:   o.Result.Time,
		Elapsed:   o.Result.Elapsed,
		Particles: o.Final.Len(),
		Workers:   o.Config.Runner.Workers,
		Metrics:   o.Result.Metrics,
	}
	runID, err := st.Save(meta, o.Config, o.Records)
	if err != nil {
		return "", err
	}
	o.RunID = runID
	return runID, nil
}

// SetParam overrides one named constant of cfg.
func SetParam(cfg *config.Config, name string, value float64) error {
	switch name {
	case "density":
		cfg.Physics.Density = value
	case "viscosity":
		cfg.Physics.Viscosity = value
	case "gravity_x":
		cfg.Physics.Gravity[0] = value
	case "gravity_y":
		cfg.Physics.Gravity[1] = value
	case "sound_speed":
		cfg.Physics.SoundSpeed = value
	case "spacing":
		cfg.Lattice.Spacing = value
	case "re_non":
		cfg.Lattice.ReNon = value
	case "dt_max":
		cfg.TimeStep.DtMax = value
	case "courant_max":
		cfg.TimeStep.CourantMax = value
	case "diffusion_max":
		cfg.TimeStep.DiffusionMax = value
	case "bfcourant_max":
		cfg.TimeStep.BFCourantMax = value
	case "collision_distance":
		cfg.Collision.Distance = value
	case "collision_coefficient":
		cfg.Collision.Coefficient = value
	default:
		return fmt.Errorf("unknown parameter %q", name)
	}
	return nil
}

func (r ScenarioRun) build() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case r.Config != "":
		loaded, err := config.Load(r.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case r.Preset != "":
		cfg = config.GetPreset(r.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", r.Preset)
		}
	default:
		cfg = config.DefaultConfig()
	}
	for k, v := range r.Params {
		if err := SetParam(cfg, k, v); err != nil {
			return nil, err
		}
	}
	if r.Workers > 0 {
		cfg.Runner.Workers = r.Workers
	}
	return cfg, cfg.Validate()
}

// RunScenario executes all runs in order, saving those marked save when st
// is non-nil. It stops at the first run that cannot be built or fails.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store, logger *slog.Logger) ([]*Outcome, error) {
	outcomes := make([]*Outcome, 0, len(scenario.Runs))

	for i, run := range scenario.Runs {
		cfg, err := run.build()
		if err != nil {
			return outcomes, fmt.Errorf("run %d: %w", i+1, err)
		}
		logger.Info("scenario run", "scenario", scenario.Name, "index", i+1, "of", len(scenario.Runs), "scene", cfg.Scene)

		steps := run.Steps
		if steps <= 0 {
			steps = 1000
		}
		out, err := Execute(ctx, cfg, steps, logger)
		if err != nil {
			return outcomes, fmt.Errorf("run %d: %w", i+1, err)
		}
		if run.Save && st != nil {
			if _, err := out.Save(st); err != nil {
				return outcomes, fmt.Errorf("run %d save: %w", i+1, err)
			}
		}
		outcomes = append(outcomes, out)
	}

	return outcomes, nil
}

// ParameterSweep runs one scene across evenly spaced values of a parameter
type ParameterSweep struct {
	Preset   string
	Param    string
	Min, Max float64
	Count    int
	Steps    int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	Value        float64
	PeakSpeed    float64
	PeakPressure float64
	Fluid        int
	Err          error
}

// RunSweep executes a parameter sweep. A value whose run diverges is
// reported in its SweepResult rather than aborting the sweep.
func RunSweep(ctx context.Context, sweep *ParameterSweep, logger *slog.Logger) ([]SweepResult, error) {
	if sweep.Count < 1 {
		return nil, fmt.Errorf("sweep needs at least one value")
	}
	results := make([]SweepResult, 0, sweep.Count)

	for i := 0; i < sweep.Count; i++ {
		value := sweep.Min
		if sweep.Count > 1 {
			value += float64(i) * (sweep.Max - sweep.Min) / float64(sweep.Count-1)
		}

		cfg := config.GetPreset(sweep.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", sweep.Preset)
		}
		if err := SetParam(cfg, sweep.Param, value); err != nil {
			return nil, err
		}
		res := SweepResult{Value: value}
		if err := cfg.Validate(); err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}

		out, err := Execute(ctx, cfg, sweep.Steps, logger)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return results, err
			}
			res.Err = err
			results = append(results, res)
			continue
		}
		res.PeakSpeed = out.Result.Metrics["peak_speed"]
		res.PeakPressure = out.Result.Metrics["peak_pressure"]
		for _, t := range out.Final.Types {
			if t == mps.Fluid {
				res.Fluid++
			}
		}
		if len(out.Result.Errors) > 0 {
			res.Err = errors.Join(out.Result.Errors...)
		}
		results = append(results, res)

		logger.Info("sweep", "index", i+1, "of", sweep.Count, "param", sweep.Param, "value", value)
	}

	return results, nil
}
