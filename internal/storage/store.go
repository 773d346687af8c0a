package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/mpsfluid/internal/config"
	"github.com/san-kum/mpsfluid/internal/metrics"
)

const (
	metadataFile  = "metadata.json"
	configFile    = "config.yaml"
	telemetryFile = "telemetry.csv"
)

var ErrNotFound = errors.New("run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Scene     string             `json:"scene"`
	Timestamp time.Time          `json:"timestamp"`
	Steps     int                `json:"steps"`
	SimTime   float64            `json:"sim_time"`
	Elapsed   time.Duration      `json:"elapsed_ns"`
	Particles int                `json:"particles"`
	Workers   int                `json:"workers"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes a run directory holding the metadata, the configuration that
// produced the run and the per-tick telemetry. The run ID is assigned here
// from the scene name and the current time.
func (s *Store) Save(meta RunMetadata, cfg *config.Config, records []metrics.Record) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	runID, runDir, err := s.allocate(meta.Scene, meta.Timestamp)
	if err != nil {
		return "", err
	}
	meta.ID = runID

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", fmt.Errorf("writing metadata: %w", err)
	}

	if cfg != nil {
		if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
			return "", fmt.Errorf("writing config: %w", err)
		}
	}

	f, err := os.Create(filepath.Join(runDir, telemetryFile))
	if err != nil {
		return "", fmt.Errorf("creating telemetry.csv: %w", err)
	}
	defer f.Close()

	if len(records) == 0 {
		return runID, nil
	}
	if err := gocsv.Marshal(records, f); err != nil {
		return "", fmt.Errorf("writing telemetry: %w", err)
	}
	return runID, nil
}

func (s *Store) allocate(scene string, ts time.Time) (string, string, error) {
	if scene == "" {
		scene = "run"
	}
	base := fmt.Sprintf("%s_%d", scene, ts.Unix())
	runID := base
	for n := 1; ; n++ {
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			if err := os.MkdirAll(s.baseDir, 0755); err != nil {
				return "", "", err
			}
			continue
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s_%d", base, n)
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// List returns every readable run, newest first. Directories without valid
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing metadata for %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadConfig returns the configuration stored with a run.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

func (s *Store) LoadTelemetry(runID string) ([]metrics.Record, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, telemetryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return []metrics.Record{}, nil
	}

	var records []metrics.Record
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, fmt.Errorf("reading telemetry for %s: %w", runID, err)
	}
	return records, nil
}
