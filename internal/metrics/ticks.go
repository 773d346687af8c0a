package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/mpsfluid/internal/mps"
)

// Record summarizes one tick. Speed and pressure statistics cover Fluid
// particles only.
type Record struct {
	Step         int     `csv:"step" json:"step"`
	Time         float64 `csv:"time" json:"time"`
	Dt           float64 `csv:"dt" json:"dt"`
	Fluid        int     `csv:"fluid" json:"fluid"`
	Wall         int     `csv:"wall" json:"wall"`
	Dummy        int     `csv:"dummy" json:"dummy"`
	Ghost        int     `csv:"ghost" json:"ghost"`
	MaxSpeed     float64 `csv:"max_speed" json:"max_speed"`
	MeanSpeed    float64 `csv:"mean_speed" json:"mean_speed"`
	MaxPressure  float64 `csv:"max_pressure" json:"max_pressure"`
	MeanPressure float64 `csv:"mean_pressure" json:"mean_pressure"`
	ProcessingUs int64   `csv:"processing_us" json:"processing_us"`
}

func Summarize(snap *mps.Snapshot) Record {
	rec := Record{
		Step:         snap.Step,
		Time:         snap.Time,
		Dt:           snap.Dt,
		ProcessingUs: snap.Processing.Microseconds(),
	}
	speeds := make([]float64, 0, snap.Len())
	pressures := make([]float64, 0, snap.Len())
	for k, t := range snap.Types {
		switch t {
		case mps.Fluid:
			rec.Fluid++
			speeds = append(speeds, snap.Speed(k))
			pressures = append(pressures, snap.Pressures[k])
		case mps.Wall:
			rec.Wall++
		case mps.Dummy:
			rec.Dummy++
		case mps.Ghost:
			rec.Ghost++
		}
	}
	if len(speeds) > 0 {
		rec.MaxSpeed = floats.Max(speeds)
		rec.MeanSpeed = stat.Mean(speeds, nil)
		rec.MaxPressure = floats.Max(pressures)
		rec.MeanPressure = stat.Mean(pressures, nil)
	}
	return rec
}

// Collector keeps the most recent records of a run. As a metric its value
// is the peak fluid speed seen since the last Reset.
type Collector struct {
	name     string
	capacity int
	records  []Record
	peak     float64
	samples  int
}

func NewCollector(capacity int) *Collector {
	if capacity < 1 {
		capacity = 600
	}
	return &Collector{
		name:     "peak_speed",
		capacity: capacity,
		records:  make([]Record, 0, capacity),
	}
}

func (c *Collector) Name() string { return c.name }

func (c *Collector) Observe(snap *mps.Snapshot) {
	if !snap.Active {
		return
	}
	rec := Summarize(snap)
	c.records = append(c.records, rec)
	if len(c.records) > c.capacity {
		c.records = c.records[1:]
	}
	if rec.MaxSpeed > c.peak {
		c.peak = rec.MaxSpeed
	}
	c.samples++
}

func (c *Collector) Value() float64 { return c.peak }

func (c *Collector) Reset() {
	c.records = c.records[:0]
	c.peak = 0
	c.samples = 0
}

// Records returns the retained history, oldest first.
func (c *Collector) Records() []Record { return c.records }

// Samples is the number of active ticks observed since the last Reset.
func (c *Collector) Samples() int { return c.samples }

// Latest returns the most recent record.
func (c *Collector) Latest() (Record, bool) {
	if len(c.records) == 0 {
		return Record{}, false
	}
	return c.records[len(c.records)-1], true
}

// Series extracts one column of the retained history.
func (c *Collector) Series(field func(Record) float64) []float64 {
	out := make([]float64, len(c.records))
	for i, r := range c.records {
		out[i] = field(r)
	}
	return out
}

// PeakPressure tracks the largest fluid pressure seen.
type PeakPressure struct {
	peak float64
}

func NewPeakPressure() *PeakPressure { return &PeakPressure{} }

func (p *PeakPressure) Name() string { return "peak_pressure" }

func (p *PeakPressure) Observe(snap *mps.Snapshot) {
	for k, t := range snap.Types {
		if t == mps.Fluid && snap.Pressures[k] > p.peak {
			p.peak = snap.Pressures[k]
		}
	}
}

func (p *PeakPressure) Value() float64 { return p.peak }
func (p *PeakPressure) Reset()         { p.peak = 0 }
