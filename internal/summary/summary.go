// Package summary computes descriptive statistics over snapshot windows.
// Percentiles come from DDSketch, so summarizing a window stays cheap even
// when the window holds a full retention period of one-second samples.
package summary

import (
	"math"

	"github.com/DataDog/sketches-go/ddsketch"

	"github.com/aurasys/aura/internal/errors"
	"github.com/aurasys/aura/internal/store"
	"github.com/aurasys/aura/internal/telemetry"
)

// relativeAccuracy is the DDSketch guarantee on percentile estimates.
const relativeAccuracy = 0.01

// SignalSummary holds the statistics for one signal across a window.
type SignalSummary struct {
	Count int     `json:"count"`
	Sum   float64 `json:"sum"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
	P50   float64 `json:"p50"`
	P90   float64 `json:"p90"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
}

// WindowSummary summarizes both signals over a window of snapshots.
type WindowSummary struct {
	Start  float64       `json:"start"`
	End    float64       `json:"end"`
	Count  int           `json:"count"`
	CPU    SignalSummary `json:"cpu"`
	Memory SignalSummary `json:"memory"`
}

// accumulator builds a SignalSummary incrementally.
type accumulator struct {
	count  int
	sum    float64
	min    float64
	max    float64
	sketch *ddsketch.DDSketch
}

func newAccumulator() *accumulator {
	acc := &accumulator{
		min: math.MaxFloat64,
		max: -math.MaxFloat64,
	}
	sketch, err := ddsketch.NewDefaultDDSketch(relativeAccuracy)
	if err == nil {
		acc.sketch = sketch
	}
	return acc
}

func (a *accumulator) add(value float64) {
	a.count++
	a.sum += value
	if value < a.min {
		a.min = value
	}
	if value > a.max {
		a.max = value
	}
	if a.sketch != nil {
		a.sketch.Add(value)
	}
}

func (a *accumulator) result() SignalSummary {
	s := SignalSummary{Count: a.count}
	if a.count == 0 {
		return s
	}
	s.Sum = a.sum
	s.Min = a.min
	s.Max = a.max
	s.Avg = a.sum / float64(a.count)
	if a.sketch != nil {
		s.P50, _ = a.sketch.GetValueAtQuantile(0.50)
		s.P90, _ = a.sketch.GetValueAtQuantile(0.90)
		s.P95, _ = a.sketch.GetValueAtQuantile(0.95)
		s.P99, _ = a.sketch.GetValueAtQuantile(0.99)
	}
	return s
}

// Summarize computes a WindowSummary over the given snapshots. Start and
// End report the first and last timestamps actually present, not the
// requested bounds; an empty window leaves them zero.
func Summarize(snapshots []telemetry.Snapshot) WindowSummary {
	ws := WindowSummary{Count: len(snapshots)}
	if len(snapshots) == 0 {
		return ws
	}

	ws.Start = snapshots[0].Timestamp
	ws.End = snapshots[len(snapshots)-1].Timestamp

	cpu := newAccumulator()
	mem := newAccumulator()
	for _, s := range snapshots {
		cpu.add(s.CPUPercent)
		mem.add(s.MemoryPercent)
	}
	ws.CPU = cpu.result()
	ws.Memory = mem.result()
	return ws
}

// ForRange reads a window out of the store and summarizes it.
func ForRange(s store.Store, start, end *float64) (WindowSummary, error) {
	snapshots, err := s.Between(start, end)
	if err != nil {
		return WindowSummary{}, errors.Wrap(err, "summarize range")
	}
	return Summarize(snapshots), nil
}
