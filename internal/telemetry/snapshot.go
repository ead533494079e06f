package telemetry

import (
	"math"
	"sort"
	"time"

	"github.com/aurasys/aura/internal/errors"
)

// Snapshot represents a single system-health measurement.
// This is the primary data unit flowing through the store and query engine.
type Snapshot struct {
	// Timestamp is Unix seconds with sub-second precision.
	Timestamp float64 `json:"timestamp"`

	// CPUPercent is the system-wide CPU utilization in [0, 100].
	CPUPercent float64 `json:"cpu_percent"`

	// MemoryPercent is the virtual memory utilization in [0, 100].
	MemoryPercent float64 `json:"memory_percent"`
}

// Validate checks the snapshot invariants: every field must be finite and
// the percentages must be within [0, 100]. A snapshot that fails validation
// is rejected at the boundary and never stored.
func (s Snapshot) Validate() error {
	if !isFinite(s.Timestamp) {
		return errors.NewInvalidField("timestamp", "must be a finite number")
	}
	if !isFinite(s.CPUPercent) {
		return errors.NewInvalidField("cpu_percent", "must be a finite number")
	}
	if !isFinite(s.MemoryPercent) {
		return errors.NewInvalidField("memory_percent", "must be a finite number")
	}
	if s.CPUPercent < 0 || s.CPUPercent > 100 {
		return errors.NewInvalidField("cpu_percent", "must be between 0 and 100")
	}
	if s.MemoryPercent < 0 || s.MemoryPercent > 100 {
		return errors.NewInvalidField("memory_percent", "must be between 0 and 100")
	}
	return nil
}

// Time returns the timestamp as a time.Time.
func (s Snapshot) Time() time.Time {
	sec, frac := math.Modf(s.Timestamp)
	return time.Unix(int64(sec), int64(frac*1e9))
}

// Less orders snapshots by the compound key
// (timestamp, cpu_percent, memory_percent). The compound key is the
// tie-break when two snapshots share a timestamp, giving deterministic
// ordering for range and latest-N reads.
func Less(a, b Snapshot) bool {
	if a.Timestamp != b.Timestamp {
		return a.Timestamp < b.Timestamp
	}
	if a.CPUPercent != b.CPUPercent {
		return a.CPUPercent < b.CPUPercent
	}
	return a.MemoryPercent < b.MemoryPercent
}

// Sort sorts snapshots in place by the compound key.
func Sort(snapshots []Snapshot) {
	sort.Slice(snapshots, func(i, j int) bool {
		return Less(snapshots[i], snapshots[j])
	})
}

// InsertSorted inserts a snapshot into an already-sorted slice, keeping the
// compound-key order.
func InsertSorted(snapshots []Snapshot, s Snapshot) []Snapshot {
	i := sort.Search(len(snapshots), func(i int) bool {
		return Less(s, snapshots[i])
	})
	snapshots = append(snapshots, Snapshot{})
	copy(snapshots[i+1:], snapshots[i:])
	snapshots[i] = s
	return snapshots
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return isFinite(v)
}
