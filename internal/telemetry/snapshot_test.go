package telemetry

import (
	"math"
	"testing"
)

func TestSnapshotValidate(t *testing.T) {
	tests := []struct {
		name    string
		s       Snapshot
		wantErr bool
	}{
		{"valid", Snapshot{Timestamp: 1000, CPUPercent: 50, MemoryPercent: 60}, false},
		{"zero values", Snapshot{}, false},
		{"boundary low", Snapshot{Timestamp: -5, CPUPercent: 0, MemoryPercent: 0}, false},
		{"boundary high", Snapshot{Timestamp: 1000, CPUPercent: 100, MemoryPercent: 100}, false},
		{"nan timestamp", Snapshot{Timestamp: math.NaN()}, true},
		{"inf timestamp", Snapshot{Timestamp: math.Inf(1)}, true},
		{"nan cpu", Snapshot{Timestamp: 1, CPUPercent: math.NaN()}, true},
		{"inf memory", Snapshot{Timestamp: 1, MemoryPercent: math.Inf(-1)}, true},
		{"cpu below range", Snapshot{Timestamp: 1, CPUPercent: -0.1}, true},
		{"cpu above range", Snapshot{Timestamp: 1, CPUPercent: 100.1}, true},
		{"memory below range", Snapshot{Timestamp: 1, MemoryPercent: -1}, true},
		{"memory above range", Snapshot{Timestamp: 1, MemoryPercent: 101}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLess(t *testing.T) {
	tests := []struct {
		name string
		a, b Snapshot
		want bool
	}{
		{"by timestamp", Snapshot{Timestamp: 1}, Snapshot{Timestamp: 2}, true},
		{"timestamp reversed", Snapshot{Timestamp: 2}, Snapshot{Timestamp: 1}, false},
		{"tie broken by cpu", Snapshot{Timestamp: 1, CPUPercent: 10}, Snapshot{Timestamp: 1, CPUPercent: 20}, true},
		{"tie broken by memory", Snapshot{Timestamp: 1, CPUPercent: 10, MemoryPercent: 5}, Snapshot{Timestamp: 1, CPUPercent: 10, MemoryPercent: 6}, true},
		{"equal", Snapshot{Timestamp: 1, CPUPercent: 10, MemoryPercent: 5}, Snapshot{Timestamp: 1, CPUPercent: 10, MemoryPercent: 5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Less(tt.a, tt.b); got != tt.want {
				t.Errorf("Less() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInsertSorted(t *testing.T) {
	var snapshots []Snapshot
	for _, ts := range []float64{5, 1, 3, 2, 4} {
		snapshots = InsertSorted(snapshots, Snapshot{Timestamp: ts})
	}

	for i := 1; i < len(snapshots); i++ {
		if Less(snapshots[i], snapshots[i-1]) {
			t.Fatalf("order violated at %d: %v before %v", i, snapshots[i-1], snapshots[i])
		}
	}
	if len(snapshots) != 5 {
		t.Fatalf("len = %d, want 5", len(snapshots))
	}
}

func TestInsertSortedDuplicateTimestamps(t *testing.T) {
	snapshots := []Snapshot{
		{Timestamp: 1, CPUPercent: 20},
	}
	snapshots = InsertSorted(snapshots, Snapshot{Timestamp: 1, CPUPercent: 10})

	if snapshots[0].CPUPercent != 10 || snapshots[1].CPUPercent != 20 {
		t.Errorf("duplicate timestamps not ordered by cpu: %v", snapshots)
	}
}
