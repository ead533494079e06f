package store

import (
	"math"
	"testing"

	"github.com/aurasys/aura/internal/errors"
	"github.com/aurasys/aura/internal/telemetry"
)

func TestOpenValidation(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		retention float64
		sentinel  error
	}{
		{"empty path", "", 60, errors.ErrEmptyPath},
		{"zero retention", ":memory:", 0, errors.ErrInvalidRetention},
		{"negative retention", ":memory:", -10, errors.ErrInvalidRetention},
		{"nan retention", ":memory:", math.NaN(), errors.ErrInvalidRetention},
		{"inf retention", ":memory:", math.Inf(1), errors.ErrInvalidRetention},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(tt.path, tt.retention)
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("Open() error = %v, want %v", err, tt.sentinel)
			}
		})
	}
}

func openMemory(t *testing.T, retention float64, clock Clock) Store {
	t.Helper()
	s, err := Open(":memory:", retention, WithClock(clock))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func fixedClock(now float64) Clock {
	return func() float64 { return now }
}

func TestMemoryStoreAppendAndCount(t *testing.T) {
	s := openMemory(t, 3600, fixedClock(1000))

	for _, ts := range []float64{100, 300, 200} {
		if err := s.Append(telemetry.Snapshot{Timestamp: ts, CPUPercent: 50, MemoryPercent: 60}); err != nil {
			t.Fatalf("Append(%v): %v", ts, err)
		}
	}

	n, err := s.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Errorf("Count = %d, want 3", n)
	}
}

func TestMemoryStoreRejectsInvalidSnapshot(t *testing.T) {
	s := openMemory(t, 3600, fixedClock(1000))

	err := s.Append(telemetry.Snapshot{Timestamp: 100, CPUPercent: 150})
	if !errors.Is(err, errors.ErrInvalidSnapshot) {
		t.Errorf("Append invalid: error = %v, want ErrInvalidSnapshot", err)
	}

	n, _ := s.Count()
	if n != 0 {
		t.Errorf("Count after rejected append = %d, want 0", n)
	}
}

func TestMemoryStoreLatest(t *testing.T) {
	s := openMemory(t, 3600, fixedClock(1000))
	for _, ts := range []float64{100, 200, 300, 400} {
		if err := s.Append(telemetry.Snapshot{Timestamp: ts}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := s.Latest(2)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if len(got) != 2 || got[0].Timestamp != 300 || got[1].Timestamp != 400 {
		t.Errorf("Latest(2) = %v, want timestamps [300 400]", got)
	}

	// Asking for more than stored returns everything.
	got, err = s.Latest(10)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if len(got) != 4 {
		t.Errorf("Latest(10) len = %d, want 4", len(got))
	}

	if _, err := s.Latest(0); !errors.Is(err, errors.ErrInvalidLimit) {
		t.Errorf("Latest(0) error = %v, want ErrInvalidLimit", err)
	}
	if _, err := s.Latest(-1); !errors.Is(err, errors.ErrInvalidLimit) {
		t.Errorf("Latest(-1) error = %v, want ErrInvalidLimit", err)
	}
}

func TestMemoryStoreBetween(t *testing.T) {
	s := openMemory(t, 3600, fixedClock(1000))
	for _, ts := range []float64{100, 200, 300, 400} {
		if err := s.Append(telemetry.Snapshot{Timestamp: ts}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name       string
		start, end *float64
		want       []float64
	}{
		{"open both", nil, nil, []float64{100, 200, 300, 400}},
		{"inclusive bounds", f(200), f(300), []float64{200, 300}},
		{"open start", nil, f(200), []float64{100, 200}},
		{"open end", f(300), nil, []float64{300, 400}},
		{"empty window", f(201), f(299), nil},
		{"point window", f(200), f(200), []float64{200}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Between(tt.start, tt.end)
			if err != nil {
				t.Fatalf("Between: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Between len = %d, want %d", len(got), len(tt.want))
			}
			for i, ts := range tt.want {
				if got[i].Timestamp != ts {
					t.Errorf("Between[%d].Timestamp = %v, want %v", i, got[i].Timestamp, ts)
				}
			}
		})
	}

	if _, err := s.Between(f(300), f(200)); !errors.Is(err, errors.ErrInvalidRange) {
		t.Errorf("inverted range error = %v, want ErrInvalidRange", err)
	}
	nan := math.NaN()
	if _, err := s.Between(&nan, nil); !errors.Is(err, errors.ErrInvalidTimestamp) {
		t.Errorf("nan bound error = %v, want ErrInvalidTimestamp", err)
	}
}

func TestMemoryStoreBetweenSubSecondBounds(t *testing.T) {
	base := 1000.0
	s := openMemory(t, 3600, fixedClock(base+2))

	for i := 0; i < 3; i++ {
		snap := telemetry.Snapshot{Timestamp: base + float64(i)}
		if err := s.Append(snap); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	start := base + 0.5
	end := base + 2.0
	got, err := s.Between(&start, &end)
	if err != nil {
		t.Fatalf("Between: %v", err)
	}
	if len(got) != 2 || got[0].Timestamp != base+1 || got[1].Timestamp != base+2 {
		t.Errorf("Between = %v, want the 2nd and 3rd snapshots ascending", got)
	}
}

func TestMemoryStoreRetention(t *testing.T) {
	now := 1000.0
	s := openMemory(t, 100, func() float64 { return now })

	for _, ts := range []float64{900, 950, 1000} {
		if err := s.Append(telemetry.Snapshot{Timestamp: ts}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	// Everything is still inside the window.
	if n, _ := s.Count(); n != 3 {
		t.Fatalf("Count = %d, want 3", n)
	}

	// Advance time so the cutoff passes the first two snapshots.
	now = 1060
	if n, _ := s.Count(); n != 2 {
		t.Errorf("Count after advance = %d, want 2", n)
	}

	got, err := s.Latest(10)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	for _, snap := range got {
		if snap.Timestamp < now-100 {
			t.Errorf("expired snapshot %v still served", snap.Timestamp)
		}
	}
}

func TestMemoryStoreAppendOlderThanRetention(t *testing.T) {
	s := openMemory(t, 100, fixedClock(1000))

	// An append that is already expired is accepted and immediately pruned.
	if err := s.Append(telemetry.Snapshot{Timestamp: 500}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if n, _ := s.Count(); n != 0 {
		t.Errorf("Count = %d, want 0", n)
	}
}

func TestMemoryStoreClosed(t *testing.T) {
	s := openMemory(t, 3600, fixedClock(1000))
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := s.Append(telemetry.Snapshot{Timestamp: 100}); !errors.Is(err, errors.ErrStoreClosed) {
		t.Errorf("Append after close error = %v, want ErrStoreClosed", err)
	}
	if _, err := s.Count(); !errors.Is(err, errors.ErrStoreClosed) {
		t.Errorf("Count after close error = %v, want ErrStoreClosed", err)
	}
	if _, err := s.Latest(1); !errors.Is(err, errors.ErrStoreClosed) {
		t.Errorf("Latest after close error = %v, want ErrStoreClosed", err)
	}
	if _, err := s.Between(nil, nil); !errors.Is(err, errors.ErrStoreClosed) {
		t.Errorf("Between after close error = %v, want ErrStoreClosed", err)
	}
}

func TestMemoryStorePath(t *testing.T) {
	s := openMemory(t, 3600, fixedClock(1000))
	if s.Path() != ":memory:" {
		t.Errorf("Path = %q, want :memory:", s.Path())
	}
}
