package poller

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aurasys/aura/internal/errors"
	"github.com/aurasys/aura/internal/telemetry"
	auratesting "github.com/aurasys/aura/internal/testing"
)

func TestRunValidatesOptions(t *testing.T) {
	ctx := context.Background()
	noop := func(telemetry.Snapshot) error { return nil }
	collect := func() (telemetry.Snapshot, error) { return telemetry.Snapshot{}, nil }

	if _, err := Run(ctx, Options{OnSnapshot: noop}); err == nil {
		t.Error("nil Collect: want error")
	}
	if _, err := Run(ctx, Options{Collect: collect}); err == nil {
		t.Error("nil OnSnapshot: want error")
	}
	if _, err := Run(ctx, Options{
		Collect:         collect,
		OnSnapshot:      noop,
		IntervalSeconds: -1,
	}); !errors.Is(err, errors.ErrInvalidInterval) {
		t.Errorf("negative interval error = %v, want ErrInvalidInterval", err)
	}
}

func TestRunBoundedCount(t *testing.T) {
	var collected []telemetry.Snapshot
	next := 0.0

	err := auratesting.RunWithTimeout(10*time.Second, func() {
		n, err := Run(context.Background(), Options{
			IntervalSeconds: 0.001,
			MaxSnapshots:    5,
			Collect: func() (telemetry.Snapshot, error) {
				next++
				return telemetry.Snapshot{Timestamp: next}, nil
			},
			OnSnapshot: func(s telemetry.Snapshot) error {
				collected = append(collected, s)
				return nil
			},
		})
		if err != nil {
			t.Errorf("Run: %v", err)
		}
		if n != 5 {
			t.Errorf("delivered = %d, want 5", n)
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(collected) != 5 {
		t.Fatalf("collected %d snapshots, want 5", len(collected))
	}
	for i, s := range collected {
		if s.Timestamp != float64(i+1) {
			t.Errorf("collected[%d].Timestamp = %v, want %v", i, s.Timestamp, i+1)
		}
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	delivered := 0
	err := auratesting.RunWithTimeout(10*time.Second, func() {
		n, err := Run(ctx, Options{
			IntervalSeconds: 0.001,
			Collect: func() (telemetry.Snapshot, error) {
				return telemetry.Snapshot{Timestamp: 1}, nil
			},
			OnSnapshot: func(telemetry.Snapshot) error {
				delivered++
				if delivered == 3 {
					cancel()
				}
				return nil
			},
		})
		if err != nil {
			t.Errorf("Run after cancel: %v", err)
		}
		if n < 3 {
			t.Errorf("delivered = %d, want at least 3", n)
		}
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestRunStopsOnFirstError(t *testing.T) {
	boom := fmt.Errorf("sampler broke")
	var observed error

	n, err := Run(context.Background(), Options{
		IntervalSeconds: 0.001,
		Collect: func() (telemetry.Snapshot, error) {
			return telemetry.Snapshot{}, boom
		},
		OnSnapshot: func(telemetry.Snapshot) error { return nil },
		OnError:    func(err error) { observed = err },
	})
	if !errors.Is(err, boom) {
		t.Errorf("Run error = %v, want wrapped sampler error", err)
	}
	if n != 0 {
		t.Errorf("delivered = %d, want 0", n)
	}
	if !errors.Is(observed, boom) {
		t.Errorf("OnError saw %v, want sampler error", observed)
	}
}

func TestRunContinuesOnError(t *testing.T) {
	calls := 0
	failures := 0

	err := auratesting.RunWithTimeout(10*time.Second, func() {
		n, err := Run(context.Background(), Options{
			IntervalSeconds: 0.001,
			MaxSnapshots:    3,
			ContinueOnError: true,
			Collect: func() (telemetry.Snapshot, error) {
				calls++
				if calls%2 == 1 {
					return telemetry.Snapshot{}, fmt.Errorf("transient")
				}
				return telemetry.Snapshot{Timestamp: float64(calls)}, nil
			},
			OnSnapshot: func(telemetry.Snapshot) error { return nil },
			OnError:    func(error) { failures++ },
		})
		if err != nil {
			t.Errorf("Run: %v", err)
		}
		if n != 3 {
			t.Errorf("delivered = %d, want 3", n)
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	if failures == 0 {
		t.Error("OnError never invoked despite transient failures")
	}
}
