// Package collector samples host CPU and memory utilization.
package collector

import (
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"

	"github.com/aurasys/aura/config"
	"github.com/aurasys/aura/internal/errors"
	"github.com/aurasys/aura/internal/sync"
	"github.com/aurasys/aura/internal/telemetry"
)

// Clock returns the current time as Unix seconds.
type Clock func() float64

func systemClock() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

// Collector produces snapshots of host utilization. CPU readings are
// deltas since the previous reading, so the very first collection blocks
// for a short priming window to establish a baseline; every collection
// after that is non-blocking.
type Collector struct {
	clock   Clock
	percent func(time.Duration, bool) ([]float64, error)
	memory  func() (*mem.VirtualMemoryStat, error)
	prime   sync.ResettableOnce
}

// Option configures a Collector.
type Option func(*Collector)

// WithClock overrides the timestamp source.
func WithClock(clock Clock) Option {
	return func(c *Collector) {
		c.clock = clock
	}
}

// New returns a Collector ready to sample the host.
func New(opts ...Option) *Collector {
	c := &Collector{
		clock:   systemClock,
		percent: cpu.Percent,
		memory:  mem.VirtualMemory,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect samples CPU and memory and returns a validated snapshot.
func (c *Collector) Collect() (telemetry.Snapshot, error) {
	// A failed prime does not latch; the next collection retries it.
	if err := c.prime.DoWithError(func() error {
		window := time.Duration(config.CPUPrimeWindowSeconds * float64(time.Second))
		_, err := c.percent(window, false)
		return err
	}); err != nil {
		return telemetry.Snapshot{}, errors.Wrap(err, "prime cpu sampling")
	}

	cpuPercents, err := c.percent(0, false)
	if err != nil {
		return telemetry.Snapshot{}, errors.Wrap(err, "sample cpu")
	}
	if len(cpuPercents) == 0 {
		return telemetry.Snapshot{}, errors.Wrap(errors.ErrInternal, "cpu sampler returned no readings")
	}

	vm, err := c.memory()
	if err != nil {
		return telemetry.Snapshot{}, errors.Wrap(err, "sample memory")
	}

	s := telemetry.Snapshot{
		Timestamp:     c.clock(),
		CPUPercent:    clampPercent(cpuPercents[0]),
		MemoryPercent: clampPercent(vm.UsedPercent),
	}
	if err := s.Validate(); err != nil {
		return telemetry.Snapshot{}, err
	}
	return s, nil
}

// clampPercent guards against samplers reporting slightly outside [0,100]
// under rounding.
func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
