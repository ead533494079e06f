// Package poller drives periodic collection into a sink.
package poller

import (
	"context"
	"time"

	"github.com/aurasys/aura/config"
	"github.com/aurasys/aura/internal/errors"
	"github.com/aurasys/aura/internal/logging"
	"github.com/aurasys/aura/internal/telemetry"
)

// Options configures a polling run.
type Options struct {
	// IntervalSeconds is the sampling period. Zero means the default.
	IntervalSeconds float64

	// Collect produces one snapshot per tick.
	Collect func() (telemetry.Snapshot, error)

	// OnSnapshot receives every collected snapshot.
	OnSnapshot func(telemetry.Snapshot) error

	// OnError observes per-tick failures from Collect or OnSnapshot.
	// Optional.
	OnError func(error)

	// ContinueOnError keeps the loop running after a tick fails. When
	// false the first failure ends the run with that error.
	ContinueOnError bool

	// MaxSnapshots ends the run after this many successful ticks.
	// Zero means unbounded.
	MaxSnapshots int
}

func (o Options) validate() error {
	if o.Collect == nil {
		return errors.Wrap(errors.ErrInternal, "collect callback must not be nil")
	}
	if o.OnSnapshot == nil {
		return errors.Wrap(errors.ErrInternal, "snapshot callback must not be nil")
	}
	interval := o.IntervalSeconds
	if interval == 0 {
		interval = config.DefaultPollIntervalSeconds
	}
	if !telemetry.IsFinite(interval) || interval <= 0 {
		return errors.NewInvalidValue("interval", o.IntervalSeconds, errors.ErrInvalidInterval)
	}
	return nil
}

// Run samples on a fixed interval until the context ends, MaxSnapshots is
// reached, or a failure occurs with ContinueOnError unset. It returns the
// number of snapshots delivered to OnSnapshot. Context cancellation is a
// normal shutdown, not an error.
func Run(ctx context.Context, opts Options) (int, error) {
	if err := opts.validate(); err != nil {
		return 0, err
	}

	interval := opts.IntervalSeconds
	if interval == 0 {
		interval = config.DefaultPollIntervalSeconds
	}

	log := logging.Component("poller")
	log.Debug("polling started", "interval_seconds", interval, "max_snapshots", opts.MaxSnapshots)

	ticker := time.NewTicker(time.Duration(interval * float64(time.Second)))
	defer ticker.Stop()

	delivered := 0
	for {
		if err := tick(opts); err != nil {
			if opts.OnError != nil {
				opts.OnError(err)
			}
			if !opts.ContinueOnError {
				return delivered, err
			}
			log.Warn("tick failed", "error", err)
		} else {
			delivered++
			if opts.MaxSnapshots > 0 && delivered >= opts.MaxSnapshots {
				return delivered, nil
			}
		}

		select {
		case <-ctx.Done():
			log.Debug("polling stopped", "delivered", delivered)
			return delivered, nil
		case <-ticker.C:
		}
	}
}

func tick(opts Options) error {
	s, err := opts.Collect()
	if err != nil {
		return errors.Wrap(err, "collect")
	}
	if err := opts.OnSnapshot(s); err != nil {
		return errors.Wrap(err, "deliver snapshot")
	}
	return nil
}
