package store

import (
	"time"

	"github.com/aurasys/aura/config"
	"github.com/aurasys/aura/internal/errors"
	"github.com/aurasys/aura/internal/telemetry"
)

// Store is the capability contract of the snapshot log.
//
// All methods are safe for concurrent use; operations on the same handle
// are fully serialized by a single coarse lock. None of them spawn
// background work or support cancellation - they run to completion or fail
// synchronously.
type Store interface {
	// Append validates and inserts a snapshot, prunes expired snapshots,
	// and (file-backed) durably rewrites the log. A failed write leaves
	// both the in-memory set and the primary file unchanged.
	Append(s telemetry.Snapshot) error

	// Count prunes and returns the current number of retained snapshots.
	Count() (int, error)

	// Latest prunes and returns the last min(limit, len) snapshots in
	// ascending order (most recent last). limit must be greater than 0.
	Latest(limit int) ([]telemetry.Snapshot, error)

	// Between prunes and returns all snapshots with
	// start <= timestamp <= end in ascending order. Either bound may be
	// nil (open range). Present bounds must be finite, and start <= end.
	Between(start, end *float64) ([]telemetry.Snapshot, error)

	// Path returns the path the store was opened with.
	Path() string

	// Close releases the handle. Further operations fail.
	Close() error
}

// Clock supplies the current time as Unix seconds. Injectable for tests.
type Clock func() float64

// Option configures a store at Open time.
type Option func(*options)

type options struct {
	clock Clock
}

// WithClock overrides the wall clock used for retention pruning.
func WithClock(clock Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

func systemClock() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

// Open opens a snapshot store for the given path and retention window.
//
// The reserved path ":memory:" selects the ephemeral variant; anything else
// selects the file-backed variant, creating parent directories, migrating
// incompatible legacy files, and recovering from an interrupted write as
// needed. retentionSeconds must be finite and greater than 0.
func Open(path string, retentionSeconds float64, opts ...Option) (Store, error) {
	if path == "" {
		return nil, errors.ErrEmptyPath
	}
	if !telemetry.IsFinite(retentionSeconds) || retentionSeconds <= 0 {
		return nil, errors.NewInvalidValue("retention_seconds", retentionSeconds, errors.ErrInvalidRetention)
	}

	o := options{clock: systemClock}
	for _, opt := range opts {
		opt(&o)
	}

	if path == config.MemoryPath {
		return newMemoryStore(retentionSeconds, o.clock), nil
	}
	return openFileStore(path, retentionSeconds, o.clock)
}

// validateBounds checks the optional range bounds shared by Between
// implementations.
func validateBounds(start, end *float64) error {
	if start != nil && !telemetry.IsFinite(*start) {
		return errors.NewInvalidValue("start_timestamp", *start, errors.ErrInvalidTimestamp)
	}
	if end != nil && !telemetry.IsFinite(*end) {
		return errors.NewInvalidValue("end_timestamp", *end, errors.ErrInvalidTimestamp)
	}
	if start != nil && end != nil && *start > *end {
		return errors.ErrInvalidRange
	}
	return nil
}

// pruneExpired removes snapshots older than the retention cutoff from the
// sorted slice and reports how many were dropped. The slice stays sorted
// because expiry is a prefix property of the timestamp-ordered set.
func pruneExpired(snapshots []telemetry.Snapshot, cutoff float64) ([]telemetry.Snapshot, int) {
	keep := 0
	for keep < len(snapshots) && snapshots[keep].Timestamp < cutoff {
		keep++
	}
	if keep == 0 {
		return snapshots, 0
	}
	return append(snapshots[:0], snapshots[keep:]...), keep
}

// lastN returns a copy of the last min(limit, len) elements.
func lastN(snapshots []telemetry.Snapshot, limit int) []telemetry.Snapshot {
	start := len(snapshots) - limit
	if start < 0 {
		start = 0
	}
	out := make([]telemetry.Snapshot, len(snapshots)-start)
	copy(out, snapshots[start:])
	return out
}

// filterRange returns a copy of the snapshots inside the inclusive range.
func filterRange(snapshots []telemetry.Snapshot, start, end *float64) []telemetry.Snapshot {
	out := make([]telemetry.Snapshot, 0, len(snapshots))
	for _, s := range snapshots {
		if start != nil && s.Timestamp < *start {
			continue
		}
		if end != nil && s.Timestamp > *end {
			continue
		}
		out = append(out, s)
	}
	return out
}
