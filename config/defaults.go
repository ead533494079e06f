// Package config provides configuration defaults and utilities
// for the aura application.
//
// This package defines all configurable constants with documented defaults.
// Users can override these values via aura.yaml, environment variables, or
// command-line flags (see internal/loader for the precedence rules).
package config

// =============================================================================
// Persistence Defaults
// =============================================================================

const (
	// DefaultRetentionSeconds is the rolling retention window for stored
	// snapshots. Snapshots older than now - retention are pruned lazily on
	// the next store access.
	// Override via config: persistence.retention_seconds
	DefaultRetentionSeconds = 24.0 * 60.0 * 60.0

	// MemoryPath is the reserved path sentinel selecting the ephemeral
	// (in-memory) store variant. No disk I/O is performed for this path.
	MemoryPath = ":memory:"

	// AppDirName is the per-user data directory holding the snapshot log
	// and the config file when no explicit paths are given.
	AppDirName = "Aura"

	// DBFileName is the snapshot log filename inside the app directory.
	DBFileName = "telemetry.db"

	// ConfigFileName is the config filename inside the app directory.
	ConfigFileName = "aura.yaml"
)

// =============================================================================
// Environment Variables
// =============================================================================

const (
	// EnvDBPath overrides the snapshot log location.
	// Precedence: below the -db flag, above the config file.
	EnvDBPath = "AURA_DB_PATH"

	// EnvRetentionSeconds overrides the retention window.
	// Must parse as a finite number greater than 0.
	EnvRetentionSeconds = "AURA_RETENTION_SECONDS"
)

// =============================================================================
// Poller Defaults
// =============================================================================

const (
	// DefaultPollIntervalSeconds is the snapshot collection interval.
	// Override via config: poller.interval_seconds
	DefaultPollIntervalSeconds = 1.0

	// CPUPrimeWindowSeconds is the blocking sample window used for the very
	// first CPU reading. Later readings are non-blocking deltas since the
	// previous call.
	CPUPrimeWindowSeconds = 0.1
)

// =============================================================================
// Timeline Defaults
// =============================================================================

const (
	// DefaultTimelineResolution is the target point count for timeline
	// queries when the caller does not specify one. Roughly one point per
	// horizontal pixel of a typical scrub widget.
	DefaultTimelineResolution = 500

	// MinTimelineResolution is the smallest accepted downsampling target.
	// Below this the first/last anchors alone cannot be represented.
	MinTimelineResolution = 2
)
