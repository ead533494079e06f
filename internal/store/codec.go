package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aurasys/aura/internal/telemetry"
)

// On-disk text format, one snapshot per line:
//
//	timestamp,cpu_percent,memory_percent
//
// Floats are written with the shortest representation that round-trips
// exactly, newline-terminated, no header row. Any future reader only needs
// to tolerate unparseable lines.

// formatLine serializes a snapshot to its on-disk line (without newline).
func formatLine(s telemetry.Snapshot) string {
	return formatFloat(s.Timestamp) + "," + formatFloat(s.CPUPercent) + "," + formatFloat(s.MemoryPercent)
}

// parseLine parses and validates a single on-disk line.
func parseLine(line string) (telemetry.Snapshot, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 3 {
		return telemetry.Snapshot{}, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}

	var s telemetry.Snapshot
	var err error
	if s.Timestamp, err = strconv.ParseFloat(strings.TrimSpace(fields[0]), 64); err != nil {
		return telemetry.Snapshot{}, fmt.Errorf("timestamp: %w", err)
	}
	if s.CPUPercent, err = strconv.ParseFloat(strings.TrimSpace(fields[1]), 64); err != nil {
		return telemetry.Snapshot{}, fmt.Errorf("cpu_percent: %w", err)
	}
	if s.MemoryPercent, err = strconv.ParseFloat(strings.TrimSpace(fields[2]), 64); err != nil {
		return telemetry.Snapshot{}, fmt.Errorf("memory_percent: %w", err)
	}

	if err := s.Validate(); err != nil {
		return telemetry.Snapshot{}, err
	}
	return s, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
