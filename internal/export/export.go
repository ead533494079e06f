// Package export writes snapshot windows to Parquet archives. Archives are
// self-contained column files: a shell session can hand one to any
// Parquet-aware tool without Aura installed on the other end.
package export

import (
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/aurasys/aura/internal/errors"
	"github.com/aurasys/aura/internal/store"
	"github.com/aurasys/aura/internal/telemetry"
)

// snapshotRow is the archive row layout.
type snapshotRow struct {
	Timestamp     float64 `parquet:"timestamp"`
	CPUPercent    float64 `parquet:"cpu_percent"`
	MemoryPercent float64 `parquet:"memory_percent"`
}

func toRow(s telemetry.Snapshot) snapshotRow {
	return snapshotRow{
		Timestamp:     s.Timestamp,
		CPUPercent:    s.CPUPercent,
		MemoryPercent: s.MemoryPercent,
	}
}

func fromRow(r snapshotRow) telemetry.Snapshot {
	return telemetry.Snapshot{
		Timestamp:     r.Timestamp,
		CPUPercent:    r.CPUPercent,
		MemoryPercent: r.MemoryPercent,
	}
}

// WriteArchive writes snapshots to a zstd-compressed Parquet file at path,
// creating parent directories as needed. An empty window still produces a
// valid archive with zero rows.
func WriteArchive(path string, snapshots []telemetry.Snapshot) (int, error) {
	if path == "" {
		return 0, errors.ErrEmptyPath
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, errors.Wrapf(err, "create archive directory %s", dir)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, errors.Wrapf(err, "create archive %s", path)
	}

	w := parquet.NewGenericWriter[snapshotRow](f, parquet.Compression(&parquet.Zstd))

	written := 0
	if len(snapshots) > 0 {
		rows := make([]snapshotRow, len(snapshots))
		for i, s := range snapshots {
			rows[i] = toRow(s)
		}
		n, err := w.Write(rows)
		if err != nil {
			w.Close()
			f.Close()
			os.Remove(path)
			return 0, errors.Wrap(err, "write archive rows")
		}
		written = n
	}

	if err := w.Close(); err != nil {
		f.Close()
		os.Remove(path)
		return 0, errors.Wrap(err, "finalize archive")
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return 0, errors.Wrap(err, "close archive")
	}
	return written, nil
}

// ReadArchive loads every row of an archive back into snapshots, in file
// order.
func ReadArchive(path string) ([]telemetry.Snapshot, error) {
	rows, err := parquet.ReadFile[snapshotRow](path)
	if err != nil {
		return nil, errors.Wrapf(err, "read archive %s", path)
	}

	snapshots := make([]telemetry.Snapshot, len(rows))
	for i, r := range rows {
		snapshots[i] = fromRow(r)
	}
	return snapshots, nil
}

// Range exports the selected window from a store. Nil bounds are open.
func Range(s store.Store, path string, start, end *float64) (int, error) {
	snapshots, err := s.Between(start, end)
	if err != nil {
		return 0, errors.Wrap(err, "export range")
	}
	return WriteArchive(path, snapshots)
}
