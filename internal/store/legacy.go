package store

import (
	"bytes"
	"database/sql"
	"io"
	"log/slog"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/aurasys/aura/internal/telemetry"
)

// sqliteMagic is the 16-byte header every SQLite 3 database file starts
// with. Earlier releases persisted snapshots in SQLite; finding it at the
// primary path means the file predates the line-oriented log format.
var sqliteMagic = []byte("SQLite format 3\x00")

// quarantineLegacy moves an incompatible SQLite database out of the way so
// the primary path can be rebuilt in the current format, then attempts a
// best-effort import of its rows. It never fails the open: a legacy file
// that cannot be read is simply left behind as a backup.
func (f *fileStore) quarantineLegacy() []telemetry.Snapshot {
	if !isLegacySQLite(f.path) {
		return nil
	}

	backup := f.path + LegacyBackupSuffix
	if err := os.Rename(f.path, backup); err != nil {
		// Can't preserve it; removing is the only way to free the path.
		f.log.Warn("legacy database quarantine failed, removing",
			"path", f.path, "error", err)
		if rmErr := os.Remove(f.path); rmErr != nil {
			f.log.Warn("legacy database removal failed", "path", f.path, "error", rmErr)
		}
		return nil
	}
	f.log.Info("quarantined legacy database", "path", f.path, "backup", backup)

	return importLegacySnapshots(backup, f.log)
}

func isLegacySQLite(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	header := make([]byte, len(sqliteMagic))
	if _, err := io.ReadFull(file, header); err != nil {
		return false
	}
	return bytes.Equal(header, sqliteMagic)
}

// importLegacySnapshots reads rows out of a quarantined SQLite database.
// Any failure, from a missing table to an unreadable row, degrades to
// importing less: the quarantined backup keeps the original data either way.
func importLegacySnapshots(path string, log *slog.Logger) []telemetry.Snapshot {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		log.Warn("legacy import skipped", "path", path, "error", err)
		return nil
	}
	defer db.Close()

	rows, err := db.Query(
		"SELECT timestamp, cpu_percent, memory_percent FROM snapshots ORDER BY timestamp ASC")
	if err != nil {
		log.Warn("legacy import skipped", "path", path, "error", err)
		return nil
	}
	defer rows.Close()

	var imported []telemetry.Snapshot
	skipped := 0
	for rows.Next() {
		var s telemetry.Snapshot
		if err := rows.Scan(&s.Timestamp, &s.CPUPercent, &s.MemoryPercent); err != nil {
			skipped++
			continue
		}
		if err := s.Validate(); err != nil {
			skipped++
			continue
		}
		imported = append(imported, s)
	}
	if err := rows.Err(); err != nil {
		log.Warn("legacy import ended early", "path", path, "error", err)
	}

	log.Info("imported legacy snapshots", "path", path,
		"imported", len(imported), "skipped", skipped)
	return imported
}
