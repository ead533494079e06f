package store

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aurasys/aura/internal/errors"
	"github.com/aurasys/aura/internal/logging"
	"github.com/aurasys/aura/internal/telemetry"
)

const (
	// StagingSuffix is appended to the primary path for the staging file
	// used by the write-then-commit cycle. A fresh open only trusts it when
	// the primary is absent.
	StagingSuffix = ".tmp"

	// LegacyBackupSuffix is appended to the primary path when an
	// incompatible legacy database file is quarantined on open.
	LegacyBackupSuffix = ".legacy.sqlite"
)

// fileStore is the durable variant. The in-memory sorted set is the source
// of truth between operations; every mutation is persisted by serializing
// the full pruned set to a staging file and atomically renaming it over the
// primary. A crash mid-write leaves either the old primary intact or a
// complete staging file to recover from - never a half-written primary.
type fileStore struct {
	mu sync.Mutex

	path             string
	retentionSeconds float64
	clock            Clock
	log              *slog.Logger

	snapshots []telemetry.Snapshot
	closed    bool
}

func openFileStore(path string, retentionSeconds float64, clock Clock) (*fileStore, error) {
	f := &fileStore{
		path:             path,
		retentionSeconds: retentionSeconds,
		clock:            clock,
		log:              logging.Component("store"),
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "create parent directory %s", dir)
		}
	}

	imported := f.quarantineLegacy()
	f.recoverStaging()

	f.snapshots = append(imported, f.loadPrimary()...)
	telemetry.Sort(f.snapshots)

	// Reconcile disk with the pruned set immediately so a reopened store
	// never serves expired snapshots.
	cutoff := f.clock() - f.retentionSeconds
	f.snapshots, _ = pruneExpired(f.snapshots, cutoff)
	if err := f.writeSnapshots(f.snapshots); err != nil {
		return nil, errors.Wrap(err, "open")
	}

	return f, nil
}

func (f *fileStore) Append(s telemetry.Snapshot) error {
	if err := s.Validate(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.ErrStoreClosed
	}

	candidate := make([]telemetry.Snapshot, len(f.snapshots))
	copy(candidate, f.snapshots)
	candidate = telemetry.InsertSorted(candidate, s)
	candidate, _ = pruneExpired(candidate, f.clock()-f.retentionSeconds)

	// Persist first, commit second: a failed write must leave the
	// in-memory set and the primary file unchanged.
	if err := f.writeSnapshots(candidate); err != nil {
		return errors.Wrap(err, "append")
	}
	f.snapshots = candidate
	return nil
}

func (f *fileStore) Count() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, errors.ErrStoreClosed
	}

	f.reconcileLocked()
	return len(f.snapshots), nil
}

func (f *fileStore) Latest(limit int) ([]telemetry.Snapshot, error) {
	if limit <= 0 {
		return nil, errors.NewInvalidValue("limit", limit, errors.ErrInvalidLimit)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, errors.ErrStoreClosed
	}

	f.reconcileLocked()
	return lastN(f.snapshots, limit), nil
}

func (f *fileStore) Between(start, end *float64) ([]telemetry.Snapshot, error) {
	if err := validateBounds(start, end); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, errors.ErrStoreClosed
	}

	f.reconcileLocked()
	return filterRange(f.snapshots, start, end), nil
}

func (f *fileStore) Path() string {
	return f.path
}

func (f *fileStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.snapshots = nil
	return nil
}

// reconcileLocked prunes the in-memory set and, when pruning actually
// removed rows, rewrites the primary so persisted state never outgrows the
// retention window. A failed rewrite on a read path is logged, not
// surfaced: the caller still gets correct (pruned) results and the next
// mutation retries the write.
func (f *fileStore) reconcileLocked() {
	cutoff := f.clock() - f.retentionSeconds

	var removed int
	f.snapshots, removed = pruneExpired(f.snapshots, cutoff)
	if removed == 0 {
		return
	}

	if err := f.writeSnapshots(f.snapshots); err != nil {
		f.log.Warn("rewrite after prune failed, on-disk log retains expired lines",
			"path", f.path, "error", err)
	}
}

// writeSnapshots serializes the full snapshot set to the staging file and
// atomically replaces the primary. The primary is never written in place.
func (f *fileStore) writeSnapshots(snapshots []telemetry.Snapshot) error {
	staging := f.path + StagingSuffix

	file, err := os.OpenFile(staging, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrapf(err, "create staging file %s", staging)
	}

	w := bufio.NewWriter(file)
	for _, s := range snapshots {
		if _, err := w.WriteString(formatLine(s)); err != nil {
			file.Close()
			os.Remove(staging)
			return errors.Wrap(err, "write staging file")
		}
		if err := w.WriteByte('\n'); err != nil {
			file.Close()
			os.Remove(staging)
			return errors.Wrap(err, "write staging file")
		}
	}

	if err := w.Flush(); err != nil {
		file.Close()
		os.Remove(staging)
		return errors.Wrap(err, "flush staging file")
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(staging)
		return errors.Wrap(err, "sync staging file")
	}
	if err := file.Close(); err != nil {
		os.Remove(staging)
		return errors.Wrap(err, "close staging file")
	}

	if err := os.Rename(staging, f.path); err != nil {
		os.Remove(staging)
		return errors.Wrapf(err, "commit staging file to %s", f.path)
	}
	return nil
}

// recoverStaging handles the two staging-file states a fresh open can find:
// primary absent with a complete staging file (crash between staging write
// and rename - promote it), or primary present next to a stale staging file
// (crash before the staging write finished - the primary always wins).
func (f *fileStore) recoverStaging() {
	staging := f.path + StagingSuffix

	if _, err := os.Stat(staging); err != nil {
		return
	}

	if _, err := os.Stat(f.path); os.IsNotExist(err) {
		if err := os.Rename(staging, f.path); err != nil {
			f.log.Warn("staging file promotion failed", "staging", staging, "error", err)
			return
		}
		f.log.Info("recovered snapshot log from staging file", "path", f.path)
		return
	}

	if err := os.Remove(staging); err != nil {
		f.log.Warn("stale staging file removal failed", "staging", staging, "error", err)
		return
	}
	f.log.Debug("discarded stale staging file", "staging", staging)
}

// loadPrimary reads the primary file line by line, keeping every
// well-formed snapshot and counting the rest. A file where every line fails
// to parse is treated as unreadable garbage and discarded: this is a
// best-effort telemetry cache, availability wins over strict fidelity.
func (f *fileStore) loadPrimary() []telemetry.Snapshot {
	file, err := os.Open(f.path)
	if err != nil {
		return nil
	}
	defer file.Close()

	var loaded []telemetry.Snapshot
	failures := 0

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		s, err := parseLine(line)
		if err != nil {
			failures++
			continue
		}
		loaded = append(loaded, s)
	}
	if err := scanner.Err(); err != nil {
		f.log.Warn("snapshot log read stopped early", "path", f.path, "error", err)
	}

	if failures > 0 && len(loaded) == 0 {
		f.log.Warn("discarding unreadable snapshot log", "path", f.path, "parse_failures", failures)
		return nil
	}
	if failures > 0 {
		f.log.Warn("dropped malformed snapshot lines", "path", f.path,
			"dropped", failures, "kept", len(loaded))
	}
	return loaded
}
