package store

import (
	"sync"

	"github.com/aurasys/aura/internal/errors"
	"github.com/aurasys/aura/internal/telemetry"
)

// memoryStore is the ephemeral variant: same retention and ordering
// semantics as the file-backed store, no disk I/O, lifetime bound to the
// handle.
type memoryStore struct {
	mu sync.Mutex

	retentionSeconds float64
	clock            Clock
	snapshots        []telemetry.Snapshot
	closed           bool
}

func newMemoryStore(retentionSeconds float64, clock Clock) *memoryStore {
	return &memoryStore{
		retentionSeconds: retentionSeconds,
		clock:            clock,
	}
}

func (m *memoryStore) Append(s telemetry.Snapshot) error {
	if err := s.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.ErrStoreClosed
	}

	m.snapshots = telemetry.InsertSorted(m.snapshots, s)
	m.pruneLocked()
	return nil
}

func (m *memoryStore) Count() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, errors.ErrStoreClosed
	}

	m.pruneLocked()
	return len(m.snapshots), nil
}

func (m *memoryStore) Latest(limit int) ([]telemetry.Snapshot, error) {
	if limit <= 0 {
		return nil, errors.NewInvalidValue("limit", limit, errors.ErrInvalidLimit)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.ErrStoreClosed
	}

	m.pruneLocked()
	return lastN(m.snapshots, limit), nil
}

func (m *memoryStore) Between(start, end *float64) ([]telemetry.Snapshot, error) {
	if err := validateBounds(start, end); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.ErrStoreClosed
	}

	m.pruneLocked()
	return filterRange(m.snapshots, start, end), nil
}

func (m *memoryStore) Path() string {
	return ":memory:"
}

func (m *memoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.snapshots = nil
	return nil
}

func (m *memoryStore) pruneLocked() {
	cutoff := m.clock() - m.retentionSeconds
	m.snapshots, _ = pruneExpired(m.snapshots, cutoff)
}
