package wal

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"walletScope/internal/model"
)

const (
	defaultDir        = "./data/wal"
	segmentThreshold  = 1000
	maxSegments       = 100
	snapshotKeyPrefix = "wallet_snapshot_"
)

// Store persists snapshot records in a write-ahead log. The fingerprint index
// is rebuilt from the log on open and kept in memory.
type Store struct {
	wal          *gowal.Wal
	mu           sync.RWMutex
	fingerprints map[model.Fingerprint]struct{}
}

// NewStore opens (or creates) a WAL-backed snapshot store under dir.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = defaultDir
	}

	w, err := gowal.NewWAL(gowal.Config{
		Dir:              dir,
		Prefix:           "snapshot_",
		SegmentThreshold: segmentThreshold,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "init wallet snapshot WAL")
	}

	s := &Store{wal: w, fingerprints: make(map[model.Fingerprint]struct{})}
	records, err := s.recordsAfter(0)
	if err != nil {
		_ = w.Close()
		return nil, err
	}
	for _, record := range records {
		s.fingerprints[record.Fingerprint] = struct{}{}
	}

	return s, nil
}

// SnapshotExists reports whether the fingerprint was ever appended.
func (s *Store) SnapshotExists(_ context.Context, fingerprint model.Fingerprint) (bool, error) {
	if s == nil || s.wal == nil {
		return false, errors.New("wallet snapshot store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.fingerprints[fingerprint]
	return ok, nil
}

// AppendSnapshot writes the record at the next WAL index.
func (s *Store) AppendSnapshot(_ context.Context, record model.SnapshotRecord) (string, error) {
	if s == nil || s.wal == nil {
		return "", errors.New("wallet snapshot store is not initialized")
	}
	if record.ID == "" {
		return "", errors.New("record id is required")
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return "", errors.Wrap(err, "marshal wallet snapshot")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	if err := s.wal.Write(nextIndex, snapshotKeyPrefix+record.ID, payload); err != nil {
		return "", errors.Wrap(err, "write wallet snapshot")
	}
	s.fingerprints[record.Fingerprint] = struct{}{}

	return record.ID, nil
}

// ListSnapshots returns records created at or after since, in log order.
func (s *Store) ListSnapshots(_ context.Context, since time.Time, limit int) ([]model.SnapshotRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("wallet snapshot store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.recordsAfter(0)
	if err != nil {
		return nil, err
	}

	out := make([]model.SnapshotRecord, 0, len(records))
	for _, record := range records {
		if !since.IsZero() && record.CreatedAt.Before(since) {
			continue
		}
		out = append(out, record)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Close closes the underlying WAL.
func (s *Store) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("wallet snapshot store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}

func (s *Store) recordsAfter(index uint64) ([]model.SnapshotRecord, error) {
	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]model.SnapshotRecord, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil || !strings.HasPrefix(key, snapshotKeyPrefix) {
			continue
		}
		var record model.SnapshotRecord
		if err := json.Unmarshal(payload, &record); err != nil {
			return nil, errors.Wrap(err, "decode wallet snapshot")
		}
		records = append(records, record)
	}
	return records, nil
}
