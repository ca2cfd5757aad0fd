package storage

import (
	"context"
	"time"

	"walletScope/internal/model"
)

// SnapshotStore is an append-only history of wallet snapshots.
type SnapshotStore interface {
	SnapshotExists(ctx context.Context, fingerprint model.Fingerprint) (bool, error)
	AppendSnapshot(ctx context.Context, record model.SnapshotRecord) (string, error)
}

// SnapshotLister reads persisted snapshots, oldest first.
// A zero since returns the whole history; limit <= 0 means no limit.
type SnapshotLister interface {
	ListSnapshots(ctx context.Context, since time.Time, limit int) ([]model.SnapshotRecord, error)
}

// Store is a snapshot store that can also be listed and closed.
type Store interface {
	SnapshotStore
	SnapshotLister
	Close() error
}
