package watcher

import (
	"context"

	"walletScope/internal/model"
	"walletScope/internal/storage"
)

// Detector decides whether a fingerprint is new. There is no "last snapshot"
// cursor: a fingerprint seen anywhere in the history counts as unchanged.
type Detector struct {
	store storage.SnapshotStore
}

func NewDetector(store storage.SnapshotStore) *Detector {
	return &Detector{store: store}
}

// Changed reports true when no persisted record carries the fingerprint.
func (d *Detector) Changed(ctx context.Context, fingerprint model.Fingerprint) (bool, error) {
	exists, err := d.store.SnapshotExists(ctx, fingerprint)
	if err != nil {
		return false, &StoreQueryError{Fingerprint: fingerprint, Err: err}
	}
	return !exists, nil
}
