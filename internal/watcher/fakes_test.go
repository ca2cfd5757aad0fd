package watcher

import (
	"context"
	"math/big"
	"sync"
	"time"

	"walletScope/internal/model"
)

type fakeNative struct {
	mu    sync.Mutex
	wei   *big.Int
	err   error
	calls int
	hook  func(ctx context.Context) error
}

func (f *fakeNative) FetchNativeBalance(ctx context.Context, _ string) (*big.Int, error) {
	f.mu.Lock()
	f.calls++
	hook := f.hook
	f.mu.Unlock()
	if hook != nil {
		if err := hook(ctx); err != nil {
			return nil, err
		}
	}
	return f.wei, f.err
}

func (f *fakeNative) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeTransfers struct {
	mu      sync.Mutex
	records []model.RawTransfer
	err     error
	calls   int
	hook    func(ctx context.Context) error
}

func (f *fakeTransfers) FetchTransferHistory(ctx context.Context, _ string) ([]model.RawTransfer, error) {
	f.mu.Lock()
	f.calls++
	hook := f.hook
	f.mu.Unlock()
	if hook != nil {
		if err := hook(ctx); err != nil {
			return nil, err
		}
	}
	return f.records, f.err
}

type memoryStore struct {
	mu          sync.Mutex
	records     []model.SnapshotRecord
	existsErr   error
	appendErr   error
	existsCalls int
	appendCalls int
}

func (s *memoryStore) SnapshotExists(_ context.Context, fingerprint model.Fingerprint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.existsCalls++
	if s.existsErr != nil {
		return false, s.existsErr
	}
	for _, record := range s.records {
		if record.Fingerprint == fingerprint {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) AppendSnapshot(_ context.Context, record model.SnapshotRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendCalls++
	if s.appendErr != nil {
		return "", s.appendErr
	}
	s.records = append(s.records, record)
	return record.ID, nil
}

func (s *memoryStore) ListSnapshots(_ context.Context, _ time.Time, _ int) ([]model.SnapshotRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.SnapshotRecord(nil), s.records...), nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []model.Notification
	err  error
}

func (n *fakeNotifier) SendNotification(_ context.Context, notification model.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
	return n.err
}

func (n *fakeNotifier) Sent() []model.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.Notification(nil), n.sent...)
}
