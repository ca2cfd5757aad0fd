package watcher

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"walletScope/internal/model"
	"walletScope/internal/storage"
)

const (
	// NotificationContent is the headline of every change notification.
	NotificationContent = "Content of Wallet Changed"
	defaultNativeSymbol = "ETH"
)

// EmitterConfig controls how change events are packaged.
type EmitterConfig struct {
	Address      string
	NativeSymbol string
	// RequirePersist skips the notification when the snapshot could not be
	// appended. By default persistence and notification are independent.
	RequirePersist bool
}

// Emitter persists changed snapshots and notifies about them.
type Emitter struct {
	cfg      EmitterConfig
	store    storage.SnapshotStore
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// NewEmitter builds an Emitter. notifier may be nil.
func NewEmitter(cfg EmitterConfig, store storage.SnapshotStore, notifier Notifier, logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.NativeSymbol == "" {
		cfg.NativeSymbol = defaultNativeSymbol
	}
	return &Emitter{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// Emit appends the snapshot and sends the notification. It returns the new
// record id and a *StoreWriteError when the append failed. Notification
// failures are logged and never returned.
func (e *Emitter) Emit(ctx context.Context, snapshot model.WalletSnapshot, fingerprint model.Fingerprint) (string, error) {
	record := model.SnapshotRecord{
		ID:          e.newID(),
		Address:     e.cfg.Address,
		Fingerprint: fingerprint,
		Snapshot:    snapshot,
		CreatedAt:   e.now(),
	}

	var persistErr error
	recordID, err := e.store.AppendSnapshot(ctx, record)
	if err != nil {
		persistErr = &StoreWriteError{Fingerprint: fingerprint, Err: err}
		e.logger.Error("persist snapshot failed", zap.String("fingerprint", fingerprint.String()), zap.Error(err))
	} else {
		e.logger.Info("snapshot persisted", zap.String("record_id", recordID), zap.String("fingerprint", fingerprint.String()))
	}

	if persistErr != nil && e.cfg.RequirePersist {
		e.logger.Warn("notification skipped", zap.String("fingerprint", fingerprint.String()))
		return "", persistErr
	}

	if e.notifier != nil {
		notification := BuildNotification(e.cfg.Address, e.cfg.NativeSymbol, snapshot, fingerprint)
		if err := e.notifier.SendNotification(ctx, notification); err != nil {
			e.logger.Warn("notification failed", zap.Error(&NotificationError{Fingerprint: fingerprint, Err: err}))
		} else {
			e.logger.Info("notification sent", zap.String("fingerprint", fingerprint.String()), zap.Int("fields", len(notification.Fields)))
		}
	}

	return recordID, persistErr
}

// BuildNotification lists the native balance first, then every token's net amount.
func BuildNotification(address, nativeSymbol string, snapshot model.WalletSnapshot, fingerprint model.Fingerprint) model.Notification {
	fields := make([]model.NotificationField, 0, len(snapshot.Tokens)+1)
	fields = append(fields, model.NotificationField{
		Name:   nativeSymbol,
		Value:  snapshot.NativeBalance.String(),
		Inline: false,
	})
	for _, token := range snapshot.Tokens {
		fields = append(fields, model.NotificationField{
			Name:   token.TokenName,
			Value:  token.NetAmount.String(),
			Inline: true,
		})
	}

	return model.Notification{
		Content:     NotificationContent,
		Address:     address,
		Fingerprint: fingerprint,
		Fields:      fields,
	}
}
