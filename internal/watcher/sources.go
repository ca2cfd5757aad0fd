package watcher

import (
	"context"
	"math/big"

	"walletScope/internal/model"
)

// NativeBalanceSource returns the native-coin balance in its smallest unit.
type NativeBalanceSource interface {
	FetchNativeBalance(ctx context.Context, address string) (*big.Int, error)
}

// TransferSource returns every observed token transfer of an address.
type TransferSource interface {
	FetchTransferHistory(ctx context.Context, address string) ([]model.RawTransfer, error)
}

// Notifier delivers change notifications.
type Notifier interface {
	SendNotification(ctx context.Context, notification model.Notification) error
}
