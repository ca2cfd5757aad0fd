package notify

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"walletScope/internal/model"
)

// Notifier delivers one notification.
type Notifier interface {
	SendNotification(ctx context.Context, n model.Notification) error
}

// Multi sends every notification to all of its notifiers. One failing
// target does not stop the others.
type Multi []Notifier

func (m Multi) SendNotification(ctx context.Context, n model.Notification) error {
	var err error
	for i, notifier := range m {
		if sendErr := notifier.SendNotification(ctx, n); sendErr != nil {
			err = multierr.Append(err, fmt.Errorf("notifier %d: %w", i, sendErr))
		}
	}
	return err
}
