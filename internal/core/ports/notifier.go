package ports

import (
	"context"
)

// Notifier enqueues out-of-band notifications (push, email) for lifecycle
// events. Enqueue failures are logged by implementations and never bubble
// up into the command result: a notification is a side effect, not part of
// the transaction.
type Notifier interface {
	// NotifyStatusChanged informs interested parties that the order moved.
	NotifyStatusChanged(ctx context.Context, orderID, status, reason string)

	// NotifyCourierAssigned informs the courier about a new delivery.
	NotifyCourierAssigned(ctx context.Context, orderID, courierID string)
}
