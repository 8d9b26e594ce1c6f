// Package asynqnotify enqueues notification tasks on an asynq queue backed by
// Redis. Notifications are side effects of committed commands: enqueue
// failures are logged and swallowed, never surfaced to the caller.
package asynqnotify

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Task type names processed by the notification worker.
const (
	TaskOrderStatusChanged   = "notify:order_status_changed"
	TaskOrderCourierAssigned = "notify:order_courier_assigned"

	defaultQueue = "notifications"
)

// OrderStatusChangedPayload carries a lifecycle change to the worker.
type OrderStatusChangedPayload struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
}

// CourierAssignedPayload informs a courier about a new delivery.
type CourierAssignedPayload struct {
	OrderID   string `json:"order_id"`
	CourierID string `json:"courier_id"`
}

// Notifier implements ports.Notifier on top of asynq. A disabled notifier
// (nil queue config) accepts every call and does nothing, so handlers never
// branch on whether notifications are configured.
type Notifier struct {
	client  *asynq.Client
	logger  *zap.Logger
	enabled bool
}

// NewNotifier creates a notifier publishing to the given Redis instance.
// Pass an empty addr to disable notifications entirely.
func NewNotifier(redisAddr, redisPassword string, redisDB int, logger *zap.Logger) *Notifier {
	if redisAddr == "" {
		return &Notifier{logger: logger, enabled: false}
	}
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})
	return &Notifier{client: client, logger: logger, enabled: true}
}

// Enabled reports whether tasks are actually enqueued.
func (n *Notifier) Enabled() bool {
	return n != nil && n.enabled && n.client != nil
}

// Close releases the underlying queue connection.
func (n *Notifier) Close() error {
	if n == nil || n.client == nil {
		return nil
	}
	return n.client.Close()
}

// NotifyStatusChanged enqueues a status change notification.
func (n *Notifier) NotifyStatusChanged(_ context.Context, orderID, status, reason string) {
	n.enqueue(TaskOrderStatusChanged, OrderStatusChangedPayload{
		OrderID: orderID,
		Status:  status,
		Reason:  reason,
	})
}

// NotifyCourierAssigned enqueues an assignment notification.
func (n *Notifier) NotifyCourierAssigned(_ context.Context, orderID, courierID string) {
	n.enqueue(TaskOrderCourierAssigned, CourierAssignedPayload{
		OrderID:   orderID,
		CourierID: courierID,
	})
}

func (n *Notifier) enqueue(taskType string, payload any) {
	if !n.Enabled() {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.Error("marshal notification payload", zap.String("task", taskType), zap.Error(err))
		return
	}

	task := asynq.NewTask(taskType, body)
	if _, err = n.client.Enqueue(task, asynq.Queue(defaultQueue)); err != nil {
		n.logger.Error("enqueue notification", zap.String("task", taskType), zap.Error(err))
	}
}
