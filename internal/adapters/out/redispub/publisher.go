// Package redispub mirrors realtime events onto Redis pub/sub channels so
// subscribers connected to other instances still receive them. Channel names
// match the in-process hub's.
package redispub

import (
	"context"
	"encoding/json"

	"kapgel/internal/core/ports"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Publisher implements ports.EventPublisher over Redis pub/sub.
// Publishing is best-effort; a Redis outage degrades realtime delivery to
// single-instance without failing any command.
type Publisher struct {
	client *redis.Client
	logger *zap.Logger
}

// NewPublisher creates a Redis event publisher.
func NewPublisher(client *redis.Client, logger *zap.Logger) *Publisher {
	return &Publisher{client: client, logger: logger}
}

// Publish sends the event as JSON to the named channel.
func (p *Publisher) Publish(ctx context.Context, channel string, event ports.Event) {
	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("marshal realtime event", zap.String("channel", channel), zap.Error(err))
		return
	}
	if err = p.client.Publish(ctx, channel, body).Err(); err != nil {
		p.logger.Warn("publish realtime event", zap.String("channel", channel), zap.Error(err))
	}
}
