package ports

import (
	"context"
	"time"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/outbox"
)

type OutboxRepository interface {
	Add(ctx context.Context, message outbox.Message) error

	// GetUnpublished returns up to limit messages, oldest first.
	GetUnpublished(ctx context.Context, limit int) ([]outbox.Message, error)

	MarkPublished(ctx context.Context, id kernel.UUID, at time.Time) error
}

// EventPublisher delivers an outbox message to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, message outbox.Message) error
}
