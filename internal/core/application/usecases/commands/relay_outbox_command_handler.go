package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"waterline/internal/core/ports"
)

// RelayOutboxCommandHandler drains the outbox in insertion order. Each
// message is marked published right after the broker accepts it; the first
// publish failure stops the batch so later messages never overtake it.
// Delivery is at least once: a crash between publish and mark resends.
type RelayOutboxCommandHandler struct {
	uowFactory OutboxUoWFactory
	publisher  ports.EventPublisher
}

func NewRelayOutboxCommandHandler(
	uowFactory OutboxUoWFactory,
	publisher ports.EventPublisher,
) (RelayOutboxCommandHandler, error) {
	if uowFactory == nil {
		return RelayOutboxCommandHandler{}, errors.New("uow factory is required")
	}
	if publisher == nil {
		return RelayOutboxCommandHandler{}, errors.New("publisher is required")
	}
	return RelayOutboxCommandHandler{uowFactory: uowFactory, publisher: publisher}, nil
}

// Handle returns how many messages were published.
func (h RelayOutboxCommandHandler) Handle(ctx context.Context, cmd RelayOutboxCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	repo := h.uowFactory.Create().OutboxRepository()
	pending, err := repo.GetUnpublished(ctx, cmd.Batch())
	if err != nil {
		return 0, err
	}

	published := 0
	for _, msg := range pending {
		if err = h.publisher.Publish(ctx, msg); err != nil {
			return published, fmt.Errorf("relay message %s: %w", msg.ID, err)
		}
		if err = repo.MarkPublished(ctx, msg.ID, time.Now().UTC()); err != nil {
			return published, err
		}
		published++
	}

	return published, nil
}
