package commands

import (
	"context"
	"time"

	"waterline/internal/core/domain/model/order"
	"waterline/internal/core/domain/model/outbox"
)

// CreateOrderCommandHandler stores a new pending order and queues an
// order.created event for the fulfiller side.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
}

func NewCreateOrderCommandHandler(uowFactory OrderUoWFactory) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
	}
}

func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	pricing, err := order.NewPricing(cmd.Item(), cmd.UnitPrice(), cmd.DeliveryFee(), cmd.Currency())
	if err != nil {
		return nil, err
	}

	created, err := order.NewOrder(cmd.OrderID(), cmd.Requester().ID(), cmd.FulfillerID(),
		cmd.Item(), pricing, cmd.Destination(), cmd.PaymentMethod(), now)
	if err != nil {
		return nil, err
	}

	msg, err := outbox.NewMessage(order.NewCreatedEvent(created), now)
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, created); err != nil {
		return nil, err
	}

	if err = uow.OutboxRepository().Add(ctx, msg); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return created, nil
}
