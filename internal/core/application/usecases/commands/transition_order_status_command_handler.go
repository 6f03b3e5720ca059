package commands

import (
	"context"
	"time"

	"waterline/internal/core/domain/model/order"
	"waterline/internal/core/domain/model/outbox"
	"waterline/internal/core/ports"
)

// TransitionOrderStatusCommandHandler applies a status change under a row
// lock, writes only the status columns and an order.status_changed event,
// and after commit pushes the new status to the order's live viewers.
//
// Example:
//
//	cmd, _ := NewTransitionOrderStatusCommand(orderID, order.Delivered, fulfiller)
//	updated, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrForbidden):
//	    // not this actor's order, or a requester trying to advance it
//	case errors.Is(err, order.ErrInvalidTransition):
//	    // not adjacent, or the order is already terminal
//	}
type TransitionOrderStatusCommandHandler struct {
	uowFactory OrderUoWFactory
	workflow   order.Workflow
	notifier   ports.StatusNotifier
}

func NewTransitionOrderStatusCommandHandler(
	uowFactory OrderUoWFactory,
	workflow order.Workflow,
	notifier ports.StatusNotifier,
) TransitionOrderStatusCommandHandler {
	return TransitionOrderStatusCommandHandler{
		uowFactory: uowFactory,
		workflow:   workflow,
		notifier:   notifier,
	}
}

func (h TransitionOrderStatusCommandHandler) Handle(
	ctx context.Context,
	cmd TransitionOrderStatusCommand,
) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	current, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	from := current.Status()
	if err = current.Transition(h.workflow, cmd.Status(), cmd.Actor(), time.Now().UTC()); err != nil {
		return nil, err
	}

	msg, err := outbox.NewMessage(order.NewStatusChangedEvent(current, from, cmd.Actor()), current.UpdatedAt())
	if err != nil {
		return nil, err
	}

	if err = orderRepo.UpdateStatus(ctx, current); err != nil {
		return nil, err
	}

	if err = uow.OutboxRepository().Add(ctx, msg); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	if h.notifier != nil {
		h.notifier.BroadcastStatus(ctx, current.ID(), current.Status())
	}

	return current, nil
}
