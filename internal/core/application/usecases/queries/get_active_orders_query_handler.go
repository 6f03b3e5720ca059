package queries

import (
	"context"
	"errors"
)

// GetActiveOrdersQueryHandler reads the active orders of one party.
// Results are sorted by last update, newest first, then by order ID.
//
// Example:
//
//	handler, err := NewGetActiveOrdersQueryHandler(reader)
//	query, err := NewGetActiveOrdersQuery(actor)
//
//	active, err := handler.Handle(ctx, query)
//	if err != nil {
//	    log.Printf("Failed to get active orders: %v", err)
//	    return err
//	}
type GetActiveOrdersQueryHandler struct {
	orders OrderReader
}

func NewGetActiveOrdersQueryHandler(orders OrderReader) (*GetActiveOrdersQueryHandler, error) {
	if orders == nil {
		return nil, errors.New("order reader is required")
	}
	return &GetActiveOrdersQueryHandler{orders: orders}, nil
}

// Handle never returns nil on success: no orders is an empty slice.
func (h *GetActiveOrdersQueryHandler) Handle(ctx context.Context, query GetActiveOrdersQuery) ([]ActiveOrder, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders, err := h.orders.ListActive(ctx, query.Actor())
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = make([]ActiveOrder, 0)
	}
	return orders, nil
}
