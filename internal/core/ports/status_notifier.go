package ports

import (
	"context"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/order"
)

// StatusNotifier fans a committed status change out to the order's live viewers.
type StatusNotifier interface {
	BroadcastStatus(ctx context.Context, orderID kernel.UUID, status order.Status)
}
