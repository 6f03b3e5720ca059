package ports

import (
	"context"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/order"
)

// OrderRepository persists order aggregates. UpdateStatus and UpdateTracking
// each write only their own columns, so a status change and a location update
// for the same order can interleave without overwriting each other.
type OrderRepository interface {
	// Add inserts a new order.
	Add(ctx context.Context, aggregate *order.Order) error

	// Get returns errs.ErrObjectNotFound for an unknown ID.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetForUpdate is Get plus a row lock held until the transaction ends.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// UpdateStatus writes status and updated-at.
	UpdateStatus(ctx context.Context, aggregate *order.Order) error

	// UpdateTracking writes the tracking snapshot. For a sequenced snapshot
	// the write only happens if the stored sequence is lower; otherwise it
	// returns order.ErrStaleUpdate and leaves the row untouched.
	UpdateTracking(ctx context.Context, aggregate *order.Order) error
}
