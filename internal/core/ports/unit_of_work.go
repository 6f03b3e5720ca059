package ports

import (
	"context"
)

// UnitOfWorkFactory creates a fresh UnitOfWork per command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is a business transaction boundary. Repositories obtained after
// Begin share its transaction; without Begin they run each call on their own.
type UnitOfWork interface {
	Begin(ctx context.Context) error

	// Commit returns an error if no transaction is active.
	Commit(ctx context.Context) error

	// Rollback returns an error if no transaction is active. Safe to defer
	// after a successful Commit.
	Rollback(ctx context.Context) error

	OrderRepository() OrderRepository
	RatingRepository() RatingRepository
	FulfillerSummaryRepository() FulfillerSummaryRepository
	OutboxRepository() OutboxRepository
}
