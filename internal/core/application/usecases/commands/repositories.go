// Package commands contains the operations that change orders and ratings.
// Every handler validates its command, runs inside one unit of work and
// writes its integration event to the outbox in the same transaction.
package commands

import (
	"context"

	"waterline/internal/core/ports"
)

// Unit of Work views narrowed to what each handler touches.
type (
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	RatingRepoFactory interface {
		RatingRepository() ports.RatingRepository
	}

	SummaryRepoFactory interface {
		FulfillerSummaryRepository() ports.FulfillerSummaryRepository
	}

	OutboxRepoFactory interface {
		OutboxRepository() ports.OutboxRepository
	}

	// OrderUoW covers order writes and their outbox messages.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
		OutboxRepoFactory
	}

	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// RatingUoW covers a rating submission: the order it rates, the rating,
	// the fulfiller summary and the outbox message.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   summary, err := uow.FulfillerSummaryRepository().GetForUpdate(ctx, fulfillerID)
	//   // ... apply and save
	//
	//   err = uow.Commit(ctx)
	RatingUoW interface {
		TxManager
		OrderRepoFactory
		RatingRepoFactory
		SummaryRepoFactory
		OutboxRepoFactory
	}

	RatingUoWFactory interface {
		Create() RatingUoW
	}

	// OutboxUoW is used without Begin: the relay reads and marks messages
	// one at a time outside any transaction.
	OutboxUoW interface {
		OutboxRepoFactory
	}

	OutboxUoWFactory interface {
		Create() OutboxUoW
	}
)
