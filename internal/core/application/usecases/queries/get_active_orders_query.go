package queries

import (
	"errors"
	"time"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/order"
	"waterline/internal/pkg/guard"
)

var (
	ErrGetActiveOrdersQueryIsNotConstructed = errors.New(
		"GetActiveOrdersQuery must be created via NewGetActiveOrdersQuery constructor",
	)
)

// GetActiveOrdersQuery lists the orders an actor takes part in that have
// not reached a terminal status. Requesters see the orders they placed,
// fulfillers the orders they deliver.
//
// Example:
//
//	query, err := queries.NewGetActiveOrdersQuery(actor)
//	if err != nil {
//	    return err
//	}
//
//	orders, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to list active orders: %w", err)
//	}
//
//	for _, o := range orders {
//	    fmt.Printf("%s %s -> %s\n", o.ID, o.Status, o.Address)
//	}
type GetActiveOrdersQuery struct {
	actor kernel.Actor

	guard guard.ConstructorGuard
}

func NewGetActiveOrdersQuery(actor kernel.Actor) (GetActiveOrdersQuery, error) {
	if err := actor.Validate(); err != nil {
		return GetActiveOrdersQuery{}, err
	}
	return GetActiveOrdersQuery{actor: actor, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetActiveOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveOrdersQueryIsNotConstructed)
}

func (q GetActiveOrdersQuery) Actor() kernel.Actor { return q.actor }

// ActiveOrder is one row of the active orders list. DistanceKm and ETA are
// nil until the fulfiller reports a first location.
type ActiveOrder struct {
	ID          kernel.UUID
	RequesterID kernel.UUID
	FulfillerID kernel.UUID
	Status      order.Status
	Destination kernel.Coordinates
	Address     string
	DistanceKm  *float64
	ETA         *time.Time
	UpdatedAt   time.Time
}
