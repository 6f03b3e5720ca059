package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"waterline/internal/core/application/usecases/queries"
	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/order"
	"waterline/internal/pkg/errs"
)

type OrderRepository struct {
	uow *UnitOfWork
}

func (r *OrderRepository) Add(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	state := orderState(aggregate)
	return r.uow.exec(func(d *dataset) error {
		if _, ok := d.orders[state.ID]; ok {
			return errs.NewValueIsInvalidErrorWithCause("order", fmt.Errorf("order %s already exists", state.ID))
		}
		d.orders[state.ID] = state
		return nil
	})
}

func (r *OrderRepository) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var (
		state order.State
		ok    bool
	)
	r.uow.store.read(func(d *dataset) {
		state, ok = d.orders[id]
	})
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	if state.Tracking != nil {
		tracking := *state.Tracking
		state.Tracking = &tracking
	}
	return order.RestoreOrder(state)
}

func (r *OrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	r.uow.lock("order:" + id.String())
	return r.Get(ctx, id)
}

func (r *OrderRepository) UpdateStatus(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	id, status, updatedAt := aggregate.ID(), aggregate.Status(), aggregate.UpdatedAt()
	return r.uow.exec(func(d *dataset) error {
		stored, ok := d.orders[id]
		if !ok {
			return errs.NewObjectNotFoundError("order", id.String())
		}
		stored.Status = status
		stored.UpdatedAt = updatedAt
		d.orders[id] = stored
		return nil
	})
}

func (r *OrderRepository) UpdateTracking(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	incoming := aggregate.Tracking()
	if incoming == nil {
		return errs.NewValueIsRequiredError("tracking")
	}

	id := aggregate.ID()
	return r.uow.exec(func(d *dataset) error {
		stored, ok := d.orders[id]
		if !ok {
			return errs.NewObjectNotFoundError("order", id.String())
		}
		if stored.Status.IsTerminal() {
			return fmt.Errorf("%w: order %s is %s", order.ErrInvalidTransition, id, stored.Status)
		}

		var applied uint64
		if stored.Tracking != nil {
			applied = stored.Tracking.Sequence()
		}
		if incoming.Sequenced() && incoming.Sequence() <= applied {
			return fmt.Errorf("%w: sequence %d, stored %d", order.ErrStaleUpdate, incoming.Sequence(), applied)
		}

		tracking, err := order.RestoreTracking(
			incoming.Location(),
			incoming.DistanceKm(),
			incoming.ETA(),
			incoming.UpdatedAt(),
			max(incoming.Sequence(), applied),
		)
		if err != nil {
			return err
		}
		stored.Tracking = &tracking
		d.orders[id] = stored
		return nil
	})
}

func orderState(o *order.Order) order.State {
	return order.State{
		ID:          o.ID(),
		RequesterID: o.RequesterID(),
		FulfillerID: o.FulfillerID(),
		Item:        o.Item(),
		Pricing:     o.Pricing(),
		Destination: o.Destination(),
		Payment:     o.Payment(),
		Status:      o.Status(),
		Tracking:    o.Tracking(),
		CreatedAt:   o.CreatedAt(),
		UpdatedAt:   o.UpdatedAt(),
	}
}

// OrderReader serves the active order lists from the store.
type OrderReader struct {
	store *Store
}

func NewOrderReader(store *Store) *OrderReader {
	return &OrderReader{store: store}
}

func (r *OrderReader) ListActive(_ context.Context, party kernel.Actor) ([]queries.ActiveOrder, error) {
	var states []order.State
	r.store.read(func(d *dataset) {
		for _, state := range d.orders {
			if state.Status.IsTerminal() {
				continue
			}
			owner := state.RequesterID
			if party.Role() == kernel.Fulfiller {
				owner = state.FulfillerID
			}
			if owner.IsEqual(party.ID()) {
				states = append(states, state)
			}
		}
	})

	slices.SortFunc(states, func(a, b order.State) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})

	orders := make([]queries.ActiveOrder, 0, len(states))
	for _, state := range states {
		active := queries.ActiveOrder{
			ID:          state.ID,
			RequesterID: state.RequesterID,
			FulfillerID: state.FulfillerID,
			Status:      state.Status,
			Destination: state.Destination.Coordinates(),
			Address:     state.Destination.Address(),
			UpdatedAt:   state.UpdatedAt,
		}
		if state.Tracking != nil {
			distance, eta := state.Tracking.DistanceKm(), state.Tracking.ETA()
			active.DistanceKm = &distance
			active.ETA = &eta
		}
		orders = append(orders, active)
	}
	return orders, nil
}

var _ queries.OrderReader = (*OrderReader)(nil)
