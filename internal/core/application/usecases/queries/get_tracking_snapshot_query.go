package queries

import (
	"errors"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/pkg/guard"
)

var ErrGetTrackingSnapshotQueryIsNotConstructed = errors.New(
	"GetTrackingSnapshotQuery must be created via NewGetTrackingSnapshotQuery constructor",
)

// GetTrackingSnapshotQuery asks for the live position of an order on behalf
// of one of its parties.
type GetTrackingSnapshotQuery struct {
	orderID kernel.UUID
	actor   kernel.Actor

	guard guard.ConstructorGuard
}

func NewGetTrackingSnapshotQuery(orderID kernel.UUID, actor kernel.Actor) (GetTrackingSnapshotQuery, error) {
	if err := errors.Join(orderID.Validate(), actor.Validate()); err != nil {
		return GetTrackingSnapshotQuery{}, err
	}
	return GetTrackingSnapshotQuery{orderID: orderID, actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (q GetTrackingSnapshotQuery) Validate() error {
	return q.guard.Validate(ErrGetTrackingSnapshotQueryIsNotConstructed)
}

func (q GetTrackingSnapshotQuery) OrderID() kernel.UUID {
	return q.orderID
}

func (q GetTrackingSnapshotQuery) Actor() kernel.Actor {
	return q.actor
}
