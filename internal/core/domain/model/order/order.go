package order

import (
	"errors"
	"fmt"
	"time"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/pkg/errs"
)

// Order is the aggregate root of a single delivery between a requester and
// a fulfiller.
//
// Invariants:
//   - status only moves along the active Workflow or to Cancelled
//   - a terminal order accepts neither status changes nor tracking updates
//   - the tracking distance is undefined until the first location update
//   - requester and fulfiller are different parties
type Order struct {
	id          kernel.UUID
	requesterID kernel.UUID
	fulfillerID kernel.UUID
	item        Item
	pricing     Pricing
	destination Destination
	payment     Payment
	status      Status
	tracking    *Tracking
	createdAt   time.Time
	updatedAt   time.Time

	isConstructed bool
}

// State carries every persisted field of an Order. Used by RestoreOrder.
type State struct {
	ID          kernel.UUID
	RequesterID kernel.UUID
	FulfillerID kernel.UUID
	Item        Item
	Pricing     Pricing
	Destination Destination
	Payment     Payment
	Status      Status
	Tracking    *Tracking
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOrder places a pending order.
//
// Example:
//
//	item, _ := order.NewItem(decimal.NewFromInt(20), order.Liters)
//	pricing, _ := order.NewPricing(item, decimal.NewFromInt(1), decimal.NewFromInt(5), "USD")
//	dest, _ := order.NewDestination(coords, "12 Harbor Rd", "")
//	o, err := order.NewOrder(kernel.NewUUID(), requesterID, fulfillerID, item, pricing, dest, order.Cash, time.Now())
func NewOrder(
	id, requesterID, fulfillerID kernel.UUID,
	item Item,
	pricing Pricing,
	destination Destination,
	method PaymentMethod,
	now time.Time,
) (*Order, error) {
	return RestoreOrder(State{
		ID:          id,
		RequesterID: requesterID,
		FulfillerID: fulfillerID,
		Item:        item,
		Pricing:     pricing,
		Destination: destination,
		Payment:     Payment{Method: method, Status: PaymentPending},
		Status:      Pending,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// RestoreOrder rebuilds an order loaded from storage.
func RestoreOrder(state State) (*Order, error) {
	var partiesErr error
	if state.RequesterID.IsEqual(state.FulfillerID) {
		partiesErr = errs.NewValueIsInvalidErrorWithCause("fulfiller",
			errors.New("requester and fulfiller must differ"))
	}

	if err := errors.Join(
		state.ID.Validate(),
		state.RequesterID.Validate(),
		state.FulfillerID.Validate(),
		partiesErr,
		state.Item.Validate(),
		state.Pricing.Validate(),
		state.Destination.Validate(),
		state.Payment.Validate(),
		state.Status.Validate(),
	); err != nil {
		return nil, err
	}

	return &Order{
		id:            state.ID,
		requesterID:   state.RequesterID,
		fulfillerID:   state.FulfillerID,
		item:          state.Item,
		pricing:       state.Pricing,
		destination:   state.Destination,
		payment:       state.Payment,
		status:        state.Status,
		tracking:      state.Tracking,
		createdAt:     state.CreatedAt,
		updatedAt:     state.UpdatedAt,
		isConstructed: true,
	}, nil
}

func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) ID() kernel.UUID          { return o.id }
func (o *Order) RequesterID() kernel.UUID { return o.requesterID }
func (o *Order) FulfillerID() kernel.UUID { return o.fulfillerID }
func (o *Order) Item() Item               { return o.item }
func (o *Order) Pricing() Pricing         { return o.pricing }
func (o *Order) Destination() Destination { return o.destination }
func (o *Order) Payment() Payment         { return o.payment }
func (o *Order) Status() Status           { return o.status }
func (o *Order) CreatedAt() time.Time     { return o.createdAt }
func (o *Order) UpdatedAt() time.Time     { return o.updatedAt }

// Tracking returns the latest snapshot, or nil before the first location update.
func (o *Order) Tracking() *Tracking {
	if o.tracking == nil {
		return nil
	}
	t := *o.tracking
	return &t
}

// IsRequester reports whether actor is this order's requester acting as one.
func (o *Order) IsRequester(actor kernel.Actor) bool {
	return actor.Role() == kernel.Requester && actor.ID().IsEqual(o.requesterID)
}

// IsFulfiller reports whether actor is this order's fulfiller acting as one.
func (o *Order) IsFulfiller(actor kernel.Actor) bool {
	return actor.Role() == kernel.Fulfiller && actor.ID().IsEqual(o.fulfillerID)
}

// Transition moves the order to status to on behalf of actor. Guards run in order:
//
//  1. actor is not a party of the order: forbidden
//  2. the order is terminal: invalid transition
//  3. to is Cancelled: allowed for either party
//  4. actor is not the fulfiller: forbidden
//  5. to is not the workflow successor: invalid transition
//
// On error the order is unchanged.
func (o *Order) Transition(workflow Workflow, to Status, actor kernel.Actor, now time.Time) error {
	if err := errors.Join(o.Validate(), actor.Validate(), to.Validate()); err != nil {
		return err
	}

	if !o.IsRequester(actor) && !o.IsFulfiller(actor) {
		return errs.NewForbiddenError(actor.String(), fmt.Sprintf("change status of order %s", o.id))
	}
	if o.status.IsTerminal() {
		return invalidTransition(o.status, to)
	}
	if to != Cancelled && !o.IsFulfiller(actor) {
		return errs.NewForbiddenError(actor.String(), fmt.Sprintf("advance order %s", o.id))
	}
	if !workflow.Allows(o.status, to) {
		return invalidTransition(o.status, to)
	}

	o.status = to
	o.updatedAt = now
	return nil
}

// ApplyTracking records a fulfiller location update. An update whose
// sequence is not newer than the applied one fails with ErrStaleUpdate;
// sequence 0 is never stale.
func (o *Order) ApplyTracking(actor kernel.Actor, location kernel.Coordinates, sequence uint64, now time.Time) (Tracking, error) {
	if err := errors.Join(o.Validate(), actor.Validate(), location.Validate()); err != nil {
		return Tracking{}, err
	}

	if !o.IsFulfiller(actor) {
		return Tracking{}, errs.NewForbiddenError(actor.String(), fmt.Sprintf("publish location for order %s", o.id))
	}
	if o.status.IsTerminal() {
		return Tracking{}, fmt.Errorf("%w: order %s is %s", ErrInvalidTransition, o.id, o.status)
	}

	var applied uint64
	if o.tracking != nil {
		applied = o.tracking.sequence
	}
	if sequence > 0 && sequence <= applied {
		return Tracking{}, fmt.Errorf("%w: sequence %d, applied %d", ErrStaleUpdate, sequence, applied)
	}

	tracking, err := NewTracking(location, o.destination.Coordinates(), sequence, now)
	if err != nil {
		return Tracking{}, err
	}
	tracking.sequence = max(sequence, applied)

	o.tracking = &tracking
	return tracking, nil
}
