package order

import (
	"time"

	"waterline/internal/core/domain/model/kernel"
)

const (
	CreatedRoutingKey       = "order.created"
	StatusChangedRoutingKey = "order.status_changed"
)

// CreatedEvent announces a newly placed order to the fulfiller side.
type CreatedEvent struct {
	OrderID     string    `json:"orderId"`
	RequesterID string    `json:"requesterId"`
	FulfillerID string    `json:"fulfillerId"`
	Quantity    string    `json:"quantity"`
	Unit        Unit      `json:"unit"`
	Total       string    `json:"total"`
	Currency    string    `json:"currency"`
	OccurredAt  time.Time `json:"occurredAt"`
}

func (CreatedEvent) RoutingKey() string {
	return CreatedRoutingKey
}

func NewCreatedEvent(o *Order) CreatedEvent {
	return CreatedEvent{
		OrderID:     o.ID().String(),
		RequesterID: o.RequesterID().String(),
		FulfillerID: o.FulfillerID().String(),
		Quantity:    o.Item().Quantity().String(),
		Unit:        o.Item().Unit(),
		Total:       o.Pricing().Total().String(),
		Currency:    o.Pricing().Currency(),
		OccurredAt:  o.CreatedAt(),
	}
}

// StatusChangedEvent is emitted for every successful Transition.
type StatusChangedEvent struct {
	OrderID    string    `json:"orderId"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	ActorID    string    `json:"actorId"`
	ActorRole  string    `json:"actorRole"`
	OccurredAt time.Time `json:"occurredAt"`
}

func (StatusChangedEvent) RoutingKey() string {
	return StatusChangedRoutingKey
}

func NewStatusChangedEvent(o *Order, from Status, actor kernel.Actor) StatusChangedEvent {
	return StatusChangedEvent{
		OrderID:    o.ID().String(),
		From:       from.String(),
		To:         o.Status().String(),
		ActorID:    actor.ID().String(),
		ActorRole:  actor.Role().String(),
		OccurredAt: o.UpdatedAt(),
	}
}
