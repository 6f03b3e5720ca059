package tracking

import (
	"time"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/order"
)

// Snapshot is the latest known delivery state of one order as shown to
// its viewers. Location, DistanceKm and ETA are nil before the first
// location update.
type Snapshot struct {
	OrderID     kernel.UUID
	RequesterID kernel.UUID
	FulfillerID kernel.UUID
	Status      order.Status
	Location    *kernel.Coordinates
	DistanceKm  *float64
	ETA         *time.Time
	UpdatedAt   time.Time
	Sequence    uint64
}

// SnapshotOf projects o into a Snapshot.
func SnapshotOf(o *order.Order) Snapshot {
	s := Snapshot{
		OrderID:     o.ID(),
		RequesterID: o.RequesterID(),
		FulfillerID: o.FulfillerID(),
		Status:      o.Status(),
		UpdatedAt:   o.UpdatedAt(),
	}
	if t := o.Tracking(); t != nil {
		location := t.Location()
		distance := t.DistanceKm()
		eta := t.ETA()
		s.Location = &location
		s.DistanceKm = &distance
		s.ETA = &eta
		s.UpdatedAt = t.UpdatedAt()
		s.Sequence = t.Sequence()
	}
	return s
}

func (s Snapshot) HasLocation() bool {
	return s.Location != nil
}

// IsParty reports whether actor is the order's requester or fulfiller.
func (s Snapshot) IsParty(actor kernel.Actor) bool {
	switch actor.Role() {
	case kernel.Requester:
		return actor.ID().IsEqual(s.RequesterID)
	case kernel.Fulfiller:
		return actor.ID().IsEqual(s.FulfillerID)
	default:
		return false
	}
}

// newerThan decides whether s may replace cached. Sequenced snapshots never
// move backwards; equal sequences (including unsequenced) replace.
func (s Snapshot) newerThan(cached *Snapshot) bool {
	return cached == nil || s.Sequence >= cached.Sequence
}

// withTrackingOf keeps the identity and status of s and takes the tracking
// fields of t.
func (s Snapshot) withTrackingOf(t Snapshot) Snapshot {
	s.Location = t.Location
	s.DistanceKm = t.DistanceKm
	s.ETA = t.ETA
	s.UpdatedAt = t.UpdatedAt
	s.Sequence = t.Sequence
	return s
}

func (s Snapshot) withStatus(status order.Status) Snapshot {
	s.Status = status
	return s
}
