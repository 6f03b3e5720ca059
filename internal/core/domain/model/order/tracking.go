package order

import (
	"errors"
	"time"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/pkg/errs"
)

// Tracking is the latest known fulfiller position for an order together
// with the derived distance and ETA. Only the latest point is kept.
type Tracking struct {
	location   kernel.Coordinates
	distanceKm float64
	eta        time.Time
	updatedAt  time.Time
	sequence   uint64
	sequenced  bool
}

// NewTracking derives distance and ETA from location to destination.
// A zero sequence marks the update as unsequenced.
func NewTracking(location, destination kernel.Coordinates, sequence uint64, at time.Time) (Tracking, error) {
	distance, err := kernel.Distance(location, destination)
	if err != nil {
		return Tracking{}, err
	}
	eta, err := kernel.EstimateArrival(distance, at)
	if err != nil {
		return Tracking{}, err
	}
	return Tracking{
		location:   location,
		distanceKm: distance,
		eta:        eta,
		updatedAt:  at,
		sequence:   sequence,
		sequenced:  sequence > 0,
	}, nil
}

// RestoreTracking rebuilds a stored snapshot without recomputing it.
func RestoreTracking(
	location kernel.Coordinates,
	distanceKm float64,
	eta, updatedAt time.Time,
	sequence uint64,
) (Tracking, error) {
	var distanceErr error
	if distanceKm < 0 {
		distanceErr = errs.NewValueIsOutOfRangeError("distance", distanceKm, 0, "+Inf")
	}
	if err := errors.Join(location.Validate(), distanceErr); err != nil {
		return Tracking{}, err
	}
	return Tracking{
		location:   location,
		distanceKm: distanceKm,
		eta:        eta,
		updatedAt:  updatedAt,
		sequence:   sequence,
		sequenced:  sequence > 0,
	}, nil
}

func (t Tracking) Location() kernel.Coordinates {
	return t.location
}

func (t Tracking) DistanceKm() float64 {
	return t.distanceKm
}

func (t Tracking) ETA() time.Time {
	return t.eta
}

func (t Tracking) UpdatedAt() time.Time {
	return t.updatedAt
}

// Sequence is the highest publisher sequence applied so far.
func (t Tracking) Sequence() uint64 {
	return t.sequence
}

// Sequenced reports whether the update that produced t carried its own sequence.
func (t Tracking) Sequenced() bool {
	return t.sequenced
}
