package ws

import (
	"encoding/json"
	"errors"
	"time"

	"waterline/internal/core/application/tracking"
	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/order"
	"waterline/internal/pkg/errs"
)

// Client events.
const (
	EventJoinOrder      = "join-order"
	EventLeaveOrder     = "leave-order"
	EventUpdateLocation = "update-location"
)

// Server events besides the hub's location-updated and order-status-updated.
const (
	EventError = "error"
)

// Envelope frames every message in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type OrderRef struct {
	OrderID string `json:"orderId"`
}

type UpdateLocation struct {
	OrderID  string  `json:"orderId"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Sequence uint64  `json:"sequence,omitempty"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type LocationUpdated struct {
	OrderID     string      `json:"orderId"`
	Coordinates Coordinates `json:"coordinates"`
	DistanceKm  float64     `json:"distanceKm"`
	ETA         time.Time   `json:"eta"`
	Status      string      `json:"status"`
	Sequence    uint64      `json:"sequence"`
}

type StatusUpdated struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func envelope(event string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: event, Data: raw}, nil
}

// locationEnvelope returns false for a snapshot without a location.
func locationEnvelope(s tracking.Snapshot) (Envelope, bool, error) {
	if !s.HasLocation() || s.DistanceKm == nil || s.ETA == nil {
		return Envelope{}, false, nil
	}
	env, err := envelope(string(tracking.EventLocationUpdated), LocationUpdated{
		OrderID:     s.OrderID.String(),
		Coordinates: Coordinates{Lat: s.Location.Latitude(), Lng: s.Location.Longitude()},
		DistanceKm:  *s.DistanceKm,
		ETA:         *s.ETA,
		Status:      s.Status.String(),
		Sequence:    s.Sequence,
	})
	return env, err == nil, err
}

func hubEnvelope(msg tracking.Message) (Envelope, bool, error) {
	switch msg.Event {
	case tracking.EventLocationUpdated:
		return locationEnvelope(msg.Snapshot)
	case tracking.EventStatusUpdated:
		env, err := envelope(string(tracking.EventStatusUpdated), StatusUpdated{
			OrderID: msg.OrderID.String(),
			Status:  msg.Status.String(),
		})
		return env, err == nil, err
	default:
		return Envelope{}, false, nil
	}
}

// ErrorCode classifies err for the error event.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, errs.ErrForbidden):
		return "forbidden"
	case errors.Is(err, errs.ErrObjectNotFound):
		return "not_found"
	case errors.Is(err, order.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, kernel.ErrInvalidCoordinates):
		return "invalid_coordinates"
	case errors.Is(err, errMalformed),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return "bad_request"
	default:
		return "internal"
	}
}
