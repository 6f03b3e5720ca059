// Package orderrepo persists order aggregates in the orders table.
// Status and tracking live in separate column groups so that a status
// change and a location update never overwrite each other.
package orderrepo

import (
	"errors"
	"time"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO is the row layout of the orders table.
type OrderDTO struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RequesterID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	FulfillerID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity      decimal.Decimal `gorm:"type:numeric(12,3);not null"`
	Unit          string          `gorm:"type:varchar(16);not null"`
	Pricing       PricingDTO      `gorm:"embedded;embeddedPrefix:pricing_"`
	Destination   DestinationDTO  `gorm:"embedded;embeddedPrefix:destination_"`
	PaymentMethod string          `gorm:"type:varchar(16);not null"`
	PaymentStatus string          `gorm:"type:varchar(16);not null"`
	Status        int             `gorm:"not null;index"`
	Tracking      TrackingDTO     `gorm:"embedded;embeddedPrefix:tracking_"`
	CreatedAt     time.Time       `gorm:"not null;autoCreateTime:false"`
	UpdatedAt     time.Time       `gorm:"not null;autoUpdateTime:false"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

type PricingDTO struct {
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	DeliveryFee decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Total       decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Currency    string          `gorm:"type:char(3);not null"`
}

type DestinationDTO struct {
	Latitude     float64 `gorm:"not null"`
	Longitude    float64 `gorm:"not null"`
	Address      string  `gorm:"type:varchar(300);not null"`
	Instructions string  `gorm:"type:varchar(500)"`
}

// TrackingDTO columns are null until the first location update, except
// Sequence which starts at zero.
type TrackingDTO struct {
	Latitude   *float64
	Longitude  *float64
	DistanceKm *float64
	ETA        *time.Time
	RecordedAt *time.Time
	Sequence   int64 `gorm:"not null;default:0"`
}

func fromDomain(o *order.Order) OrderDTO {
	return OrderDTO{
		ID:          o.ID().Bytes(),
		RequesterID: o.RequesterID().Bytes(),
		FulfillerID: o.FulfillerID().Bytes(),
		Quantity:    o.Item().Quantity(),
		Unit:        string(o.Item().Unit()),
		Pricing: PricingDTO{
			UnitPrice:   o.Pricing().UnitPrice(),
			DeliveryFee: o.Pricing().DeliveryFee(),
			Total:       o.Pricing().Total(),
			Currency:    o.Pricing().Currency(),
		},
		Destination: DestinationDTO{
			Latitude:     o.Destination().Coordinates().Latitude(),
			Longitude:    o.Destination().Coordinates().Longitude(),
			Address:      o.Destination().Address(),
			Instructions: o.Destination().Instructions(),
		},
		PaymentMethod: string(o.Payment().Method),
		PaymentStatus: string(o.Payment().Status),
		Status:        int(o.Status()),
		Tracking:      trackingFromDomain(o.Tracking()),
		CreatedAt:     o.CreatedAt(),
		UpdatedAt:     o.UpdatedAt(),
	}
}

func trackingFromDomain(t *order.Tracking) TrackingDTO {
	if t == nil {
		return TrackingDTO{}
	}
	lat, lng := t.Location().Latitude(), t.Location().Longitude()
	distance, eta, at := t.DistanceKm(), t.ETA(), t.UpdatedAt()
	return TrackingDTO{
		Latitude:   &lat,
		Longitude:  &lng,
		DistanceKm: &distance,
		ETA:        &eta,
		RecordedAt: &at,
		Sequence:   int64(t.Sequence()), //nolint:gosec // sequences stay far below MaxInt64
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, idErr := kernel.UUIDFromBytes(dto.ID[:])
	requesterID, requesterErr := kernel.UUIDFromBytes(dto.RequesterID[:])
	fulfillerID, fulfillerErr := kernel.UUIDFromBytes(dto.FulfillerID[:])
	if err := errors.Join(idErr, requesterErr, fulfillerErr); err != nil {
		return nil, err
	}

	item, err := order.NewItem(dto.Quantity, order.Unit(dto.Unit))
	if err != nil {
		return nil, err
	}
	pricing, err := order.NewPricing(item, dto.Pricing.UnitPrice, dto.Pricing.DeliveryFee, dto.Pricing.Currency)
	if err != nil {
		return nil, err
	}
	coordinates, err := kernel.NewCoordinates(dto.Destination.Latitude, dto.Destination.Longitude)
	if err != nil {
		return nil, err
	}
	destination, err := order.NewDestination(coordinates, dto.Destination.Address, dto.Destination.Instructions)
	if err != nil {
		return nil, err
	}
	payment, err := order.RestorePayment(order.PaymentMethod(dto.PaymentMethod), order.PaymentStatus(dto.PaymentStatus))
	if err != nil {
		return nil, err
	}
	tracking, err := trackingToDomain(dto.Tracking)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(order.State{
		ID:          id,
		RequesterID: requesterID,
		FulfillerID: fulfillerID,
		Item:        item,
		Pricing:     pricing,
		Destination: destination,
		Payment:     payment,
		Status:      order.Status(dto.Status),
		Tracking:    tracking,
		CreatedAt:   dto.CreatedAt.UTC(),
		UpdatedAt:   dto.UpdatedAt.UTC(),
	})
}

func trackingToDomain(dto TrackingDTO) (*order.Tracking, error) {
	if dto.Latitude == nil || dto.Longitude == nil {
		return nil, nil //nolint:nilnil // no location reported yet
	}

	location, err := kernel.NewCoordinates(*dto.Latitude, *dto.Longitude)
	if err != nil {
		return nil, err
	}

	var (
		distance float64
		eta, at  time.Time
	)
	if dto.DistanceKm != nil {
		distance = *dto.DistanceKm
	}
	if dto.ETA != nil {
		eta = dto.ETA.UTC()
	}
	if dto.RecordedAt != nil {
		at = dto.RecordedAt.UTC()
	}

	tracking, err := order.RestoreTracking(location, distance, eta, at, uint64(max(dto.Sequence, 0)))
	if err != nil {
		return nil, err
	}
	return &tracking, nil
}
