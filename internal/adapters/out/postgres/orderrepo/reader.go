package orderrepo

import (
	"context"
	"time"

	"waterline/internal/core/application/usecases/queries"
	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/order"
	"waterline/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderReader implements queries.OrderReader with raw SQL.
type GormOrderReader struct {
	db *gorm.DB
}

func NewGormOrderReader(db *gorm.DB) *GormOrderReader {
	return &GormOrderReader{db: db}
}

func (r *GormOrderReader) ListActive(ctx context.Context, party kernel.Actor) ([]queries.ActiveOrder, error) {
	column := "requester_id"
	if party.Role() == kernel.Fulfiller {
		column = "fulfiller_id"
	}

	rows, err := r.db.WithContext(ctx).Raw(`
		SELECT
			id,
			requester_id,
			fulfiller_id,
			status,
			destination_latitude,
			destination_longitude,
			destination_address,
			tracking_distance_km,
			tracking_eta,
			updated_at
		FROM orders
		WHERE `+column+` = ? AND status NOT IN ?
		ORDER BY updated_at DESC, id
	`, party.ID().Bytes(), terminalStatuses()).Rows()
	if err != nil {
		return nil, errs.NewRepositoryFailureError("list active orders", err)
	}
	defer rows.Close()

	orders := make([]queries.ActiveOrder, 0)
	for rows.Next() {
		var (
			id, requesterID, fulfillerID uuid.UUID
			status                       int
			lat, lng                     float64
			active                       queries.ActiveOrder
			distance                     *float64
			eta                          *time.Time
			updatedAt                    time.Time
		)
		if err = rows.Scan(&id, &requesterID, &fulfillerID, &status, &lat, &lng,
			&active.Address, &distance, &eta, &updatedAt); err != nil {
			return nil, err
		}

		if active.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if active.RequesterID, err = kernel.UUIDFromBytes(requesterID[:]); err != nil {
			return nil, err
		}
		if active.FulfillerID, err = kernel.UUIDFromBytes(fulfillerID[:]); err != nil {
			return nil, err
		}
		if active.Destination, err = kernel.NewCoordinates(lat, lng); err != nil {
			return nil, err
		}
		active.Status = order.Status(status)
		active.DistanceKm = distance
		if eta != nil {
			utc := eta.UTC()
			active.ETA = &utc
		}
		active.UpdatedAt = updatedAt.UTC()
		orders = append(orders, active)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

var _ queries.OrderReader = (*GormOrderReader)(nil)
