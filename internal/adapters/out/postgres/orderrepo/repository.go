package orderrepo

import (
	"context"
	"errors"
	"fmt"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/order"
	"waterline/internal/core/ports"
	"waterline/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return errs.NewRepositoryFailureError("add order", err)
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.get(ctx, r.db, id)
}

// GetForUpdate locks the row with SELECT ... FOR UPDATE. Outside a
// transaction the lock is released as soon as the statement ends.
func (r *GormOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.get(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormOrderRepository) get(ctx context.Context, db *gorm.DB, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, errs.NewRepositoryFailureError("get order", err)
	}

	return toDomain(dto)
}

func (r *GormOrderRepository) UpdateStatus(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ?", aggregate.ID().Bytes()).
		UpdateColumns(map[string]any{
			"status":     int(aggregate.Status()),
			"updated_at": aggregate.UpdatedAt(),
		})
	if result.Error != nil {
		return errs.NewRepositoryFailureError("update order status", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("order", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// UpdateTracking writes the tracking columns of a non-terminal order. A
// sequenced update only lands if the stored sequence is lower; the stored
// sequence never decreases.
func (r *GormOrderRepository) UpdateTracking(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	tracking := aggregate.Tracking()
	if tracking == nil {
		return errs.NewValueIsRequiredError("tracking")
	}

	dto := trackingFromDomain(tracking)
	query := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND status NOT IN ?", aggregate.ID().Bytes(), terminalStatuses())
	if tracking.Sequenced() {
		query = query.Where("tracking_sequence < ?", dto.Sequence)
	}

	result := query.UpdateColumns(map[string]any{
		"tracking_latitude":    dto.Latitude,
		"tracking_longitude":   dto.Longitude,
		"tracking_distance_km": dto.DistanceKm,
		"tracking_eta":         dto.ETA,
		"tracking_recorded_at": dto.RecordedAt,
		"tracking_sequence":    gorm.Expr("GREATEST(tracking_sequence, ?)", dto.Sequence),
	})
	if result.Error != nil {
		return errs.NewRepositoryFailureError("update order tracking", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.explainMissedUpdate(ctx, aggregate.ID(), tracking.Sequence())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormOrderRepository) explainMissedUpdate(ctx context.Context, id kernel.UUID, sequence uint64) error {
	var statuses []int
	if err := r.db.WithContext(ctx).Model(&OrderDTO{}).Where("id = ?", id.Bytes()).Pluck("status", &statuses).Error; err != nil {
		return errs.NewRepositoryFailureError("read order status", err)
	}
	if len(statuses) == 0 {
		return errs.NewObjectNotFoundError("order", id.String())
	}
	if status := order.Status(statuses[0]); status.IsTerminal() {
		return fmt.Errorf("%w: order %s is %s", order.ErrInvalidTransition, id, status)
	}
	return fmt.Errorf("%w: order %s sequence %d", order.ErrStaleUpdate, id, sequence)
}

func terminalStatuses() []int {
	terminal := order.TerminalStatuses()
	out := make([]int, 0, len(terminal))
	for _, status := range terminal {
		out = append(out, int(status))
	}
	return out
}

var _ ports.OrderRepository = (*GormOrderRepository)(nil)
