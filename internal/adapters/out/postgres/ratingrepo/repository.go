package ratingrepo

import (
	"context"
	"errors"
	"fmt"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/rating"
	"waterline/internal/core/ports"
	"waterline/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRatingRepository implements ports.RatingRepository using GORM.
// The connection must be opened with TranslateError so that unique
// violations surface as gorm.ErrDuplicatedKey.
type GormRatingRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormRatingRepository(db *gorm.DB, tracker aggregateTracker) *GormRatingRepository {
	return &GormRatingRepository{db: db, tracker: tracker}
}

func (r *GormRatingRepository) Add(ctx context.Context, aggregate *rating.Rating) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: order %s", rating.ErrDuplicateRating, aggregate.OrderID())
		}
		return errs.NewRepositoryFailureError("add rating", err)
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormRatingRepository) Get(ctx context.Context, id kernel.UUID) (*rating.Rating, error) {
	return r.get(ctx, r.db, id)
}

func (r *GormRatingRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*rating.Rating, error) {
	return r.get(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormRatingRepository) get(ctx context.Context, db *gorm.DB, id kernel.UUID) (*rating.Rating, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto RatingDTO
	if err := db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("rating", id.String())
		}
		return nil, errs.NewRepositoryFailureError("get rating", err)
	}

	return toDomain(dto)
}

func (r *GormRatingRepository) ExistsForOrder(ctx context.Context, orderID kernel.UUID) (bool, error) {
	if err := orderID.Validate(); err != nil {
		return false, err
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&RatingDTO{}).Where("order_id = ?", orderID.Bytes()).Count(&count).Error; err != nil {
		return false, errs.NewRepositoryFailureError("count ratings for order", err)
	}
	return count > 0, nil
}

// Update writes the helpful voters and the fulfiller response. Score,
// review and categories are immutable.
func (r *GormRatingRepository) Update(ctx context.Context, aggregate *rating.Rating) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&RatingDTO{}).
		Where("id = ?", dto.ID).
		UpdateColumns(map[string]any{
			"helpful_voters": dto.HelpfulVoters,
			"response_text":  dto.ResponseText,
			"responded_at":   dto.RespondedAt,
		})
	if result.Error != nil {
		return errs.NewRepositoryFailureError("update rating", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("rating", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

var _ ports.RatingRepository = (*GormRatingRepository)(nil)
