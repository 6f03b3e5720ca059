package summaryrepo

import (
	"context"
	"errors"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/rating"
	"waterline/internal/core/ports"
	"waterline/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSummaryRepository implements ports.FulfillerSummaryRepository.
type GormSummaryRepository struct {
	db *gorm.DB
}

func NewGormSummaryRepository(db *gorm.DB) *GormSummaryRepository {
	return &GormSummaryRepository{db: db}
}

// Get returns an empty summary when the fulfiller has no row yet.
func (r *GormSummaryRepository) Get(ctx context.Context, fulfillerID kernel.UUID) (*rating.FulfillerSummary, error) {
	if err := fulfillerID.Validate(); err != nil {
		return nil, err
	}

	var dto SummaryDTO
	err := r.db.WithContext(ctx).First(&dto, "fulfiller_id = ?", fulfillerID.Bytes()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return rating.NewFulfillerSummary(fulfillerID)
	}
	if err != nil {
		return nil, errs.NewRepositoryFailureError("get fulfiller summary", err)
	}
	return toDomain(dto)
}

// GetForUpdate makes sure the row exists and locks it, so the first two
// ratings of a new fulfiller still serialize on the same row.
func (r *GormSummaryRepository) GetForUpdate(ctx context.Context, fulfillerID kernel.UUID) (*rating.FulfillerSummary, error) {
	if err := fulfillerID.Validate(); err != nil {
		return nil, err
	}

	seed := SummaryDTO{FulfillerID: fulfillerID.Bytes(), Categories: map[string]rating.Tally{}}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, errs.NewRepositoryFailureError("seed fulfiller summary", err)
	}

	var dto SummaryDTO
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&dto, "fulfiller_id = ?", fulfillerID.Bytes()).Error; err != nil {
		return nil, errs.NewRepositoryFailureError("lock fulfiller summary", err)
	}
	return toDomain(dto)
}

func (r *GormSummaryRepository) Save(ctx context.Context, summary *rating.FulfillerSummary) error {
	if err := summary.Validate(); err != nil {
		return err
	}

	dto := fromDomain(summary)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "fulfiller_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score_total", "score_count", "categories", "updated_at"}),
		}).
		Create(&dto).Error
	if err != nil {
		return errs.NewRepositoryFailureError("save fulfiller summary", err)
	}
	return nil
}

var _ ports.FulfillerSummaryRepository = (*GormSummaryRepository)(nil)
