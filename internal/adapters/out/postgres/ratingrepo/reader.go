package ratingrepo

import (
	"context"

	"waterline/internal/core/application/usecases/queries"
	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/rating"
	"waterline/internal/pkg/errs"

	"gorm.io/gorm"
)

var sortClauses = map[queries.RatingSort]string{
	queries.SortNewest:  "created_at DESC, id",
	queries.SortOldest:  "created_at ASC, id",
	queries.SortHighest: "score DESC, created_at DESC, id",
	queries.SortLowest:  "score ASC, created_at DESC, id",
}

// GormRatingReader implements queries.RatingReader with raw SQL.
type GormRatingReader struct {
	db *gorm.DB
}

func NewGormRatingReader(db *gorm.DB) *GormRatingReader {
	return &GormRatingReader{db: db}
}

func (r *GormRatingReader) ListByFulfiller(
	ctx context.Context,
	fulfillerID kernel.UUID,
	sort queries.RatingSort,
	offset, limit int,
) ([]*rating.Rating, int64, error) {
	orderBy, ok := sortClauses[sort]
	if !ok {
		orderBy = sortClauses[queries.SortNewest]
	}

	var total int64
	if err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)
		FROM ratings
		WHERE fulfiller_id = ?
	`, fulfillerID.Bytes()).Scan(&total).Error; err != nil {
		return nil, 0, errs.NewRepositoryFailureError("count ratings", err)
	}

	var dtos []RatingDTO
	if err := r.db.WithContext(ctx).Raw(`
		SELECT *
		FROM ratings
		WHERE fulfiller_id = ?
		ORDER BY `+orderBy+`
		LIMIT ? OFFSET ?
	`, fulfillerID.Bytes(), limit, offset).Scan(&dtos).Error; err != nil {
		return nil, 0, errs.NewRepositoryFailureError("list ratings", err)
	}

	ratings := make([]*rating.Rating, 0, len(dtos))
	for _, dto := range dtos {
		aggregate, err := toDomain(dto)
		if err != nil {
			return nil, 0, err
		}
		ratings = append(ratings, aggregate)
	}
	return ratings, total, nil
}

func (r *GormRatingReader) ScoreDistribution(ctx context.Context, fulfillerID kernel.UUID) (map[int]int, error) {
	rows, err := r.db.WithContext(ctx).Raw(`
		SELECT
			score,
			COUNT(*)
		FROM ratings
		WHERE fulfiller_id = ?
		GROUP BY score
	`, fulfillerID.Bytes()).Rows()
	if err != nil {
		return nil, errs.NewRepositoryFailureError("score distribution", err)
	}
	defer rows.Close()

	distribution := make(map[int]int)
	for rows.Next() {
		var score, count int
		if err = rows.Scan(&score, &count); err != nil {
			return nil, err
		}
		distribution[score] = count
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return distribution, nil
}

var _ queries.RatingReader = (*GormRatingReader)(nil)
