package queries

import (
	"errors"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/rating"
	"waterline/internal/pkg/guard"
)

var ErrGetFulfillerRatingStatsQueryIsNotConstructed = errors.New(
	"GetFulfillerRatingStatsQuery must be created via NewGetFulfillerRatingStatsQuery constructor",
)

type GetFulfillerRatingStatsQuery struct {
	fulfillerID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetFulfillerRatingStatsQuery(fulfillerID kernel.UUID) (GetFulfillerRatingStatsQuery, error) {
	if err := fulfillerID.Validate(); err != nil {
		return GetFulfillerRatingStatsQuery{}, err
	}
	return GetFulfillerRatingStatsQuery{fulfillerID: fulfillerID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetFulfillerRatingStatsQuery) Validate() error {
	return q.guard.Validate(ErrGetFulfillerRatingStatsQueryIsNotConstructed)
}

func (q GetFulfillerRatingStatsQuery) FulfillerID() kernel.UUID {
	return q.fulfillerID
}

// GetFulfillerRatingStatsQueryResponse is the public reputation of a
// fulfiller. Averages are rounded to one decimal; Distribution always has
// the keys 1 to 5.
type GetFulfillerRatingStatsQueryResponse struct {
	FulfillerID      kernel.UUID
	TotalRatings     int
	AverageRating    float64
	Distribution     map[int]int
	CategoryAverages map[rating.Category]float64
}
