package queries

import (
	"context"
	"errors"

	"waterline/internal/core/domain/model/rating"
)

type GetFulfillerRatingStatsQueryHandler struct {
	summaries SummaryReader
	ratings   RatingReader
}

func NewGetFulfillerRatingStatsQueryHandler(
	summaries SummaryReader,
	ratings RatingReader,
) (*GetFulfillerRatingStatsQueryHandler, error) {
	if summaries == nil {
		return nil, errors.New("summary reader is required")
	}
	if ratings == nil {
		return nil, errors.New("rating reader is required")
	}
	return &GetFulfillerRatingStatsQueryHandler{summaries: summaries, ratings: ratings}, nil
}

// Handle reads the running summary for the averages and counts the score
// distribution from the ratings themselves. A fulfiller with no ratings
// gets zeros, not NotFound.
func (h *GetFulfillerRatingStatsQueryHandler) Handle(
	ctx context.Context,
	query GetFulfillerRatingStatsQuery,
) (GetFulfillerRatingStatsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetFulfillerRatingStatsQueryResponse{}, err
	}

	summary, err := h.summaries.Get(ctx, query.FulfillerID())
	if err != nil {
		return GetFulfillerRatingStatsQueryResponse{}, err
	}

	counts, err := h.ratings.ScoreDistribution(ctx, query.FulfillerID())
	if err != nil {
		return GetFulfillerRatingStatsQueryResponse{}, err
	}
	distribution := make(map[int]int, rating.MaxScore)
	for score := rating.MinScore; score <= rating.MaxScore; score++ {
		distribution[score] = counts[score]
	}

	return GetFulfillerRatingStatsQueryResponse{
		FulfillerID:      query.FulfillerID(),
		TotalRatings:     summary.Count(),
		AverageRating:    roundToTenth(summary.Average()),
		Distribution:     distribution,
		CategoryAverages: categoryAverages(summary),
	}, nil
}
