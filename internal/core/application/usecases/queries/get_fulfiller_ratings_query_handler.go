package queries

import (
	"context"
	"errors"
)

type GetFulfillerRatingsQueryHandler struct {
	ratings   RatingReader
	summaries SummaryReader
}

func NewGetFulfillerRatingsQueryHandler(
	ratings RatingReader,
	summaries SummaryReader,
) (*GetFulfillerRatingsQueryHandler, error) {
	if ratings == nil {
		return nil, errors.New("rating reader is required")
	}
	if summaries == nil {
		return nil, errors.New("summary reader is required")
	}
	return &GetFulfillerRatingsQueryHandler{ratings: ratings, summaries: summaries}, nil
}

// Handle returns one page. A page past the end is empty, not an error.
func (h *GetFulfillerRatingsQueryHandler) Handle(
	ctx context.Context,
	query GetFulfillerRatingsQuery,
) (GetFulfillerRatingsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetFulfillerRatingsQueryResponse{}, err
	}

	ratings, total, err := h.ratings.ListByFulfiller(ctx, query.FulfillerID(), query.Sort(), query.offset(), query.Limit())
	if err != nil {
		return GetFulfillerRatingsQueryResponse{}, err
	}

	summary, err := h.summaries.Get(ctx, query.FulfillerID())
	if err != nil {
		return GetFulfillerRatingsQueryResponse{}, err
	}

	limit := int64(query.Limit())
	return GetFulfillerRatingsQueryResponse{
		Ratings:          ratings,
		Total:            total,
		TotalPages:       int((total + limit - 1) / limit),
		CurrentPage:      query.Page(),
		CategoryAverages: categoryAverages(summary),
	}, nil
}
