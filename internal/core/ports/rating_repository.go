package ports

import (
	"context"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/rating"
)

type RatingRepository interface {
	// Add returns rating.ErrDuplicateRating if the order is already rated.
	Add(ctx context.Context, aggregate *rating.Rating) error

	Get(ctx context.Context, id kernel.UUID) (*rating.Rating, error)

	// GetForUpdate loads the rating and locks it until the transaction ends.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*rating.Rating, error)

	// ExistsForOrder reports whether orderID already has a rating.
	ExistsForOrder(ctx context.Context, orderID kernel.UUID) (bool, error)

	// Update writes the helpful votes and the fulfiller response.
	Update(ctx context.Context, aggregate *rating.Rating) error
}

// FulfillerSummaryRepository stores the per-fulfiller rating roll-up.
type FulfillerSummaryRepository interface {
	// GetForUpdate returns the summary locked for the rest of the
	// transaction, creating an empty one on first use.
	GetForUpdate(ctx context.Context, fulfillerID kernel.UUID) (*rating.FulfillerSummary, error)

	// Get returns an empty summary for a fulfiller with no ratings.
	Get(ctx context.Context, fulfillerID kernel.UUID) (*rating.FulfillerSummary, error)

	Save(ctx context.Context, summary *rating.FulfillerSummary) error
}
