// Package queries contains the read side: tracking snapshots, active order
// lists and fulfiller rating views. Handlers never open a unit of work.
package queries

import (
	"context"
	"fmt"
	"math"

	"waterline/internal/core/application/tracking"
	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/rating"
	"waterline/internal/pkg/errs"
)

// RatingSort orders a fulfiller's ratings.
type RatingSort int

const (
	SortNewest RatingSort = iota
	SortOldest
	SortHighest
	SortLowest
)

var ratingSortNames = map[RatingSort]string{
	SortNewest:  "newest",
	SortOldest:  "oldest",
	SortHighest: "highest",
	SortLowest:  "lowest",
}

func (s RatingSort) String() string {
	if name, ok := ratingSortNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseRatingSort maps an empty string to SortNewest.
func ParseRatingSort(s string) (RatingSort, error) {
	if s == "" {
		return SortNewest, nil
	}
	for sort, name := range ratingSortNames {
		if name == s {
			return sort, nil
		}
	}
	return SortNewest, errs.NewValueIsInvalidErrorWithCause("sort", fmt.Errorf("%q is not a valid sort", s))
}

// RatingReader serves the paged and aggregated rating views.
type RatingReader interface {
	// ListByFulfiller returns one page of ratings and the total count.
	// Ties on score are broken newest first.
	ListByFulfiller(
		ctx context.Context,
		fulfillerID kernel.UUID,
		sort RatingSort,
		offset, limit int,
	) ([]*rating.Rating, int64, error)

	// ScoreDistribution counts ratings per score; absent scores are omitted.
	ScoreDistribution(ctx context.Context, fulfillerID kernel.UUID) (map[int]int, error)
}

// OrderReader lists a party's orders that are not terminal, newest update
// first with ties broken by order ID.
type OrderReader interface {
	ListActive(ctx context.Context, party kernel.Actor) ([]ActiveOrder, error)
}

// SummaryReader is satisfied by ports.FulfillerSummaryRepository.
type SummaryReader interface {
	Get(ctx context.Context, fulfillerID kernel.UUID) (*rating.FulfillerSummary, error)
}

// SnapshotSource is satisfied by *tracking.Hub.
type SnapshotSource interface {
	CurrentSnapshot(ctx context.Context, orderID kernel.UUID) (tracking.Snapshot, error)
}

func roundToTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// categoryAverages reports every known category, zero when never rated.
func categoryAverages(summary *rating.FulfillerSummary) map[rating.Category]float64 {
	averages := make(map[rating.Category]float64, len(rating.AllCategories))
	tallies := summary.Categories()
	for _, c := range rating.AllCategories {
		averages[c] = roundToTenth(tallies[c].Average())
	}
	return averages
}
