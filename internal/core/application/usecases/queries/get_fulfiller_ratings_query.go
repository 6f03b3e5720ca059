package queries

import (
	"errors"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/rating"
	"waterline/internal/pkg/errs"
	"waterline/internal/pkg/guard"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

var ErrGetFulfillerRatingsQueryIsNotConstructed = errors.New(
	"GetFulfillerRatingsQuery must be created via NewGetFulfillerRatingsQuery constructor",
)

// GetFulfillerRatingsQuery pages through a fulfiller's ratings.
// A zero page or limit falls back to 1 and DefaultPageLimit.
//
// Example:
//
//	query, err := queries.NewGetFulfillerRatingsQuery(fulfillerID, 2, 20, queries.SortHighest)
//	page, err := handler.Handle(ctx, query)
//	fmt.Printf("page %d of %d\n", page.CurrentPage, page.TotalPages)
type GetFulfillerRatingsQuery struct {
	fulfillerID kernel.UUID
	page        int
	limit       int
	sort        RatingSort

	guard guard.ConstructorGuard
}

func NewGetFulfillerRatingsQuery(
	fulfillerID kernel.UUID,
	page, limit int,
	sort RatingSort,
) (GetFulfillerRatingsQuery, error) {
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = DefaultPageLimit
	}

	var pageErr, limitErr, sortErr error
	if page < 1 {
		pageErr = errs.NewValueIsOutOfRangeError("page", page, 1, "unbounded")
	}
	if limit < 1 || limit > MaxPageLimit {
		limitErr = errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxPageLimit)
	}
	if _, ok := ratingSortNames[sort]; !ok {
		sortErr = errs.NewValueIsInvalidError("sort")
	}
	if err := errors.Join(fulfillerID.Validate(), pageErr, limitErr, sortErr); err != nil {
		return GetFulfillerRatingsQuery{}, err
	}

	return GetFulfillerRatingsQuery{
		fulfillerID: fulfillerID,
		page:        page,
		limit:       limit,
		sort:        sort,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (q GetFulfillerRatingsQuery) Validate() error {
	return q.guard.Validate(ErrGetFulfillerRatingsQueryIsNotConstructed)
}

func (q GetFulfillerRatingsQuery) FulfillerID() kernel.UUID { return q.fulfillerID }
func (q GetFulfillerRatingsQuery) Page() int                { return q.page }
func (q GetFulfillerRatingsQuery) Limit() int               { return q.limit }
func (q GetFulfillerRatingsQuery) Sort() RatingSort         { return q.sort }

func (q GetFulfillerRatingsQuery) offset() int {
	return (q.page - 1) * q.limit
}

type GetFulfillerRatingsQueryResponse struct {
	Ratings          []*rating.Rating
	Total            int64
	TotalPages       int
	CurrentPage      int
	CategoryAverages map[rating.Category]float64
}
