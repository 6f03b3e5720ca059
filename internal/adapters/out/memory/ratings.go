package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"

	"waterline/internal/core/application/usecases/queries"
	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/rating"
	"waterline/internal/pkg/errs"
)

type RatingRepository struct {
	uow *UnitOfWork
}

func (r *RatingRepository) Add(_ context.Context, aggregate *rating.Rating) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	state := ratingState(aggregate)
	return r.uow.exec(func(d *dataset) error {
		if _, ok := d.ratingsByOrder[state.OrderID]; ok {
			return fmt.Errorf("%w: order %s", rating.ErrDuplicateRating, state.OrderID)
		}
		d.ratings[state.ID] = state
		d.ratingsByOrder[state.OrderID] = state.ID
		return nil
	})
}

func (r *RatingRepository) Get(_ context.Context, id kernel.UUID) (*rating.Rating, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var (
		state rating.State
		ok    bool
	)
	r.uow.store.read(func(d *dataset) {
		state, ok = d.ratings[id]
	})
	if !ok {
		return nil, errs.NewObjectNotFoundError("rating", id.String())
	}
	return restoreRating(state)
}

func (r *RatingRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*rating.Rating, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	r.uow.lock("rating:" + id.String())
	return r.Get(ctx, id)
}

func (r *RatingRepository) ExistsForOrder(_ context.Context, orderID kernel.UUID) (bool, error) {
	if err := orderID.Validate(); err != nil {
		return false, err
	}

	var ok bool
	r.uow.store.read(func(d *dataset) {
		_, ok = d.ratingsByOrder[orderID]
	})
	return ok, nil
}

func (r *RatingRepository) Update(_ context.Context, aggregate *rating.Rating) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	id, voters, response := aggregate.ID(), aggregate.HelpfulVoters(), aggregate.Response()
	return r.uow.exec(func(d *dataset) error {
		stored, ok := d.ratings[id]
		if !ok {
			return errs.NewObjectNotFoundError("rating", id.String())
		}
		stored.HelpfulVoters = voters
		stored.Response = response
		d.ratings[id] = stored
		return nil
	})
}

// RatingReader serves the fulfiller rating views from the store.
type RatingReader struct {
	store *Store
}

func NewRatingReader(store *Store) *RatingReader {
	return &RatingReader{store: store}
}

func (r *RatingReader) ListByFulfiller(
	_ context.Context,
	fulfillerID kernel.UUID,
	sort queries.RatingSort,
	offset, limit int,
) ([]*rating.Rating, int64, error) {
	states := r.byFulfiller(fulfillerID)
	slices.SortFunc(states, ratingOrder(sort))

	total := int64(len(states))
	if offset >= len(states) {
		return []*rating.Rating{}, total, nil
	}
	page := states[offset:min(offset+limit, len(states))]

	ratings := make([]*rating.Rating, 0, len(page))
	for _, state := range page {
		aggregate, err := restoreRating(state)
		if err != nil {
			return nil, 0, err
		}
		ratings = append(ratings, aggregate)
	}
	return ratings, total, nil
}

func (r *RatingReader) ScoreDistribution(_ context.Context, fulfillerID kernel.UUID) (map[int]int, error) {
	distribution := make(map[int]int)
	for _, state := range r.byFulfiller(fulfillerID) {
		distribution[state.Score]++
	}
	return distribution, nil
}

func (r *RatingReader) byFulfiller(fulfillerID kernel.UUID) []rating.State {
	var states []rating.State
	r.store.read(func(d *dataset) {
		for _, state := range d.ratings {
			if state.FulfillerID.IsEqual(fulfillerID) {
				states = append(states, state)
			}
		}
	})
	return states
}

func ratingOrder(sort queries.RatingSort) func(a, b rating.State) int {
	newest := func(a, b rating.State) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.ID.String(), b.ID.String()))
	}
	switch sort {
	case queries.SortOldest:
		return func(a, b rating.State) int { return newest(b, a) }
	case queries.SortHighest:
		return func(a, b rating.State) int { return cmp.Or(cmp.Compare(b.Score, a.Score), newest(a, b)) }
	case queries.SortLowest:
		return func(a, b rating.State) int { return cmp.Or(cmp.Compare(a.Score, b.Score), newest(a, b)) }
	default:
		return newest
	}
}

func ratingState(r *rating.Rating) rating.State {
	return rating.State{
		ID:            r.ID(),
		OrderID:       r.OrderID(),
		RequesterID:   r.RequesterID(),
		FulfillerID:   r.FulfillerID(),
		Score:         r.Score(),
		Review:        r.Review(),
		Categories:    r.Categories(),
		HelpfulVoters: r.HelpfulVoters(),
		Response:      r.Response(),
		CreatedAt:     r.CreatedAt(),
	}
}

func restoreRating(state rating.State) (*rating.Rating, error) {
	state.Categories = maps.Clone(state.Categories)
	state.HelpfulVoters = slices.Clone(state.HelpfulVoters)
	if state.Response != nil {
		response := *state.Response
		state.Response = &response
	}
	return rating.RestoreRating(state)
}

var _ queries.RatingReader = (*RatingReader)(nil)
