package rating

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"waterline/internal/core/domain/model/kernel"
)

var ErrSummaryIsNotConstructed = errors.New("FulfillerSummary must be created via NewFulfillerSummary or RestoreFulfillerSummary")

// Tally is a running sum of scores and how many scores went into it.
type Tally struct {
	Total int `json:"total"`
	Count int `json:"count"`
}

// Average is Total / Count, or 0 for an empty tally.
func (t Tally) Average() float64 {
	if t.Count == 0 {
		return 0
	}
	return float64(t.Total) / float64(t.Count)
}

func (t Tally) add(score int) Tally {
	return Tally{Total: t.Total + score, Count: t.Count + 1}
}

// FulfillerSummary is the append-only roll-up of every rating a fulfiller
// received. Each category keeps its own sample count, so a category's
// average only covers the ratings that scored it.
type FulfillerSummary struct {
	fulfillerID kernel.UUID
	overall     Tally
	categories  map[Category]Tally
	updatedAt   time.Time

	isConstructed bool
}

func NewFulfillerSummary(fulfillerID kernel.UUID) (*FulfillerSummary, error) {
	return RestoreFulfillerSummary(fulfillerID, Tally{}, nil, time.Time{})
}

func RestoreFulfillerSummary(
	fulfillerID kernel.UUID,
	overall Tally,
	categories map[Category]Tally,
	updatedAt time.Time,
) (*FulfillerSummary, error) {
	var categoriesErr error
	for c := range categories {
		categoriesErr = errors.Join(categoriesErr, c.Validate())
	}
	if err := errors.Join(fulfillerID.Validate(), categoriesErr); err != nil {
		return nil, err
	}

	cats := maps.Clone(categories)
	if cats == nil {
		cats = make(map[Category]Tally)
	}
	return &FulfillerSummary{
		fulfillerID:   fulfillerID,
		overall:       overall,
		categories:    cats,
		updatedAt:     updatedAt,
		isConstructed: true,
	}, nil
}

func (s *FulfillerSummary) Validate() error {
	if s == nil || !s.isConstructed {
		return ErrSummaryIsNotConstructed
	}
	return nil
}

func (s *FulfillerSummary) FulfillerID() kernel.UUID {
	return s.fulfillerID
}

func (s *FulfillerSummary) Overall() Tally {
	return s.overall
}

func (s *FulfillerSummary) Average() float64 {
	return s.overall.Average()
}

func (s *FulfillerSummary) Count() int {
	return s.overall.Count
}

// Categories returns a copy of the per-category tallies.
func (s *FulfillerSummary) Categories() map[Category]Tally {
	return maps.Clone(s.categories)
}

// CategoryAverages maps every scored category to its own average.
func (s *FulfillerSummary) CategoryAverages() map[Category]float64 {
	out := make(map[Category]float64, len(s.categories))
	for c, t := range s.categories {
		out[c] = t.Average()
	}
	return out
}

func (s *FulfillerSummary) UpdatedAt() time.Time {
	return s.updatedAt
}

// Apply folds r into the summary:
// newAverage = (oldAverage*oldCount + score) / (oldCount + 1).
func (s *FulfillerSummary) Apply(r *Rating, now time.Time) error {
	if err := errors.Join(s.Validate(), r.Validate()); err != nil {
		return err
	}
	if !r.FulfillerID().IsEqual(s.fulfillerID) {
		return fmt.Errorf("rating %s belongs to fulfiller %s, not %s", r.ID(), r.FulfillerID(), s.fulfillerID)
	}

	s.overall = s.overall.add(r.Score())
	for c, score := range r.categories {
		s.categories[c] = s.categories[c].add(score)
	}
	s.updatedAt = now
	return nil
}
