package commands

import (
	"errors"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/rating"
	"waterline/internal/pkg/guard"
)

var ErrSubmitRatingCommandIsNotConstructed = errors.New(
	"SubmitRatingCommand must be created via NewSubmitRatingCommand constructor",
)

// SubmitRatingCommand rates a delivered order. Review and categories are optional.
type SubmitRatingCommand struct { //nolint:recvcheck //using for validation
	ratingID   kernel.UUID
	orderID    kernel.UUID
	requester  kernel.Actor
	score      int
	review     string
	categories rating.Categories

	guard guard.ConstructorGuard
}

func NewSubmitRatingCommand(
	ratingID, orderID kernel.UUID,
	requester kernel.Actor,
	score int,
	review string,
	categories rating.Categories,
) (SubmitRatingCommand, error) {
	if err := errors.Join(ratingID.Validate(), orderID.Validate(), requester.Validate()); err != nil {
		return SubmitRatingCommand{}, err
	}

	return SubmitRatingCommand{
		ratingID:   ratingID,
		orderID:    orderID,
		requester:  requester,
		score:      score,
		review:     review,
		categories: categories.Clone(),
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c SubmitRatingCommand) Validate() error {
	return c.guard.Validate(ErrSubmitRatingCommandIsNotConstructed)
}

func (c SubmitRatingCommand) RatingID() kernel.UUID {
	return c.ratingID
}

func (c SubmitRatingCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c SubmitRatingCommand) Requester() kernel.Actor {
	return c.requester
}

func (c SubmitRatingCommand) Score() int {
	return c.score
}

func (c SubmitRatingCommand) Review() string {
	return c.review
}

func (c SubmitRatingCommand) Categories() rating.Categories {
	return c.categories.Clone()
}
