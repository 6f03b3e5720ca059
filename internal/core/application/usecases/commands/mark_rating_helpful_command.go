package commands

import (
	"errors"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/pkg/errs"
	"waterline/internal/pkg/guard"
)

var ErrMarkRatingHelpfulCommandIsNotConstructed = errors.New(
	"MarkRatingHelpfulCommand must be created via NewMarkRatingHelpfulCommand constructor",
)

// MarkRatingHelpfulCommand records a requester's helpful vote on a rating.
type MarkRatingHelpfulCommand struct { //nolint:recvcheck //using for validation
	ratingID kernel.UUID
	voter    kernel.Actor

	guard guard.ConstructorGuard
}

func NewMarkRatingHelpfulCommand(ratingID kernel.UUID, voter kernel.Actor) (MarkRatingHelpfulCommand, error) {
	if err := errors.Join(ratingID.Validate(), voter.Validate()); err != nil {
		return MarkRatingHelpfulCommand{}, err
	}
	if voter.Role() != kernel.Requester {
		return MarkRatingHelpfulCommand{}, errs.NewForbiddenError(voter.String(), "vote on ratings")
	}

	return MarkRatingHelpfulCommand{
		ratingID: ratingID,
		voter:    voter,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c MarkRatingHelpfulCommand) Validate() error {
	return c.guard.Validate(ErrMarkRatingHelpfulCommandIsNotConstructed)
}

func (c MarkRatingHelpfulCommand) RatingID() kernel.UUID {
	return c.ratingID
}

func (c MarkRatingHelpfulCommand) Voter() kernel.Actor {
	return c.voter
}
