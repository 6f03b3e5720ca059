package commands

import (
	"errors"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/pkg/guard"
)

var ErrAddFulfillerResponseCommandIsNotConstructed = errors.New(
	"AddFulfillerResponseCommand must be created via NewAddFulfillerResponseCommand constructor",
)

type AddFulfillerResponseCommand struct { //nolint:recvcheck //using for validation
	ratingID  kernel.UUID
	fulfiller kernel.Actor
	text      string

	guard guard.ConstructorGuard
}

func NewAddFulfillerResponseCommand(
	ratingID kernel.UUID,
	fulfiller kernel.Actor,
	text string,
) (AddFulfillerResponseCommand, error) {
	if err := errors.Join(ratingID.Validate(), fulfiller.Validate()); err != nil {
		return AddFulfillerResponseCommand{}, err
	}

	return AddFulfillerResponseCommand{
		ratingID:  ratingID,
		fulfiller: fulfiller,
		text:      text,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c AddFulfillerResponseCommand) Validate() error {
	return c.guard.Validate(ErrAddFulfillerResponseCommandIsNotConstructed)
}

func (c AddFulfillerResponseCommand) RatingID() kernel.UUID {
	return c.ratingID
}

func (c AddFulfillerResponseCommand) Fulfiller() kernel.Actor {
	return c.fulfiller
}

func (c AddFulfillerResponseCommand) Text() string {
	return c.text
}
