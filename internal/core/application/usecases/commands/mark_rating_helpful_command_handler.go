package commands

import (
	"context"
)

// MarkRatingHelpfulCommandHandler counts each voter once per rating.
// A repeated vote is not an error and writes nothing.
type MarkRatingHelpfulCommandHandler struct {
	uowFactory RatingUoWFactory
}

func NewMarkRatingHelpfulCommandHandler(uowFactory RatingUoWFactory) MarkRatingHelpfulCommandHandler {
	return MarkRatingHelpfulCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle returns the helpful count after the vote.
func (h MarkRatingHelpfulCommandHandler) Handle(ctx context.Context, cmd MarkRatingHelpfulCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	ratingRepo := uow.RatingRepository()
	voted, err := ratingRepo.GetForUpdate(ctx, cmd.RatingID())
	if err != nil {
		return 0, err
	}

	added, err := voted.MarkHelpful(cmd.Voter().ID())
	if err != nil {
		return 0, err
	}
	if !added {
		return voted.HelpfulCount(), nil
	}

	if err = ratingRepo.Update(ctx, voted); err != nil {
		return 0, err
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	return voted.HelpfulCount(), nil
}
