package commands

import (
	"context"
	"time"

	"waterline/internal/core/domain/model/rating"
)

// AddFulfillerResponseCommandHandler lets the rated fulfiller reply once.
type AddFulfillerResponseCommandHandler struct {
	uowFactory RatingUoWFactory
}

func NewAddFulfillerResponseCommandHandler(uowFactory RatingUoWFactory) AddFulfillerResponseCommandHandler {
	return AddFulfillerResponseCommandHandler{
		uowFactory: uowFactory,
	}
}

func (h AddFulfillerResponseCommandHandler) Handle(
	ctx context.Context,
	cmd AddFulfillerResponseCommand,
) (*rating.Rating, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	ratingRepo := uow.RatingRepository()
	answered, err := ratingRepo.GetForUpdate(ctx, cmd.RatingID())
	if err != nil {
		return nil, err
	}

	if err = answered.AddResponse(cmd.Fulfiller(), cmd.Text(), time.Now().UTC()); err != nil {
		return nil, err
	}

	if err = ratingRepo.Update(ctx, answered); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return answered, nil
}
