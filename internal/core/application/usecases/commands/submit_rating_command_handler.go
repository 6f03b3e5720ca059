package commands

import (
	"context"
	"fmt"
	"time"

	"waterline/internal/core/domain/model/order"
	"waterline/internal/core/domain/model/outbox"
	"waterline/internal/core/domain/model/rating"
	"waterline/internal/pkg/keylock"
)

// SubmitRatingCommandHandler records a rating and folds it into the
// fulfiller's summary in one transaction. Summary updates for the same
// fulfiller are serialized twice: by an in-process key lock and by a row
// lock on the summary, so concurrent submissions never lose an increment.
type SubmitRatingCommandHandler struct {
	uowFactory RatingUoWFactory
	workflow   order.Workflow
	locks      *keylock.KeyLock
}

func NewSubmitRatingCommandHandler(
	uowFactory RatingUoWFactory,
	workflow order.Workflow,
	locks *keylock.KeyLock,
) SubmitRatingCommandHandler {
	if locks == nil {
		locks = keylock.New()
	}
	return SubmitRatingCommandHandler{
		uowFactory: uowFactory,
		workflow:   workflow,
		locks:      locks,
	}
}

// Handle fails with errs.ErrObjectNotFound, errs.ErrForbidden,
// rating.ErrOrderNotDelivered or rating.ErrDuplicateRating, in that order of checks.
func (h SubmitRatingCommandHandler) Handle(ctx context.Context, cmd SubmitRatingCommand) (*rating.Rating, error) {
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

	rated, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	submitted, err := rating.NewRating(cmd.RatingID(), rated, h.workflow, cmd.Requester(),
		cmd.Score(), cmd.Review(), cmd.Categories(), now)
	if err != nil {
		return nil, err
	}

	ratingRepo := uow.RatingRepository()
	exists, err := ratingRepo.ExistsForOrder(ctx, rated.ID())
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: order %s", rating.ErrDuplicateRating, rated.ID())
	}

	unlock := h.locks.Lock(rated.FulfillerID().String())
	defer unlock()

	summaryRepo := uow.FulfillerSummaryRepository()
	summary, err := summaryRepo.GetForUpdate(ctx, rated.FulfillerID())
	if err != nil {
		return nil, err
	}

	if err = ratingRepo.Add(ctx, submitted); err != nil {
		return nil, err
	}

	if err = summary.Apply(submitted, now); err != nil {
		return nil, err
	}

	if err = summaryRepo.Save(ctx, summary); err != nil {
		return nil, err
	}

	msg, err := outbox.NewMessage(rating.NewSubmittedEvent(submitted, summary, now), now)
	if err != nil {
		return nil, err
	}

	if err = uow.OutboxRepository().Add(ctx, msg); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return submitted, nil
}
