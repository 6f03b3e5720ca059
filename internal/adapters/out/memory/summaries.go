package memory

import (
	"context"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/rating"
)

type FulfillerSummaryRepository struct {
	uow *UnitOfWork
}

func (r *FulfillerSummaryRepository) Get(_ context.Context, fulfillerID kernel.UUID) (*rating.FulfillerSummary, error) {
	if err := fulfillerID.Validate(); err != nil {
		return nil, err
	}

	var (
		record summaryRecord
		ok     bool
	)
	r.uow.store.read(func(d *dataset) {
		record, ok = d.summaries[fulfillerID]
	})
	if !ok {
		return rating.NewFulfillerSummary(fulfillerID)
	}
	return rating.RestoreFulfillerSummary(fulfillerID, record.overall, record.categories, record.updatedAt)
}

func (r *FulfillerSummaryRepository) GetForUpdate(ctx context.Context, fulfillerID kernel.UUID) (*rating.FulfillerSummary, error) {
	if err := fulfillerID.Validate(); err != nil {
		return nil, err
	}
	r.uow.lock("summary:" + fulfillerID.String())
	return r.Get(ctx, fulfillerID)
}

func (r *FulfillerSummaryRepository) Save(_ context.Context, summary *rating.FulfillerSummary) error {
	if err := summary.Validate(); err != nil {
		return err
	}

	id := summary.FulfillerID()
	record := summaryRecord{
		overall:    summary.Overall(),
		categories: summary.Categories(),
		updatedAt:  summary.UpdatedAt(),
	}
	return r.uow.exec(func(d *dataset) error {
		d.summaries[id] = record
		return nil
	})
}
