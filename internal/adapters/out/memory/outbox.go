package memory

import (
	"context"
	"errors"
	"time"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/outbox"
	"waterline/internal/pkg/errs"
)

type OutboxRepository struct {
	uow *UnitOfWork
}

func (r *OutboxRepository) Add(_ context.Context, message outbox.Message) error {
	if err := message.Validate(); err != nil {
		return err
	}
	return r.uow.exec(func(d *dataset) error {
		d.outbox = append(d.outbox, message)
		return nil
	})
}

func (r *OutboxRepository) GetUnpublished(_ context.Context, limit int) ([]outbox.Message, error) {
	if limit < 1 {
		return nil, errs.NewValueIsOutOfRangeError("limit", limit, 1, "unbounded")
	}

	messages := make([]outbox.Message, 0, limit)
	r.uow.store.read(func(d *dataset) {
		for _, m := range d.outbox {
			if len(messages) == limit {
				return
			}
			if !m.IsPublished() {
				messages = append(messages, m)
			}
		}
	})
	return messages, nil
}

func (r *OutboxRepository) MarkPublished(_ context.Context, id kernel.UUID, at time.Time) error {
	if err := id.Validate(); err != nil {
		return err
	}
	if at.IsZero() {
		return errs.NewValueIsRequiredError("published at")
	}

	return r.uow.exec(func(d *dataset) error {
		for i, m := range d.outbox {
			if !m.ID.IsEqual(id) {
				continue
			}
			if m.IsPublished() {
				return nil
			}
			published := at
			m.PublishedAt = &published
			d.outbox[i] = m
			return nil
		}
		return errs.NewObjectNotFoundErrorWithCause("outbox message", id.String(), errors.New("unknown message"))
	})
}
