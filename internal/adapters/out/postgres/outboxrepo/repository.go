package outboxrepo

import (
	"context"
	"time"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/outbox"
	"waterline/internal/core/ports"
	"waterline/internal/pkg/errs"

	"gorm.io/gorm"
)

type GormOutboxRepository struct {
	db *gorm.DB
}

func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

func (r *GormOutboxRepository) Add(ctx context.Context, message outbox.Message) error {
	if err := message.Validate(); err != nil {
		return err
	}

	dto := fromDomain(message)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return errs.NewRepositoryFailureError("add outbox message", err)
	}
	return nil
}

// GetUnpublished returns the oldest unpublished messages first.
func (r *GormOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]outbox.Message, error) {
	if limit < 1 {
		return nil, errs.NewValueIsOutOfRangeError("limit", limit, 1, "unbounded")
	}

	var dtos []MessageDTO
	if err := r.db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("occurred_at, id").
		Limit(limit).
		Find(&dtos).Error; err != nil {
		return nil, errs.NewRepositoryFailureError("list unpublished messages", err)
	}

	messages := make([]outbox.Message, 0, len(dtos))
	for _, dto := range dtos {
		m, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, nil
}

// MarkPublished is idempotent: a message already marked keeps its first
// publish time.
func (r *GormOutboxRepository) MarkPublished(ctx context.Context, id kernel.UUID, at time.Time) error {
	if err := id.Validate(); err != nil {
		return err
	}
	if at.IsZero() {
		return errs.NewValueIsRequiredError("published at")
	}

	result := r.db.WithContext(ctx).
		Model(&MessageDTO{}).
		Where("id = ? AND published_at IS NULL", id.Bytes()).
		UpdateColumn("published_at", at)
	if result.Error != nil {
		return errs.NewRepositoryFailureError("mark message published", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&MessageDTO{}).Where("id = ?", id.Bytes()).Count(&count).Error; err != nil {
		return errs.NewRepositoryFailureError("count outbox message", err)
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("outbox message", id.String())
	}
	return nil
}

var _ ports.OutboxRepository = (*GormOutboxRepository)(nil)
