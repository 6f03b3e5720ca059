// Package outboxrepo stores integration events written in the same
// transaction as the change that produced them.
package outboxrepo

import (
	"time"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/outbox"

	"github.com/google/uuid"
)

type MessageDTO struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RoutingKey  string     `gorm:"type:varchar(128);not null"`
	Payload     string     `gorm:"type:jsonb;not null"`
	OccurredAt  time.Time  `gorm:"not null;index"`
	PublishedAt *time.Time `gorm:"index"`
}

func (MessageDTO) TableName() string {
	return "outbox_messages"
}

func fromDomain(m outbox.Message) MessageDTO {
	return MessageDTO{
		ID:          m.ID.Bytes(),
		RoutingKey:  m.RoutingKey,
		Payload:     string(m.Payload),
		OccurredAt:  m.OccurredAt,
		PublishedAt: m.PublishedAt,
	}
}

func toDomain(dto MessageDTO) (outbox.Message, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return outbox.Message{}, err
	}

	var publishedAt *time.Time
	if dto.PublishedAt != nil {
		at := dto.PublishedAt.UTC()
		publishedAt = &at
	}

	m := outbox.Message{
		ID:          id,
		RoutingKey:  dto.RoutingKey,
		Payload:     []byte(dto.Payload),
		OccurredAt:  dto.OccurredAt.UTC(),
		PublishedAt: publishedAt,
	}
	return m, m.Validate()
}
