// Package summaryrepo persists the per-fulfiller rating roll-up.
package summaryrepo

import (
	"time"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/rating"

	"github.com/google/uuid"
)

// SummaryDTO is the row layout of the fulfiller_summaries table. Category
// tallies are stored as one JSON document keyed by category name.
type SummaryDTO struct {
	FulfillerID uuid.UUID               `gorm:"type:uuid;primaryKey"`
	ScoreTotal  int                     `gorm:"not null;default:0"`
	ScoreCount  int                     `gorm:"not null;default:0"`
	Categories  map[string]rating.Tally `gorm:"type:jsonb;serializer:json"`
	UpdatedAt   time.Time               `gorm:"autoUpdateTime:false"`
}

func (SummaryDTO) TableName() string {
	return "fulfiller_summaries"
}

func fromDomain(s *rating.FulfillerSummary) SummaryDTO {
	categories := make(map[string]rating.Tally, len(s.Categories()))
	for c, tally := range s.Categories() {
		categories[string(c)] = tally
	}
	return SummaryDTO{
		FulfillerID: s.FulfillerID().Bytes(),
		ScoreTotal:  s.Overall().Total,
		ScoreCount:  s.Overall().Count,
		Categories:  categories,
		UpdatedAt:   s.UpdatedAt(),
	}
}

func toDomain(dto SummaryDTO) (*rating.FulfillerSummary, error) {
	fulfillerID, err := kernel.UUIDFromBytes(dto.FulfillerID[:])
	if err != nil {
		return nil, err
	}

	categories := make(map[rating.Category]rating.Tally, len(dto.Categories))
	for name, tally := range dto.Categories {
		categories[rating.Category(name)] = tally
	}

	return rating.RestoreFulfillerSummary(
		fulfillerID,
		rating.Tally{Total: dto.ScoreTotal, Count: dto.ScoreCount},
		categories,
		dto.UpdatedAt.UTC(),
	)
}
