// Package ratingrepo persists ratings and serves the paged rating views.
package ratingrepo

import (
	"errors"
	"time"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/rating"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// RatingDTO is the row layout of the ratings table. One rating per order is
// enforced by the unique index on order_id.
type RatingDTO struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	OrderID       uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	RequesterID   uuid.UUID      `gorm:"type:uuid;not null;index"`
	FulfillerID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_ratings_fulfiller_created,priority:1"`
	Score         int            `gorm:"type:smallint;not null;check:score BETWEEN 1 AND 5"`
	Review        string         `gorm:"type:varchar(500);not null;default:''"`
	Categories    map[string]int `gorm:"type:jsonb;serializer:json"`
	HelpfulVoters pq.StringArray `gorm:"type:text[]"`
	ResponseText  *string        `gorm:"type:varchar(500)"`
	RespondedAt   *time.Time
	CreatedAt     time.Time `gorm:"not null;autoCreateTime:false;index:idx_ratings_fulfiller_created,priority:2"`
}

func (RatingDTO) TableName() string {
	return "ratings"
}

func fromDomain(r *rating.Rating) RatingDTO {
	categories := make(map[string]int, len(r.Categories()))
	for c, score := range r.Categories() {
		categories[string(c)] = score
	}

	voters := make(pq.StringArray, 0, r.HelpfulCount())
	for _, voter := range r.HelpfulVoters() {
		voters = append(voters, voter.String())
	}

	dto := RatingDTO{
		ID:            r.ID().Bytes(),
		OrderID:       r.OrderID().Bytes(),
		RequesterID:   r.RequesterID().Bytes(),
		FulfillerID:   r.FulfillerID().Bytes(),
		Score:         r.Score(),
		Review:        r.Review(),
		Categories:    categories,
		HelpfulVoters: voters,
		CreatedAt:     r.CreatedAt(),
	}
	if resp := r.Response(); resp != nil {
		text, at := resp.Text, resp.RespondedAt
		dto.ResponseText = &text
		dto.RespondedAt = &at
	}
	return dto
}

func toDomain(dto RatingDTO) (*rating.Rating, error) {
	id, idErr := kernel.UUIDFromBytes(dto.ID[:])
	orderID, orderErr := kernel.UUIDFromBytes(dto.OrderID[:])
	requesterID, requesterErr := kernel.UUIDFromBytes(dto.RequesterID[:])
	fulfillerID, fulfillerErr := kernel.UUIDFromBytes(dto.FulfillerID[:])
	if err := errors.Join(idErr, orderErr, requesterErr, fulfillerErr); err != nil {
		return nil, err
	}

	categories, err := rating.NewCategories(dto.Categories)
	if err != nil {
		return nil, err
	}

	voters := make([]kernel.UUID, 0, len(dto.HelpfulVoters))
	for _, raw := range dto.HelpfulVoters {
		voter, voterErr := kernel.UUIDFromString(raw)
		if voterErr != nil {
			return nil, voterErr
		}
		voters = append(voters, voter)
	}

	var response *rating.Response
	if dto.ResponseText != nil {
		response = &rating.Response{Text: *dto.ResponseText}
		if dto.RespondedAt != nil {
			response.RespondedAt = dto.RespondedAt.UTC()
		}
	}

	return rating.RestoreRating(rating.State{
		ID:            id,
		OrderID:       orderID,
		RequesterID:   requesterID,
		FulfillerID:   fulfillerID,
		Score:         dto.Score,
		Review:        dto.Review,
		Categories:    categories,
		HelpfulVoters: voters,
		Response:      response,
		CreatedAt:     dto.CreatedAt.UTC(),
	})
}
