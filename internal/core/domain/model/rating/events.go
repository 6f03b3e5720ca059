package rating

import (
	"time"
)

const SubmittedRoutingKey = "rating.submitted"

// SubmittedEvent is published after a rating and its summary update commit.
type SubmittedEvent struct {
	RatingID         string               `json:"ratingId"`
	OrderID          string               `json:"orderId"`
	FulfillerID      string               `json:"fulfillerId"`
	Score            int                  `json:"score"`
	Categories       map[Category]int     `json:"categories,omitempty"`
	AverageRating    float64              `json:"averageRating"`
	TotalRatings     int                  `json:"totalRatings"`
	CategoryAverages map[Category]float64 `json:"categoryAverages,omitempty"`
	OccurredAt       time.Time            `json:"occurredAt"`
}

func (SubmittedEvent) RoutingKey() string {
	return SubmittedRoutingKey
}

func NewSubmittedEvent(r *Rating, s *FulfillerSummary, now time.Time) SubmittedEvent {
	return SubmittedEvent{
		RatingID:         r.ID().String(),
		OrderID:          r.OrderID().String(),
		FulfillerID:      r.FulfillerID().String(),
		Score:            r.Score(),
		Categories:       r.Categories(),
		AverageRating:    s.Average(),
		TotalRatings:     s.Count(),
		CategoryAverages: s.CategoryAverages(),
		OccurredAt:       now,
	}
}
