package http

import (
	"time"

	"waterline/internal/core/application/tracking"
	"waterline/internal/core/application/usecases/queries"
	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/order"
	"waterline/internal/core/domain/model/rating"

	"github.com/shopspring/decimal"
)

type CreateOrderRequest struct {
	FulfillerID   string             `json:"fulfillerId"`
	Quantity      decimal.Decimal    `json:"quantity"`
	Unit          string             `json:"unit"`
	UnitPrice     decimal.Decimal    `json:"unitPrice"`
	DeliveryFee   decimal.Decimal    `json:"deliveryFee"`
	Currency      string             `json:"currency"`
	Destination   DestinationRequest `json:"destination"`
	PaymentMethod string             `json:"paymentMethod"`
}

type DestinationRequest struct {
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	Address      string  `json:"address"`
	Instructions string  `json:"instructions,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type SubmitRatingRequest struct {
	OrderID    string         `json:"orderId"`
	Score      int            `json:"score"`
	Review     string         `json:"review,omitempty"`
	Categories map[string]int `json:"categories,omitempty"`
}

type RespondRequest struct {
	Text string `json:"text"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Pricing struct {
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Total       decimal.Decimal `json:"total"`
	Currency    string          `json:"currency"`
}

type Destination struct {
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	Address      string  `json:"address"`
	Instructions string  `json:"instructions,omitempty"`
}

type Payment struct {
	Method string `json:"method"`
	Status string `json:"status"`
}

type TrackingSnapshot struct {
	OrderID     string       `json:"orderId"`
	Status      string       `json:"status"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	DistanceKm  *float64     `json:"distanceKm,omitempty"`
	ETA         *time.Time   `json:"eta,omitempty"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Sequence    uint64       `json:"sequence"`
}

type Order struct {
	ID          string            `json:"id"`
	RequesterID string            `json:"requesterId"`
	FulfillerID string            `json:"fulfillerId"`
	Status      string            `json:"status"`
	Quantity    decimal.Decimal   `json:"quantity"`
	Unit        string            `json:"unit"`
	Pricing     Pricing           `json:"pricing"`
	Destination Destination       `json:"destination"`
	Payment     Payment           `json:"payment"`
	Tracking    *TrackingSnapshot `json:"tracking,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type ActiveDestination struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

type ActiveOrder struct {
	ID          string            `json:"id"`
	RequesterID string            `json:"requesterId"`
	FulfillerID string            `json:"fulfillerId"`
	Status      string            `json:"status"`
	Destination ActiveDestination `json:"destination"`
	DistanceKm  *float64          `json:"distanceKm,omitempty"`
	ETA         *time.Time        `json:"eta,omitempty"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type RatingResponse struct {
	Text        string    `json:"text"`
	RespondedAt time.Time `json:"respondedAt"`
}

type Rating struct {
	ID           string          `json:"id"`
	OrderID      string          `json:"orderId"`
	RequesterID  string          `json:"requesterId"`
	FulfillerID  string          `json:"fulfillerId"`
	Score        int             `json:"score"`
	Review       string          `json:"review,omitempty"`
	Categories   map[string]int  `json:"categories,omitempty"`
	HelpfulCount int             `json:"helpfulCount"`
	Response     *RatingResponse `json:"response,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type RatingPage struct {
	Ratings          []Rating           `json:"ratings"`
	Total            int64              `json:"total"`
	TotalPages       int                `json:"totalPages"`
	CurrentPage      int                `json:"currentPage"`
	CategoryAverages map[string]float64 `json:"categoryAverages"`
}

type RatingStats struct {
	FulfillerID      string             `json:"fulfillerId"`
	TotalRatings     int                `json:"totalRatings"`
	AverageRating    float64            `json:"averageRating"`
	Distribution     map[int]int        `json:"distribution"`
	CategoryAverages map[string]float64 `json:"categoryAverages"`
}

type HelpfulCount struct {
	HelpfulCount int `json:"helpfulCount"`
}

func coordinatesOf(c kernel.Coordinates) *Coordinates {
	return &Coordinates{Lat: c.Latitude(), Lng: c.Longitude()}
}

func activeOrdersOf(orders []queries.ActiveOrder) []ActiveOrder {
	out := make([]ActiveOrder, 0, len(orders))
	for _, o := range orders {
		out = append(out, ActiveOrder{
			ID:          o.ID.String(),
			RequesterID: o.RequesterID.String(),
			FulfillerID: o.FulfillerID.String(),
			Status:      o.Status.String(),
			Destination: ActiveDestination{
				Lat:     o.Destination.Latitude(),
				Lng:     o.Destination.Longitude(),
				Address: o.Address,
			},
			DistanceKm: o.DistanceKm,
			ETA:        o.ETA,
			UpdatedAt:  o.UpdatedAt,
		})
	}
	return out
}

func snapshotOf(s tracking.Snapshot) TrackingSnapshot {
	out := TrackingSnapshot{
		OrderID:    s.OrderID.String(),
		Status:     s.Status.String(),
		DistanceKm: s.DistanceKm,
		ETA:        s.ETA,
		UpdatedAt:  s.UpdatedAt,
		Sequence:   s.Sequence,
	}
	if s.Location != nil {
		out.Coordinates = coordinatesOf(*s.Location)
	}
	return out
}

func orderOf(o *order.Order) Order {
	pricing := o.Pricing()
	destination := o.Destination()
	out := Order{
		ID:          o.ID().String(),
		RequesterID: o.RequesterID().String(),
		FulfillerID: o.FulfillerID().String(),
		Status:      o.Status().String(),
		Quantity:    o.Item().Quantity(),
		Unit:        string(o.Item().Unit()),
		Pricing: Pricing{
			UnitPrice:   pricing.UnitPrice(),
			DeliveryFee: pricing.DeliveryFee(),
			Total:       pricing.Total(),
			Currency:    pricing.Currency(),
		},
		Destination: Destination{
			Lat:          destination.Coordinates().Latitude(),
			Lng:          destination.Coordinates().Longitude(),
			Address:      destination.Address(),
			Instructions: destination.Instructions(),
		},
		Payment: Payment{
			Method: string(o.Payment().Method),
			Status: string(o.Payment().Status),
		},
		CreatedAt: o.CreatedAt(),
		UpdatedAt: o.UpdatedAt(),
	}
	if o.Tracking() != nil {
		snapshot := snapshotOf(tracking.SnapshotOf(o))
		out.Tracking = &snapshot
	}
	return out
}

func ratingOf(r *rating.Rating) Rating {
	out := Rating{
		ID:           r.ID().String(),
		OrderID:      r.OrderID().String(),
		RequesterID:  r.RequesterID().String(),
		FulfillerID:  r.FulfillerID().String(),
		Score:        r.Score(),
		Review:       r.Review(),
		HelpfulCount: r.HelpfulCount(),
		CreatedAt:    r.CreatedAt(),
	}
	if categories := r.Categories(); len(categories) > 0 {
		out.Categories = make(map[string]int, len(categories))
		for c, score := range categories {
			out.Categories[string(c)] = score
		}
	}
	if resp := r.Response(); resp != nil {
		out.Response = &RatingResponse{Text: resp.Text, RespondedAt: resp.RespondedAt}
	}
	return out
}

func categoryAveragesOf(in map[rating.Category]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for c, avg := range in {
		out[string(c)] = avg
	}
	return out
}

func ratingPageOf(page queries.GetFulfillerRatingsQueryResponse) RatingPage {
	out := RatingPage{
		Ratings:          make([]Rating, 0, len(page.Ratings)),
		Total:            page.Total,
		TotalPages:       page.TotalPages,
		CurrentPage:      page.CurrentPage,
		CategoryAverages: categoryAveragesOf(page.CategoryAverages),
	}
	for _, r := range page.Ratings {
		out.Ratings = append(out.Ratings, ratingOf(r))
	}
	return out
}

func ratingStatsOf(stats queries.GetFulfillerRatingStatsQueryResponse) RatingStats {
	return RatingStats{
		FulfillerID:      stats.FulfillerID.String(),
		TotalRatings:     stats.TotalRatings,
		AverageRating:    stats.AverageRating,
		Distribution:     stats.Distribution,
		CategoryAverages: categoryAveragesOf(stats.CategoryAverages),
	}
}
