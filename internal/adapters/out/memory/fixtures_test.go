package memory_test

import (
	"testing"
	"time"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/order"
	"waterline/internal/core/domain/model/rating"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type parties struct {
	requester kernel.Actor
	fulfiller kernel.Actor
}

func newParties(t *testing.T) parties {
	t.Helper()
	requester, err := kernel.NewActor(kernel.NewUUID(), kernel.Requester)
	require.NoError(t, err)
	fulfiller, err := kernel.NewActor(kernel.NewUUID(), kernel.Fulfiller)
	require.NoError(t, err)
	return parties{requester: requester, fulfiller: fulfiller}
}

func coords(t *testing.T, lat, lng float64) kernel.Coordinates {
	t.Helper()
	c, err := kernel.NewCoordinates(lat, lng)
	require.NoError(t, err)
	return c
}

func orderInStatus(t *testing.T, p parties, status order.Status) *order.Order {
	t.Helper()
	item, err := order.NewItem(decimal.NewFromInt(20), order.Liters)
	require.NoError(t, err)
	pricing, err := order.NewPricing(item, decimal.NewFromInt(1), decimal.NewFromInt(2), "USD")
	require.NoError(t, err)
	dest, err := order.NewDestination(coords(t, 40.7128, -74.0060), "1 Centre St", "")
	require.NoError(t, err)

	o, err := order.RestoreOrder(order.State{
		ID:          kernel.NewUUID(),
		RequesterID: p.requester.ID(),
		FulfillerID: p.fulfiller.ID(),
		Item:        item,
		Pricing:     pricing,
		Destination: dest,
		Payment:     order.Payment{Method: order.Cash, Status: order.PaymentPending},
		Status:      status,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)
	return o
}

func ratingAt(t *testing.T, p parties, score int, createdAt time.Time) *rating.Rating {
	t.Helper()
	r, err := rating.NewRating(kernel.NewUUID(), orderInStatus(t, p, order.Delivered), order.PipelineWorkflow,
		p.requester, score, "", nil, createdAt)
	require.NoError(t, err)
	return r
}
