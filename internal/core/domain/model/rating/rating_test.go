package rating_test

import (
	"strings"
	"testing"
	"time"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/order"
	"waterline/internal/core/domain/model/rating"
	"waterline/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)

type fixture struct {
	requester kernel.Actor
	fulfiller kernel.Actor
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	requester, err := kernel.NewActor(kernel.NewUUID(), kernel.Requester)
	require.NoError(t, err)
	fulfiller, err := kernel.NewActor(kernel.NewUUID(), kernel.Fulfiller)
	require.NoError(t, err)
	return fixture{requester: requester, fulfiller: fulfiller}
}

func (f fixture) order(t *testing.T, status order.Status) *order.Order {
	t.Helper()
	item, err := order.NewItem(decimal.NewFromInt(10), order.Liters)
	require.NoError(t, err)
	pricing, err := order.NewPricing(item, decimal.NewFromInt(1), decimal.Zero, "USD")
	require.NoError(t, err)
	coords, err := kernel.NewCoordinates(-1.28, 36.82)
	require.NoError(t, err)
	dest, err := order.NewDestination(coords, "Kenyatta Ave 5", "")
	require.NoError(t, err)

	o, err := order.RestoreOrder(order.State{
		ID:          kernel.NewUUID(),
		RequesterID: f.requester.ID(),
		FulfillerID: f.fulfiller.ID(),
		Item:        item,
		Pricing:     pricing,
		Destination: dest,
		Payment:     order.Payment{Method: order.Cash, Status: order.PaymentPaid},
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)
	return o
}

func (f fixture) rating(t *testing.T, score int, categories rating.Categories) *rating.Rating {
	t.Helper()
	r, err := rating.NewRating(kernel.NewUUID(), f.order(t, order.Delivered), order.PipelineWorkflow,
		f.requester, score, "", categories, now)
	require.NoError(t, err)
	return r
}

func TestNewCategories(t *testing.T) {
	c, err := rating.NewCategories(map[string]int{"waterQuality": 5, "pricing": 3})
	require.NoError(t, err)
	assert.Equal(t, rating.Categories{rating.WaterQuality: 5, rating.PricingValue: 3}, c)

	_, err = rating.NewCategories(map[string]int{"taste": 4})
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)

	_, err = rating.NewCategories(map[string]int{"communication": 0})
	assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

	c, err = rating.NewCategories(nil)
	require.NoError(t, err)
	assert.Empty(t, c)
}

func TestNewRating(t *testing.T) {
	f := newFixture(t)

	t.Run("should rate a delivered order", func(t *testing.T) {
		o := f.order(t, order.Delivered)

		r, err := rating.NewRating(kernel.NewUUID(), o, order.PipelineWorkflow, f.requester,
			4, "  fast and cold  ", rating.Categories{rating.DeliverySpeed: 5}, now)

		require.NoError(t, err)
		assert.True(t, r.OrderID().IsEqual(o.ID()))
		assert.True(t, r.FulfillerID().IsEqual(f.fulfiller.ID()))
		assert.Equal(t, 4, r.Score())
		assert.Equal(t, "fast and cold", r.Review())
		assert.Equal(t, rating.Categories{rating.DeliverySpeed: 5}, r.Categories())
		assert.Zero(t, r.HelpfulCount())
		assert.Nil(t, r.Response())
	})

	t.Run("only the requester may rate", func(t *testing.T) {
		_, err := rating.NewRating(kernel.NewUUID(), f.order(t, order.Delivered), order.PipelineWorkflow,
			f.fulfiller, 5, "", nil, now)

		assert.ErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("order must be in the workflow's delivered status", func(t *testing.T) {
		for _, tc := range []struct {
			workflow order.Workflow
			status   order.Status
		}{
			{order.PipelineWorkflow, order.InTransit},
			{order.PipelineWorkflow, order.Cancelled},
			{order.PipelineWorkflow, order.Completed},
			{order.SimpleWorkflow, order.Delivered},
		} {
			_, err := rating.NewRating(kernel.NewUUID(), f.order(t, tc.status), tc.workflow,
				f.requester, 5, "", nil, now)

			assert.ErrorIs(t, err, rating.ErrOrderNotDelivered, "%s/%s", tc.workflow.Name(), tc.status)
		}

		_, err := rating.NewRating(kernel.NewUUID(), f.order(t, order.Completed), order.SimpleWorkflow,
			f.requester, 5, "", nil, now)
		assert.NoError(t, err)
	})

	t.Run("should validate score and review", func(t *testing.T) {
		o := f.order(t, order.Delivered)

		_, err := rating.NewRating(kernel.NewUUID(), o, order.PipelineWorkflow, f.requester,
			6, strings.Repeat("a", rating.MaxReviewLength+1), rating.Categories{rating.PricingValue: 9}, now)

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		assert.ErrorContains(t, err, "score is 6")
		assert.ErrorContains(t, err, "review length")
		assert.ErrorContains(t, err, "pricing is 9")
	})
}

func TestRating_MarkHelpful(t *testing.T) {
	f := newFixture(t)
	r := f.rating(t, 5, nil)
	voter := kernel.NewUUID()

	added, err := r.MarkHelpful(voter)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = r.MarkHelpful(voter)
	require.NoError(t, err)
	assert.False(t, added)

	added, err = r.MarkHelpful(kernel.NewUUID())
	require.NoError(t, err)
	assert.True(t, added)

	assert.Equal(t, 2, r.HelpfulCount())
}

func TestRating_AddResponse(t *testing.T) {
	f := newFixture(t)

	t.Run("rated fulfiller may respond once", func(t *testing.T) {
		r := f.rating(t, 3, nil)

		require.NoError(t, r.AddResponse(f.fulfiller, " thanks, fixed the tap ", now))
		require.NotNil(t, r.Response())
		assert.Equal(t, rating.Response{Text: "thanks, fixed the tap", RespondedAt: now}, *r.Response())

		err := r.AddResponse(f.fulfiller, "again", now)
		assert.ErrorIs(t, err, errs.ErrForbidden)
		assert.ErrorIs(t, err, rating.ErrResponseAlreadyExists)
		assert.Equal(t, "thanks, fixed the tap", r.Response().Text)
	})

	t.Run("anyone else is forbidden", func(t *testing.T) {
		r := f.rating(t, 3, nil)
		other, err := kernel.NewActor(kernel.NewUUID(), kernel.Fulfiller)
		require.NoError(t, err)

		assert.ErrorIs(t, r.AddResponse(other, "hi", now), errs.ErrForbidden)
		assert.ErrorIs(t, r.AddResponse(f.requester, "hi", now), errs.ErrForbidden)
		assert.Nil(t, r.Response())
	})

	t.Run("should validate the text", func(t *testing.T) {
		r := f.rating(t, 3, nil)

		assert.ErrorIs(t, r.AddResponse(f.fulfiller, "   ", now), errs.ErrValueIsRequired)
		assert.ErrorIs(t, r.AddResponse(f.fulfiller, strings.Repeat("b", 501), now), errs.ErrValueIsOutOfRange)
	})
}
