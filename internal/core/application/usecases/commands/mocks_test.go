package commands_test

import (
	"context"
	"testing"
	"time"

	"waterline/internal/core/application/usecases/commands"
	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/order"
	"waterline/internal/core/domain/model/outbox"
	"waterline/internal/core/domain/model/rating"
	"waterline/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateTracking(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

type MockRatingRepository struct{ mock.Mock }

func (m *MockRatingRepository) Add(ctx context.Context, r *rating.Rating) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRatingRepository) Get(ctx context.Context, id kernel.UUID) (*rating.Rating, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rating.Rating), args.Error(1)
}

func (m *MockRatingRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*rating.Rating, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rating.Rating), args.Error(1)
}

func (m *MockRatingRepository) ExistsForOrder(ctx context.Context, orderID kernel.UUID) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRatingRepository) Update(ctx context.Context, r *rating.Rating) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

type MockSummaryRepository struct{ mock.Mock }

func (m *MockSummaryRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*rating.FulfillerSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rating.FulfillerSummary), args.Error(1)
}

func (m *MockSummaryRepository) Get(ctx context.Context, id kernel.UUID) (*rating.FulfillerSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rating.FulfillerSummary), args.Error(1)
}

func (m *MockSummaryRepository) Save(ctx context.Context, s *rating.FulfillerSummary) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

type MockOutboxRepository struct{ mock.Mock }

func (m *MockOutboxRepository) Add(ctx context.Context, msg outbox.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]outbox.Message, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]outbox.Message), args.Error(1)
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id kernel.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockUoW satisfies both OrderUoW and RatingUoW.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) RatingRepository() ports.RatingRepository {
	args := m.Called()
	return args.Get(0).(ports.RatingRepository)
}

func (m *MockUoW) FulfillerSummaryRepository() ports.FulfillerSummaryRepository {
	args := m.Called()
	return args.Get(0).(ports.FulfillerSummaryRepository)
}

func (m *MockUoW) OutboxRepository() ports.OutboxRepository {
	args := m.Called()
	return args.Get(0).(ports.OutboxRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockRatingUoWFactory struct{ mock.Mock }

func (m *MockRatingUoWFactory) Create() commands.RatingUoW {
	args := m.Called()
	return args.Get(0).(commands.RatingUoW)
}

type MockStatusNotifier struct{ mock.Mock }

func (m *MockStatusNotifier) BroadcastStatus(ctx context.Context, orderID kernel.UUID, status order.Status) {
	m.Called(ctx, orderID, status)
}

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

func newItem(t *testing.T) order.Item {
	t.Helper()
	item, err := order.NewItem(decimal.NewFromInt(20), order.Liters)
	require.NoError(t, err)
	return item
}

func newDestination(t *testing.T) order.Destination {
	t.Helper()
	coords, err := kernel.NewCoordinates(40.7128, -74.0060)
	require.NoError(t, err)
	dest, err := order.NewDestination(coords, "1 Centre St", "")
	require.NoError(t, err)
	return dest
}

func orderInStatus(t *testing.T, p parties, status order.Status) *order.Order {
	t.Helper()
	item := newItem(t)
	pricing, err := order.NewPricing(item, decimal.NewFromInt(1), decimal.NewFromInt(2), "USD")
	require.NoError(t, err)
	o, err := order.RestoreOrder(order.State{
		ID:          kernel.NewUUID(),
		RequesterID: p.requester.ID(),
		FulfillerID: p.fulfiller.ID(),
		Item:        item,
		Pricing:     pricing,
		Destination: newDestination(t),
		Payment:     order.Payment{Method: order.Card, Status: order.PaymentPaid},
		Status:      status,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)
	return o
}

func ratingFor(t *testing.T, p parties, score int) *rating.Rating {
	t.Helper()
	r, err := rating.NewRating(kernel.NewUUID(), orderInStatus(t, p, order.Delivered), order.PipelineWorkflow,
		p.requester, score, "", nil, time.Now().UTC())
	require.NoError(t, err)
	return r
}

type MockOutboxUoWFactory struct{ mock.Mock }

func (m *MockOutboxUoWFactory) Create() commands.OutboxUoW {
	args := m.Called()
	return args.Get(0).(commands.OutboxUoW)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, message outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}
