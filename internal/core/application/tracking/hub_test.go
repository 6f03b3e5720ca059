package tracking_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"waterline/internal/adapters/out/memory"
	"waterline/internal/core/application/tracking"
	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/order"
	"waterline/internal/core/ports"
	"waterline/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	hub       *tracking.Hub
	orders    ports.OrderRepository
	requester kernel.Actor
	fulfiller kernel.Actor
	order     *order.Order
}

func newFixture(t *testing.T, status order.Status) fixture {
	t.Helper()
	requester, err := kernel.NewActor(kernel.NewUUID(), kernel.Requester)
	require.NoError(t, err)
	fulfiller, err := kernel.NewActor(kernel.NewUUID(), kernel.Fulfiller)
	require.NoError(t, err)

	item, err := order.NewItem(decimal.NewFromInt(20), order.Liters)
	require.NoError(t, err)
	pricing, err := order.NewPricing(item, decimal.NewFromInt(1), decimal.NewFromInt(2), "USD")
	require.NoError(t, err)
	dest, err := order.NewDestination(coords(t, 40.7505, -73.9934), "20 W 34th St", "")
	require.NoError(t, err)
	o, err := order.RestoreOrder(order.State{
		ID:          kernel.NewUUID(),
		RequesterID: requester.ID(),
		FulfillerID: fulfiller.ID(),
		Item:        item,
		Pricing:     pricing,
		Destination: dest,
		Payment:     order.Payment{Method: order.Cash, Status: order.PaymentPending},
		Status:      status,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)

	orders := memory.NewUnitOfWorkFactory(memory.NewStore()).Create().OrderRepository()
	require.NoError(t, orders.Add(t.Context(), o))

	hub, err := tracking.NewHub(orders)
	require.NoError(t, err)
	return fixture{hub: hub, orders: orders, requester: requester, fulfiller: fulfiller, order: o}
}

func coords(t *testing.T, lat, lng float64) kernel.Coordinates {
	t.Helper()
	c, err := kernel.NewCoordinates(lat, lng)
	require.NoError(t, err)
	return c
}

func receive(t *testing.T, sub *tracking.ChannelSubscriber) tracking.Message {
	t.Helper()
	select {
	case msg := <-sub.Messages():
		return msg
	case <-time.After(time.Second):
		t.Fatalf("subscriber %s received nothing", sub.ID())
		return tracking.Message{}
	}
}

func assertSilent(t *testing.T, sub *tracking.ChannelSubscriber) {
	t.Helper()
	select {
	case msg := <-sub.Messages():
		t.Fatalf("subscriber %s unexpectedly received %s", sub.ID(), msg.Event)
	default:
	}
}

func TestNewHub_RequiresRepository(t *testing.T) {
	_, err := tracking.NewHub(nil)
	require.Error(t, err)
}

func TestHub_PublishLocationReachesEveryViewer(t *testing.T) {
	f := newFixture(t, order.OutForDelivery)
	requesterView := tracking.NewChannelSubscriber("requester", 4)
	fulfillerView := tracking.NewChannelSubscriber("fulfiller", 4)
	f.hub.Subscribe(f.order.ID(), requesterView)
	f.hub.Subscribe(f.order.ID(), fulfillerView)

	snapshot, err := f.hub.PublishLocation(t.Context(), f.order.ID(), f.fulfiller, coords(t, 40.7128, -74.0060), 1)
	require.NoError(t, err)
	require.True(t, snapshot.HasLocation())
	assert.InDelta(t, 4.32, *snapshot.DistanceKm, 0.01)
	assert.Equal(t, uint64(1), snapshot.Sequence)

	for _, sub := range []*tracking.ChannelSubscriber{requesterView, fulfillerView} {
		msg := receive(t, sub)
		assert.Equal(t, tracking.EventLocationUpdated, msg.Event)
		assert.True(t, msg.OrderID.IsEqual(f.order.ID()))
		assert.InDelta(t, *snapshot.DistanceKm, *msg.Snapshot.DistanceKm, 1e-9)
	}

	stored, err := f.orders.Get(t.Context(), f.order.ID())
	require.NoError(t, err)
	require.NotNil(t, stored.Tracking())
	assert.InDelta(t, *snapshot.DistanceKm, stored.Tracking().DistanceKm(), 1e-9)
}

func TestHub_LateJoinerSeesCurrentSnapshot(t *testing.T) {
	f := newFixture(t, order.InTransit)
	first := tracking.NewChannelSubscriber("first", 4)
	f.hub.Subscribe(f.order.ID(), first)

	published, err := f.hub.PublishLocation(t.Context(), f.order.ID(), f.fulfiller, coords(t, 40.73, -74.0), 3)
	require.NoError(t, err)

	late := tracking.NewChannelSubscriber("late", 4)
	f.hub.Subscribe(f.order.ID(), late)

	current, err := f.hub.CurrentSnapshot(t.Context(), f.order.ID())
	require.NoError(t, err)
	assert.Equal(t, published.Sequence, current.Sequence)
	assert.Equal(t, published.Location, current.Location)
	assertSilent(t, late)
}

func TestHub_CurrentSnapshotLoadsUnwatchedOrder(t *testing.T) {
	f := newFixture(t, order.Confirmed)

	snapshot, err := f.hub.CurrentSnapshot(t.Context(), f.order.ID())
	require.NoError(t, err)
	assert.False(t, snapshot.HasLocation())
	assert.Equal(t, order.Confirmed, snapshot.Status)
	assert.True(t, snapshot.IsParty(f.requester))

	_, err = f.hub.CurrentSnapshot(t.Context(), kernel.NewUUID())
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestHub_StaleSequenceIsDroppedSilently(t *testing.T) {
	f := newFixture(t, order.OutForDelivery)
	viewer := tracking.NewChannelSubscriber("viewer", 4)
	f.hub.Subscribe(f.order.ID(), viewer)

	fresh, err := f.hub.PublishLocation(t.Context(), f.order.ID(), f.fulfiller, coords(t, 40.74, -73.99), 5)
	require.NoError(t, err)
	receive(t, viewer)

	stale, err := f.hub.PublishLocation(t.Context(), f.order.ID(), f.fulfiller, coords(t, 40.70, -74.01), 4)
	require.NoError(t, err)
	assert.Equal(t, fresh.Sequence, stale.Sequence)
	assert.Equal(t, fresh.Location, stale.Location)
	assertSilent(t, viewer)

	stored, err := f.orders.Get(t.Context(), f.order.ID())
	require.NoError(t, err)
	assert.Equal(t, uint64(5), stored.Tracking().Sequence())
}

func TestHub_UnsequencedUpdatesAlwaysApply(t *testing.T) {
	f := newFixture(t, order.OutForDelivery)

	_, err := f.hub.PublishLocation(t.Context(), f.order.ID(), f.fulfiller, coords(t, 40.74, -73.99), 2)
	require.NoError(t, err)
	snapshot, err := f.hub.PublishLocation(t.Context(), f.order.ID(), f.fulfiller, coords(t, 40.745, -73.995), 0)
	require.NoError(t, err)

	assert.InDelta(t, 40.745, snapshot.Location.Latitude(), 1e-9)
	assert.Equal(t, uint64(2), snapshot.Sequence)
}

func TestHub_PublishLocationRejectsNonFulfiller(t *testing.T) {
	f := newFixture(t, order.OutForDelivery)
	viewer := tracking.NewChannelSubscriber("viewer", 4)
	f.hub.Subscribe(f.order.ID(), viewer)

	_, err := f.hub.PublishLocation(t.Context(), f.order.ID(), f.requester, coords(t, 40.74, -73.99), 1)
	require.ErrorIs(t, err, errs.ErrForbidden)

	impostor, err := kernel.NewActor(kernel.NewUUID(), kernel.Fulfiller)
	require.NoError(t, err)
	_, err = f.hub.PublishLocation(t.Context(), f.order.ID(), impostor, coords(t, 40.74, -73.99), 1)
	require.ErrorIs(t, err, errs.ErrForbidden)

	assertSilent(t, viewer)
}

func TestHub_PublishLocationRejectsTerminalOrder(t *testing.T) {
	f := newFixture(t, order.Delivered)

	_, err := f.hub.PublishLocation(t.Context(), f.order.ID(), f.fulfiller, coords(t, 40.74, -73.99), 1)
	require.ErrorIs(t, err, order.ErrInvalidTransition)
}

func TestHub_PublishLocationUnknownOrder(t *testing.T) {
	f := newFixture(t, order.OutForDelivery)

	_, err := f.hub.PublishLocation(t.Context(), kernel.NewUUID(), f.fulfiller, coords(t, 40.74, -73.99), 1)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestHub_BroadcastStatusUpdatesCachedSnapshot(t *testing.T) {
	f := newFixture(t, order.OutForDelivery)
	viewer := tracking.NewChannelSubscriber("viewer", 4)
	f.hub.Subscribe(f.order.ID(), viewer)

	_, err := f.hub.PublishLocation(t.Context(), f.order.ID(), f.fulfiller, coords(t, 40.74, -73.99), 1)
	require.NoError(t, err)
	receive(t, viewer)

	f.hub.BroadcastStatus(t.Context(), f.order.ID(), order.Delivered)

	msg := receive(t, viewer)
	assert.Equal(t, tracking.EventStatusUpdated, msg.Event)
	assert.Equal(t, order.Delivered, msg.Status)

	current, err := f.hub.CurrentSnapshot(t.Context(), f.order.ID())
	require.NoError(t, err)
	assert.Equal(t, order.Delivered, current.Status)
}

func TestHub_BroadcastStatusWithoutViewersIsNoop(t *testing.T) {
	f := newFixture(t, order.Pending)

	f.hub.BroadcastStatus(t.Context(), f.order.ID(), order.Confirmed)

	assert.Zero(t, f.hub.Rooms())
}

func TestHub_UnsubscribeIsIdempotentAndDropsEmptyRooms(t *testing.T) {
	f := newFixture(t, order.OutForDelivery)
	a := tracking.NewChannelSubscriber("a", 1)
	b := tracking.NewChannelSubscriber("b", 1)

	f.hub.Subscribe(f.order.ID(), a)
	f.hub.Subscribe(f.order.ID(), a)
	f.hub.Subscribe(f.order.ID(), b)
	assert.Equal(t, 2, f.hub.Members(f.order.ID()))

	f.hub.Unsubscribe(f.order.ID(), a)
	f.hub.Unsubscribe(f.order.ID(), a)
	assert.Equal(t, 1, f.hub.Members(f.order.ID()))

	f.hub.Unsubscribe(f.order.ID(), b)
	assert.Zero(t, f.hub.Rooms())

	f.hub.Unsubscribe(kernel.NewUUID(), b)
	assert.Zero(t, f.hub.Rooms())
}

func TestHub_UnsubscribeAllLeavesEveryRoom(t *testing.T) {
	f := newFixture(t, order.OutForDelivery)
	other := kernel.NewUUID()
	sub := tracking.NewChannelSubscriber("sub", 1)
	stay := tracking.NewChannelSubscriber("stay", 1)

	f.hub.Subscribe(f.order.ID(), sub)
	f.hub.Subscribe(other, sub)
	f.hub.Subscribe(other, stay)

	f.hub.UnsubscribeAll(sub)

	assert.Zero(t, f.hub.Members(f.order.ID()))
	assert.Equal(t, 1, f.hub.Members(other))
	assert.Equal(t, 1, f.hub.Rooms())
}

func TestHub_FullSubscriberDoesNotBlockOthers(t *testing.T) {
	f := newFixture(t, order.OutForDelivery)
	slow := tracking.NewChannelSubscriber("slow", 1)
	fast := tracking.NewChannelSubscriber("fast", 8)
	f.hub.Subscribe(f.order.ID(), slow)
	f.hub.Subscribe(f.order.ID(), fast)

	for seq := uint64(1); seq <= 3; seq++ {
		_, err := f.hub.PublishLocation(t.Context(), f.order.ID(), f.fulfiller, coords(t, 40.74, -73.99), seq)
		require.NoError(t, err)
	}

	assert.Equal(t, uint64(1), receive(t, slow).Snapshot.Sequence)
	assertSilent(t, slow)
	for seq := uint64(1); seq <= 3; seq++ {
		assert.Equal(t, seq, receive(t, fast).Snapshot.Sequence)
	}
	assert.Equal(t, 2, f.hub.Members(f.order.ID()), "a slow subscriber stays in the room")
}

func TestHub_ClosedSubscriberIsEvictedOnDelivery(t *testing.T) {
	f := newFixture(t, order.OutForDelivery)
	gone := tracking.NewChannelSubscriber("gone", 1)
	f.hub.Subscribe(f.order.ID(), gone)
	gone.Close()

	_, err := f.hub.PublishLocation(t.Context(), f.order.ID(), f.fulfiller, coords(t, 40.74, -73.99), 1)
	require.NoError(t, err)

	assert.Zero(t, f.hub.Members(f.order.ID()))
	assert.Zero(t, f.hub.Rooms())
}

func TestHub_SweepEvictsClosedSubscribers(t *testing.T) {
	f := newFixture(t, order.OutForDelivery)
	other := kernel.NewUUID()
	gone := tracking.NewChannelSubscriber("gone", 1)
	alive := tracking.NewChannelSubscriber("alive", 1)
	f.hub.Subscribe(f.order.ID(), gone)
	f.hub.Subscribe(other, gone)
	f.hub.Subscribe(other, alive)
	gone.Close()

	assert.Equal(t, 2, f.hub.Sweep(t.Context()))
	assert.Equal(t, 1, f.hub.Rooms())
	assert.Equal(t, 1, f.hub.Members(other))
	assert.Zero(t, f.hub.Sweep(t.Context()))
}

func TestHub_ConcurrentSubscribersAndPublishers(t *testing.T) {
	f := newFixture(t, order.OutForDelivery)
	ctx := context.WithoutCancel(t.Context())

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := tracking.NewChannelSubscriber(string(rune('a'+i)), 64)
			f.hub.Subscribe(f.order.ID(), sub)
			_, _ = f.hub.CurrentSnapshot(ctx, f.order.ID())
			f.hub.Unsubscribe(f.order.ID(), sub)
		}()
	}
	for seq := uint64(1); seq <= 16; seq++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.hub.PublishLocation(ctx, f.order.ID(), f.fulfiller, coords(t, 40.74, -73.99), seq)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Zero(t, f.hub.Rooms())
	stored, err := f.orders.Get(ctx, f.order.ID())
	require.NoError(t, err)
	assert.Equal(t, uint64(16), stored.Tracking().Sequence())
}
