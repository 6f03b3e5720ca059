package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"waterline/internal/adapters/in/auth"
	"waterline/internal/adapters/in/ws"
	"waterline/internal/adapters/out/memory"
	"waterline/internal/core/application/tracking"
	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/order"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	server        *httptest.Server
	hub           *tracking.Hub
	authenticator *auth.Authenticator
	requester     kernel.Actor
	fulfiller     kernel.Actor
	order         *order.Order
}

func newHarness(t *testing.T) harness {
	t.Helper()
	requester, err := kernel.NewActor(kernel.NewUUID(), kernel.Requester)
	require.NoError(t, err)
	fulfiller, err := kernel.NewActor(kernel.NewUUID(), kernel.Fulfiller)
	require.NoError(t, err)

	item, err := order.NewItem(decimal.NewFromInt(2), order.Gallons)
	require.NoError(t, err)
	pricing, err := order.NewPricing(item, decimal.NewFromInt(3), decimal.Zero, "USD")
	require.NoError(t, err)
	dest, err := kernel.NewCoordinates(40.7505, -73.9934)
	require.NoError(t, err)
	destination, err := order.NewDestination(dest, "20 W 34th St", "")
	require.NoError(t, err)
	o, err := order.RestoreOrder(order.State{
		ID:          kernel.NewUUID(),
		RequesterID: requester.ID(),
		FulfillerID: fulfiller.ID(),
		Item:        item,
		Pricing:     pricing,
		Destination: destination,
		Payment:     order.Payment{Method: order.Card, Status: order.PaymentPaid},
		Status:      order.OutForDelivery,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)

	orders := memory.NewUnitOfWorkFactory(memory.NewStore()).Create().OrderRepository()
	require.NoError(t, orders.Add(t.Context(), o))
	hub, err := tracking.NewHub(orders)
	require.NoError(t, err)

	authenticator, err := auth.NewAuthenticator("ws-secret")
	require.NoError(t, err)
	gateway, err := ws.NewGateway(hub, authenticator, 8, nil)
	require.NoError(t, err)

	e := echo.New()
	gateway.Register(e)
	server := httptest.NewServer(e)
	t.Cleanup(server.Close)

	return harness{
		server:        server,
		hub:           hub,
		authenticator: authenticator,
		requester:     requester,
		fulfiller:     fulfiller,
		order:         o,
	}
}

func (h harness) dial(t *testing.T, actor kernel.Actor) *websocket.Conn {
	t.Helper()
	token, err := h.authenticator.Issue(actor, time.Minute)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(h.server.URL, "http") + "/ws?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(ws.Envelope{Event: event, Data: raw}))
}

func next(t *testing.T, conn *websocket.Conn) ws.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env ws.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func (h harness) waitMembers(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.hub.Members(h.order.ID()) == n }, 2*time.Second, 10*time.Millisecond)
}

func TestGateway_RelaysLocationToJoinedViewer(t *testing.T) {
	h := newHarness(t)
	viewer := h.dial(t, h.requester)
	driver := h.dial(t, h.fulfiller)

	send(t, viewer, ws.EventJoinOrder, ws.OrderRef{OrderID: h.order.ID().String()})
	h.waitMembers(t, 1)

	send(t, driver, ws.EventUpdateLocation, ws.UpdateLocation{
		OrderID:  h.order.ID().String(),
		Lat:      40.7128,
		Lng:      -74.0060,
		Sequence: 1,
	})

	env := next(t, viewer)
	require.Equal(t, string(tracking.EventLocationUpdated), env.Event)
	var payload ws.LocationUpdated
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, h.order.ID().String(), payload.OrderID)
	assert.InDelta(t, 40.7128, payload.Coordinates.Lat, 1e-9)
	assert.InDelta(t, 4.32, payload.DistanceKm, 0.01)
	assert.False(t, payload.ETA.IsZero())
}

func TestGateway_LateJoinerGetsLatestPosition(t *testing.T) {
	h := newHarness(t)
	location, err := kernel.NewCoordinates(40.72, -74.0)
	require.NoError(t, err)
	_, err = h.hub.PublishLocation(t.Context(), h.order.ID(), h.fulfiller, location, 3)
	require.NoError(t, err)

	viewer := h.dial(t, h.requester)
	send(t, viewer, ws.EventJoinOrder, h.order.ID().String())

	env := next(t, viewer)
	require.Equal(t, string(tracking.EventLocationUpdated), env.Event)
	var payload ws.LocationUpdated
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, uint64(3), payload.Sequence)
}

// publishOnSubscribe lands a location update right after every join.
type publishOnSubscribe struct {
	*tracking.Hub
	publish func()
}

func (p publishOnSubscribe) Subscribe(orderID kernel.UUID, sub tracking.Subscriber) {
	p.Hub.Subscribe(orderID, sub)
	p.publish()
}

func TestGateway_JoinReplayPrecedesNewerUpdates(t *testing.T) {
	h := newHarness(t)
	first, err := kernel.NewCoordinates(40.72, -74.0)
	require.NoError(t, err)
	_, err = h.hub.PublishLocation(t.Context(), h.order.ID(), h.fulfiller, first, 3)
	require.NoError(t, err)

	second, err := kernel.NewCoordinates(40.73, -73.99)
	require.NoError(t, err)
	tracker := publishOnSubscribe{Hub: h.hub, publish: func() {
		_, err := h.hub.PublishLocation(context.Background(), h.order.ID(), h.fulfiller, second, 4)
		assert.NoError(t, err)
	}}
	gateway, err := ws.NewGateway(tracker, h.authenticator, 8, nil)
	require.NoError(t, err)
	e := echo.New()
	gateway.Register(e)
	h.server = httptest.NewServer(e)
	t.Cleanup(h.server.Close)

	viewer := h.dial(t, h.requester)
	send(t, viewer, ws.EventJoinOrder, h.order.ID().String())

	for _, want := range []uint64{3, 4} {
		env := next(t, viewer)
		require.Equal(t, string(tracking.EventLocationUpdated), env.Event)
		var payload ws.LocationUpdated
		require.NoError(t, json.Unmarshal(env.Data, &payload))
		assert.Equal(t, want, payload.Sequence)
	}
}

func TestGateway_StatusBroadcast(t *testing.T) {
	h := newHarness(t)
	viewer := h.dial(t, h.requester)
	send(t, viewer, ws.EventJoinOrder, ws.OrderRef{OrderID: h.order.ID().String()})
	h.waitMembers(t, 1)

	h.hub.BroadcastStatus(t.Context(), h.order.ID(), order.InTransit)

	env := next(t, viewer)
	require.Equal(t, string(tracking.EventStatusUpdated), env.Event)
	var payload ws.StatusUpdated
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, "in_transit", payload.Status)
}

func TestGateway_RejectsStrangers(t *testing.T) {
	h := newHarness(t)
	stranger, err := kernel.NewActor(kernel.NewUUID(), kernel.Requester)
	require.NoError(t, err)
	conn := h.dial(t, stranger)

	send(t, conn, ws.EventJoinOrder, ws.OrderRef{OrderID: h.order.ID().String()})

	env := next(t, conn)
	require.Equal(t, ws.EventError, env.Event)
	var payload ws.ErrorPayload
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, "forbidden", payload.Code)
	assert.Zero(t, h.hub.Members(h.order.ID()))
}

func TestGateway_RequesterCannotPublish(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t, h.requester)

	send(t, conn, ws.EventUpdateLocation, ws.UpdateLocation{OrderID: h.order.ID().String(), Lat: 1, Lng: 1})

	env := next(t, conn)
	var payload ws.ErrorPayload
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, "forbidden", payload.Code)
}

func TestGateway_BadMessages(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t, h.fulfiller)

	cases := []struct {
		event string
		data  any
		code  string
	}{
		{event: "dance", data: map[string]string{}, code: "bad_request"},
		{event: ws.EventJoinOrder, data: ws.OrderRef{OrderID: "nope"}, code: "bad_request"},
		{event: ws.EventJoinOrder, data: ws.OrderRef{OrderID: kernel.NewUUID().String()}, code: "not_found"},
		{event: ws.EventUpdateLocation, data: ws.UpdateLocation{OrderID: h.order.ID().String(), Lat: 120}, code: "invalid_coordinates"},
	}
	for _, tc := range cases {
		send(t, conn, tc.event, tc.data)
		env := next(t, conn)
		require.Equal(t, ws.EventError, env.Event)
		var payload ws.ErrorPayload
		require.NoError(t, json.Unmarshal(env.Data, &payload))
		assert.Equal(t, tc.code, payload.Code, tc.event)
	}
}

func TestGateway_LeaveAndDisconnectDropRoom(t *testing.T) {
	h := newHarness(t)
	first := h.dial(t, h.requester)
	second := h.dial(t, h.fulfiller)

	send(t, first, ws.EventJoinOrder, ws.OrderRef{OrderID: h.order.ID().String()})
	send(t, second, ws.EventJoinOrder, ws.OrderRef{OrderID: h.order.ID().String()})
	h.waitMembers(t, 2)

	send(t, first, ws.EventLeaveOrder, ws.OrderRef{OrderID: h.order.ID().String()})
	h.waitMembers(t, 1)

	require.NoError(t, second.Close())
	h.waitMembers(t, 0)
	assert.Zero(t, h.hub.Rooms())
}

func TestGateway_RequiresToken(t *testing.T) {
	h := newHarness(t)
	url := "ws" + strings.TrimPrefix(h.server.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)

	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
