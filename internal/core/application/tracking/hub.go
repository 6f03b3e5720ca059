package tracking

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/order"
	"waterline/internal/core/ports"
)

const tracerName = "waterline/internal/core/application/tracking"

// RoomName is the channel name viewers of an order join.
func RoomName(orderID kernel.UUID) string {
	return "order-" + orderID.String()
}

type room struct {
	mu       sync.Mutex
	members  map[string]Subscriber
	snapshot *Snapshot
	// last broadcast status; wins over the status a location publish loaded
	status *order.Status
	closed bool
}

func newRoom() *room {
	return &room{members: make(map[string]Subscriber)}
}

func (r *room) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Hub keeps one room per watched order. The hub lock only guards the room
// map; membership, the cached snapshot and fan-out are per room, and
// delivery happens outside every lock.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]*room

	orders  ports.OrderRepository
	now     func() time.Time
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics hubMetrics
}

type Option func(*Hub)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		h.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(h *Hub) {
		h.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(h *Hub) {
		h.metrics = newHubMetrics(m)
	}
}

func WithClock(now func() time.Time) Option {
	return func(h *Hub) {
		h.now = now
	}
}

// NewHub builds a hub that loads and stores tracking through orders.
// The repository is used outside any transaction.
func NewHub(orders ports.OrderRepository, opts ...Option) (*Hub, error) {
	if orders == nil {
		return nil, errors.New("orders repository is required")
	}

	h := &Hub{
		rooms:   make(map[string]*room),
		orders:  orders,
		now:     func() time.Time { return time.Now().UTC() },
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.DiscardHandler),
		metrics: newHubMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	if h.tracer == nil {
		h.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if h.logger == nil {
		h.logger = slog.New(slog.DiscardHandler)
	}
	return h, nil
}

// Subscribe adds sub to the order's room, creating the room on first join.
// Joining a room the subscriber is already in is a no-op.
func (h *Hub) Subscribe(orderID kernel.UUID, sub Subscriber) {
	key := orderID.String()
	for {
		h.mu.Lock()
		r, ok := h.rooms[key]
		if !ok || r.isClosed() {
			r = newRoom()
			h.rooms[key] = r
		}
		h.mu.Unlock()

		r.mu.Lock()
		if r.closed {
			// emptied and dropped between lookup and join
			r.mu.Unlock()
			continue
		}
		r.members[sub.ID()] = sub
		r.mu.Unlock()
		return
	}
}

// Unsubscribe removes sub from the order's room and drops the room once it
// is empty. Unknown orders and subscribers are ignored.
func (h *Hub) Unsubscribe(orderID kernel.UUID, sub Subscriber) {
	h.unsubscribeID(orderID.String(), sub.ID())
}

func (h *Hub) unsubscribeID(key, subID string) {
	r := h.lookup(key)
	if r == nil {
		return
	}

	r.mu.Lock()
	delete(r.members, subID)
	empty := len(r.members) == 0
	if empty {
		r.closed = true
	}
	r.mu.Unlock()

	if empty {
		h.drop(key, r)
	}
}

// UnsubscribeAll removes sub from every room it joined.
func (h *Hub) UnsubscribeAll(sub Subscriber) {
	for _, key := range h.roomKeys() {
		h.unsubscribeID(key, sub.ID())
	}
}

// PublishLocation records a fulfiller position and fans the new snapshot out
// to the order's viewers. A stale sequence is not an error: the update is
// dropped and the current snapshot is returned.
func (h *Hub) PublishLocation(
	ctx context.Context,
	orderID kernel.UUID,
	actor kernel.Actor,
	location kernel.Coordinates,
	sequence uint64,
) (Snapshot, error) {
	ctx, span := h.tracer.Start(ctx, "TrackingHub.PublishLocation",
		trace.WithAttributes(
			attribute.String("order.id", orderID.String()),
			attribute.Int64("tracking.sequence", int64(sequence)), //nolint:gosec // sequences stay far below MaxInt64
		))
	defer span.End()

	aggregate, err := h.orders.Get(ctx, orderID)
	if err != nil {
		return Snapshot{}, h.handleError(ctx, span, err, "failed to load order", slog.String("order.id", orderID.String()))
	}

	_, err = aggregate.ApplyTracking(actor, location, sequence, h.now())
	if err == nil {
		err = h.orders.UpdateTracking(ctx, aggregate)
	}
	if errors.Is(err, order.ErrStaleUpdate) {
		h.metrics.recordStale(ctx)
		span.SetAttributes(attribute.Bool("tracking.stale", true))
		h.logger.LogAttrs(ctx, slog.LevelDebug, "stale location update dropped",
			slog.String("order.id", orderID.String()), slog.Uint64("tracking.sequence", sequence))
		return h.CurrentSnapshot(ctx, orderID)
	}
	if err != nil {
		return Snapshot{}, h.handleError(ctx, span, err, "failed to apply location update",
			slog.String("order.id", orderID.String()), slog.String("actor", actor.String()))
	}

	snapshot := SnapshotOf(aggregate)
	r := h.lookup(orderID.String())
	if r == nil {
		return snapshot, nil
	}

	r.mu.Lock()
	if !snapshot.newerThan(r.snapshot) {
		// a later update already reached the room
		current := *r.snapshot
		r.mu.Unlock()
		h.metrics.recordStale(ctx)
		return current, nil
	}
	// the status may have moved on since the order was loaded
	switch {
	case r.snapshot != nil:
		snapshot = r.snapshot.withTrackingOf(snapshot)
	case r.status != nil:
		snapshot = snapshot.withStatus(*r.status)
	}
	cached := snapshot
	r.snapshot = &cached
	members := r.memberList()
	r.mu.Unlock()

	h.fanOut(ctx, orderID, members, Message{Event: EventLocationUpdated, OrderID: orderID, Snapshot: snapshot})
	return snapshot, nil
}

// CurrentSnapshot returns the cached snapshot of a watched order, or loads
// it from storage.
func (h *Hub) CurrentSnapshot(ctx context.Context, orderID kernel.UUID) (Snapshot, error) {
	r := h.lookup(orderID.String())
	if r != nil {
		r.mu.Lock()
		if r.snapshot != nil {
			current := *r.snapshot
			r.mu.Unlock()
			return current, nil
		}
		r.mu.Unlock()
	}

	aggregate, err := h.orders.Get(ctx, orderID)
	if err != nil {
		return Snapshot{}, err
	}
	snapshot := SnapshotOf(aggregate)

	if r != nil {
		r.mu.Lock()
		if !r.closed && snapshot.newerThan(r.snapshot) {
			if r.status != nil {
				snapshot = snapshot.withStatus(*r.status)
			}
			cached := snapshot
			r.snapshot = &cached
		}
		r.mu.Unlock()
	}
	return snapshot, nil
}

// BroadcastStatus tells the order's viewers about a committed status change.
func (h *Hub) BroadcastStatus(ctx context.Context, orderID kernel.UUID, status order.Status) {
	ctx, span := h.tracer.Start(ctx, "TrackingHub.BroadcastStatus",
		trace.WithAttributes(attribute.String("order.id", orderID.String()), attribute.String("order.status", status.String())))
	defer span.End()

	r := h.lookup(orderID.String())
	if r == nil {
		return
	}

	r.mu.Lock()
	r.status = &status
	if r.snapshot != nil {
		updated := r.snapshot.withStatus(status)
		r.snapshot = &updated
	}
	members := r.memberList()
	r.mu.Unlock()

	h.fanOut(ctx, orderID, members, Message{Event: EventStatusUpdated, OrderID: orderID, Status: status})
}

// Sweep evicts closed subscribers and drops empty rooms. It returns the
// number of evicted subscribers.
func (h *Hub) Sweep(ctx context.Context) int {
	evicted := 0
	for _, key := range h.roomKeys() {
		r := h.lookup(key)
		if r == nil {
			continue
		}

		r.mu.Lock()
		for id, sub := range r.members {
			if sub.Closed() {
				delete(r.members, id)
				evicted++
			}
		}
		empty := len(r.members) == 0
		if empty {
			r.closed = true
		}
		r.mu.Unlock()

		if empty {
			h.drop(key, r)
		}
	}

	if evicted > 0 {
		h.metrics.recordEvicted(ctx, evicted)
		h.logger.LogAttrs(ctx, slog.LevelInfo, "evicted closed subscribers", slog.Int("count", evicted))
	}
	return evicted
}

// Rooms returns the number of orders with at least one viewer.
func (h *Hub) Rooms() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}

// Members returns the number of viewers of an order.
func (h *Hub) Members(orderID kernel.UUID) int {
	r := h.lookup(orderID.String())
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

func (h *Hub) fanOut(ctx context.Context, orderID kernel.UUID, members []Subscriber, msg Message) {
	h.metrics.recordBroadcast(ctx, msg.Event)
	for _, sub := range members {
		err := sub.Deliver(msg)
		switch {
		case err == nil:
		case errors.Is(err, ErrSubscriberClosed):
			h.Unsubscribe(orderID, sub)
			h.metrics.recordEvicted(ctx, 1)
		default:
			h.metrics.recordDropped(ctx, msg.Event)
			h.logger.LogAttrs(ctx, slog.LevelWarn, "tracking message dropped",
				slog.String("order.id", orderID.String()),
				slog.String("subscriber", sub.ID()),
				slog.String("event", string(msg.Event)),
				slog.String("error", err.Error()))
		}
	}
}

func (h *Hub) lookup(key string) *room {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rooms[key]
}

func (h *Hub) drop(key string, r *room) {
	h.mu.Lock()
	if h.rooms[key] == r {
		delete(h.rooms, key)
	}
	h.mu.Unlock()
}

func (h *Hub) roomKeys() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	keys := make([]string, 0, len(h.rooms))
	for key := range h.rooms {
		keys = append(keys, key)
	}
	return keys
}

func (r *room) memberList() []Subscriber {
	members := make([]Subscriber, 0, len(r.members))
	for _, sub := range r.members {
		members = append(members, sub)
	}
	return members
}

func (h *Hub) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	attrs = append(attrs, slog.String("error", err.Error()))
	h.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	return err
}

var _ ports.StatusNotifier = (*Hub)(nil)
