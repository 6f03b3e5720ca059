// Package ws is the realtime channel: clients join per-order rooms over a
// websocket and fulfillers stream their position through it.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"waterline/internal/adapters/in/auth"
	"waterline/internal/core/application/tracking"
	"waterline/internal/core/domain/model/kernel"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
	repliesBuffer  = 16
)

// Tracker is satisfied by *tracking.Hub.
type Tracker interface {
	Subscribe(orderID kernel.UUID, sub tracking.Subscriber)
	Unsubscribe(orderID kernel.UUID, sub tracking.Subscriber)
	UnsubscribeAll(sub tracking.Subscriber)
	PublishLocation(ctx context.Context, orderID kernel.UUID, actor kernel.Actor, location kernel.Coordinates, sequence uint64) (tracking.Snapshot, error)
	CurrentSnapshot(ctx context.Context, orderID kernel.UUID) (tracking.Snapshot, error)
}

type Gateway struct {
	tracker       Tracker
	authenticator *auth.Authenticator
	upgrader      websocket.Upgrader
	buffer        int
	logger        *slog.Logger
}

// NewGateway serves /ws. buffer is the per-connection queue of hub messages;
// once full, further messages for that connection are dropped.
func NewGateway(tracker Tracker, authenticator *auth.Authenticator, buffer int, logger *slog.Logger) (*Gateway, error) {
	if tracker == nil {
		return nil, errors.New("tracker is required")
	}
	if authenticator == nil {
		return nil, errors.New("authenticator is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		tracker:       tracker,
		authenticator: authenticator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		buffer: buffer,
		logger: logger.With("component", "ws_gateway"),
	}, nil
}

func (g *Gateway) Register(e *echo.Echo) {
	e.GET("/ws", g.Serve)
}

// Serve authenticates the bearer token (header, or the token query
// parameter for browsers) and upgrades the connection.
func (g *Gateway) Serve(c echo.Context) error {
	req := c.Request()
	var (
		actor kernel.Actor
		err   error
	)
	if token := c.QueryParam("token"); token != "" {
		actor, err = g.authenticator.Actor(token)
	} else {
		actor, err = g.authenticator.FromHeader(req.Header.Get(echo.HeaderAuthorization))
	}
	if err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorPayload{Code: "unauthorized", Message: err.Error()})
	}

	conn, err := g.upgrader.Upgrade(c.Response(), req, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		g.logger.WarnContext(req.Context(), "Websocket upgrade failed", "error", err)
		return nil
	}

	client := &connection{
		gateway: g,
		conn:    conn,
		actor:   actor,
		sub:     tracking.NewChannelSubscriber(kernel.NewUUID().String(), g.buffer),
		replies: make(chan Envelope, repliesBuffer),
		logger:  g.logger.With("subscriber", actor.String()),
	}
	client.run(context.WithoutCancel(req.Context()))
	return nil
}

type connection struct {
	gateway *Gateway
	conn    *websocket.Conn
	actor   kernel.Actor
	sub     *tracking.ChannelSubscriber
	replies chan Envelope
	logger  *slog.Logger
}

func (c *connection) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writeLoop(ctx)
	}()

	c.readLoop(ctx)

	c.sub.Close()
	c.gateway.tracker.UnsubscribeAll(c.sub)
	cancel()
	<-writerDone
	_ = c.conn.Close()
}

func (c *connection) readLoop(ctx context.Context) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.WarnContext(ctx, "Websocket read failed", "error", err)
			}
			return
		}
		if err := c.handle(ctx, env); err != nil {
			c.replyError(err)
		}
	}
}

func (c *connection) handle(ctx context.Context, env Envelope) error {
	switch env.Event {
	case EventJoinOrder:
		orderID, err := decodeOrderRef(env.Data)
		if err != nil {
			return err
		}
		return c.join(ctx, orderID)

	case EventLeaveOrder:
		orderID, err := decodeOrderRef(env.Data)
		if err != nil {
			return err
		}
		c.gateway.tracker.Unsubscribe(orderID, c.sub)
		return nil

	case EventUpdateLocation:
		var payload UpdateLocation
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return fmt.Errorf("%w: %w", errMalformed, err)
		}
		orderID, err := kernel.UUIDFromString(payload.OrderID)
		if err != nil {
			return err
		}
		location, err := kernel.NewCoordinates(payload.Lat, payload.Lng)
		if err != nil {
			return err
		}
		_, err = c.gateway.tracker.PublishLocation(ctx, orderID, c.actor, location, payload.Sequence)
		return err

	default:
		return fmt.Errorf("%w: unknown event %q", errMalformed, env.Event)
	}
}

// join subscribes only the order's parties and replays the latest position.
// The replay goes through the subscriber queue before Subscribe, so every
// hub update reaches the client after it.
func (c *connection) join(ctx context.Context, orderID kernel.UUID) error {
	snapshot, err := c.gateway.tracker.CurrentSnapshot(ctx, orderID)
	if err != nil {
		return err
	}
	if !snapshot.IsParty(c.actor) {
		return forbidden(c.actor, orderID)
	}

	if snapshot.HasLocation() {
		replay := tracking.Message{Event: tracking.EventLocationUpdated, OrderID: orderID, Snapshot: snapshot}
		if err := c.sub.Deliver(replay); err != nil {
			c.logger.WarnContext(ctx, "Dropped join replay", "order", orderID.String(), "error", err)
		}
	}

	c.gateway.tracker.Subscribe(orderID, c.sub)
	return nil
}

func (c *connection) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case env := <-c.replies:
			if !c.writeJSON(env) {
				return
			}
		case msg := <-c.sub.Messages():
			env, ok, err := hubEnvelope(msg)
			if err != nil {
				c.logger.ErrorContext(ctx, "Failed to encode hub message", "event", msg.Event, "error", err)
				continue
			}
			if ok && !c.writeJSON(env) {
				return
			}
		case <-ticker.C:
			if !c.write(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *connection) writeJSON(env Envelope) bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(env); err != nil {
		_ = c.conn.Close()
		return false
	}
	return true
}

func (c *connection) write(messageType int, data []byte) bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(messageType, data); err != nil {
		_ = c.conn.Close()
		return false
	}
	return true
}

// reply queues env for the writer, dropping it if the client is not reading.
func (c *connection) reply(env Envelope) {
	select {
	case c.replies <- env:
	default:
		c.logger.Warn("Dropped websocket reply", "event", env.Event)
	}
}

func (c *connection) replyError(err error) {
	code := ErrorCode(err)
	if errors.Is(err, errMalformed) {
		code = "bad_request"
	}
	env, encErr := envelope(EventError, ErrorPayload{Code: code, Message: err.Error()})
	if encErr != nil {
		return
	}
	c.reply(env)
}
