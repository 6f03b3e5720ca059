package http

import (
	"errors"
	"log/slog"
	"net/http"

	"waterline/internal/adapters/in/auth"
	"waterline/internal/core/application/usecases/commands"
	"waterline/internal/core/application/usecases/queries"
	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/order"
	"waterline/internal/core/domain/model/rating"

	"github.com/labstack/echo/v4"
)

// Handlers groups the use cases the REST API exposes.
type Handlers struct {
	CreateOrder      commands.CreateOrderCommandHandler
	TransitionStatus commands.TransitionOrderStatusCommandHandler
	SubmitRating     commands.SubmitRatingCommandHandler
	MarkHelpful      commands.MarkRatingHelpfulCommandHandler
	AddResponse      commands.AddFulfillerResponseCommandHandler
	ActiveOrders     *queries.GetActiveOrdersQueryHandler
	TrackingSnapshot *queries.GetTrackingSnapshotQueryHandler
	FulfillerRatings *queries.GetFulfillerRatingsQueryHandler
	FulfillerStats   *queries.GetFulfillerRatingStatsQueryHandler
}

// Server adapts HTTP requests to commands and queries.
type Server struct {
	handlers Handlers
	logger   *slog.Logger
}

func NewServer(handlers Handlers, logger *slog.Logger) (*Server, error) {
	if handlers.ActiveOrders == nil || handlers.TrackingSnapshot == nil ||
		handlers.FulfillerRatings == nil || handlers.FulfillerStats == nil {
		return nil, errors.New("query handlers are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{handlers: handlers, logger: logger.With("component", "http_server")}, nil
}

// Register mounts the API under /api/v1 on e. Every route requires auth;
// mw runs before the handlers in the given order.
func (s *Server) Register(e *echo.Echo, mw ...echo.MiddlewareFunc) {
	g := e.Group("/api/v1", mw...)

	g.GET("/orders", s.ListActiveOrders)
	g.POST("/orders", s.CreateOrder)
	g.GET("/orders/:orderId/tracking", s.GetTracking)
	g.PATCH("/orders/:orderId/status", s.UpdateOrderStatus)

	g.POST("/ratings", s.SubmitRating)
	g.POST("/ratings/:ratingId/helpful", s.MarkRatingHelpful)
	g.POST("/ratings/:ratingId/response", s.RespondToRating)

	g.GET("/fulfillers/:fulfillerId/ratings", s.ListFulfillerRatings)
	g.GET("/fulfillers/:fulfillerId/ratings/stats", s.GetFulfillerRatingStats)
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return s.fail(c, err)
	}

	var req CreateOrderRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	fulfillerID, err := kernel.UUIDFromString(req.FulfillerID)
	if err != nil {
		return s.fail(c, err)
	}
	item, err := order.NewItem(req.Quantity, order.Unit(req.Unit))
	if err != nil {
		return s.fail(c, err)
	}
	coords, err := kernel.NewCoordinates(req.Destination.Lat, req.Destination.Lng)
	if err != nil {
		return s.fail(c, err)
	}
	destination, err := order.NewDestination(coords, req.Destination.Address, req.Destination.Instructions)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewCreateOrderCommand(
		kernel.NewUUID(),
		actor,
		fulfillerID,
		item,
		req.UnitPrice,
		req.DeliveryFee,
		req.Currency,
		destination,
		order.PaymentMethod(req.PaymentMethod),
	)
	if err != nil {
		return s.fail(c, err)
	}

	created, err := s.handlers.CreateOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, orderOf(created))
}

// ListActiveOrders handles GET /api/v1/orders.
func (s *Server) ListActiveOrders(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return s.fail(c, err)
	}

	query, err := queries.NewGetActiveOrdersQuery(actor)
	if err != nil {
		return s.fail(c, err)
	}
	active, err := s.handlers.ActiveOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, activeOrdersOf(active))
}

// GetTracking handles GET /api/v1/orders/{orderId}/tracking.
func (s *Server) GetTracking(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return s.fail(c, err)
	}
	orderID, err := kernel.UUIDFromString(c.Param("orderId"))
	if err != nil {
		return s.fail(c, err)
	}

	query, err := queries.NewGetTrackingSnapshotQuery(orderID, actor)
	if err != nil {
		return s.fail(c, err)
	}
	snapshot, err := s.handlers.TrackingSnapshot.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, snapshotOf(snapshot))
}

// UpdateOrderStatus handles PATCH /api/v1/orders/{orderId}/status.
func (s *Server) UpdateOrderStatus(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return s.fail(c, err)
	}
	orderID, err := kernel.UUIDFromString(c.Param("orderId"))
	if err != nil {
		return s.fail(c, err)
	}

	var req UpdateStatusRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	status, err := order.ParseStatus(req.Status)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewTransitionOrderStatusCommand(orderID, status, actor)
	if err != nil {
		return s.fail(c, err)
	}
	updated, err := s.handlers.TransitionStatus.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, orderOf(updated))
}

// SubmitRating handles POST /api/v1/ratings.
func (s *Server) SubmitRating(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return s.fail(c, err)
	}

	var req SubmitRatingRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	orderID, err := kernel.UUIDFromString(req.OrderID)
	if err != nil {
		return s.fail(c, err)
	}
	categories, err := rating.NewCategories(req.Categories)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewSubmitRatingCommand(kernel.NewUUID(), orderID, actor, req.Score, req.Review, categories)
	if err != nil {
		return s.fail(c, err)
	}
	created, err := s.handlers.SubmitRating.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, ratingOf(created))
}

// MarkRatingHelpful handles POST /api/v1/ratings/{ratingId}/helpful.
func (s *Server) MarkRatingHelpful(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return s.fail(c, err)
	}
	ratingID, err := kernel.UUIDFromString(c.Param("ratingId"))
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewMarkRatingHelpfulCommand(ratingID, actor)
	if err != nil {
		return s.fail(c, err)
	}
	count, err := s.handlers.MarkHelpful.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, HelpfulCount{HelpfulCount: count})
}

// RespondToRating handles POST /api/v1/ratings/{ratingId}/response.
func (s *Server) RespondToRating(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return s.fail(c, err)
	}
	ratingID, err := kernel.UUIDFromString(c.Param("ratingId"))
	if err != nil {
		return s.fail(c, err)
	}

	var req RespondRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	cmd, err := commands.NewAddFulfillerResponseCommand(ratingID, actor, req.Text)
	if err != nil {
		return s.fail(c, err)
	}
	updated, err := s.handlers.AddResponse.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, ratingOf(updated))
}

// ListFulfillerRatings handles GET /api/v1/fulfillers/{fulfillerId}/ratings.
func (s *Server) ListFulfillerRatings(c echo.Context) error {
	fulfillerID, err := kernel.UUIDFromString(c.Param("fulfillerId"))
	if err != nil {
		return s.fail(c, err)
	}

	var (
		page, limit int
		sortParam   string
	)
	if err = echo.QueryParamsBinder(c).
		Int("page", &page).
		Int("limit", &limit).
		String("sort", &sortParam).
		BindError(); err != nil {
		return badRequest(c, "Invalid query parameters")
	}
	sort, err := queries.ParseRatingSort(sortParam)
	if err != nil {
		return s.fail(c, err)
	}

	query, err := queries.NewGetFulfillerRatingsQuery(fulfillerID, page, limit, sort)
	if err != nil {
		return s.fail(c, err)
	}
	result, err := s.handlers.FulfillerRatings.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, ratingPageOf(result))
}

// GetFulfillerRatingStats handles GET /api/v1/fulfillers/{fulfillerId}/ratings/stats.
func (s *Server) GetFulfillerRatingStats(c echo.Context) error {
	fulfillerID, err := kernel.UUIDFromString(c.Param("fulfillerId"))
	if err != nil {
		return s.fail(c, err)
	}

	query, err := queries.NewGetFulfillerRatingStatsQuery(fulfillerID)
	if err != nil {
		return s.fail(c, err)
	}
	stats, err := s.handlers.FulfillerStats.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, ratingStatsOf(stats))
}

func requireActor(c echo.Context) (kernel.Actor, error) {
	actor, ok := actorFrom(c)
	if !ok {
		return kernel.Actor{}, auth.ErrMissingToken
	}
	return actor, nil
}
