package cmd

import (
	"errors"
	"log/slog"

	"waterline/internal/adapters/in/auth"
	"waterline/internal/adapters/in/http"
	"waterline/internal/adapters/in/ws"
	"waterline/internal/adapters/out/memory"
	"waterline/internal/adapters/out/postgres"
	"waterline/internal/adapters/out/postgres/orderrepo"
	"waterline/internal/adapters/out/postgres/ratingrepo"
	"waterline/internal/core/application/tracking"
	"waterline/internal/core/application/usecases/commands"
	"waterline/internal/core/application/usecases/queries"
	"waterline/internal/core/domain/model/order"
	"waterline/internal/core/ports"
	"waterline/internal/jobs"
	"waterline/internal/pkg/keylock"
	"waterline/internal/pkg/telemetry"

	"gorm.io/gorm"
)

const instrumentationName = "waterline"

// Storage is the persistence a composition root is built over.
type Storage struct {
	UoWFactory ports.UnitOfWorkFactory
	Orders     queries.OrderReader
	Ratings    queries.RatingReader
}

func PostgresStorage(db *gorm.DB) Storage {
	return Storage{
		UoWFactory: postgres.NewGormUnitOfWorkFactory(db),
		Orders:     orderrepo.NewGormOrderReader(db),
		Ratings:    ratingrepo.NewGormRatingReader(db),
	}
}

func MemoryStorage() Storage {
	store := memory.NewStore()
	return Storage{
		UoWFactory: memory.NewUnitOfWorkFactory(store),
		Orders:     memory.NewOrderReader(store),
		Ratings:    memory.NewRatingReader(store),
	}
}

type CompositionRoot struct {
	config      Config
	workflow    order.Workflow
	storage     Storage
	instruments *telemetry.Instruments
	logger      *slog.Logger

	// shared by every rating handler
	summaryLocks *keylock.KeyLock
	hub          *tracking.Hub
}

func NewCompositionRoot(config Config, storage Storage, instruments *telemetry.Instruments) (*CompositionRoot, error) {
	if storage.UoWFactory == nil || storage.Orders == nil || storage.Ratings == nil {
		return nil, errors.New("storage is not configured")
	}
	if instruments == nil {
		return nil, errors.New("instruments are required")
	}
	workflow, err := order.ParseWorkflow(config.Workflow)
	if err != nil {
		return nil, err
	}

	hub, err := tracking.NewHub(
		storage.UoWFactory.Create().OrderRepository(),
		tracking.WithLogger(instruments.Logger.With("component", "tracking_hub")),
		tracking.WithTracer(instruments.Tracer(instrumentationName)),
		tracking.WithMeter(instruments.Meter(instrumentationName)),
	)
	if err != nil {
		return nil, err
	}

	return &CompositionRoot{
		config:       config,
		workflow:     workflow,
		storage:      storage,
		instruments:  instruments,
		logger:       instruments.Logger,
		summaryLocks: keylock.New(),
		hub:          hub,
	}, nil
}

func (c *CompositionRoot) Hub() *tracking.Hub {
	return c.hub
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.storage.UoWFactory.Create()
	})
}

func (c *CompositionRoot) ratingUoWFactory() commands.RatingUoWFactory {
	return FuncRatingUoWFactory(func() commands.RatingUoW {
		return c.storage.UoWFactory.Create()
	})
}

func (c *CompositionRoot) outboxUoWFactory() commands.OutboxUoWFactory {
	return FuncOutboxUoWFactory(func() commands.OutboxUoW {
		return c.storage.UoWFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory())
}

func (c *CompositionRoot) CreateTransitionOrderStatusCommandHandler() commands.TransitionOrderStatusCommandHandler {
	return commands.NewTransitionOrderStatusCommandHandler(c.orderUoWFactory(), c.workflow, c.hub)
}

func (c *CompositionRoot) CreateSubmitRatingCommandHandler() commands.SubmitRatingCommandHandler {
	return commands.NewSubmitRatingCommandHandler(c.ratingUoWFactory(), c.workflow, c.summaryLocks)
}

func (c *CompositionRoot) CreateMarkRatingHelpfulCommandHandler() commands.MarkRatingHelpfulCommandHandler {
	return commands.NewMarkRatingHelpfulCommandHandler(c.ratingUoWFactory())
}

func (c *CompositionRoot) CreateAddFulfillerResponseCommandHandler() commands.AddFulfillerResponseCommandHandler {
	return commands.NewAddFulfillerResponseCommandHandler(c.ratingUoWFactory())
}

func (c *CompositionRoot) CreateRelayOutboxCommandHandler(publisher ports.EventPublisher) (commands.RelayOutboxCommandHandler, error) {
	return commands.NewRelayOutboxCommandHandler(c.outboxUoWFactory(), publisher)
}

func (c *CompositionRoot) CreateGetActiveOrdersQueryHandler() (*queries.GetActiveOrdersQueryHandler, error) {
	return queries.NewGetActiveOrdersQueryHandler(c.storage.Orders)
}

func (c *CompositionRoot) CreateGetTrackingSnapshotQueryHandler() (*queries.GetTrackingSnapshotQueryHandler, error) {
	return queries.NewGetTrackingSnapshotQueryHandler(c.hub)
}

func (c *CompositionRoot) CreateGetFulfillerRatingsQueryHandler() (*queries.GetFulfillerRatingsQueryHandler, error) {
	return queries.NewGetFulfillerRatingsQueryHandler(
		c.storage.Ratings,
		c.storage.UoWFactory.Create().FulfillerSummaryRepository(),
	)
}

func (c *CompositionRoot) CreateGetFulfillerRatingStatsQueryHandler() (*queries.GetFulfillerRatingStatsQueryHandler, error) {
	return queries.NewGetFulfillerRatingStatsQueryHandler(
		c.storage.UoWFactory.Create().FulfillerSummaryRepository(),
		c.storage.Ratings,
	)
}

func (c *CompositionRoot) CreateAuthenticator() (*auth.Authenticator, error) {
	return auth.NewAuthenticator(c.config.JWTSecret)
}

func (c *CompositionRoot) CreateHTTPServer() (*http.Server, error) {
	active, err := c.CreateGetActiveOrdersQueryHandler()
	if err != nil {
		return nil, err
	}
	snapshots, err := c.CreateGetTrackingSnapshotQueryHandler()
	if err != nil {
		return nil, err
	}
	ratings, err := c.CreateGetFulfillerRatingsQueryHandler()
	if err != nil {
		return nil, err
	}
	stats, err := c.CreateGetFulfillerRatingStatsQueryHandler()
	if err != nil {
		return nil, err
	}

	return http.NewServer(http.Handlers{
		CreateOrder:      c.CreateCreateOrderCommandHandler(),
		TransitionStatus: c.CreateTransitionOrderStatusCommandHandler(),
		SubmitRating:     c.CreateSubmitRatingCommandHandler(),
		MarkHelpful:      c.CreateMarkRatingHelpfulCommandHandler(),
		AddResponse:      c.CreateAddFulfillerResponseCommandHandler(),
		ActiveOrders:     active,
		TrackingSnapshot: snapshots,
		FulfillerRatings: ratings,
		FulfillerStats:   stats,
	}, c.logger)
}

func (c *CompositionRoot) CreateGateway(authenticator *auth.Authenticator) (*ws.Gateway, error) {
	return ws.NewGateway(c.hub, authenticator, c.config.SubscriberBuffer, c.logger)
}

// CreateJobManager schedules the room janitor and, when publisher is not
// nil, the outbox relay.
func (c *CompositionRoot) CreateJobManager(publisher ports.EventPublisher) (*jobs.JobManager, error) {
	var relay jobs.OutboxRelayHandler
	if publisher != nil {
		handler, err := c.CreateRelayOutboxCommandHandler(publisher)
		if err != nil {
			return nil, err
		}
		relay = handler
	}

	return jobs.NewJobManager(relay, c.hub, jobs.Schedules{
		OutboxRelay: c.config.OutboxRelaySchedule,
		RoomJanitor: c.config.RoomJanitorSchedule,
		RelayBatch:  c.config.OutboxRelayBatch,
	}, c.logger), nil
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncRatingUoWFactory func() commands.RatingUoW

func (f FuncRatingUoWFactory) Create() commands.RatingUoW {
	return f()
}

type FuncOutboxUoWFactory func() commands.OutboxUoW

func (f FuncOutboxUoWFactory) Create() commands.OutboxUoW {
	return f()
}
