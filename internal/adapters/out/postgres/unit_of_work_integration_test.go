package postgres_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	postgres_adapter "waterline/internal/adapters/out/postgres"
	"waterline/internal/adapters/out/postgres/ratingrepo"
	"waterline/internal/core/application/usecases/queries"
	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/order"
	"waterline/internal/core/domain/model/outbox"
	"waterline/internal/core/domain/model/rating"
	"waterline/internal/core/ports"
	"waterline/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
	requester kernel.Actor
	fulfiller kernel.Actor
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(postgres_adapter.Models()...))
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE orders, ratings, fulfiller_summaries, outbox_messages").Error
	suite.Require().NoError(err)

	suite.requester, err = kernel.NewActor(kernel.NewUUID(), kernel.Requester)
	suite.Require().NoError(err)
	suite.fulfiller, err = kernel.NewActor(kernel.NewUUID(), kernel.Fulfiller)
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWorkFactory_Create() {
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	suite.NotSame(uow1, uow2, "Factory should create separate instances")
	suite.NotNil(uow1.OrderRepository())
	suite.NotNil(uow1.RatingRepository())
	suite.NotNil(uow1.FulfillerSummaryRepository())
	suite.NotNil(uow1.OutboxRepository())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := suite.T().Context()
	uow := suite.factory.Create()

	suite.Require().ErrorIs(uow.Commit(ctx), gorm.ErrInvalidTransaction)
	suite.Require().ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction)

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "Multiple begin calls should be safe")
	suite.Require().NoError(uow.Commit(ctx))
	suite.Require().ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction, "Rollback after commit is a no-op error")
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_CommitWritesOrderAndOutboxTogether() {
	ctx := suite.T().Context()
	created := suite.newOrder(order.Pending)
	msg, err := outbox.NewMessage(order.NewCreatedEvent(created), time.Now().UTC())
	suite.Require().NoError(err)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, created))
	suite.Require().NoError(uow.OutboxRepository().Add(ctx, msg))
	suite.Require().NoError(uow.Commit(ctx))

	tracked := uow.(*postgres_adapter.GormUnitOfWork).TrackedAggregates()
	suite.Require().Len(tracked, 1)
	suite.True(tracked[0].ID.IsEqual(created.ID()))

	_, err = suite.factory.Create().OrderRepository().Get(ctx, created.ID())
	suite.Require().NoError(err)
	pending, err := suite.factory.Create().OutboxRepository().GetUnpublished(ctx, 10)
	suite.Require().NoError(err)
	suite.Require().Len(pending, 1)
	suite.Equal(order.CreatedRoutingKey, pending[0].RoutingKey)
	suite.JSONEq(string(msg.Payload), string(pending[0].Payload))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RollbackDiscardsEverything() {
	ctx := suite.T().Context()
	created := suite.newOrder(order.Pending)
	msg, err := outbox.NewMessage(order.NewCreatedEvent(created), time.Now().UTC())
	suite.Require().NoError(err)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, created))
	suite.Require().NoError(uow.OutboxRepository().Add(ctx, msg))
	suite.Require().NoError(uow.Rollback(ctx))

	_, err = suite.factory.Create().OrderRepository().Get(ctx, created.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
	pending, err := suite.factory.Create().OutboxRepository().GetUnpublished(ctx, 10)
	suite.Require().NoError(err)
	suite.Empty(pending)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRatingRepository_DuplicateOrderIsTranslated() {
	ctx := suite.T().Context()
	repo := suite.factory.Create().RatingRepository()
	delivered := suite.newOrder(order.Delivered)

	first := suite.newRating(delivered, 5, time.Now().UTC())
	suite.Require().NoError(repo.Add(ctx, first))

	exists, err := repo.ExistsForOrder(ctx, delivered.ID())
	suite.Require().NoError(err)
	suite.True(exists)

	second := suite.newRating(delivered, 1, time.Now().UTC())
	suite.Require().ErrorIs(repo.Add(ctx, second), rating.ErrDuplicateRating)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRatingRepository_UpdateRoundTrip() {
	ctx := suite.T().Context()
	repo := suite.factory.Create().RatingRepository()
	categories, err := rating.NewCategories(map[string]int{"waterQuality": 5, "pricing": 3})
	suite.Require().NoError(err)
	r, err := rating.NewRating(kernel.NewUUID(), suite.newOrder(order.Delivered), order.PipelineWorkflow,
		suite.requester, 4, "Cold and on time", categories, time.Now().UTC().Truncate(time.Microsecond))
	suite.Require().NoError(err)
	suite.Require().NoError(repo.Add(ctx, r))

	voter := kernel.NewUUID()
	_, err = r.MarkHelpful(voter)
	suite.Require().NoError(err)
	suite.Require().NoError(r.AddResponse(suite.fulfiller, "Thank you", time.Now().UTC()))
	suite.Require().NoError(repo.Update(ctx, r))

	loaded, err := repo.Get(ctx, r.ID())
	suite.Require().NoError(err)
	suite.Equal(4, loaded.Score())
	suite.Equal("Cold and on time", loaded.Review())
	suite.Equal(rating.Categories{rating.WaterQuality: 5, rating.PricingValue: 3}, loaded.Categories())
	suite.Require().Len(loaded.HelpfulVoters(), 1)
	suite.True(loaded.HelpfulVoters()[0].IsEqual(voter))
	suite.Require().NotNil(loaded.Response())
	suite.Equal("Thank you", loaded.Response().Text)

	_, err = repo.Get(ctx, kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestSummaryRepository_ConcurrentAppliesSerialize() {
	ctx := suite.T().Context()
	scores := []int{5, 4, 3, 2, 1, 5, 4, 3}
	ratings := make([]*rating.Rating, 0, len(scores))
	for _, score := range scores {
		ratings = append(ratings, suite.newRating(suite.newOrder(order.Delivered), score, time.Now().UTC()))
	}

	var wg sync.WaitGroup
	for _, r := range ratings {
		wg.Add(1)
		go func() {
			defer wg.Done()
			uow := suite.factory.Create()
			suite.NoError(uow.Begin(ctx))
			defer func() { _ = uow.Rollback(ctx) }()

			summary, err := uow.FulfillerSummaryRepository().GetForUpdate(ctx, suite.fulfiller.ID())
			suite.NoError(err)
			suite.NoError(summary.Apply(r, time.Now().UTC()))
			suite.NoError(uow.FulfillerSummaryRepository().Save(ctx, summary))
			suite.NoError(uow.Commit(ctx))
		}()
	}
	wg.Wait()

	summary, err := suite.factory.Create().FulfillerSummaryRepository().Get(ctx, suite.fulfiller.ID())
	suite.Require().NoError(err)
	suite.Equal(len(scores), summary.Count())
	suite.InDelta(27.0/8.0, summary.Average(), 1e-9)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestSummaryRepository_GetUnknownIsEmpty() {
	summary, err := suite.factory.Create().FulfillerSummaryRepository().Get(suite.T().Context(), kernel.NewUUID())
	suite.Require().NoError(err)
	suite.Zero(summary.Count())
	suite.Empty(summary.Categories())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestOutboxRepository_MarkPublished() {
	ctx := suite.T().Context()
	repo := suite.factory.Create().OutboxRepository()
	created := suite.newOrder(order.Pending)

	base := time.Now().UTC().Add(-time.Minute)
	ids := make([]kernel.UUID, 0, 3)
	for i := range 3 {
		msg, err := outbox.NewMessage(order.NewCreatedEvent(created), base.Add(time.Duration(i)*time.Second))
		suite.Require().NoError(err)
		suite.Require().NoError(repo.Add(ctx, msg))
		ids = append(ids, msg.ID)
	}

	suite.Require().NoError(repo.MarkPublished(ctx, ids[0], time.Now().UTC()))
	suite.Require().NoError(repo.MarkPublished(ctx, ids[0], time.Now().UTC()), "marking twice is a no-op")
	suite.Require().ErrorIs(repo.MarkPublished(ctx, kernel.NewUUID(), time.Now().UTC()), errs.ErrObjectNotFound)

	pending, err := repo.GetUnpublished(ctx, 1)
	suite.Require().NoError(err)
	suite.Require().Len(pending, 1)
	suite.True(pending[0].ID.IsEqual(ids[1]), "oldest unpublished first")

	var payload map[string]any
	suite.Require().NoError(json.Unmarshal(pending[0].Payload, &payload))
	suite.Equal(created.ID().String(), payload["orderId"])
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRatingReader_PagesAndDistribution() {
	ctx := suite.T().Context()
	repo := suite.factory.Create().RatingRepository()
	reader := ratingrepo.NewGormRatingReader(suite.db)

	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	for i, score := range []int{4, 2, 5, 4} {
		suite.Require().NoError(repo.Add(ctx, suite.newRating(suite.newOrder(order.Delivered), score, base.Add(time.Duration(i)*time.Hour))))
	}

	page, total, err := reader.ListByFulfiller(ctx, suite.fulfiller.ID(), queries.SortHighest, 0, 3)
	suite.Require().NoError(err)
	suite.Equal(int64(4), total)
	suite.Require().Len(page, 3)
	suite.Equal([]int{5, 4, 4}, []int{page[0].Score(), page[1].Score(), page[2].Score()})
	suite.True(page[1].CreatedAt().After(page[2].CreatedAt()), "equal scores are newest first")

	oldest, _, err := reader.ListByFulfiller(ctx, suite.fulfiller.ID(), queries.SortOldest, 1, 1)
	suite.Require().NoError(err)
	suite.Require().Len(oldest, 1)
	suite.Equal(2, oldest[0].Score())

	distribution, err := reader.ScoreDistribution(ctx, suite.fulfiller.ID())
	suite.Require().NoError(err)
	suite.Equal(map[int]int{2: 1, 4: 2, 5: 1}, distribution)
}

func (suite *UnitOfWorkIntegrationTestSuite) newOrder(status order.Status) *order.Order {
	item, err := order.NewItem(decimal.NewFromInt(1), order.CubicMeters)
	suite.Require().NoError(err)
	pricing, err := order.NewPricing(item, decimal.NewFromInt(30), decimal.NewFromInt(5), "USD")
	suite.Require().NoError(err)
	coords, err := kernel.NewCoordinates(51.5074, -0.1278)
	suite.Require().NoError(err)
	destination, err := order.NewDestination(coords, "10 Downing St", "")
	suite.Require().NoError(err)

	o, err := order.RestoreOrder(order.State{
		ID:          kernel.NewUUID(),
		RequesterID: suite.requester.ID(),
		FulfillerID: suite.fulfiller.ID(),
		Item:        item,
		Pricing:     pricing,
		Destination: destination,
		Payment:     order.Payment{Method: order.BankTransfer, Status: order.PaymentPaid},
		Status:      status,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	})
	suite.Require().NoError(err)
	return o
}

func (suite *UnitOfWorkIntegrationTestSuite) newRating(o *order.Order, score int, at time.Time) *rating.Rating {
	r, err := rating.NewRating(kernel.NewUUID(), o, order.PipelineWorkflow, suite.requester, score, "", nil, at)
	suite.Require().NoError(err)
	return r
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
