package jobs

import (
	"context"
	"log/slog"

	"waterline/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

const DefaultRelayBatch = 100

// OutboxRelayHandler is satisfied by commands.RelayOutboxCommandHandler.
type OutboxRelayHandler interface {
	Handle(ctx context.Context, cmd commands.RelayOutboxCommand) (int, error)
}

// OutboxRelayJob periodically pushes pending outbox messages to the broker.
type OutboxRelayJob struct {
	handler OutboxRelayHandler
	spec    string
	batch   int
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewOutboxRelayJob schedules the relay with a six-field cron spec
// (seconds first), e.g. "* * * * * *" for every second.
func NewOutboxRelayJob(handler OutboxRelayHandler, spec string, batch int, logger *slog.Logger) *OutboxRelayJob {
	if batch < 1 {
		batch = DefaultRelayBatch
	}
	return &OutboxRelayJob{
		handler: handler,
		spec:    spec,
		batch:   batch,
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  logger.With("component", "outbox_relay_job"),
	}
}

func (j *OutboxRelayJob) Start() error {
	if _, err := j.cron.AddFunc(j.spec, j.Run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Outbox relay job started", "schedule", j.spec, "batch", j.batch)
	return nil
}

// Run relays one batch. Exposed for the scheduler and for tests.
func (j *OutboxRelayJob) Run() {
	ctx := context.Background()

	cmd, err := commands.NewRelayOutboxCommand(j.batch)
	if err != nil {
		j.logger.ErrorContext(ctx, "Outbox relay job misconfigured", "error", err)
		return
	}

	published, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Outbox relay job failed", "published", published, "error", err)
		return
	}
	if published > 0 {
		j.logger.DebugContext(ctx, "Outbox messages relayed", "published", published)
	}
}

func (j *OutboxRelayJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Outbox relay job stopped")
}
