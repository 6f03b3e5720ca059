package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// RoomSweeper is satisfied by *tracking.Hub.
type RoomSweeper interface {
	Sweep(ctx context.Context) int
}

// RoomJanitorJob evicts subscribers whose connections went away without
// leaving their rooms, and with them any room left empty.
type RoomJanitorJob struct {
	hub    RoomSweeper
	spec   string
	cron   *cron.Cron
	logger *slog.Logger
}

func NewRoomJanitorJob(hub RoomSweeper, spec string, logger *slog.Logger) *RoomJanitorJob {
	return &RoomJanitorJob{
		hub:    hub,
		spec:   spec,
		cron:   cron.New(cron.WithSeconds()),
		logger: logger.With("component", "room_janitor_job"),
	}
}

func (j *RoomJanitorJob) Start() error {
	if _, err := j.cron.AddFunc(j.spec, j.Run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Room janitor job started", "schedule", j.spec)
	return nil
}

func (j *RoomJanitorJob) Run() {
	ctx := context.Background()
	if evicted := j.hub.Sweep(ctx); evicted > 0 {
		j.logger.InfoContext(ctx, "Evicted closed subscribers", "count", evicted)
	}
}

func (j *RoomJanitorJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Room janitor job stopped")
}
