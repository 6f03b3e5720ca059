package jobs

import (
	"fmt"
	"log/slog"
)

// Schedules holds the cron specs for every job.
type Schedules struct {
	OutboxRelay string
	RoomJanitor string
	RelayBatch  int
}

// JobManager coordinates all scheduled jobs in the application.
// The relay job is optional: it is nil when no broker is configured.
type JobManager struct {
	outboxRelayJob *OutboxRelayJob
	roomJanitorJob *RoomJanitorJob
}

// NewJobManager wires the jobs. A nil relay handler leaves the outbox
// undrained, which is what a broker-less local run wants.
func NewJobManager(
	relayHandler OutboxRelayHandler,
	hub RoomSweeper,
	schedules Schedules,
	logger *slog.Logger,
) *JobManager {
	jm := &JobManager{
		roomJanitorJob: NewRoomJanitorJob(hub, schedules.RoomJanitor, logger),
	}
	if relayHandler != nil {
		jm.outboxRelayJob = NewOutboxRelayJob(relayHandler, schedules.OutboxRelay, schedules.RelayBatch, logger)
	}
	return jm
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.roomJanitorJob.Start(); err != nil {
		return fmt.Errorf("failed to start room janitor job: %w", err)
	}

	if jm.outboxRelayJob != nil {
		if err := jm.outboxRelayJob.Start(); err != nil {
			// Stop already started jobs if this one fails
			jm.roomJanitorJob.Stop()
			return fmt.Errorf("failed to start outbox relay job: %w", err)
		}
	}

	return nil
}

// StopAll stops all scheduled jobs and waits for running ones to finish.
func (jm *JobManager) StopAll() {
	if jm.outboxRelayJob != nil {
		jm.outboxRelayJob.Stop()
	}
	jm.roomJanitorJob.Stop()
}
