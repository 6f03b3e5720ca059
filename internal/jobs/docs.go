// Package jobs provides scheduled background tasks.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. OutboxRelayJob - publishes pending outbox messages to the broker (every second by default)
// 2. RoomJanitorJob - evicts closed live-tracking subscribers and empty rooms (every 10 seconds by default)
//
// # Usage
//
//	jobManager := jobs.NewJobManager(relayHandler, hub, jobs.Schedules{
//		OutboxRelay: "* * * * * *",
//		RoomJanitor: "*/10 * * * * *",
//		RelayBatch:  100,
//	}, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// - Relay failures are logged; the unpublished tail is retried on the next tick
// - Failed job starts will stop any already running jobs
package jobs
