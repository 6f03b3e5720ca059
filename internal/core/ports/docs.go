// Package ports declares the contracts the application core needs from the
// outside world: storage for orders, ratings, summaries and outbox messages,
// transaction control, and the event sinks it notifies.
package ports
