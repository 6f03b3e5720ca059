package commands

import (
	"errors"

	"waterline/internal/pkg/errs"
	"waterline/internal/pkg/guard"
)

const MaxRelayBatch = 500

var ErrRelayOutboxCommandIsNotConstructed = errors.New(
	"RelayOutboxCommand must be created via NewRelayOutboxCommand constructor",
)

// RelayOutboxCommand pushes up to batch pending outbox messages to the broker.
type RelayOutboxCommand struct {
	batch int

	guard guard.ConstructorGuard
}

func NewRelayOutboxCommand(batch int) (RelayOutboxCommand, error) {
	if batch < 1 || batch > MaxRelayBatch {
		return RelayOutboxCommand{}, errs.NewValueIsOutOfRangeError("batch", batch, 1, MaxRelayBatch)
	}

	return RelayOutboxCommand{
		batch: batch,
		guard: guard.NewConstructorGuard(),
	}, nil
}

func (c RelayOutboxCommand) Validate() error {
	return c.guard.Validate(ErrRelayOutboxCommandIsNotConstructed)
}

func (c RelayOutboxCommand) Batch() int {
	return c.batch
}
