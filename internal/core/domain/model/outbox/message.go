// Package outbox holds integration events written in the same transaction
// as the aggregate change that produced them and relayed to the broker later.
package outbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/pkg/errs"
)

// Event is any payload that knows its broker routing key.
type Event interface {
	RoutingKey() string
}

// Message is one pending or published outbox entry.
type Message struct {
	ID          kernel.UUID
	RoutingKey  string
	Payload     []byte
	OccurredAt  time.Time
	PublishedAt *time.Time
}

// NewMessage serializes event as JSON.
func NewMessage(event Event, now time.Time) (Message, error) {
	if event == nil {
		return Message{}, errs.NewValueIsRequiredError("event")
	}
	key := strings.TrimSpace(event.RoutingKey())
	if key == "" {
		return Message{}, errs.NewValueIsRequiredError("routing key")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return Message{}, errs.NewValueIsInvalidErrorWithCause("event", fmt.Errorf("marshal %s: %w", key, err))
	}

	return Message{
		ID:         kernel.NewUUID(),
		RoutingKey: key,
		Payload:    payload,
		OccurredAt: now,
	}, nil
}

func (m Message) Validate() error {
	var keyErr error
	if m.RoutingKey == "" {
		keyErr = errs.NewValueIsRequiredError("routing key")
	}
	return errors.Join(m.ID.Validate(), keyErr)
}

func (m Message) IsPublished() bool {
	return m.PublishedAt != nil
}
