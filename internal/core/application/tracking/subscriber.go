package tracking

import (
	"errors"
	"sync"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/order"
)

type Event string

const (
	EventLocationUpdated Event = "location-updated"
	EventStatusUpdated   Event = "order-status-updated"
)

var (
	ErrSubscriberClosed = errors.New("subscriber is closed")
	ErrSubscriberFull   = errors.New("subscriber buffer is full")
)

// Message is what a room fans out. Snapshot is set for location updates,
// Status for status updates.
type Message struct {
	Event    Event
	OrderID  kernel.UUID
	Snapshot Snapshot
	Status   order.Status
}

// Subscriber is a handle registered in one or more rooms.
// Deliver must not block; it returns ErrSubscriberClosed once the handle is
// gone and ErrSubscriberFull when the message had to be dropped.
type Subscriber interface {
	ID() string
	Deliver(msg Message) error
	Closed() bool
}

// ChannelSubscriber buffers messages on a channel for a connection writer.
// The channel is never closed; readers select on Done as well.
type ChannelSubscriber struct {
	id   string
	ch   chan Message
	done chan struct{}
	once sync.Once
}

func NewChannelSubscriber(id string, buffer int) *ChannelSubscriber {
	if buffer < 1 {
		buffer = 1
	}
	return &ChannelSubscriber{
		id:   id,
		ch:   make(chan Message, buffer),
		done: make(chan struct{}),
	}
}

func (s *ChannelSubscriber) ID() string {
	return s.id
}

func (s *ChannelSubscriber) Deliver(msg Message) error {
	select {
	case <-s.done:
		return ErrSubscriberClosed
	default:
	}

	select {
	case s.ch <- msg:
		return nil
	default:
		return ErrSubscriberFull
	}
}

func (s *ChannelSubscriber) Messages() <-chan Message {
	return s.ch
}

func (s *ChannelSubscriber) Done() <-chan struct{} {
	return s.done
}

// Close marks the subscriber gone. Safe to call more than once.
func (s *ChannelSubscriber) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *ChannelSubscriber) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
