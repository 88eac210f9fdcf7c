package sink

import (
	"context"
	"messenger/domain"
	"messenger/domain/event"
	"messenger/errors"
	"sync"
)

// ChannelSink is the outbound queue of one open connection.
// The router pushes into it, the connection writer drains Events.
type ChannelSink struct {
	id        domain.ChannelID
	events    chan event.DomainEvent
	done      chan struct{}
	closeOnce sync.Once
}

func NewChannelSink(id domain.ChannelID, bufferSize int) *ChannelSink {
	return &ChannelSink{
		id:     id,
		events: make(chan event.DomainEvent, bufferSize),
		done:   make(chan struct{}),
	}
}

func (s *ChannelSink) ID() domain.ChannelID {
	return s.id
}

// Consume enqueues e without waiting on the reader.
// A full queue returns ErrChannelFull so a slow peer never stalls delivery
// to the others.
func (s *ChannelSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case <-s.done:
		return errors.ErrChannelClosed
	default:
	}

	select {
	case s.events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return errors.ErrChannelClosed
	default:
		return errors.ErrChannelFull
	}
}

// Events is drained by the connection writer.
func (s *ChannelSink) Events() <-chan event.DomainEvent {
	return s.events
}

// Done is closed once the connection is gone.
func (s *ChannelSink) Done() <-chan struct{} {
	return s.done
}

// Close marks the channel as gone. The events queue is left open so a
// concurrent Consume can never panic on a closed channel.
func (s *ChannelSink) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Backlog reports how many events wait in the queue and its capacity.
func (s *ChannelSink) Backlog() (length, capacity int) {
	return len(s.events), cap(s.events)
}
