// Package gateway is the websocket edge of the chat system: it
// authenticates the upgrade, bridges frames to the chat service, and
// writes fan-out events back to the client.
package gateway

import (
	"context"
	"errors"

	"rentnest/domain/event"
)

var ErrSinkFull = errors.New("connection buffer full")

// Sink is the per-connection event inbox bridging the fanout worker to
// this connection's write pump.
type Sink struct {
	Events chan event.DomainEvent
}

func NewSink(buffer int) *Sink {
	return &Sink{Events: make(chan event.DomainEvent, buffer)}
}

// Consume enqueues without ever blocking the fanout worker: when this
// connection's buffer is full, the event is dropped for this connection
// only.
func (s *Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrSinkFull
	}
}
