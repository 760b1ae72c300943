package workers

import (
	"context"
	"log/slog"
	"time"

	"rentnest/contract"
	"rentnest/domain/event"
)

// FanoutWorker delivers posted-message events to the recipients' live
// connections and forwards every event to the search indexer.
//
// It provides best-effort fan-out with no delivery guarantees, ordering
// across senders, durability, or retries. It is not a message broker: a
// recipient with no live connection simply misses the event.
type FanoutWorker struct {
	log         *slog.Logger
	registry    contract.IRegistry
	events      chan event.DomainEvent
	indexEvents chan event.DomainEvent
	sinkTimeout time.Duration
}

func NewFanoutWorker(log *slog.Logger, registry contract.IRegistry,
	events, indexEvents chan event.DomainEvent, sinkTimeout time.Duration) *FanoutWorker {
	return &FanoutWorker{
		log:         log,
		registry:    registry,
		events:      events,
		indexEvents: indexEvents,
		sinkTimeout: sinkTimeout,
	}
}

func (w *FanoutWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fanout")
			return nil
		case evt := <-w.events:
			w.fanout(ctx, evt)
			select {
			case w.indexEvents <- evt:
			default:
				w.log.Debug("Index event dropped, channel full")
			}
		}
	}
}

// fanout resolves the event's recipients to live sinks and hands the event
// to each one. The sender is never among the recipients, so no self-echo
// can happen here.
func (w *FanoutWorker) fanout(ctx context.Context, evt event.DomainEvent) {
	posted, ok := evt.(event.MessagePosted)
	if !ok {
		return
	}

	for _, sink := range w.registry.SinksForUsers(posted.Recipients) {
		deliveryCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(deliveryCtx, posted); err != nil {
			w.log.Warn("Dropping event for slow connection",
				"chat_id", posted.Chat, "error", err)
		}
		cancel()
	}
}
