package workers

import (
	"context"
	"log/slog"

	"rentnest/domain/event"
	"rentnest/search"
)

// IndexerWorker feeds accepted messages into the full-text index off the
// hot path. Indexing failures are logged and skipped: search lags behind
// rather than blocking or crashing message delivery.
type IndexerWorker struct {
	log    *slog.Logger
	index  *search.MessageIndex
	events chan event.DomainEvent
}

func NewIndexerWorker(log *slog.Logger, index *search.MessageIndex,
	events chan event.DomainEvent) *IndexerWorker {
	return &IndexerWorker{log: log, index: index, events: events}
}

func (w *IndexerWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping indexer")
			return nil
		case evt := <-w.events:
			posted, ok := evt.(event.MessagePosted)
			if !ok {
				continue
			}
			if err := w.index.IndexMessage(posted); err != nil {
				w.log.Error("Failed to index message",
					"chat_id", posted.Chat, "error", err)
			}
		}
	}
}
