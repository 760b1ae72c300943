// Package search maintains a full-text index over accepted chat messages.
package search

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/blugelabs/bluge"

	"rentnest/domain/event"
)

// MessageIndex wraps a bluge writer. Indexing is best effort and happens
// off the message hot path, so search results can lag slightly behind the
// chat store.
type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

type Hit struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
	Lang   string `json:"lang"`
	SentAt int64  `json:"sentAt"`
}

func NewMessageIndex(path string, log *slog.Logger) (*MessageIndex, error) {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return nil, err
	}
	return &MessageIndex{writer: writer, log: log}, nil
}

func (i *MessageIndex) Close() error {
	return i.writer.Close()
}

// IndexMessage stores one message document, keyed so re-delivery of the
// same event overwrites instead of duplicating.
func (i *MessageIndex) IndexMessage(e event.MessagePosted) error {
	nanos := e.At.UnixNano()
	lang := whatlanggo.LangToString(whatlanggo.Detect(e.Text).Lang)

	docID := e.Chat + ":" + strconv.FormatInt(nanos, 10) + ":" + e.Sender
	doc := bluge.NewDocument(docID).
		AddField(bluge.NewKeywordField("chat_id", e.Chat).StoreValue()).
		AddField(bluge.NewKeywordField("sender", e.Sender).StoreValue()).
		AddField(bluge.NewKeywordField("lang", lang).StoreValue()).
		AddField(bluge.NewTextField("text", e.Text).StoreValue()).
		AddField(bluge.NewStoredOnlyField("sent_at", []byte(strconv.FormatInt(nanos, 10))))

	return i.writer.Update(doc.ID(), doc)
}

const defaultSearchLimit = 20

// Search matches the query against message text within a single chat.
// A non-positive limit falls back to the default.
func (i *MessageIndex) Search(ctx context.Context, chatID, query string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	q := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(chatID).SetField("chat_id")).
		AddMust(bluge.NewMatchQuery(query).SetField("text"))

	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			i.log.Warn("Failed to close index reader", "error", err)
		}
	}()

	iter, err := reader.Search(ctx, bluge.NewTopNSearch(limit, q))
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, limit)
	for {
		match, err := iter.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}

		var hit Hit
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "sender":
				hit.Sender = string(value)
			case "text":
				hit.Text = string(value)
			case "lang":
				hit.Lang = string(value)
			case "sent_at":
				if nanos, parseErr := strconv.ParseInt(string(value), 10, 64); parseErr == nil {
					hit.SentAt = time.Unix(0, nanos).UnixMilli()
				}
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
