//go:generate go run go.uber.org/mock/mockgen -source=chat.go -destination=../mocks/mock_chat_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"rentnest/domain"
	"rentnest/errors"
)

type IChatRepository interface {
	CreateChat(listingID string, participants []string) (domain.Chat, error)
	GetChatByID(id string) (domain.Chat, error)
	AppendMessage(chatID string, message domain.Message) (domain.Chat, error)
}

type ChatRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewChatRepository(db *badger.DB, log *slog.Logger) ChatRepository {
	return ChatRepository{db: db, log: log}
}

// DiskChat is the stored form of a chat. The whole document, message
// history included, is rewritten on every append; Badger's serializable
// transactions make that rewrite safe under concurrent writers.
type DiskChat struct {
	ID           string        `json:"id"`
	ListingID    string        `json:"listing_id"`
	Participants []string      `json:"participants"`
	Messages     []DiskMessage `json:"messages"`
	CreatedAt    int64         `json:"created_at"` // unix nanoseconds
}

type DiskMessage struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
	At     int64  `json:"at"` // unix nanoseconds
}

func chatKey(id uuid.UUID) []byte {
	return []byte("chat:" + id.String())
}

// CreateChat persists a new chat with an empty message sequence. Listing and
// participant ids are stored as given: their existence is owned by external
// services and is deliberately not checked here.
func (r ChatRepository) CreateChat(listingID string, participants []string) (domain.Chat, error) {
	doc := DiskChat{
		ID:           uuid.NewString(),
		ListingID:    listingID,
		Participants: participants,
		Messages:     nil,
		CreatedAt:    time.Now().UTC().UnixNano(),
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return domain.Chat{}, err
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(chatKey(uuid.MustParse(doc.ID)), raw)
	})
	if err != nil {
		return domain.Chat{}, err
	}
	return toChat(doc)
}

// GetChatByID loads one chat document. A syntactically invalid id fails with
// ErrInvalidChatID before touching storage; a well-formed but unknown id
// fails with ErrChatNotFound.
func (r ChatRepository) GetChatByID(id string) (domain.Chat, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return domain.Chat{}, fmt.Errorf("%w: %q", errors.ErrInvalidChatID, id)
	}

	var doc DiskChat
	err = r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(chatKey(parsed))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		})
	})
	switch {
	case err == nil:
		return toChat(doc)
	case stderrors.Is(err, badger.ErrKeyNotFound):
		return domain.Chat{}, fmt.Errorf("%w: %s", errors.ErrChatNotFound, id)
	default:
		return domain.Chat{}, err
	}
}

// AppendMessage appends one message to the chat's history and rewrites the
// document inside a single transaction. Badger detects write conflicts on
// the read key at commit time, so two concurrent appends can never overwrite
// each other: the loser re-reads the updated document and retries.
func (r ChatRepository) AppendMessage(chatID string, message domain.Message) (domain.Chat, error) {
	parsed, err := uuid.Parse(chatID)
	if err != nil {
		return domain.Chat{}, fmt.Errorf("%w: %q", errors.ErrInvalidChatID, chatID)
	}
	key := chatKey(parsed)

	for {
		var doc DiskChat
		err := r.db.Update(func(txn *badger.Txn) error {
			item, err := txn.Get(key)
			if err != nil {
				return err
			}
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &doc)
			}); err != nil {
				return err
			}

			doc.Messages = append(doc.Messages, DiskMessage{
				Sender: message.Sender,
				Text:   message.Text,
				At:     message.SentAt.UTC().UnixNano(),
			})
			raw, err := json.Marshal(doc)
			if err != nil {
				return err
			}
			return txn.Set(key, raw)
		})

		switch {
		case err == nil:
			return toChat(doc)
		case stderrors.Is(err, badger.ErrConflict):
			r.log.Debug("concurrent append detected, retrying", "chat_id", chatID)
			continue
		case stderrors.Is(err, badger.ErrKeyNotFound):
			return domain.Chat{}, fmt.Errorf("%w: %s", errors.ErrChatNotFound, chatID)
		default:
			return domain.Chat{}, err
		}
	}
}

func toChat(doc DiskChat) (domain.Chat, error) {
	parsedID, err := uuid.Parse(doc.ID)
	if err != nil {
		return domain.Chat{}, err
	}
	return domain.Chat{
		ID:           parsedID,
		ListingID:    doc.ListingID,
		Participants: doc.Participants,
		Messages: lo.Map(doc.Messages, func(m DiskMessage, _ int) domain.Message {
			return domain.Message{
				Sender: m.Sender,
				Text:   m.Text,
				SentAt: time.Unix(0, m.At).UTC(),
			}
		}),
		CreatedAt: time.Unix(0, doc.CreatedAt).UTC(),
	}, nil
}
