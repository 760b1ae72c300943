//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"rentnest/contract"
	"rentnest/domain"
	"rentnest/domain/event"
	"rentnest/errors"
	"rentnest/moderation"
	"rentnest/repositories"
	"rentnest/search"
)

type IChatService interface {
	CreateChat(listingID string, participants []string) (domain.Chat, error)
	GetChat(chatID string) (domain.Chat, error)
	PostMessage(ctx context.Context, cmd domain.PostMessageCommand) error
	JoinChat(userID, chatID string)
	Connect(userID string, sink contract.EventSink)
	Disconnect(userID string, sink contract.EventSink)
	SearchMessages(ctx context.Context, chatID, userID, query string, limit int) ([]search.Hit, error)
}

type ChatService struct {
	log       *slog.Logger
	chats     repositories.IChatRepository
	users     repositories.IUserRepository
	registry  contract.IRegistry
	moderator moderation.Moderator
	index     *search.MessageIndex
	events    chan event.DomainEvent
}

func NewChatService(
	log *slog.Logger,
	chats repositories.IChatRepository,
	users repositories.IUserRepository,
	registry contract.IRegistry,
	moderator moderation.Moderator,
	index *search.MessageIndex,
	events chan event.DomainEvent,
) *ChatService {
	return &ChatService{
		log:       log,
		chats:     chats,
		users:     users,
		registry:  registry,
		moderator: moderator,
		index:     index,
		events:    events,
	}
}

// CreateChat opens a conversation around a listing. Listing and participant
// ids are opaque references owned by other services; they are persisted as
// given, without existence or uniqueness checks.
func (s *ChatService) CreateChat(listingID string, participants []string) (domain.Chat, error) {
	return s.chats.CreateChat(listingID, participants)
}

// GetChat returns a chat with sender usernames resolved for display.
func (s *ChatService) GetChat(chatID string) (domain.Chat, error) {
	chat, err := s.chats.GetChatByID(chatID)
	if err != nil {
		return domain.Chat{}, err
	}
	return s.resolveSenderNames(chat)
}

// PostMessage validates, censors, durably appends, and then dispatches the
// message for asynchronous fan-out. The append is the commit point: an
// event is only emitted for messages already on disk.
func (s *ChatService) PostMessage(ctx context.Context, cmd domain.PostMessageCommand) error {
	if cmd.ChatID == "" {
		return fmt.Errorf("%w: empty", errors.ErrInvalidChatID)
	}
	if cmd.Text == "" {
		return errors.ErrEmptyMessage
	}

	chat, err := s.chats.GetChatByID(cmd.ChatID)
	if err != nil {
		return err
	}
	if !chat.HasParticipant(cmd.Sender) {
		return fmt.Errorf("%w: %s", errors.ErrNotParticipant, cmd.Sender)
	}

	text := s.moderator.Censor(cmd.Text)
	if _, err := s.chats.AppendMessage(cmd.ChatID, domain.Message{
		Sender: cmd.Sender,
		Text:   text,
		SentAt: cmd.At,
	}); err != nil {
		return err
	}

	recipients := lo.Filter(chat.Participants, func(p string, _ int) bool {
		return p != cmd.Sender
	})
	s.dispatch(event.MessagePosted{
		Chat:       cmd.ChatID,
		Sender:     cmd.Sender,
		Text:       text,
		At:         cmd.At,
		Recipients: lo.Uniq(recipients),
	})
	return nil
}

// JoinChat records room membership for a connected user. Idempotent, and
// deliberately decoupled from delivery: recipients get messages through
// their registered sinks whether or not they joined.
func (s *ChatService) JoinChat(userID, chatID string) {
	s.registry.JoinRoom(userID, chatID)
}

func (s *ChatService) Connect(userID string, sink contract.EventSink) {
	s.registry.Register(userID, sink)
}

func (s *ChatService) Disconnect(userID string, sink contract.EventSink) {
	s.registry.Unregister(userID, sink)
}

// SearchMessages runs a full-text query over one chat's history. Only
// participants may search their own conversations.
func (s *ChatService) SearchMessages(ctx context.Context, chatID, userID, query string, limit int) ([]search.Hit, error) {
	chat, err := s.chats.GetChatByID(chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(userID) {
		return nil, fmt.Errorf("%w: %s", errors.ErrNotParticipant, userID)
	}
	return s.index.Search(ctx, chatID, query, limit)
}

// dispatch hands the event to the fanout pipeline without ever blocking
// the caller. A full pipeline drops the realtime notification; the message
// itself is already persisted.
func (s *ChatService) dispatch(e event.DomainEvent) {
	select {
	case s.events <- e:
	default:
		s.log.Warn("Event pipeline full, dropping realtime notification",
			"chat_id", e.ChatID())
	}
}

func (s *ChatService) resolveSenderNames(chat domain.Chat) (domain.Chat, error) {
	senders := lo.Uniq(lo.Map(chat.Messages, func(m domain.Message, _ int) string {
		return m.Sender
	}))
	if len(senders) == 0 {
		return chat, nil
	}

	users, err := s.users.GetUsersByID(senders)
	if err != nil {
		return domain.Chat{}, err
	}
	for i := range chat.Messages {
		if user, ok := users[chat.Messages[i].Sender]; ok {
			chat.Messages[i].SenderName = user.Username
		}
	}
	return chat, nil
}
