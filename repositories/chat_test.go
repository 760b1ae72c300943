package repositories

import (
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"rentnest/domain"
	"rentnest/errors"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Create_And_Get_Chat(t *testing.T) {
	req := require.New(t)
	repository := NewChatRepository(openTestDB(t), slog.Default())

	chat, err := repository.CreateChat("listing-42", []string{"u1", "u2"})
	req.NoError(err)
	req.Equal("listing-42", chat.ListingID)
	req.Equal([]string{"u1", "u2"}, chat.Participants)
	req.Empty(chat.Messages)

	fetched, err := repository.GetChatByID(chat.ID.String())
	req.NoError(err)
	req.Equal(chat.ID, fetched.ID)
	req.Equal(chat.Participants, fetched.Participants)
	req.Empty(fetched.Messages)
}

func Test_Get_Chat_Invalid_ID(t *testing.T) {
	req := require.New(t)
	repository := NewChatRepository(openTestDB(t), slog.Default())

	_, err := repository.GetChatByID("definitely-not-a-uuid")
	req.ErrorIs(err, errors.ErrInvalidChatID)
}

func Test_Get_Chat_Not_Found(t *testing.T) {
	req := require.New(t)
	repository := NewChatRepository(openTestDB(t), slog.Default())

	_, err := repository.GetChatByID("3b5a2a4e-4f24-44f0-a7a4-6a2f8a3c9d11")
	req.ErrorIs(err, errors.ErrChatNotFound)
}

func Test_Append_Preserves_Order(t *testing.T) {
	req := require.New(t)
	repository := NewChatRepository(openTestDB(t), slog.Default())

	chat, err := repository.CreateChat("listing-1", []string{"u1", "u2"})
	req.NoError(err)

	at := time.Now().UTC()
	for i := 0; i < 5; i++ {
		_, err := repository.AppendMessage(chat.ID.String(), domain.Message{
			Sender: "u1",
			Text:   fmt.Sprintf("message %d", i),
			SentAt: at.Add(time.Duration(i) * time.Second),
		})
		req.NoError(err)
	}

	fetched, err := repository.GetChatByID(chat.ID.String())
	req.NoError(err)
	req.Len(fetched.Messages, 5)
	for i, m := range fetched.Messages {
		req.Equal(fmt.Sprintf("message %d", i), m.Text)
		req.Equal("u1", m.Sender)
	}
}

func Test_Append_To_Missing_Chat(t *testing.T) {
	req := require.New(t)
	repository := NewChatRepository(openTestDB(t), slog.Default())

	_, err := repository.AppendMessage("3b5a2a4e-4f24-44f0-a7a4-6a2f8a3c9d11", domain.Message{
		Sender: "u1", Text: "hello", SentAt: time.Now().UTC(),
	})
	req.ErrorIs(err, errors.ErrChatNotFound)
}

// Concurrent appends to the same chat must all survive and keep each
// sender's own ordering. This is the no-lost-update guarantee the retry on
// badger.ErrConflict provides.
func Test_Concurrent_Appends_No_Lost_Update(t *testing.T) {
	req := require.New(t)
	repository := NewChatRepository(openTestDB(t), slog.Default())

	const (
		senders           = 4
		messagesPerSender = 25
	)
	participants := make([]string, senders)
	for i := range participants {
		participants[i] = fmt.Sprintf("u%d", i)
	}

	chat, err := repository.CreateChat("listing-1", participants)
	req.NoError(err)

	var wg sync.WaitGroup
	for s := 0; s < senders; s++ {
		wg.Add(1)
		go func(sender string) {
			defer wg.Done()
			for i := 0; i < messagesPerSender; i++ {
				_, err := repository.AppendMessage(chat.ID.String(), domain.Message{
					Sender: sender,
					Text:   fmt.Sprintf("%s-%d", sender, i),
					SentAt: time.Now().UTC(),
				})
				require.NoError(t, err)
			}
		}(participants[s])
	}
	wg.Wait()

	fetched, err := repository.GetChatByID(chat.ID.String())
	req.NoError(err)
	req.Len(fetched.Messages, senders*messagesPerSender)

	// Per-sender subsequences must appear in send order.
	next := make(map[string]int)
	for _, m := range fetched.Messages {
		req.Equal(fmt.Sprintf("%s-%d", m.Sender, next[m.Sender]), m.Text)
		next[m.Sender]++
	}
}
