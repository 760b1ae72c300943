// Package domain contains the core entities of the rentnest chat system.
// No storage, transport, or UI logic should be added here.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Chat ties a listing to its participants and an append-only message history.
// Messages are embedded: the Chat document exclusively owns its sequence.
type Chat struct {
	ID           uuid.UUID
	ListingID    string
	Participants []string
	Messages     []Message
	CreatedAt    time.Time
}

// Message is one entry of a chat history. A Message never exists outside
// its parent Chat.
type Message struct {
	Sender     string
	SenderName string // resolved from the user store on read, empty otherwise
	Text       string
	SentAt     time.Time
}

// HasParticipant reports whether userID is exactly one of the chat's
// participants. Membership is an equality check, never a prefix match.
func (c Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}
