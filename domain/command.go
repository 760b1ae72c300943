package domain

import "time"

// PostMessageCommand is the intent of an authenticated connection to append
// a message to a chat. Sender is always the identity bound at connect time,
// never a client-supplied field.
type PostMessageCommand struct {
	ChatID string
	Sender string
	Text   string
	At     time.Time
}
