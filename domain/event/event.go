// Package event defines the domain events flowing through the fanout
// pipeline towards live connections and the search indexer.
package event

import "time"

// DomainEvent is anything the fanout pipeline can deliver.
type DomainEvent interface {
	ChatID() string
}

// MessagePosted is emitted after a message has been durably appended to its
// chat. Recipients is the participant list minus the sender, fixed at post
// time, so delivery never needs to reload the chat.
type MessagePosted struct {
	Chat       string
	Sender     string
	Text       string
	At         time.Time
	Recipients []string
}

func (m MessagePosted) ChatID() string { return m.Chat }
