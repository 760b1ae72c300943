// Package runtime owns connection bookkeeping and the background workers
// that move events from the chat service to live connections.
package runtime

import (
	"sync"

	"rentnest/contract"
)

type Set map[string]struct{}

// Registry is the connection manager. It owns two mappings:
//
//   - sessions: user id -> the set of that user's live sinks (one per open
//     connection; a user may have several tabs open at once);
//   - rooms: chat id -> the set of user ids that joined the room.
//
// Broadcast targeting resolves participant ids to sinks directly through
// sessions, so a participant receives messages whether or not they joined
// the chat room explicitly.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]map[contract.EventSink]struct{}
	rooms    map[string]Set
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]map[contract.EventSink]struct{}),
		rooms:    make(map[string]Set),
	}
}

// Register records one live connection for a user. Called once per
// successful authenticated connect.
func (r *Registry) Register(userID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[userID]; !ok {
		r.sessions[userID] = make(map[contract.EventSink]struct{})
	}
	r.sessions[userID][sink] = struct{}{}
}

// Unregister drops one connection. When it was the user's last live
// connection, their room memberships are dropped too, and rooms left empty
// are removed entirely so the maps cannot leak over time.
func (r *Registry) Unregister(userID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sinks, ok := r.sessions[userID]
	if !ok {
		return
	}
	delete(sinks, sink)
	if len(sinks) > 0 {
		return
	}
	delete(r.sessions, userID)

	for chatID, members := range r.rooms {
		delete(members, userID)
		if len(members) == 0 {
			delete(r.rooms, chatID)
		}
	}
}

// JoinRoom adds a user to a chat-keyed room. Idempotent: joining twice has
// no additional effect.
func (r *Registry) JoinRoom(userID, chatID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[chatID]; !ok {
		r.rooms[chatID] = make(Set)
	}
	r.rooms[chatID][userID] = struct{}{}
}

// SinksForUsers resolves user ids to every live sink those users hold.
// Users with no live connection contribute nothing.
func (r *Registry) SinksForUsers(userIDs []string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sinks []contract.EventSink
	for _, id := range userIDs {
		for sink := range r.sessions[id] {
			sinks = append(sinks, sink)
		}
	}
	return sinks
}

// SinksForRoom retrieves all live sinks of the users who joined a room.
// It performs a two-step lookup: room members first, then each member's
// sessions, so a connection is always managed in a single place.
func (r *Registry) SinksForRoom(chatID string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.rooms[chatID]
	if !ok {
		return nil
	}
	var sinks []contract.EventSink
	for userID := range members {
		for sink := range r.sessions[userID] {
			sinks = append(sinks, sink)
		}
	}
	return sinks
}
