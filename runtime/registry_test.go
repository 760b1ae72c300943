package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"rentnest/domain/event"
)

type nopSink struct{ name string }

func (s *nopSink) Consume(_ context.Context, _ event.DomainEvent) error { return nil }

func TestRegistry_Register_And_Resolve(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink1 := &nopSink{"s1"}
	sink2 := &nopSink{"s2"}

	registry.Register("u1", sink1)
	registry.Register("u2", sink2)

	sinks := registry.SinksForUsers([]string{"u1"})
	req.Len(sinks, 1)
	req.Contains(sinks, sink1)

	sinks = registry.SinksForUsers([]string{"u1", "u2"})
	req.Len(sinks, 2)

	// Unknown users resolve to nothing.
	req.Empty(registry.SinksForUsers([]string{"ghost"}))
}

func TestRegistry_Multiple_Connections_Per_User(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	tab1 := &nopSink{"tab1"}
	tab2 := &nopSink{"tab2"}

	registry.Register("u1", tab1)
	registry.Register("u1", tab2)
	req.Len(registry.SinksForUsers([]string{"u1"}), 2)

	// Dropping one tab keeps the other alive.
	registry.Unregister("u1", tab1)
	sinks := registry.SinksForUsers([]string{"u1"})
	req.Len(sinks, 1)
	req.Contains(sinks, tab2)
}

func TestRegistry_JoinRoom_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink := &nopSink{"s"}

	registry.Register("u1", sink)
	registry.JoinRoom("u1", "chat-1")
	registry.JoinRoom("u1", "chat-1")
	registry.JoinRoom("u1", "chat-1")

	req.Len(registry.SinksForRoom("chat-1"), 1)
}

func TestRegistry_Unregister_Last_Connection_Drops_Rooms(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink := &nopSink{"s"}

	registry.Register("u1", sink)
	registry.JoinRoom("u1", "chat-1")
	registry.JoinRoom("u1", "chat-2")

	registry.Unregister("u1", sink)

	req.Empty(registry.SinksForUsers([]string{"u1"}))
	req.Empty(registry.SinksForRoom("chat-1"))
	req.Empty(registry.SinksForRoom("chat-2"))
}

func TestRegistry_Room_With_Offline_Member(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink := &nopSink{"s"}

	registry.Register("u1", sink)
	registry.JoinRoom("u1", "chat-1")
	registry.JoinRoom("u2", "chat-1") // u2 joined but has no live connection

	sinks := registry.SinksForRoom("chat-1")
	req.Len(sinks, 1)
	req.Contains(sinks, sink)
}
