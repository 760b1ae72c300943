package gateway

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"rentnest/auth"
	"rentnest/domain/event"
)

func Test_Sink_Consume_Never_Blocks(t *testing.T) {
	sink := NewSink(1)
	evt := event.MessagePosted{Chat: "chat-1", Sender: "u1", Text: "hi"}

	require.NoError(t, sink.Consume(context.Background(), evt))
	require.ErrorIs(t, sink.Consume(context.Background(), evt), ErrSinkFull)

	received := <-sink.Events
	require.Equal(t, evt, received)
}

func Test_Sink_Consume_Cancelled_Context(t *testing.T) {
	sink := NewSink(1)
	require.NoError(t, sink.Consume(context.Background(), event.MessagePosted{Chat: "c"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := sink.Consume(ctx, event.MessagePosted{Chat: "c"})
	require.Error(t, err)
}

func newUpgradeApp(t *testing.T, secret []byte) *fiber.App {
	t.Helper()
	gw := NewGateway(slog.Default(), nil, secret, 8)

	app := fiber.New()
	app.Get("/ws", gw.Upgrade, func(c *fiber.Ctx) error {
		claims, ok := c.Locals(claimsLocal).(*auth.CustomClaims)
		require.True(t, ok)
		return c.SendString(claims.UserID)
	})
	return app
}

func Test_Upgrade_Requires_Websocket_Handshake(t *testing.T) {
	secret := []byte("handshake-secret")
	app := newUpgradeApp(t, secret)

	req := httptest.NewRequest("GET", "/ws", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func Test_Upgrade_Rejects_Missing_Token(t *testing.T) {
	secret := []byte("handshake-secret")
	app := newUpgradeApp(t, secret)

	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func Test_Upgrade_Rejects_Invalid_Token(t *testing.T) {
	secret := []byte("handshake-secret")
	app := newUpgradeApp(t, secret)

	req := httptest.NewRequest("GET", "/ws?token=garbage", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func Test_Upgrade_Accepts_Valid_Token(t *testing.T) {
	secret := []byte("handshake-secret")
	app := newUpgradeApp(t, secret)

	token, err := auth.GenerateToken("user-42", "alice", secret, time.Hour)
	require.NoError(t, err)

	for _, target := range []string{
		"/ws?token=" + token,
		"/ws",
	} {
		req := httptest.NewRequest("GET", target, nil)
		req.Header.Set("Connection", "Upgrade")
		req.Header.Set("Upgrade", "websocket")
		if target == "/ws" {
			req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		}

		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}
