package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/contrib/websocket"

	"rentnest/domain"
	"rentnest/domain/event"
	"rentnest/services"
)

const (
	EventJoinChat = "joinChat"
	EventMessage  = "message"

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Frame is the JSON envelope exchanged over the websocket. Inbound frames
// carry Event plus ChatID (and Message for posts); outbound frames carry
// Event, Sender and Text.
type Frame struct {
	Event   string `json:"event"`
	ChatID  string `json:"chatId,omitempty"`
	Message string `json:"message,omitempty"`
	Sender  string `json:"sender,omitempty"`
	Text    string `json:"text,omitempty"`
}

// client is one authenticated websocket connection. Its identity comes
// from the validated token, never from frame content.
type client struct {
	log      *slog.Logger
	conn     *websocket.Conn
	chats    services.IChatService
	sink     *Sink
	userID   string
	username string
	done     chan struct{}
}

func newClient(log *slog.Logger, conn *websocket.Conn, chats services.IChatService,
	userID, username string, buffer int) *client {
	return &client{
		log:      log.With("user_id", userID),
		conn:     conn,
		chats:    chats,
		sink:     NewSink(buffer),
		userID:   userID,
		username: username,
		done:     make(chan struct{}),
	}
}

func (c *client) run() {
	c.chats.Connect(c.userID, c.sink)
	defer func() {
		c.chats.Disconnect(c.userID, c.sink)
		c.conn.Close()
	}()

	go c.writePump()
	c.readPump()
}

// readPump consumes inbound frames until the connection dies. Invalid
// frames are dropped silently on the wire, with a server-side log line.
func (c *client) readPump() {
	defer close(c.done)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var frame Frame
		if err := c.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("Websocket read error", "error", err)
			} else {
				c.log.Debug("Websocket closed", "error", err)
			}
			return
		}
		c.handleFrame(frame)
	}
}

func (c *client) handleFrame(frame Frame) {
	switch frame.Event {
	case EventJoinChat:
		if frame.ChatID == "" {
			c.log.Debug("Join frame without chat id, dropped")
			return
		}
		c.chats.JoinChat(c.userID, frame.ChatID)
	case EventMessage:
		err := c.chats.PostMessage(context.Background(), domain.PostMessageCommand{
			ChatID: frame.ChatID,
			Sender: c.userID,
			Text:   frame.Message,
			At:     time.Now().UTC(),
		})
		if err != nil {
			// The client gets no error frame; failures only surface in logs.
			c.log.Warn("Message frame rejected",
				"chat_id", frame.ChatID, "error", err)
		}
	default:
		c.log.Debug("Unknown frame event, dropped", "event", frame.Event)
	}
}

// writePump serializes all writes to the connection: fanned-out events
// and keepalive pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case evt := <-c.sink.Events:
			posted, ok := evt.(event.MessagePosted)
			if !ok {
				continue
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(Frame{
				Event:  EventMessage,
				Sender: posted.Sender,
				Text:   posted.Text,
			}); err != nil {
				c.log.Warn("Websocket write error", "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.Debug("Websocket ping failed", "error", err)
				return
			}
		case <-c.done:
			return
		}
	}
}
