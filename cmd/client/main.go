// Command client is a terminal chat client: it prints the chat history,
// then joins the conversation over the websocket and relays stdin lines
// as messages.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"

	"rentnest/gateway"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

type Config struct {
	ServerAddr string `envconfig:"CHAT_SERVER_ADDR" default:"localhost:3000"`
	Token      string `envconfig:"CHAT_TOKEN" required:"true"`
	ChatID     string `envconfig:"CHAT_ID" required:"true"`
}

type chatResponse struct {
	ID       string `json:"id"`
	Messages []struct {
		Sender   string `json:"sender"`
		Username string `json:"username"`
		Text     string `json:"text"`
		SentAt   int64  `json:"sentAt"`
	} `json:"messages"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Configuration
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Chat history over REST
	if err := printHistory(ctx, config); err != nil {
		return exitRuntime, err
	}

	// 3. Realtime connection
	wsURL := url.URL{
		Scheme:   "ws",
		Host:     config.ServerAddr,
		Path:     "/ws",
		RawQuery: "token=" + url.QueryEscape(config.Token),
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to %s: %w", config.ServerAddr, err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(gateway.Frame{
		Event:  gateway.EventJoinChat,
		ChatID: config.ChatID,
	}); err != nil {
		return exitRuntime, fmt.Errorf("join failed: %w", err)
	}
	color.Greenln(">>> Connected. Type a message and press enter (Ctrl+C to quit).")

	// 4. Reception loop
	go func() {
		for {
			var frame gateway.Frame
			if err := conn.ReadJSON(&frame); err != nil {
				if ctx.Err() == nil {
					color.Redln("connection closed:", err)
				}
				stop()
				return
			}
			if frame.Event != gateway.EventMessage {
				continue
			}
			color.Cyanp(frame.Sender + " ")
			color.Println(frame.Text)
		}
	}()

	// 5. Stdin loop
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			color.Yellowln("Stopping client...")
			return exitOK, nil
		case line, ok := <-lines:
			if !ok {
				return exitOK, nil
			}
			if line == "" {
				continue
			}
			if err := conn.WriteJSON(gateway.Frame{
				Event:   gateway.EventMessage,
				ChatID:  config.ChatID,
				Message: line,
			}); err != nil {
				return exitRuntime, fmt.Errorf("send failed: %w", err)
			}
		}
	}
}

// printHistory fetches the chat document and renders its messages as a
// table before the realtime session starts.
func printHistory(ctx context.Context, config Config) error {
	endpoint := fmt.Sprintf("http://%s/api/chat/%s", config.ServerAddr, config.ChatID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+config.Token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not load history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("history request failed with status %d", resp.StatusCode)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return err
	}
	if len(chat.Messages) == 0 {
		color.Grayln("No messages yet.")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Time", "Sender", "Message"})
	for _, m := range chat.Messages {
		sender := m.Username
		if sender == "" {
			sender = m.Sender
		}
		table.Append([]string{
			time.UnixMilli(m.SentAt).Local().Format(time.TimeOnly),
			sender,
			m.Text,
		})
	}
	table.SetFooter([]string{"", "", strconv.Itoa(len(chat.Messages)) + " messages"})
	table.Render()
	return nil
}
