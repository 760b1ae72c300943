package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"rentnest/api"
	"rentnest/domain/event"
	"rentnest/gateway"
	"rentnest/internal"
	"rentnest/moderation"
	"rentnest/repositories"
	"rentnest/runtime"
	"rentnest/runtime/workers"
	"rentnest/search"
	"rentnest/services"
)

// Exit codes for the service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run keeps all lifecycle management in one place so every defer executes
// before the process exits.
func run() (int, error) {
	// 1. Configuration & logger
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := internal.LoggerFromLevel(config.LogLevel)
	ctx := context.Background()

	// 2. Storage (BadgerDB + Bluge)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	index, err := search.NewMessageIndex(config.BlugeFilepath, logger)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open search index: %w", err)
	}
	defer func() {
		logger.Info("Closing search index...")
		_ = index.Close()
	}()

	// 3. Moderation
	moderator, err := moderation.NewModeratorFromFile(config.ModerationWordlist, charReplacement)
	if err != nil {
		return exitConfig, fmt.Errorf("moderation wordlist: %w", err)
	}

	// 4. Services & realtime pipeline
	secret := []byte(config.JWTSecret)
	registry := runtime.NewRegistry()
	events := make(chan event.DomainEvent, config.BufferSize)
	indexEvents := make(chan event.DomainEvent, config.BufferSize)

	chatService := services.NewChatService(logger,
		repositories.NewChatRepository(db, logger),
		repositories.NewUserRepository(db),
		registry, moderator, index, events)
	authService := services.NewAuthService(
		repositories.NewUserRepository(db), secret, config.AuthTokenDuration)

	// 5. Context & signals
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	telemetry, err := workers.NewTelemetryWorker(logger, config.TelemetryInterval)
	if err != nil {
		return exitRuntime, fmt.Errorf("telemetry init failed: %w", err)
	}

	sup := workers.NewSupervisor(logger, config.RestartInterval)
	sup.Add(
		workers.NewFanoutWorker(logger, registry, events, indexEvents, config.SinkTimeout),
		workers.NewIndexerWorker(logger, index, indexEvents),
		telemetry,
	)
	go sup.Run(ctx)

	// 6. HTTP & websocket server
	gw := gateway.NewGateway(logger, chatService, secret, config.ConnectionBufferSize)
	app := api.New(logger, authService, chatService, gw, secret)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", address)
		if err := app.Listen(address); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// 7. Wait for stop or error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 8. Graceful shutdown
	logger.Info("Shutting down gracefully...")
	if err := app.Shutdown(); err != nil {
		logger.Warn("Error during server shutdown", "error", err)
	}
	sup.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		return options.WithLoggingLevel(badger.DEBUG)
	}
	return options.WithLoggingLevel(badger.WARNING)
}
