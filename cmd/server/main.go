package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus-desk/assistant"
	"campus-desk/auth"
	"campus-desk/engine"
	"campus-desk/gateway"
	"campus-desk/internal"
	"campus-desk/moderation"
	"campus-desk/observability"
	"campus-desk/repositories"
	deskruntime "campus-desk/runtime"
	"campus-desk/runtime/workers"
	"campus-desk/search"
	"campus-desk/services"
	"campus-desk/sink"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service
// manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting. Deferred cleanup (database, index) always
// executes before the process exits, and the initialization logic stays
// testable outside main.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)
	ctx := context.Background()

	// 2. Storage (BadgerDB + Bluge index)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	userRepository := repositories.NewUserRepository(db)
	taskRepository := repositories.NewTaskRepository(db)
	notificationRepository := repositories.NewNotificationRepository(db)
	chatRepository := repositories.NewChatRepository(db, logger, config.LimitMessages)

	// 3. Moderation dictionaries (embedded)
	loader := deskruntime.NewCensoredLoader()
	censored, err := loader.LoadAll("censored")
	if err != nil {
		return exitConfig, fmt.Errorf("failed to load censored words: %w", err)
	}
	logger.Info(fmt.Sprintf("%d unique censored words loaded", len(censored.Words)))
	moderator, err := moderation.NewModerator(censored.Words, charReplacement)
	if err != nil {
		return exitConfig, err
	}

	// 4. Engine & sessions
	monitor := observability.NewMonitor()
	desk := engine.New(logger, config.AssistantTurnLimit, config.BufferSize, moderator.Censor, monitor)
	sessions := engine.NewSessionRegistry()
	chatIndex := search.NewChatIndex(blugeWriter, logger)

	// 5. Workers under supervision
	fanout := workers.NewEventFanout(logger, desk.Events(), sessions).
		Add(sink.NewDiskSink(chatRepository, logger), sink.NewIndexSink(chatIndex, logger))
	scripts := assistant.New(config.AssistantTurnLimit)
	supervisor := workers.NewSupervisor(logger)
	supervisor.Add(
		desk,
		fanout,
		workers.NewAssistantWorker(logger, desk, scripts, config.AssistantReplyDelay),
		workers.NewDeadlineWorker(logger, taskRepository, notificationRepository, desk,
			config.DeadlineScanInterval, config.DeadlineWindow),
		workers.NewHeartbeatWorker(logger, monitor, config.HeartbeatInterval),
	)

	// 6. Services & HTTP surface
	issuer := auth.NewTokenIssuer(config.JWTKey, config.AuthTokenDuration)
	authService := services.NewAuthService(userRepository, issuer)
	taskService := services.NewTaskService(taskRepository, notificationRepository, userRepository, desk)
	deskService := services.NewDeskService(desk, chatRepository)

	rest := gateway.NewRestHandler(logger, authService, taskService, deskService, chatIndex, config.SearchLimit)
	ws := gateway.NewWebsocketHandler(logger, deskService, sessions,
		config.ConnectionBufferSize, config.SinkTimeout)
	router := gateway.NewRouter(issuer, rest, ws)

	// 7. Context & Signals
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 2)

	go func() {
		logger.Info("Starting supervisor...")
		supervisor.Run(ctx)
	}()

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: router}
	go func() {
		logger.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 9. Final Cleanup (Graceful Shutdown)
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	supervisor.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}
