package main

import (
	"chat-core/api"
	"chat-core/auth"
	"chat-core/internal"
	"chat-core/mailer"
	"chat-core/notification"
	"chat-core/observability"
	"chat-core/photo"
	"chat-core/repositories"
	"chat-core/runtime"
	"chat-core/runtime/workers"
	"chat-core/services"
	"chat-core/store"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes reported to the service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const shutdownTimeout = 10 * time.Second

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and blocks until a signal or a fatal error.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)
	ctx := context.Background()
	debug := logger.Enabled(ctx, slog.LevelDebug)
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. Database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, debug))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	if debug {
		endpoint := "/inspect"
		logger.Info("Debug Badger inspector available", "url", fmt.Sprintf("http://localhost:%d%s", config.DebugPort, endpoint))
		database.StartDebugServer(db, config.DebugPort, endpoint, SnapshotMapper)
	}

	// 3. Store, scheduler & supervision
	st := store.New(logger)
	scheduler := workers.NewScheduler(logger, time.Now)
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	repository := repositories.NewSnapshotRepository(db, logger)

	orchestrator := runtime.NewOrchestrator(logger, st, sup, scheduler, repository,
		config.SnapshotInterval, config.HeartbeatInterval)
	orchestrator.Add(notification.NewFanout(logger))
	monitor := observability.NewMonitor()
	orchestrator.Observe(monitor)
	if err := orchestrator.Prepare(); err != nil {
		return exitRuntime, fmt.Errorf("restoring workspace failed: %w", err)
	}

	// 4. Services
	client := &http.Client{Timeout: config.PhotoFetchTimeout}
	if err := os.MkdirAll(config.PhotoDir, 0o755); err != nil {
		return exitRuntime, fmt.Errorf("creating photo directory: %w", err)
	}
	cropper := photo.NewCropper(logger, client, config.PhotoDir, config.PhotoBaseURL)
	svc := services.New(logger, st, scheduler,
		auth.NewTokenIssuer(config.JwtSecret, config.AuthTokenDuration),
		mailer.NewLogMailer(logger), cropper, time.Now)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 2)
	orchestratorDone := make(chan struct{})

	go func() {
		defer close(orchestratorDone)
		if err := orchestrator.Start(ctx); err != nil {
			errChan <- fmt.Errorf("orchestrator error: %w", err)
		}
	}()

	// 6. HTTP Server
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	router := api.NewRouter(api.NewHandler(logger, svc, monitor), config.Origins(), config.PhotoDir)
	srv := &http.Server{Addr: address, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	code, runErr := exitOK, error(nil)
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case runErr = <-errChan:
		code = exitRuntime
	}

	// 8. Graceful Shutdown
	// The snapshot worker saves once more on its way out, before BadgerDB closes.
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	stop()
	orchestrator.Stop()
	<-orchestratorDone
	logger.Info("Program stopped cleanly")

	return code, runErr
}

func buildBadgerOpts(config internal.Config, debug bool) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if debug {
		return options.WithLoggingLevel(badger.DEBUG)
	}
	return options.WithLoggingLevel(badger.WARNING)
}

// SnapshotMapper labels inspector rows with the table a snapshot key
// belongs to: "snap:{gen}:{kind}:...".
func SnapshotMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)
	parts := strings.SplitN(key, ":", 4)
	if len(parts) >= 3 && parts[0] == "snap" {
		row.Type = strings.ToUpper(parts[2])
	} else {
		row.Type = "META"
	}
	row.Detail = string(val)
	if len(row.Detail) > 200 {
		row.Detail = row.Detail[:200] + "..."
	}
	return row
}
