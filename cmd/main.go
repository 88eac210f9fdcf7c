package main

import (
	"context"
	"fmt"
	"log/slog"
	"messenger/auth"
	"messenger/infrastructure/grpc/server"
	"messenger/infrastructure/rest"
	"messenger/internal"
	"messenger/observability"
	"messenger/runtime"
	"messenger/runtime/workers"
	"messenger/services"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Messenger terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Deferred cleanups (database close, listeners) always run before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	// A missing .env is fine: the environment alone may carry everything
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Storage
	stores, err := openStores(ctx, config, log)
	if err != nil {
		return exitRuntime, err
	}
	defer stores.Close()

	// 4. Metrics
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(promRegistry)

	// 5. Core services
	tokens := auth.NewTokenService([]byte(config.SecretKey), config.AuthTokenDuration, nil)
	registry := runtime.NewRegistry(nil)
	router := services.NewMessageRouter(log, registry, stores.messages, metrics,
		config.MaxContentLength, config.SinkTimeout)
	history := services.NewHistoryResolver(stores.messages)
	authService := services.NewAuthService(stores.users, tokens)

	// 6. Surfaces
	handler := rest.NewRouter(rest.RouterConfig{
		Log:     log,
		Tokens:  tokens,
		Handler: rest.NewHandler(log, authService, router, history),
		Channels: rest.NewChannelHandler(log, tokens, registry, router, metrics,
			config.AllowedOrigins(), config.AuthTimeout, config.ConnectionBufferSize),
		AllowedOrigins: config.AllowedOrigins(),
		Gatherer:       promRegistry,
		AuthRateLimit:  config.AuthRateLimit,
	})
	grpcServer := server.NewServer(log, tokens, server.NewMessengerServer(log, authService, router, history,
		registry, metrics, config.ConnectionBufferSize))

	// 7. Supervision
	supervisor := workers.NewSupervisor(log, config.RestartInterval, metrics)
	orchestrator := runtime.NewOrchestrator(log, supervisor, registry).Add(
		workers.NewHTTPServerWorker(log, workers.TCPListener(config.HTTPAddress()), handler),
		workers.NewGRPCServerWorker(log, workers.TCPListener(config.GRPCAddress()), grpcServer),
		workers.NewChannelCapacityWorker(log, registry, metrics, config.MetricInterval, config.BacklogThreshold),
	)
	if stores.badger != nil {
		orchestrator.Add(workers.NewBadgerGCWorker(log, stores.badger, config.GCInterval))
		if log.Enabled(ctx, slog.LevelDebug) {
			startInspector(log, stores.badger)
		}
	}

	if err = orchestrator.Start(ctx); err != nil {
		return exitRuntime, fmt.Errorf("orchestrator failed to start: %w", err)
	}
	log.Info("Messenger started",
		"http", config.HTTPAddress(),
		"grpc", config.GRPCAddress(),
		"storage", config.StorageDriver,
		"at", time.Now().UTC())

	// 8. Wait for Stop
	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case <-orchestrator.Done():
		log.Warn("All workers returned before shutdown")
	}

	// 9. Final Cleanup (Graceful Shutdown)
	orchestrator.Stop()
	log.Info("Program stopped cleanly")
	return exitOK, nil
}
