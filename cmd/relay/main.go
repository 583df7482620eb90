package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/hookrelay-systems/hookrelay/internal/auth"
	"github.com/hookrelay-systems/hookrelay/internal/capstats"
	"github.com/hookrelay-systems/hookrelay/internal/config"
	"github.com/hookrelay-systems/hookrelay/internal/forwarder"
	"github.com/hookrelay-systems/hookrelay/internal/handlers"
	"github.com/hookrelay-systems/hookrelay/internal/logging"
	"github.com/hookrelay-systems/hookrelay/internal/messaging"
	"github.com/hookrelay-systems/hookrelay/internal/repository"
	"github.com/hookrelay-systems/hookrelay/internal/routing"
	"github.com/hookrelay-systems/hookrelay/internal/server"
	"github.com/hookrelay-systems/hookrelay/internal/service"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize structured logging
	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("relay"))
	logging.SetDefault(logger)

	slog.Info("Starting relay service",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Logging.Level),
		slog.String("log_format", cfg.Logging.Format),
	)
	if *configPath != "" {
		slog.Info("Loaded configuration", slog.String("config_path", *configPath))
	}

	// Initialize event repository
	var repo repository.EventRepository
	if cfg.Database.URL != "" {
		slog.Info("Connecting to PostgreSQL")

		pgRepo, err := repository.NewPostgresRepository(context.Background(), cfg.Database.URL)
		if err != nil {
			slog.Error("Failed to connect to PostgreSQL", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pgRepo.Close()
		repo = pgRepo
		slog.Info("Connected to PostgreSQL")

		if cfg.Database.AutoMigrate {
			slog.Info("Running database migrations")
			m, err := migrate.New(
				"file://"+cfg.Database.MigrationsPath,
				cfg.Database.URL,
			)
			if err != nil {
				slog.Error("Failed to initialize migrations", slog.String("error", err.Error()))
				os.Exit(1)
			}

			if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				slog.Error("Failed to run migrations", slog.String("error", err.Error()))
				os.Exit(1)
			}

			version, dirty, err := m.Version()
			if err != nil {
				slog.Warn("Could not get migration version", slog.String("error", err.Error()))
			} else {
				slog.Info("Database migration complete",
					slog.Uint64("version", uint64(version)),
					slog.Bool("dirty", dirty),
				)
			}
		}
	} else {
		slog.Warn("Using in-memory event store (development only)")
		repo = repository.NewInMemoryRepository()
	}

	// Initialize per-tenant capture stats (optional, Redis-backed)
	var stats *capstats.Client
	if cfg.Redis.Enabled {
		statsClient, err := capstats.NewClient(cfg.Redis.URL)
		if err != nil {
			slog.Warn("Failed to initialize capture stats client",
				slog.String("error", err.Error()))
			slog.Warn("Tenant usage stats will not be collected")
		} else {
			stats = statsClient
			defer stats.Close()
			slog.Info("Capture stats collection enabled")
		}
	} else {
		slog.Info("Redis disabled, tenant usage stats will not be collected")
	}

	// Initialize forward outcome publisher (optional, NATS-backed)
	var outcomes forwarder.OutcomePublisher
	if cfg.NATS.Enabled {
		natsCfg := messaging.DefaultConfig()
		natsCfg.URL = cfg.NATS.URL
		natsCfg.Name = cfg.NATS.Name

		natsClient, err := messaging.NewClient(natsCfg)
		if err != nil {
			slog.Warn("Failed to connect to NATS",
				slog.String("error", err.Error()))
			slog.Warn("Forward outcomes will not be published")
		} else {
			defer natsClient.Close()
			outcomes = messaging.NewOutcomePublisher(natsClient)
			slog.Info("Forward outcome publishing enabled", slog.String("url", cfg.NATS.URL))
		}
	}

	// Initialize the forwarding worker pool
	var fwd *forwarder.Forwarder
	if cfg.Forwarding.Target != "" {
		fwd = forwarder.New(forwarder.Config{
			Target:    cfg.Forwarding.Target,
			Scheme:    cfg.Forwarding.Scheme,
			Timeout:   cfg.Forwarding.Timeout,
			QueueSize: cfg.Forwarding.QueueSize,
			Workers:   cfg.Forwarding.Workers,
		}, outcomes, logger)
		defer fwd.Close()
		slog.Info("Forwarding enabled",
			slog.String("target", cfg.Forwarding.Target),
			slog.String("scheme", cfg.Forwarding.Scheme),
			slog.Int("workers", cfg.Forwarding.Workers),
		)
	} else {
		slog.Info("Forwarding disabled, no target configured")
	}

	// Initialize the auth gate
	secret := cfg.Auth.JWTSecret
	if secret == "" {
		slog.Warn("auth.jwt_secret not set, using insecure development secret")
		secret = auth.DevelopmentSecret
	}
	tokens := auth.NewTokenGenerator(secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	gate := auth.NewGate(tokens)

	// Initialize service layer
	webhookService := service.NewWebhookService(repo, stats, logger)
	metadataService := service.NewMetadataService(
		cfg.Capture.ReservedPath,
		cfg.Capture.MaxBodyBytes,
		cfg.Capture.RetentionDays,
		stats,
		logger,
	)

	// Initialize HTTP handlers
	handler := handlers.New(handlers.Options{
		Service:      webhookService,
		Metadata:     metadataService,
		Gate:         gate,
		Resolver:     routing.NewResolver(cfg.Capture.ReservedPath),
		Forwarder:    fwd,
		MaxBodyBytes: cfg.Capture.MaxBodyBytes,
		Logger:       logger,
	})
	router := server.NewRouter(handler)

	// Create server with config values
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		slog.Info("Relay service listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	slog.Info("Server stopped")
}
