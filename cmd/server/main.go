package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"refurrm/internal/app"
	"refurrm/internal/assistant"
	"refurrm/internal/config"
	"refurrm/internal/server"
	"refurrm/internal/storage"
	"refurrm/internal/store"
	"refurrm/internal/util"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	sessionTTL, err := config.ParseSessionTTL(cfg.SessionTTL)
	if err != nil {
		log.Fatalf("failed to parse session TTL: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	db, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	var sessions store.SessionStore
	if cfg.SessionStore == "redis" {
		sessions = store.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword, sessionTTL)
	} else {
		sessions = store.NewJWTSessionStore(cfg.JWTSecret, sessionTTL)
	}

	var receipts storage.ReceiptStore
	if cfg.MinioEndpoint != "" {
		receipts, err = storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("failed to init receipt storage: %v", err)
		}
	}

	appCore := app.New(app.Config{
		Store:    db,
		Sessions: sessions,
		Receipts: receipts,
	})

	var chat *assistant.Client
	if cfg.AssistantBaseURL != "" {
		chat = assistant.NewClient(cfg.AssistantBaseURL, cfg.AssistantAPIKey, cfg.AssistantModel)
	}

	httpServer, err := server.New(server.Config{
		App:                         appCore,
		Assistant:                   chat,
		RedisAddr:                   cfg.RedisAddr,
		RedisPassword:               cfg.RedisPassword,
		SignupRateLimitPerMinute:    cfg.SignupRateLimitPerMinute,
		LoginRateLimitPerMinute:     cfg.LoginRateLimitPerMinute,
		BookingRateLimitPerMinute:   cfg.BookingRateLimitPerMinute,
		AssistantRateLimitPerMinute: cfg.AssistantRateLimitPerMinute,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:        addr,
		Handler:     httpServer.Router(),
		ReadTimeout: 15 * time.Second,
		// Long enough for assistant streams to finish.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
