package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bde-platform/mailer/internal/api"
	"github.com/bde-platform/mailer/internal/audience"
	"github.com/bde-platform/mailer/internal/config"
	"github.com/bde-platform/mailer/internal/personalize"
	"github.com/bde-platform/mailer/internal/pkg/distlock"
	"github.com/bde-platform/mailer/internal/pkg/logger"
	"github.com/bde-platform/mailer/internal/repository/postgres"
	"github.com/bde-platform/mailer/internal/resend"
	"github.com/bde-platform/mailer/internal/service/campaign"
	"github.com/bde-platform/mailer/internal/service/sending"
	"github.com/bde-platform/mailer/internal/service/unsubscribe"
	"github.com/bde-platform/mailer/internal/templates"
)

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		logger.Error("loading config", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	if cfg.Logging.RedactPII != nil {
		logger.SetRedact(*cfg.Logging.RedactPII)
	}
	log := logger.With("main")

	ctx := context.Background()
	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		log.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, send locks fall back to postgres", "error", err)
			rdb = nil
		}
	}

	campaignRepo := postgres.NewCampaignRepo(db)
	contactRepo := postgres.NewContactRepo(db)
	segmentRepo := postgres.NewSegmentRepo(db)
	suppressionRepo := postgres.NewSuppressionRepo(db)

	resolver := audience.NewResolver(segmentRepo, contactRepo, suppressionRepo)
	renderer := personalize.New(cfg.App.BaseURL, cfg.Resend.From())
	provider := resend.NewClient(cfg.Resend)
	locks := func(key string) distlock.Lock {
		return distlock.New(rdb, db, key, sending.SendLockTTL)
	}

	sender := sending.NewService(campaignRepo, contactRepo, resolver, renderer, provider, locks, cfg.Resend.BatchSize)

	handlers := api.NewHandlers(
		campaign.NewService(campaignRepo),
		sender,
		contactRepo,
		segmentRepo,
		unsubscribe.NewService(suppressionRepo),
		templates.NewEngine(),
	)
	server := api.NewServer(cfg.Server, handlers, cfg.Auth)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Server.Addr())
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error("server stopped", "error", err)
		os.Exit(1)
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
