package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/blockedby/safebot/internal/api"
	"github.com/blockedby/safebot/internal/config"
	"github.com/blockedby/safebot/internal/database"
	"github.com/blockedby/safebot/internal/dedup"
	"github.com/blockedby/safebot/internal/guard"
	"github.com/blockedby/safebot/internal/link"
	"github.com/blockedby/safebot/internal/locale"
	"github.com/blockedby/safebot/internal/logger"
	"github.com/blockedby/safebot/internal/migrator"
	"github.com/blockedby/safebot/internal/nats"
	"github.com/blockedby/safebot/internal/publisher"
	"github.com/blockedby/safebot/internal/redact"
	"github.com/blockedby/safebot/internal/repository"
	"github.com/blockedby/safebot/internal/telegram"
	"github.com/blockedby/safebot/migrations"
)

const version = "1.0.0"

func main() {
	// 1. Load config
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// 2. Initialize logger
	if err := logger.Init(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile, Production: cfg.Production}); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	log := logger.Get()

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	log.Info().Bool("production", cfg.Production).Bool("deep_scan", cfg.DeepScan).Msg("starting safebot")

	// 3. Setup context with graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("received shutdown signal")
		cancel()
	}()

	// 4. Connect to database and migrate
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	mg, err := migrator.NewWithFS(migrations.FS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create migrator")
	}
	if err := mg.Up(ctx, cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// 5. Connect to NATS
	var events guard.Publisher
	nc, err := nats.New(ctx, cfg.NatsURL)
	if err != nil {
		log.Warn().Err(err).Msg("failed to connect to nats, publishing disabled")
	} else {
		defer nc.Close()
		if err := nc.EnsureModerationStream(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to ensure moderation stream")
		}
		events = publisher.NewNATSPublisher(nc.Conn)
	}

	// 6. Connect to redis
	var seen guard.Deduper
	store, rdb, err := dedup.Connect(ctx, cfg.RedisURL, time.Duration(cfg.DedupTTLSeconds)*time.Second)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("failed to connect to redis, dedup disabled")
	case store != nil:
		defer rdb.Close()
		seen = store
	}

	// 7. Load locale
	catalog, err := locale.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load locales")
	}
	texts, err := catalog.Bundle(cfg.Locale)
	if err != nil {
		log.Fatal().Err(err).Strs("available", catalog.Codes()).Msg("unknown locale")
	}
	log.Info().Strs("locales", catalog.Codes()).Str("active", texts.Code()).Msg("locales initialized")

	// 8. Build the scanner and handlers
	registry := link.DefaultRegistry()
	if len(cfg.SafeDeepLinks) > 0 {
		registry.SafeDeepLinks = cfg.SafeDeepLinks
	}
	filter := redact.NewFilter(link.NewClassifier(registry, cfg.DeepScan), cfg.Placeholder)
	chats := repository.NewChatsRepository(db.Pool, log)

	tgManager := telegram.NewManager(cfg, db.GORM)
	tgClient := telegram.NewClient(tgManager)

	public := guard.NewPublic(tgClient, chats, texts, filter,
		guard.WithPublisher(events),
		guard.WithDedup(seen),
	)
	private := guard.NewPrivate(tgClient, chats, texts, filter.Classifier())
	router := guard.NewRouter(public, private)

	// 9. Start telegram
	tgManager.SetMessageHandler(router.Handle)
	if err := tgManager.Init(ctx); err != nil {
		log.Error().Err(err).Msg("telegram manager init failed")
	}
	if tgManager.GetStatus() != telegram.StatusReady {
		log.Warn().Str("status", string(tgManager.GetStatus())).Msg("telegram is not authorized, run tg-auth")
	}
	defer tgManager.Stop()

	// 10. Start HTTP server
	server := api.NewServer(&api.Config{
		Port:        cfg.HTTPPort,
		Title:       "safebot",
		Description: "Advertisement filter operations API",
		Version:     version,
	}, &api.Dependencies{
		Chats: chats,
		Filter: func(deep bool) *redact.Filter {
			return redact.NewFilter(filter.Classifier().WithDeep(deep), cfg.Placeholder)
		},
		Telegram: tgManager,
	})

	log.Info().Int("port", cfg.HTTPPort).Msg("starting http server")
	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	// 11. Wait for shutdown
	<-ctx.Done()
	log.Info().Msg("shutting down services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http server shutdown")
	}

	log.Info().Msg("shutdown complete")
}
