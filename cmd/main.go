package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DaniRico987/Sagittarius/internal/app/registry"
	"github.com/DaniRico987/Sagittarius/internal/app/router"
	"github.com/DaniRico987/Sagittarius/internal/app/server"
	"github.com/DaniRico987/Sagittarius/internal/config"
	"github.com/DaniRico987/Sagittarius/internal/core/contracts"
	"github.com/DaniRico987/Sagittarius/internal/core/domain"
	"github.com/DaniRico987/Sagittarius/internal/core/services"
	"github.com/DaniRico987/Sagittarius/internal/platform/logger"
	"github.com/DaniRico987/Sagittarius/internal/platform/telemetry"
	"github.com/DaniRico987/Sagittarius/internal/plugins/memory"
	mongoPlugin "github.com/DaniRico987/Sagittarius/internal/plugins/mongo"
	redisPlugin "github.com/DaniRico987/Sagittarius/internal/plugins/redis"
)

func main() {
	// Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Config
	cfg := config.Load()

	// Logger
	log := logger.NewLogger(*cfg)
	log.Info("starting application")

	otelShutdown, err := telemetry.InitTelemetry(ctx, *cfg)
	if err != nil {
		log.Error("failed to initialize telemetry", "err", err)
	}
	defer func() {
		log.Info("flushing telemetry...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			log.Error("telemetry shutdown failed", "err", err)
		}
	}()

	// Persistence. Without a Mongo URI the in-memory stores serve
	// local development.
	var (
		userRepo domain.UserRepository
		convRepo domain.ConversationRepository
		msgRepo  domain.MessageRepository
	)
	if cfg.Mongo.URI != "" {
		db, err := mongoPlugin.New(ctx, *cfg.Mongo)
		if err != nil {
			log.Error("mongo connection failed", "uri", cfg.Mongo.URI, "err", err)
			return
		}
		log.Info("mongo connected", "database", cfg.Mongo.Database)
		userRepo = mongoPlugin.NewUserRepo(db, cfg.Mongo.QueryTimeout)
		convRepo = mongoPlugin.NewConversationRepo(db, cfg.Mongo.QueryTimeout)
		msgRepo = mongoPlugin.NewMessageRepo(db, cfg.Mongo.QueryTimeout)
	} else {
		log.Warn("no mongo uri configured, using in-memory stores")
		userRepo = memory.NewUserStore()
		convRepo = memory.NewConversationStore()
		msgRepo = memory.NewMessageStore()
	}

	// Presence
	var presence contracts.PresenceStore
	if cfg.Redis.URL != "" {
		rdb, err := redisPlugin.NewRedisClient(ctx, *cfg.Redis)
		if err != nil {
			log.Error("redis connection failed", "url", cfg.Redis.URL, "err", err)
			return
		}
		log.Info("redis connected")
		presence = redisPlugin.NewRedisPresenceStore(rdb)
	} else {
		log.Warn("no redis url configured, using in-memory presence")
		presence = memory.NewPresenceStore()
	}

	// Core services
	hub := registry.NewRegistry()
	userSvc := services.NewUserService(log, userRepo)
	tokenSvc := services.NewTokenService(cfg.SecretToken)
	authSvc := services.NewAuthService(log, userSvc, tokenSvc)
	policy := services.NewAuthPolicy(log, userSvc)
	convSvc := services.NewConversationService(log, convRepo, msgRepo, userRepo)
	msgSvc := services.NewMessageService(log, msgRepo, convRepo, policy, convSvc)

	rt := router.NewRouter(log, hub, msgSvc, convSvc)

	// Server
	srv := server.NewServer(log, cfg.Service.Name, cfg.Service.Addr, authSvc, userSvc, convSvc, tokenSvc, rt, hub, presence)
	if err := srv.Start(); err != nil {
		log.Error("server stopped", "err", err)
	}
}
