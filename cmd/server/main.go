package main

import (
	"context"

	"github.com/moodpair/moodpair/internal/app"
	"github.com/moodpair/moodpair/internal/cache"
	"github.com/moodpair/moodpair/internal/config"
	"github.com/moodpair/moodpair/internal/db"
	"github.com/moodpair/moodpair/internal/logger"
	"github.com/moodpair/moodpair/internal/server"
	"github.com/moodpair/moodpair/internal/service/diary"
	"github.com/moodpair/moodpair/internal/service/match"
	"github.com/moodpair/moodpair/internal/transport/http/handlers"
	"github.com/moodpair/moodpair/internal/transport/ws"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	appCtx := app.New(database, redisCache, log, cfg)

	// Connection registry for notifications
	registry := ws.NewRegistry(log)
	go registry.Run()
	notifier := ws.NewRegistryNotifier(registry, log)

	matchService := match.NewService(appCtx, notifier)
	diaryService := diary.NewService(appCtx)

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	registrars := []server.Registrar{
		handlers.NewMatchRoutes(matchService),
		handlers.NewDiaryRoutes(diaryService),
		ws.NewRoutes(registry, log),
	}

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := server.StartHTTPServer(cfg, registrars...); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
