package main

import (
	"context"
	"flag"
	"time"

	"github.com/moodpair/moodpair/internal/app"
	"github.com/moodpair/moodpair/internal/cache"
	"github.com/moodpair/moodpair/internal/config"
	"github.com/moodpair/moodpair/internal/db"
	"github.com/moodpair/moodpair/internal/logger"
	"github.com/moodpair/moodpair/internal/service/match"
)

// One-shot daily matching run, intended to be invoked from cron.
// External scheduling is responsible for making sure only one
// instance runs at a time.
func main() {
	targetKeyword := flag.String("target-keyword", "", "keyword boosted during similarity scoring")
	timeout := flag.Duration("timeout", 5*time.Minute, "run deadline")
	flag.Parse()

	cfg := config.New()
	logger.InitFromConfig(cfg)
	log := logger.L()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	appCtx := app.New(database, redisCache, log, cfg)
	svc := match.NewService(appCtx, noopNotifier{})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pairs, err := svc.RunDailyMatching(ctx, *targetKeyword)
	if err != nil {
		log.Error("daily matching failed", "err", err)
		return
	}

	log.Info("daily matching complete", "pairs", len(pairs))
}

// noopNotifier satisfies the service's notifier dependency; batch runs
// have no connected clients to push to.
type noopNotifier struct{}

func (noopNotifier) Notify(userID uint64, message string) {}
