package main

import (
	"github.com/moodpair/moodpair/internal/config"
	"github.com/moodpair/moodpair/internal/db"
	"github.com/moodpair/moodpair/internal/logger"
)

// Standalone seeder. Drops existing data and loads the deterministic
// test dataset used for local development.
func main() {
	cfg := config.New()
	logger.InitFromConfig(cfg)
	log := logger.L()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	if err := db.SeedTestData(database); err != nil {
		log.Error("failed to seed", "err", err)
		return
	}

	log.Info("seed complete")
}
