package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/comercio/backend/internal/infrastructure/config"
	"github.com/comercio/backend/internal/infrastructure/logger"
	"github.com/comercio/backend/internal/infrastructure/persistence"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync(log)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	log.Info("running schema migration",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName))

	if err := persistence.AutoMigrate(db.DB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	log.Info("schema migration complete")
	return nil
}
