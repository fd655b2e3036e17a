package main

import (
	"context"
	"fmt"
	"os"

	"inventory-api/internal/config"
	"inventory-api/internal/database"
	"inventory-api/internal/logger"

	"go.uber.org/zap"
)

const usage = "usage: migrate <up|down|status>"

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	dbService, err := database.New(context.Background(), cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer dbService.Close()

	command := os.Args[1]
	switch command {
	case "up":
		err = database.RunMigrations(dbService.DB(), log)
	case "down":
		err = database.RollbackMigration(dbService.DB())
	case "status":
		err = database.GetMigrationStatus(dbService.DB())
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		log.Fatal("Migration command failed", zap.String("command", command), zap.Error(err))
	}
	log.Info("Migration command completed", zap.String("command", command))
}
