// Command migrate runs goose commands (up, down, status, version, ...) against
// the embedded schema migrations.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"project_tracker/internal/config"
	"project_tracker/internal/logging"

	"github.com/joho/godotenv"
)

func main() {
	flag.Usage = func() {
		slog.Info("usage: migrate [command] [args...]  (default command: up)")
	}
	flag.Parse()

	_ = godotenv.Load()
	logger := logging.New(slog.LevelInfo)

	command := "up"
	args := flag.Args()
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		logger.Error("failed to load DB config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := config.ConnectDB(ctx, dbCfg, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := config.RunMigrations(ctx, config.OpenSQLDB(pool), command, args...); err != nil {
		logger.Error("migration failed", "command", command, "error", err)
		os.Exit(1)
	}
	logger.Info("migration complete", "command", command)
}
