// Batchwatch - Food production tracking with spoilage risk and anomaly detection
package main

import (
	"context"
	"os"

	"github.com/hferreira23/batchwatch/internal/config"
	"github.com/hferreira23/batchwatch/internal/logging"
	"github.com/hferreira23/batchwatch/internal/server"
)

// Build info - set by ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	// Create logger
	logger := logging.New("info", "text")

	logger.Info("starting batchwatch",
		"version", Version,
		"commit", Commit,
		"build_time", BuildTime,
	)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"env", cfg.Env,
		"max_safe_temp_c", cfg.MaxSafeTempC,
		"warn_temp_c", cfg.WarnTempC,
	)

	// Create and run server
	srv, err := server.New(cfg, server.WithLogger(logger))
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
