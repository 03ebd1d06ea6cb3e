/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cvault/cvault/pkg/api"
	"github.com/cvault/cvault/pkg/assistant"
	"github.com/cvault/cvault/pkg/config"
	"github.com/cvault/cvault/pkg/storage"
	"github.com/cvault/cvault/pkg/store"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the cvault REST API server.

The server keeps all records in a durable key-addressed arena under the
configured data directory. The assistant API key is not read from the config
file; install it at runtime via POST /api/v1/admin/api-key.

Examples:
  cvault serve
  cvault serve --config=./cvault.yaml --port=9090`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.Port = port
		}
		if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
			cfg.DataDir = dataDir
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err := buildLogger(cfg.Logging.Level)
		if err != nil {
			return err
		}
		defer logger.Sync()

		arena, err := openArena(cfg, logger)
		if err != nil {
			return err
		}

		sc := storage.NewContext(arena, logger, storage.WithRateLimit(storage.RateLimitConfig{
			DailyLimit:    cfg.RateLimit.DailyLimit,
			ResetInterval: cfg.RateLimit.ResetEvery,
		}))
		defer sc.Close()

		client := assistant.NewClient(assistant.ClientConfig{
			Endpoint:    cfg.Assistant.Endpoint,
			Model:       cfg.Assistant.Model,
			MaxTokens:   cfg.Assistant.MaxTokens,
			Temperature: cfg.Assistant.Temperature,
		})
		chat := assistant.NewService(sc, client, logger)

		server := api.NewServer(sc, chat, client, api.ServerConfig{
			Port:       cfg.Port,
			Bind:       cfg.Bind,
			OperatorID: cfg.Security.OperatorID,
		}, api.NewMetrics(), logger)

		return server.Start()
	},
}

// openArena opens the configured storage backend.
func openArena(cfg *config.Config, logger *zap.Logger) (store.Arena, error) {
	switch cfg.Backend {
	case "log":
		arena, stats, err := store.OpenLogArena(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open log arena: %w", err)
		}
		if stats.BytesTruncated > 0 {
			logger.Warn("recovered from corrupt log tail",
				zap.Int64("bytes_truncated", stats.BytesTruncated))
		}
		logger.Info("log arena opened",
			zap.Int64("frames_read", stats.FramesRead),
			zap.String("data_dir", cfg.DataDir))
		return arena, nil
	case "pebble":
		arena, err := store.OpenPebbleArena(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open pebble arena: %w", err)
		}
		logger.Info("pebble arena opened", zap.String("data_dir", cfg.DataDir))
		return arena, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.Backend)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().String("data-dir", "", "Data directory (overrides config)")
}
