package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/bewatu/internal/session"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the cached network of a session",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop the cached network so the next command generates a new one",
	Run: func(_ *cobra.Command, _ []string) {
		clearCache()
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func clearCache() {
	ctx := context.Background()

	logger := newLogger()
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if err := clearSession(ctx, config.Cache, config.Session, logger); err != nil {
		logger.Fatal("clearing the session", zap.Error(err), zap.String("session", config.Session))
	}
}

// clearSession drops the cached network of sessionID. The memory backend
// lives only as long as one command, so there is nothing to drop there.
func clearSession(ctx context.Context, cfg *CacheConfig, sessionID string, logger *zap.Logger) error {
	backend := cacheBackend(cfg)
	if backend == session.BackendMemory {
		logger.Warn("nothing to clear",
			zap.String("backend", backend),
			zap.String("hint", "the memory backend keeps nothing between runs, set cache.backend to redis to share networks"),
		)
		return nil
	}

	store, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore(store, logger)

	if err := store.Clear(ctx, sessionID); err != nil {
		return err
	}

	logger.Info("session cleared", zap.String("session", sessionID), zap.String("backend", backend))
	return nil
}
