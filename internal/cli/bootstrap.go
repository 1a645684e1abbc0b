package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvimport/internal/config"
	"github.com/JonMunkholm/csvimport/internal/core"
	"github.com/JonMunkholm/csvimport/internal/logging"
	"github.com/JonMunkholm/csvimport/internal/store"
)

// ErrInvalidConfig wraps configuration failures so they map to their own exit code.
var ErrInvalidConfig = errors.New("invalid configuration")

// loadConfig reads the env file, loads configuration and sets up logging.
// Values in the env file override the process environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	envLoaded := false
	if envFile != "" {
		if err := godotenv.Overload(envFile); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidConfig, envFile, err)
			}
		} else {
			envLoaded = true
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	level := cfg.Logging.Level
	if getVerboseFlag(cmd) {
		level = "debug"
	}
	logging.Setup(level, cfg.Logging.Format)

	slog.Debug("configuration loaded", "env_file", envFile, "env_file_loaded", envLoaded, "config", cfg.String())
	return cfg, nil
}

// openService connects to the configured database and builds the import service.
// The caller owns the returned *sql.DB.
func openService(ctx context.Context, cfg *config.Config) (*core.Service, *sql.DB, error) {
	db, dialect, err := store.Open(ctx, store.Config{
		Driver: cfg.Database.Driver,
		URL:    cfg.Database.URL,
	})
	if err != nil {
		return nil, nil, err
	}

	svc, err := core.NewService(db, dialect, core.ServiceConfig{
		Table:        cfg.Database.Table,
		ArtifactPath: cfg.Upload.ArtifactPath,
		MaxWaitTime:  cfg.Upload.MaxWaitTime,
	})
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	slog.Info("connected to database", "driver", dialect.Name(), "table", svc.Table())
	return svc, db, nil
}

// getVerboseFlag safely retrieves the verbose flag value.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return false
	}
	return verbose
}
