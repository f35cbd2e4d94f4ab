package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/dzx/internal/services"
	"github.com/desertthunder/dzx/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	configPath := defaultConfigPath
	if p := os.Getenv("DZX_CONFIG"); p != "" {
		configPath = p
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}
	shared.SetLogLevel(logger, shared.ParseLevel(config.Log.Level))

	deezer, err := services.NewDeezerService(config.Credentials.Deezer.Map(), config.Catalog)
	if err != nil {
		logger.Fatal("failed to create Deezer service", "error", err)
	}
	if token := config.Credentials.Deezer.AccessToken; token != "" {
		if err := deezer.Authenticate(context.Background(), map[string]string{"access_token": token}); err != nil {
			logger.Warn("failed to use saved access token", "error", err)
		}
	}

	apiService := services.NewAPIService(config.Catalog.BaseURL, nil).WithToken(config.Credentials.Deezer.AccessToken)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Deezer:     deezer,
		API:        apiService,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "dzx",
		Usage:    "Read, migrate and copy Deezer playlists",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		stop()
		os.Exit(exitCode(logger, err))
	}
}

// exitCode logs err and picks the process exit status: 2 for usage errors, 1 otherwise.
func exitCode(logger *log.Logger, err error) int {
	switch {
	case errors.Is(err, shared.ErrNotImplemented):
		logger.Warn("not implemented")
		return 0
	case errors.Is(err, context.Canceled):
		logger.Warn("interrupted")
		return 130
	case errors.Is(err, shared.ErrMissingArgument), errors.Is(err, shared.ErrInvalidArgument), errors.Is(err, shared.ErrInvalidInput):
		logger.Error("invalid usage", "error", err)
		return 2
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrTokenExpired):
		logger.Error("not authenticated, run `dzx auth login`", "error", err)
		return 1
	default:
		logger.Error("application error", "error", err)
		return 1
	}
}
