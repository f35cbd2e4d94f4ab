package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/dzx/internal/server"
	"github.com/desertthunder/dzx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the playlist HTTP API until the process is interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = int(port)
	}

	logger := shared.WithLogger(r.logger, "component", "server")
	router := server.NewRouter(r.engine, logger)
	if err := server.ListenAndServe(ctx, cfg.Addr(), router, logger); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
