package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/dzx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes a config.toml from the embedded template.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	force := cmd.Bool("force")

	if _, err := os.Stat(configPath); err == nil && !force {
		r.logger.Info("config file already exists", "path", configPath)
		r.writePlain("Config already exists at %s (use --force to overwrite)\n", configPath)
		return nil
	}

	if force {
		if err := shared.SaveConfig(configPath, shared.DefaultConfig()); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	} else if err := shared.CreateConfigFile(configPath); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	r.logger.Info("config file created", "path", configPath)

	r.writePlain("✓ Config written to %s\n", configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Create an app at https://developers.deezer.com/myapps and set app_id and app_secret\n")
	r.writePlain("2. Run 'dzx auth login' to authorize and save an access token\n")
	return nil
}
