package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/desertthunder/dzx/internal/formatter"
	"github.com/desertthunder/dzx/internal/models"
	"github.com/desertthunder/dzx/internal/shared"
	"github.com/desertthunder/dzx/internal/tasks"
	"github.com/desertthunder/dzx/internal/validation"
	"github.com/urfave/cli/v3"
)

// PlaylistRead fetches a playlist and prints or exports it.
func (r *Runner) PlaylistRead(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	ref := cmd.StringArg("ref")
	if ref == "" {
		return fmt.Errorf("%w: playlist link or id", shared.ErrMissingArgument)
	}

	r.logger.Info("reading playlist", "ref", ref)
	playlist, err := r.engine.Read(ctx, ref)
	if err != nil {
		return err
	}

	if format := cmd.String("format"); format != "" {
		return r.exportPlaylist(ctx, playlist, format, cmd.String("output"))
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlist, cmd.Bool("pretty"))
	}

	r.writePlainHeader(playlist.Name)
	if playlist.Description != "" {
		r.writePlain("%s\n", playlist.Description)
	}
	r.writePlain("Tracks: %d • Duration: %s\n\n", playlist.TrackCount, shared.FormatDuration(playlist.Duration))
	for i, track := range playlist.Tracks {
		r.writePlain("%3d. %s - %s [%s]\n", i+1, track.Artist, track.Title, shared.FormatDuration(track.Duration))
	}
	return nil
}

func (r *Runner) exportPlaylist(ctx context.Context, playlist *models.Playlist, format, output string) error {
	f, err := formatter.ParseFormat(format)
	if err != nil {
		return err
	}

	switch f {
	case formatter.FormatCSV:
		result, err := formatter.WriteCSVExport(playlist, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d tracks to %s\n", playlist.TrackCount, result.TracksFile)
		r.writePlain("✓ Metadata written to %s\n", result.MetadataFile)
	case formatter.FormatMarkdown:
		result, err := formatter.WriteMarkdownExport(ctx, playlist, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d tracks to %s\n", playlist.TrackCount, result.Directory)
		for _, file := range result.Files {
			r.writePlain("  %s\n", file)
		}
	case formatter.FormatText:
		path, err := formatter.WriteTextExport(playlist, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d tracks to %s\n", playlist.TrackCount, path)
	case formatter.FormatJSON:
		path, err := formatter.WriteJSONExport(playlist, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d tracks to %s\n", playlist.TrackCount, path)
	}

	r.logger.Info("playlist exported", "name", playlist.Name, "format", f)
	return nil
}

// PlaylistMigrate validates a JSON migration request and creates the playlist it describes.
func (r *Runner) PlaylistMigrate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	in, err := openInput(cmd.String("file"))
	if err != nil {
		return err
	}
	defer in.Close()

	req, result := validation.Decode(in)
	if !result.IsValid {
		for _, fe := range result.Errors {
			r.writePlain("✗ %s: %s\n", fe.Field, fe.Message)
		}
		return fmt.Errorf("%w: %d validation errors", shared.ErrInvalidInput, len(result.Errors))
	}

	r.logger.Info("migrating tracks", "name", req.Name, "tracks", len(req.Tracks))
	outcome, err := r.withProgress(func(progress chan<- tasks.ProgressUpdate) (*models.MigrationOutcome, error) {
		return r.engine.Migrate(ctx, req.ToTracks(), req.Meta(), progress)
	})
	if err != nil {
		return err
	}
	return r.writeOutcome(outcome, cmd)
}

// PlaylistCopy reads a playlist and migrates its tracks into a new one.
func (r *Runner) PlaylistCopy(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	ref := cmd.StringArg("ref")
	if ref == "" {
		return fmt.Errorf("%w: playlist link or id", shared.ErrMissingArgument)
	}

	opts := tasks.CopyOptions{Name: cmd.String("name")}
	if cmd.IsSet("description") {
		description := cmd.String("description")
		opts.Description = &description
	}
	outcome, err := r.withProgress(func(progress chan<- tasks.ProgressUpdate) (*models.MigrationOutcome, error) {
		return r.engine.Copy(ctx, ref, opts, progress)
	})
	if err != nil {
		return err
	}
	return r.writeOutcome(outcome, cmd)
}

// PlaylistDelete removes a playlist.
func (r *Runner) PlaylistDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	ref := cmd.StringArg("ref")
	if ref == "" {
		return fmt.Errorf("%w: playlist link or id", shared.ErrMissingArgument)
	}

	if err := r.engine.Delete(ctx, ref); err != nil {
		return err
	}

	r.logger.Info("playlist deleted", "ref", ref)
	return r.writePlain("✓ Deleted %s\n", ref)
}

func (r *Runner) writeOutcome(outcome *models.MigrationOutcome, cmd *cli.Command) error {
	if path := cmd.String("report"); path != "" {
		if err := formatter.WriteMissingReport(outcome, path); err != nil {
			return err
		}
		r.logger.Info("report written", "path", path)
	}

	if cmd.Bool("json") {
		return r.writeJSON(outcome, true)
	}

	r.writePlainln("✓ Playlist created: %s", outcome.ShareLink)
	if outcome.MissingCount == 0 {
		return r.writePlain("All tracks matched\n")
	}

	r.writePlain("Missing tracks: %d\n", outcome.MissingCount)
	for _, track := range outcome.MissingTracks {
		r.writePlain("  • %s - %s\n", track.Artist, track.Title)
	}
	return nil
}

func openInput(path string) (io.ReadCloser, error) {
	switch path {
	case "":
		return nil, fmt.Errorf("%w: --file", shared.ErrMissingArgument)
	case "-":
		return io.NopCloser(os.Stdin), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	return f, nil
}
