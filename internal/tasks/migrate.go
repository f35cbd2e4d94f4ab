package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/desertthunder/dzx/internal/models"
	"github.com/desertthunder/dzx/internal/shared"
	"golang.org/x/sync/errgroup"
)

const rollbackTimeout = 30 * time.Second

// Migrate matches tracks against the catalog and builds a new playlist from the matches.
//
// Matching runs with at most MatchWorkers searches in flight and is re-joined by source index, so
// matched tracks are added in source order. Construction is strictly sequential: create, describe,
// add tracks (skipped when nothing matched), fetch the share link. If a step fails after the
// playlist exists it is deleted again, and no partial outcome is returned.
func (e *PlaylistEngine) Migrate(ctx context.Context, tracks []models.Track, meta models.PlaylistMeta, progress chan<- ProgressUpdate) (*models.MigrationOutcome, error) {
	if meta.Name == "" {
		return nil, fmt.Errorf("%w: playlist name is required", shared.ErrInvalidInput)
	}

	matches, err := e.matchAll(ctx, tracks, progress)
	if err != nil {
		return nil, err
	}

	matched, missing := partitionMatches(tracks, matches)
	e.logger.Info("matching finished", "tracks", len(tracks), "matched", len(matched), "missing", len(missing))

	link, err := e.construct(ctx, meta, matched, progress)
	if err != nil {
		return nil, err
	}

	outcome := models.NewMigrationOutcome(link, missing)
	e.sendProgress(progress, completeUpdate(outcome))
	return outcome, nil
}

// Copy reads the playlist at ref and migrates its tracks into a new playlist.
//
// Unset fields of opts keep the source playlist's name and description.
func (e *PlaylistEngine) Copy(ctx context.Context, ref string, opts CopyOptions, progress chan<- ProgressUpdate) (*models.MigrationOutcome, error) {
	e.sendProgress(progress, fetchSourceUpdate(ref))

	source, err := e.Read(ctx, ref)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, foundPlaylistUpdate(source))

	meta := models.PlaylistMeta{Name: opts.Name, Description: source.Description}
	if meta.Name == "" {
		meta.Name = source.Name
	}
	if opts.Description != nil {
		meta.Description = *opts.Description
	}
	return e.Migrate(ctx, source.Tracks, meta, progress)
}

// matchAll runs [PlaylistEngine.FindMatch] for every track. The result is index-aligned with tracks.
func (e *PlaylistEngine) matchAll(ctx context.Context, tracks []models.Track, progress chan<- ProgressUpdate) ([]models.MatchResult, error) {
	matches := make([]models.MatchResult, len(tracks))
	total := len(tracks)
	var done atomic.Int64

	e.sendProgress(progress, searchTracksUpdate(0, total, nil, models.MatchResult{}))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.matchWorkers)

	for i, track := range tracks {
		g.Go(func() error {
			match, err := e.FindMatch(gctx, track)
			if err != nil {
				return fmt.Errorf("track %d (%s - %s): %w", i+1, track.Artist, track.Title, err)
			}
			matches[i] = match
			e.sendProgress(progress, searchTracksUpdate(int(done.Add(1)), total, &track, match))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return matches, nil
}

// partitionMatches splits source tracks into matched catalog ids and missing tracks, both in source order.
func partitionMatches(tracks []models.Track, matches []models.MatchResult) (matched []string, missing []models.Track) {
	matched = []string{}
	missing = []models.Track{}
	for i, track := range tracks {
		if i < len(matches) && matches[i].Found() {
			matched = append(matched, matches[i].CandidateID)
		} else {
			missing = append(missing, track)
		}
	}
	return matched, missing
}

// compensation undoes one completed construction step.
type compensation struct {
	step string
	undo func(context.Context) error
}

// rollback is a stack of compensations run in reverse order of registration.
type rollback []compensation

func (r *rollback) push(step string, undo func(context.Context) error) {
	*r = append(*r, compensation{step: step, undo: undo})
}

func (r rollback) run(ctx context.Context) error {
	var errs []error
	for i := len(r) - 1; i >= 0; i-- {
		if err := r[i].undo(ctx); err != nil {
			errs = append(errs, fmt.Errorf("undo %s: %w", r[i].step, err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", shared.ErrRollbackFailed, errors.Join(errs...))
}

// construct drives the remote construction protocol and returns the share link.
func (e *PlaylistEngine) construct(ctx context.Context, meta models.PlaylistMeta, trackIDs []string, progress chan<- ProgressUpdate) (string, error) {
	var undo rollback

	fail := func(step string, err error) error {
		err = fmt.Errorf("%s: %w", step, err)
		if len(undo) == 0 {
			return err
		}

		e.logger.Warn("construction failed, rolling back", "step", step, "err", err)
		e.sendProgress(progress, rollbackUpdate(step))

		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
		defer cancel()
		if rerr := undo.run(rctx); rerr != nil {
			e.logger.Error("rollback failed", "err", rerr)
			return errors.Join(err, rerr)
		}
		return err
	}

	e.sendProgress(progress, createPlaylistUpdate(meta.Name))
	playlistID, err := e.catalog.CreatePlaylist(ctx, meta.Name)
	if err != nil {
		return "", fail("create playlist", err)
	}
	undo.push("create playlist", func(ctx context.Context) error {
		return e.catalog.DeletePlaylist(ctx, playlistID)
	})
	e.logger.Debug("playlist created", "id", playlistID, "name", meta.Name)

	e.sendProgress(progress, setDescriptionUpdate(playlistID))
	if err := e.catalog.SetDescription(ctx, playlistID, meta.Description); err != nil {
		return "", fail("set description", err)
	}

	if len(trackIDs) > 0 {
		e.sendProgress(progress, addTracksUpdate(playlistID, len(trackIDs)))
		if err := e.catalog.AddTracks(ctx, playlistID, trackIDs); err != nil {
			return "", fail("add tracks", err)
		}
	}

	e.sendProgress(progress, shareLinkUpdate(playlistID))
	link, err := e.catalog.ShareLink(ctx, playlistID)
	if err != nil {
		return "", fail("share link", err)
	}
	return link, nil
}
