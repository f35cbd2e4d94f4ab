package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/dzx/internal/models"
	"github.com/desertthunder/dzx/internal/shared"
)

// Read fetches the playlist at ref and normalizes its tracks.
//
// A playlist the catalog does not know returns [shared.ErrPlaylistNotFound]; an existing playlist
// with no tracks returns a Playlist with an empty track list. Tracks that fail to normalize are
// dropped and not counted.
func (e *PlaylistEngine) Read(ctx context.Context, ref string) (*models.Playlist, error) {
	id, err := shared.ParsePlaylistID(ref)
	if err != nil {
		return nil, err
	}

	raw, err := e.catalog.FetchPlaylist(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch playlist %s: %w", id, err)
	}
	if raw.Error != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}

	resolved, err := e.resolveTracks(ctx, raw.Tracks.Data)
	if err != nil {
		return nil, fmt.Errorf("fetch playlist %s tracks: %w", id, err)
	}

	tracks := make([]models.Track, 0, len(resolved))
	for _, t := range resolved {
		if t != nil {
			tracks = append(tracks, *t)
		}
	}
	if skipped := len(resolved) - len(tracks); skipped > 0 {
		e.logger.Debug("skipped unavailable tracks", "playlist", id, "skipped", skipped)
	}

	return &models.Playlist{
		Name:        raw.Title,
		Description: raw.Description,
		Duration:    raw.Duration,
		TrackCount:  len(tracks),
		Cover:       raw.PictureMedium,
		Tracks:      tracks,
	}, nil
}

// Delete removes the playlist at ref. A missing playlist returns [shared.ErrPlaylistNotFound].
func (e *PlaylistEngine) Delete(ctx context.Context, ref string) error {
	id, err := shared.ParsePlaylistID(ref)
	if err != nil {
		return err
	}
	if err := e.catalog.DeletePlaylist(ctx, id); err != nil {
		return fmt.Errorf("delete playlist %s: %w", id, err)
	}
	e.logger.Info("playlist deleted", "id", id)
	return nil
}
