package tasks

import (
	"github.com/desertthunder/dzx/internal/models"
	"github.com/desertthunder/dzx/internal/services"
)

// NormalizeTrack converts a raw catalog track into a [models.Track].
//
// It returns false for a nil payload or one carrying a catalog error, such as a removed track.
// Callers skip those; they are never fatal. Without a contributor list the primary artist stands in.
func NormalizeTrack(raw *services.DeezerTrack) (models.Track, bool) {
	if raw == nil || raw.Error != nil {
		return models.Track{}, false
	}

	contributors := make([]string, 0, len(raw.Contributors))
	for _, c := range raw.Contributors {
		if c.Name != "" {
			contributors = append(contributors, c.Name)
		}
	}
	if len(contributors) == 0 && raw.Artist.Name != "" {
		contributors = append(contributors, raw.Artist.Name)
	}

	return models.Track{
		Title:        raw.Title,
		Artist:       raw.Artist.Name,
		Contributors: contributors,
		Duration:     raw.Duration,
		Album:        raw.Album.Title,
		Cover:        raw.Album.CoverMedium,
	}, true
}
