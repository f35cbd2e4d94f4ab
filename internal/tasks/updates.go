package tasks

import (
	"fmt"

	"github.com/desertthunder/dzx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchSource Phase = iota
	SearchTracks
	CreatePlaylist
	SetDescription
	AddTracks
	FetchShareLink
	Rollback
	Complete
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case SearchTracks:
		return "search_tracks"
	case CreatePlaylist:
		return "create_playlist"
	case SetDescription:
		return "set_description"
	case AddTracks:
		return "add_tracks"
	case FetchShareLink:
		return "fetch_share_link"
	case Rollback:
		return "rollback"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

// TrackMatch is the Data of a [SearchTracks] update once a track has been searched.
type TrackMatch struct {
	Track models.Track
	Match models.MatchResult
}

func fetchSourceUpdate(ref string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Fetching source playlist %s...", ref),
	}
}

func foundPlaylistUpdate(p *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found playlist: %s (%d tracks)", p.Name, p.TrackCount),
		Data:    p,
	}
}

func searchTracksUpdate(step, total int, tr *models.Track, match models.MatchResult) ProgressUpdate {
	if tr == nil {
		return ProgressUpdate{
			Phase:   SearchTracks,
			Step:    step,
			Total:   total,
			Message: "Searching the catalog for tracks...",
		}
	}

	mark := "✓"
	if !match.Found() {
		mark = "✗"
	}
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s - %s", step, total, mark, tr.Artist, tr.Title),
		Data:    TrackMatch{Track: *tr, Match: match},
	}
}

func createPlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   4,
		Message: fmt.Sprintf("Creating playlist %q...", name),
	}
}

func setDescriptionUpdate(id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SetDescription,
		Step:    2,
		Total:   4,
		Message: fmt.Sprintf("Setting description on playlist %s...", id),
	}
}

func addTracksUpdate(id string, n int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    3,
		Total:   4,
		Message: fmt.Sprintf("Adding %d tracks to playlist %s...", n, id),
	}
}

func shareLinkUpdate(id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchShareLink,
		Step:    4,
		Total:   4,
		Message: fmt.Sprintf("Fetching share link for playlist %s...", id),
	}
}

func rollbackUpdate(step string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Rollback,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Step %q failed, removing the new playlist...", step),
	}
}

func completeUpdate(outcome *models.MigrationOutcome) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Done: %s (%d missing)", outcome.ShareLink, outcome.MissingCount),
		Data:    outcome,
	}
}
