// package tasks implements the track matching and playlist migration engine.
//
// The core abstraction is Engine, which reads catalog playlists, matches tracks against the catalog and
// drives the remote playlist construction. Operations emit progress updates via channels for
// non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/dzx/internal/models"
	"github.com/desertthunder/dzx/internal/services"
	"github.com/desertthunder/dzx/internal/shared"
)

// Engine defines the playlist operations exposed to the CLI, TUI and HTTP surfaces.
type Engine interface {
	// Read fetches a catalog playlist by reference and normalizes its tracks.
	Read(ctx context.Context, ref string) (*models.Playlist, error)

	// Migrate matches tracks against the catalog and builds a new playlist from the matches.
	Migrate(ctx context.Context, tracks []models.Track, meta models.PlaylistMeta, progress chan<- ProgressUpdate) (*models.MigrationOutcome, error)

	// Copy reads a catalog playlist and migrates its tracks into a new playlist.
	Copy(ctx context.Context, ref string, opts CopyOptions, progress chan<- ProgressUpdate) (*models.MigrationOutcome, error)

	// Delete removes a catalog playlist by reference.
	Delete(ctx context.Context, ref string) error

	// FindMatch searches the catalog for a single track.
	FindMatch(ctx context.Context, source models.Track) (models.MatchResult, error)
}

// Policy selects which acceptable candidate wins a search.
type Policy int

const (
	// FirstAcceptable returns the first candidate, in relevance order, that clears the threshold.
	FirstAcceptable Policy = iota
	// BestScore returns the highest scoring acceptable candidate; the earliest one wins ties.
	BestScore
)

func (p Policy) String() string {
	switch p {
	case FirstAcceptable:
		return "first"
	case BestScore:
		return "best"
	default:
		return ""
	}
}

// ParsePolicy converts a config policy name. The empty string selects [FirstAcceptable].
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first":
		return FirstAcceptable, nil
	case "best":
		return BestScore, nil
	default:
		return FirstAcceptable, fmt.Errorf("%w: unknown matching policy %q", shared.ErrInvalidConfig, s)
	}
}

// Options tunes matching and fan-out.
type Options struct {
	Threshold    int    // Minimum acceptable score in 1..MaxScore; zero means [DefaultThreshold]
	Policy       Policy // Candidate selection policy
	Workers      int    // Concurrent track fetches within one search or read
	MatchWorkers int    // Concurrent searches across the tracks of one migration; 1 is sequential
}

// CopyOptions overrides the metadata of a copied playlist.
//
// An empty Name and a nil Description keep the source values; a Description pointing to "" clears it.
type CopyOptions struct {
	Name        string
	Description *string
}

// OptionsFromConfig builds [Options] from the [matching] config section.
func OptionsFromConfig(c shared.MatchingConfig) (Options, error) {
	policy, err := ParsePolicy(c.Policy)
	if err != nil {
		return Options{}, err
	}
	if c.Threshold < 1 || c.Threshold > MaxScore {
		return Options{}, fmt.Errorf("%w: threshold must be between 1 and %d, got %d", shared.ErrInvalidConfig, MaxScore, c.Threshold)
	}
	return Options{
		Threshold:    c.Threshold,
		Policy:       policy,
		Workers:      c.Workers,
		MatchWorkers: c.MatchWorkers,
	}, nil
}

// PlaylistEngine implements Engine on top of a [services.Catalog].
type PlaylistEngine struct {
	catalog      services.Catalog
	scorer       Scorer
	policy       Policy
	workers      int
	matchWorkers int
	logger       *log.Logger
}

// NewPlaylistEngine creates a new PlaylistEngine. A nil logger discards output.
func NewPlaylistEngine(catalog services.Catalog, opts Options, logger *log.Logger) *PlaylistEngine {
	if opts.Threshold == 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Workers <= 0 {
		opts.Workers = 5
	}
	if opts.MatchWorkers <= 0 {
		opts.MatchWorkers = 1
	}
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}

	return &PlaylistEngine{
		catalog:      catalog,
		scorer:       Scorer{Threshold: opts.Threshold},
		policy:       opts.Policy,
		workers:      opts.Workers,
		matchWorkers: opts.MatchWorkers,
		logger:       shared.WithLogger(logger, "component", "engine"),
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

var _ Engine = (*PlaylistEngine)(nil)
