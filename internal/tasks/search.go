package tasks

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/desertthunder/dzx/internal/models"
	"github.com/desertthunder/dzx/internal/services"
	"github.com/desertthunder/dzx/internal/shared"
	"golang.org/x/sync/errgroup"
)

// FindMatch searches the catalog for source and returns the candidate chosen by the engine's policy.
//
// An empty [models.MatchResult] means nothing cleared the threshold; that is not an error.
// With zero search results no track fetches are made.
func (e *PlaylistEngine) FindMatch(ctx context.Context, source models.Track) (models.MatchResult, error) {
	query := source.Title + " " + source.Artist

	results, err := e.catalog.SearchTracks(ctx, query)
	if err != nil {
		return models.MatchResult{}, fmt.Errorf("search %q: %w", query, err)
	}
	if len(results.Data) == 0 {
		e.logger.Debug("no search results", "query", query)
		return models.MatchResult{}, nil
	}

	candidates, err := e.resolveTracks(ctx, results.Data)
	if err != nil {
		return models.MatchResult{}, fmt.Errorf("search %q: %w", query, err)
	}

	match := e.pick(source, results.Data, candidates)
	e.logger.Debug("search finished", "query", query, "candidates", len(candidates), "match", match.CandidateID, "score", match.Score)
	return match, nil
}

// pick scans candidates in relevance order. A nil candidate is a hole left by a failed fetch.
func (e *PlaylistEngine) pick(source models.Track, entries []services.DeezerTrack, candidates []*models.Track) models.MatchResult {
	var best models.MatchResult
	for i, candidate := range candidates {
		if candidate == nil {
			continue
		}

		score := e.scorer.Score(source, *candidate)
		if !e.scorer.Acceptable(score) {
			continue
		}

		id := strconv.FormatInt(entries[i].ID, 10)
		if e.policy == FirstAcceptable {
			return models.MatchResult{CandidateID: id, Score: score}
		}
		if score > best.Score || !best.Found() {
			best = models.MatchResult{CandidateID: id, Score: score}
		}
	}
	return best
}

// resolveTracks fetches and normalizes every entry with at most e.workers requests in flight.
//
// The result is index-aligned with entries. Tracks that are missing upstream or cannot be
// referenced leave a nil hole; transport failures cancel the rest and are returned.
func (e *PlaylistEngine) resolveTracks(ctx context.Context, entries []services.DeezerTrack) ([]*models.Track, error) {
	tracks := make([]*models.Track, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, entry := range entries {
		g.Go(func() error {
			raw, err := e.catalog.FetchTrack(gctx, entry.Ref())
			if err != nil {
				if errors.Is(err, shared.ErrInvalidReference) || errors.Is(err, shared.ErrTrackNotFound) {
					e.logger.Debug("skipping track", "ref", entry.Ref(), "err", err)
					return nil
				}
				return err
			}

			if track, ok := NormalizeTrack(raw); ok {
				tracks[i] = &track
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tracks, nil
}
