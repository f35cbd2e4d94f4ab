package tasks

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/desertthunder/dzx/internal/models"
	"github.com/desertthunder/dzx/internal/services"
	"github.com/desertthunder/dzx/internal/shared"
)

var errTransport = errors.New("connection reset")

// fakeCatalog is an in-memory [services.Catalog] that records write calls.
type fakeCatalog struct {
	mu sync.Mutex

	playlists map[string]*services.DeezerPlaylist
	tracks    map[string]*services.DeezerTrack
	search    map[string][]services.DeezerTrack
	delays    map[string]time.Duration // per track id, to force out-of-order completion

	searchErr   error
	fetchErr    error
	createErr   error
	describeErr error
	addErr      error
	shareErr    error
	deleteErr   error

	beforeDescribe func()

	searches     atomic.Int64
	trackFetches atomic.Int64

	hold         time.Duration // time every search and track fetch stays in flight
	searchFlight gauge
	fetchFlight  gauge

	calls       []string
	added       []string
	description *string
	deleted     []string
	nextID      int
}

// gauge tracks the current and peak number of calls in flight.
type gauge struct {
	current atomic.Int64
	peak    atomic.Int64
}

// enter counts a call in flight and returns the func that ends it.
func (g *gauge) enter() func() {
	n := g.current.Add(1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}
	return func() { g.current.Add(-1) }
}

func (f *fakeCatalog) inFlight(ctx context.Context, g *gauge) func() {
	done := g.enter()
	if f.hold > 0 {
		select {
		case <-time.After(f.hold):
		case <-ctx.Done():
		}
	}
	return done
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		playlists: map[string]*services.DeezerPlaylist{},
		tracks:    map[string]*services.DeezerTrack{},
		search:    map[string][]services.DeezerTrack{},
		delays:    map[string]time.Duration{},
		nextID:    1000,
	}
}

// addTrack registers a full catalog track and returns its search/playlist entry.
func (f *fakeCatalog) addTrack(id int64, t models.Track) services.DeezerTrack {
	contributors := make([]services.DeezerArtist, len(t.Contributors))
	for i, name := range t.Contributors {
		contributors[i] = services.DeezerArtist{Name: name}
	}

	f.tracks[strconv.FormatInt(id, 10)] = &services.DeezerTrack{
		ID:           id,
		Title:        t.Title,
		Duration:     t.Duration,
		Artist:       services.DeezerArtist{Name: t.Artist},
		Contributors: contributors,
		Album:        services.DeezerAlbum{Title: t.Album, CoverMedium: t.Cover},
	}
	return services.DeezerTrack{ID: id, Link: "https://www.deezer.com/track/" + strconv.FormatInt(id, 10)}
}

func (f *fakeCatalog) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeCatalog) writes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeCatalog) FetchPlaylist(ctx context.Context, playlistID string) (*services.DeezerPlaylist, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if p, ok := f.playlists[playlistID]; ok {
		return p, nil
	}
	return &services.DeezerPlaylist{Error: &services.DeezerError{Type: "DataException", Message: "no data", Code: 800}}, nil
}

func (f *fakeCatalog) FetchTrack(ctx context.Context, ref string) (*services.DeezerTrack, error) {
	f.trackFetches.Add(1)
	defer f.inFlight(ctx, &f.fetchFlight)()
	id, err := shared.ParseTrackID(ref)
	if err != nil {
		return nil, err
	}
	if d := f.delays[id]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if t, ok := f.tracks[id]; ok {
		return t, nil
	}
	return &services.DeezerTrack{Error: &services.DeezerError{Type: "DataException", Message: "no data", Code: 800}}, nil
}

func (f *fakeCatalog) SearchTracks(ctx context.Context, query string) (*services.DeezerSearchResult, error) {
	f.searches.Add(1)
	defer f.inFlight(ctx, &f.searchFlight)()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	data := f.search[query]
	return &services.DeezerSearchResult{Data: data, Total: len(data)}, nil
}

func (f *fakeCatalog) CreatePlaylist(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.record("create " + name)
	if f.createErr != nil {
		return "", f.createErr
	}
	f.mu.Lock()
	f.nextID++
	id := strconv.Itoa(f.nextID)
	f.mu.Unlock()
	return id, nil
}

func (f *fakeCatalog) SetDescription(ctx context.Context, playlistID, description string) error {
	if f.beforeDescribe != nil {
		f.beforeDescribe()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f.record("describe " + playlistID)
	f.description = &description
	return f.describeErr
}

func (f *fakeCatalog) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.record("add " + playlistID + " " + strings.Join(trackIDs, ","))
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, trackIDs...)
	return nil
}

func (f *fakeCatalog) ShareLink(ctx context.Context, playlistID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.record("share " + playlistID)
	if f.shareErr != nil {
		return "", f.shareErr
	}
	return "https://deezer.page.link/" + playlistID, nil
}

func (f *fakeCatalog) DeletePlaylist(ctx context.Context, playlistID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.record("delete " + playlistID)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, playlistID)
	return nil
}

var _ services.Catalog = (*fakeCatalog)(nil)

func track(title, artist string, contributors ...string) models.Track {
	if len(contributors) == 0 {
		contributors = []string{artist}
	}
	return models.Track{
		Title:        title,
		Artist:       artist,
		Contributors: contributors,
		Duration:     200,
		Album:        title + " (Album)",
	}
}

func query(t models.Track) string {
	return t.Title + " " + t.Artist
}
