// package services defines interface Catalog for interacting with the target music catalog over HTTP
//
// Deezer (public API), raw GETs for debugging
package services

import (
	"context"

	"golang.org/x/oauth2"
)

// Catalog defines the operations the migration engine drives against a music catalog.
//
// FetchPlaylist and FetchTrack report a missing object through the payload's Error field, not the
// returned error; the returned error is reserved for transport and auth failures.
type Catalog interface {
	// FetchPlaylist retrieves a playlist and its track entries by id.
	FetchPlaylist(ctx context.Context, playlistID string) (*DeezerPlaylist, error)

	// FetchTrack retrieves a full track by link or id.
	FetchTrack(ctx context.Context, ref string) (*DeezerTrack, error)

	// SearchTracks returns tracks matching query in relevance order. An empty result is legal.
	SearchTracks(ctx context.Context, query string) (*DeezerSearchResult, error)

	// CreatePlaylist creates an empty playlist and returns its id.
	CreatePlaylist(ctx context.Context, name string) (string, error)

	// SetDescription sets the description of a playlist.
	SetDescription(ctx context.Context, playlistID, description string) error

	// AddTracks appends track ids to a playlist in a single batched call.
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error

	// ShareLink returns the shareable link of a playlist.
	ShareLink(ctx context.Context, playlistID string) (string, error)

	// DeletePlaylist removes a playlist.
	DeletePlaylist(ctx context.Context, playlistID string) error
}

// OAuthService is implemented by catalogs that authorize users with the OAuth code flow.
type OAuthService interface {
	GetAuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Authenticate(ctx context.Context, credentials map[string]string) error
	Name() string
}

var (
	_ Catalog      = (*DeezerService)(nil)
	_ OAuthService = (*DeezerService)(nil)
)
