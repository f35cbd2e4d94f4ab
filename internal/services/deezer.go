// Deezer API implementation of [Catalog]
//
// Response types based on https://developers.deezer.com/api
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/dzx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	deezerAuthURL  = "https://connect.deezer.com/oauth/auth.php"
	deezerTokenURL = "https://connect.deezer.com/oauth/access_token.php"
	deezerBaseURL  = "https://api.deezer.com"

	// Permissions needed to create, edit and delete playlists on the user's behalf.
	deezerPerms = "basic_access,manage_library,delete_library,offline_access"
)

// Deezer error codes, see https://developers.deezer.com/api/errors
const (
	codeQuota          = 4
	codePermission     = 200
	codeTokenInvalid   = 300
	codeServiceBusy    = 700
	codeDataNotFound   = 800
	codeAccountBlocked = 901
)

// DeezerError is the error object Deezer embeds in an HTTP 200 response.
type DeezerError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (e *DeezerError) Error() string {
	return fmt.Sprintf("deezer %s (%d): %s", e.Type, e.Code, e.Message)
}

// NotFound reports whether the error means the requested object does not exist.
func (e *DeezerError) NotFound() bool {
	return e != nil && e.Code == codeDataNotFound
}

// asError maps a [DeezerError] onto the shared sentinels. notFound is the sentinel used for code 800.
func (e *DeezerError) asError(notFound error) error {
	switch e.Code {
	case codeDataNotFound:
		return fmt.Errorf("%w: %s", notFound, e.Message)
	case codeTokenInvalid:
		return fmt.Errorf("%w: %s", shared.ErrTokenExpired, e.Message)
	case codePermission, codeAccountBlocked:
		return fmt.Errorf("%w: %s", shared.ErrNotAuthenticated, e.Message)
	case codeQuota, codeServiceBusy:
		return fmt.Errorf("%w: %s", shared.ErrServiceUnavailable, e.Message)
	default:
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, e.Error())
	}
}

// DeezerUser represents the authenticated Deezer user.
type DeezerUser struct {
	ID      int64        `json:"id"`
	Name    string       `json:"name"`
	Country string       `json:"country"`
	Link    string       `json:"link"`
	Error   *DeezerError `json:"error,omitempty"`
}

// DeezerArtist is an artist or contributor reference.
type DeezerArtist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// DeezerAlbum is the album reference embedded in a track.
type DeezerAlbum struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Cover       string `json:"cover"`
	CoverMedium string `json:"cover_medium"`
}

// DeezerTrack represents a Deezer track, either in full (from /track) or as a search or playlist entry.
type DeezerTrack struct {
	ID           int64          `json:"id"`
	Title        string         `json:"title"`
	Link         string         `json:"link"`
	Duration     int            `json:"duration"`
	Artist       DeezerArtist   `json:"artist"`
	Contributors []DeezerArtist `json:"contributors"`
	Album        DeezerAlbum    `json:"album"`
	Error        *DeezerError   `json:"error,omitempty"`
}

// Ref returns the reference used to fetch the full track: its link when present, else its id.
func (t DeezerTrack) Ref() string {
	if t.Link != "" {
		return t.Link
	}
	return strconv.FormatInt(t.ID, 10)
}

type deezerTrackList struct {
	Data []DeezerTrack `json:"data"`
}

// DeezerPlaylist represents a Deezer playlist. Error is set when the playlist does not exist.
type DeezerPlaylist struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Duration      int             `json:"duration"`
	NbTracks      int             `json:"nb_tracks"`
	Public        bool            `json:"public"`
	Link          string          `json:"link"`
	Share         string          `json:"share"`
	PictureMedium string          `json:"picture_medium"`
	Tracks        deezerTrackList `json:"tracks"`
	Error         *DeezerError    `json:"error,omitempty"`
}

// DeezerSearchResult is a page of track search results in relevance order.
type DeezerSearchResult struct {
	Data  []DeezerTrack `json:"data"`
	Total int           `json:"total"`
	Next  string        `json:"next,omitempty"`
	Error *DeezerError  `json:"error,omitempty"`
}

type createdPlaylist struct {
	ID    int64        `json:"id"`
	Error *DeezerError `json:"error,omitempty"`
}

// DeezerService implements [Catalog] against the Deezer public API.
//
// Every request waits on a token-bucket limiter first; write calls require an access token.
type DeezerService struct {
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// NewDeezerService creates a Deezer catalog client from app credentials and transport settings.
//
// Credentials use the keys "app_id", "app_secret" and "redirect_uri". They are only required for
// the OAuth code exchange; reads work anonymously.
func NewDeezerService(credentials map[string]string, catalog shared.CatalogConfig) (*DeezerService, error) {
	baseURL := strings.TrimRight(catalog.BaseURL, "/")
	if baseURL == "" {
		baseURL = deezerBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("%w: catalog base_url: %v", shared.ErrInvalidConfig, err)
	}

	redirectURI := credentials["redirect_uri"]
	if redirectURI == "" {
		redirectURI = "http://localhost:3000/callback"
	}

	limit := rate.Inf
	if catalog.RateLimit > 0 {
		limit = rate.Limit(catalog.RateLimit)
	}
	burst := catalog.Burst
	if burst <= 0 {
		burst = 1
	}

	return &DeezerService{
		config: &oauth2.Config{
			ClientID:     credentials["app_id"],
			ClientSecret: credentials["app_secret"],
			RedirectURL:  redirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:   deezerAuthURL,
				TokenURL:  deezerTokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: &http.Client{Timeout: catalog.Timeout()},
		limiter:    rate.NewLimiter(limit, burst),
		baseURL:    baseURL,
	}, nil
}

func (d *DeezerService) Name() string {
	return "Deezer"
}

// SetHTTPClient replaces the client used for catalog requests.
func (d *DeezerService) SetHTTPClient(c *http.Client) {
	if c != nil {
		d.httpClient = c
	}
}

// GetAuthURL returns the Deezer authorization URL for user login.
func (d *DeezerService) GetAuthURL(state string) string {
	return d.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("app_id", d.config.ClientID),
		oauth2.SetAuthURLParam("perms", deezerPerms),
	)
}

// Authenticate stores an access token for write calls. Expects either an "access_token" or "auth_code" in credentials.
func (d *DeezerService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		d.token = &oauth2.Token{AccessToken: accessToken}
		return nil
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := d.Exchange(ctx, authCode)
		if err != nil {
			return err
		}
		d.token = token
		return nil
	}

	return fmt.Errorf("%w: access_token or auth_code", shared.ErrMissingCredentials)
}

// Exchange trades an authorization code for an access token.
//
// Deezer names the client credentials app_id and secret rather than client_id and client_secret.
func (d *DeezerService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if d.config.ClientID == "" || d.config.ClientSecret == "" {
		return nil, fmt.Errorf("%w: app_id and app_secret are required", shared.ErrMissingCredentials)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, d.httpClient)
	token, err := d.config.Exchange(ctx, code,
		oauth2.SetAuthURLParam("app_id", d.config.ClientID),
		oauth2.SetAuthURLParam("secret", d.config.ClientSecret),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
	}
	return token, nil
}

// Token returns the current access token, or nil before [DeezerService.Authenticate].
func (d *DeezerService) Token() *oauth2.Token {
	return d.token
}

// doRequest performs a rate-limited request against the catalog and returns the response body.
//
// The access token, when present, is sent as a query parameter. authRequired rejects the call
// before any network activity when no token is set.
func (d *DeezerService) doRequest(ctx context.Context, method, endpoint string, params url.Values, authRequired bool) ([]byte, error) {
	if authRequired && d.token == nil {
		return nil, fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	if d.token != nil {
		params.Set("access_token", d.token.AccessToken)
	}

	apiURL := d.baseURL + endpoint
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: deezer status %d", shared.ErrAPIRequest, resp.StatusCode)
	}
	return body, nil
}

// getJSON decodes a GET response into result.
func (d *DeezerService) getJSON(ctx context.Context, endpoint string, params url.Values, result any) error {
	body, err := d.doRequest(ctx, http.MethodGet, endpoint, params, false)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ack performs a write call whose success response is the literal `true`.
func (d *DeezerService) ack(ctx context.Context, method, endpoint string, params url.Values, notFound error) error {
	body, err := d.doRequest(ctx, method, endpoint, params, true)
	if err != nil {
		return err
	}
	return parseAck(body, notFound)
}

func parseAck(body []byte, notFound error) error {
	var ok bool
	if err := json.Unmarshal(body, &ok); err == nil {
		if !ok {
			return fmt.Errorf("%w: deezer returned false", shared.ErrAPIRequest)
		}
		return nil
	}

	var envelope struct {
		Error *DeezerError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		return envelope.Error.asError(notFound)
	}
	return fmt.Errorf("%w: unexpected response %q", shared.ErrAPIRequest, string(body))
}

// FetchPlaylist retrieves a playlist with its track entries.
//
// A playlist that does not exist is returned with Error set rather than as an error, so callers can
// tell it apart from transport failures.
func (d *DeezerService) FetchPlaylist(ctx context.Context, playlistID string) (*DeezerPlaylist, error) {
	var playlist DeezerPlaylist
	if err := d.getJSON(ctx, "/playlist/"+url.PathEscape(playlistID), nil, &playlist); err != nil {
		return nil, err
	}
	if playlist.Error != nil && !playlist.Error.NotFound() {
		return nil, playlist.Error.asError(shared.ErrPlaylistNotFound)
	}
	return &playlist, nil
}

// FetchTrack retrieves a full track from a track link or bare id.
//
// As with [DeezerService.FetchPlaylist], a missing track comes back with Error set.
func (d *DeezerService) FetchTrack(ctx context.Context, ref string) (*DeezerTrack, error) {
	id, err := shared.ParseTrackID(ref)
	if err != nil {
		return nil, err
	}

	var track DeezerTrack
	if err := d.getJSON(ctx, "/track/"+id, nil, &track); err != nil {
		return nil, err
	}
	if track.Error != nil && !track.Error.NotFound() {
		return nil, track.Error.asError(shared.ErrTrackNotFound)
	}
	return &track, nil
}

// SearchTracks runs a track search and returns the first page of results in relevance order.
func (d *DeezerService) SearchTracks(ctx context.Context, query string) (*DeezerSearchResult, error) {
	var result DeezerSearchResult
	if err := d.getJSON(ctx, "/search", url.Values{"q": {query}}, &result); err != nil {
		return nil, err
	}
	if result.Error != nil {
		return nil, result.Error.asError(shared.ErrTrackNotFound)
	}
	return &result, nil
}

// CreatePlaylist creates an empty playlist for the authenticated user and returns its id.
func (d *DeezerService) CreatePlaylist(ctx context.Context, name string) (string, error) {
	body, err := d.doRequest(ctx, http.MethodPost, "/user/me/playlists", url.Values{"title": {name}}, true)
	if err != nil {
		return "", err
	}

	var created createdPlaylist
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if created.Error != nil {
		return "", created.Error.asError(shared.ErrAPIRequest)
	}
	if created.ID == 0 {
		return "", fmt.Errorf("%w: no playlist id in response", shared.ErrAPIRequest)
	}
	return strconv.FormatInt(created.ID, 10), nil
}

// SetDescription replaces the playlist description. An empty description is sent as-is.
func (d *DeezerService) SetDescription(ctx context.Context, playlistID, description string) error {
	params := url.Values{"description": {description}}
	return d.ack(ctx, http.MethodPost, "/playlist/"+url.PathEscape(playlistID), params, shared.ErrPlaylistNotFound)
}

// AddTracks appends tracks to the playlist, in order, in a single call.
func (d *DeezerService) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return fmt.Errorf("%w: no track ids", shared.ErrInvalidArgument)
	}
	params := url.Values{"songs": {strings.Join(trackIDs, ",")}}
	return d.ack(ctx, http.MethodPost, "/playlist/"+url.PathEscape(playlistID)+"/tracks", params, shared.ErrPlaylistNotFound)
}

// ShareLink returns the public share URL of a playlist.
func (d *DeezerService) ShareLink(ctx context.Context, playlistID string) (string, error) {
	playlist, err := d.FetchPlaylist(ctx, playlistID)
	if err != nil {
		return "", err
	}
	if playlist.Error != nil {
		return "", playlist.Error.asError(shared.ErrPlaylistNotFound)
	}
	if playlist.Share != "" {
		return playlist.Share, nil
	}
	return playlist.Link, nil
}

// DeletePlaylist removes a playlist owned by the authenticated user.
func (d *DeezerService) DeletePlaylist(ctx context.Context, playlistID string) error {
	return d.ack(ctx, http.MethodDelete, "/playlist/"+url.PathEscape(playlistID), nil, shared.ErrPlaylistNotFound)
}

// CurrentUser returns the profile behind the access token.
func (d *DeezerService) CurrentUser(ctx context.Context) (*DeezerUser, error) {
	body, err := d.doRequest(ctx, http.MethodGet, "/user/me", nil, true)
	if err != nil {
		return nil, err
	}

	var user DeezerUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if user.Error != nil {
		return nil, user.Error.asError(shared.ErrNotAuthenticated)
	}
	return &user, nil
}
