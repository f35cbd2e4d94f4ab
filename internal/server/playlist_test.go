package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/dzx/internal/models"
	"github.com/desertthunder/dzx/internal/shared"
	"github.com/desertthunder/dzx/internal/tasks"
)

type fakePlaylists struct {
	playlist  *models.Playlist
	outcome   *models.MigrationOutcome
	readErr   error
	migErr    error
	deleteErr error

	migrated []models.Track
	meta     models.PlaylistMeta
	calls    []string
}

func (f *fakePlaylists) Read(ctx context.Context, ref string) (*models.Playlist, error) {
	f.calls = append(f.calls, "read:"+ref)
	return f.playlist, f.readErr
}

func (f *fakePlaylists) Migrate(ctx context.Context, tracks []models.Track, meta models.PlaylistMeta, progress chan<- tasks.ProgressUpdate) (*models.MigrationOutcome, error) {
	f.calls = append(f.calls, "migrate")
	f.migrated = tracks
	f.meta = meta
	return f.outcome, f.migErr
}

func (f *fakePlaylists) Delete(ctx context.Context, ref string) error {
	f.calls = append(f.calls, "delete:"+ref)
	return f.deleteErr
}

func newTestRouter(f *fakePlaylists) http.Handler {
	return NewRouter(f, shared.NewLogger(io.Discard))
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not JSON: %v (%q)", err, w.Body.String())
	}
	return out
}

const validBody = `{
	"name": "Road Trip",
	"description": "",
	"tracks": [
		{"title": "Song A", "artist": "Artist A", "album": "Album A", "contributors": ["Artist A"], "duration": 202},
		{"title": "Song B", "artist": "Artist B", "album": "Album B", "contributors": ["Artist B", "Guest"], "duration": 180}
	]
}`

func TestPlaylistHandlerRead(t *testing.T) {
	t.Run("returns the playlist", func(t *testing.T) {
		f := &fakePlaylists{playlist: &models.Playlist{Name: "Mix", TrackCount: 2}}
		w := do(t, newTestRouter(f), http.MethodGet, "/playlist?link=https://www.deezer.com/playlist/908622995", "")

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		body := decodeBody(t, w)
		if body["isValid"] != true {
			t.Errorf("expected isValid true, got %v", body["isValid"])
		}
		playlist, ok := body["playlist"].(map[string]any)
		if !ok || playlist["name"] != "Mix" {
			t.Errorf("unexpected playlist %v", body["playlist"])
		}
		if f.calls[0] != "read:https://www.deezer.com/playlist/908622995" {
			t.Errorf("link not forwarded: %v", f.calls)
		}
	})

	t.Run("not found is a valid response with an empty playlist", func(t *testing.T) {
		f := &fakePlaylists{readErr: fmt.Errorf("%w: 1", shared.ErrPlaylistNotFound)}
		w := do(t, newTestRouter(f), http.MethodGet, "/playlist?link=1", "")

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if got := strings.TrimSpace(w.Body.String()); got != `{"isValid":false,"playlist":{}}` {
			t.Errorf("unexpected body %s", got)
		}
	})

	t.Run("malformed reference", func(t *testing.T) {
		f := &fakePlaylists{readErr: fmt.Errorf("%w: no identifier", shared.ErrInvalidReference)}
		w := do(t, newTestRouter(f), http.MethodGet, "/playlist?link=nope", "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})

	t.Run("upstream failure", func(t *testing.T) {
		f := &fakePlaylists{readErr: fmt.Errorf("%w: connection refused", shared.ErrAPIRequest)}
		w := do(t, newTestRouter(f), http.MethodGet, "/playlist?link=1", "")
		if w.Code != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", w.Code)
		}
		if msg := decodeBody(t, w)["message"]; msg == nil || msg == "" {
			t.Error("expected a message")
		}
	})
}

func TestPlaylistHandlerCreate(t *testing.T) {
	t.Run("creates the playlist", func(t *testing.T) {
		missing := []models.Track{{Title: "Song B", Artist: "Artist B"}}
		f := &fakePlaylists{outcome: models.NewMigrationOutcome("https://deezer.page.link/abc", missing)}
		w := do(t, newTestRouter(f), http.MethodPost, "/playlist", validBody)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
		body := decodeBody(t, w)
		if body["link"] != "https://deezer.page.link/abc" {
			t.Errorf("unexpected link %v", body["link"])
		}
		if body["numMissingTracks"] != float64(1) {
			t.Errorf("expected 1 missing track, got %v", body["numMissingTracks"])
		}
		if len(f.migrated) != 2 || f.migrated[0].Duration != 202 {
			t.Errorf("unexpected tracks passed to engine: %+v", f.migrated)
		}
		if f.meta.Name != "Road Trip" || f.meta.Description != "" {
			t.Errorf("unexpected meta %+v", f.meta)
		}
	})

	t.Run("validation errors never reach the engine", func(t *testing.T) {
		f := &fakePlaylists{}
		w := do(t, newTestRouter(f), http.MethodPost, "/playlist", `{"description":"x","tracks":[]}`)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		var resp ValidationResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		fields := map[string]bool{}
		for _, e := range resp.Errors {
			fields[e.Field] = true
		}
		if !fields["name"] || !fields["tracks"] {
			t.Errorf("expected name and tracks errors, got %+v", resp.Errors)
		}
		if len(f.calls) != 0 {
			t.Errorf("engine should not be called, got %v", f.calls)
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		f := &fakePlaylists{}
		w := do(t, newTestRouter(f), http.MethodPost, "/playlist", `{"name":`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
		if len(f.calls) != 0 {
			t.Errorf("engine should not be called, got %v", f.calls)
		}
	})

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"unauthenticated", shared.ErrNotAuthenticated, http.StatusUnauthorized},
		{"expired token", shared.ErrTokenExpired, http.StatusUnauthorized},
		{"service unavailable", shared.ErrServiceUnavailable, http.StatusServiceUnavailable},
		{"transport", fmt.Errorf("create playlist: %w", shared.ErrAPIRequest), http.StatusBadGateway},
		{"rollback failure", fmt.Errorf("%w: %w", shared.ErrRollbackFailed, errors.New("boom")), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakePlaylists{migErr: tt.err}
			w := do(t, newTestRouter(f), http.MethodPost, "/playlist", validBody)
			if w.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, w.Code)
			}
		})
	}
}

func TestPlaylistHandlerDelete(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"deleted", nil, http.StatusOK, `{"message":"Done"}`},
		{"not found", fmt.Errorf("delete playlist 1: %w", shared.ErrPlaylistNotFound), http.StatusNotFound, ""},
		{"bad reference", shared.ErrInvalidReference, http.StatusBadRequest, ""},
		{"transport", shared.ErrAPIRequest, http.StatusBadGateway, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakePlaylists{deleteErr: tt.err}
			w := do(t, newTestRouter(f), http.MethodDelete, "/playlist?link=42", "")
			if w.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, w.Code)
			}
			if tt.body != "" && strings.TrimSpace(w.Body.String()) != tt.body {
				t.Errorf("unexpected body %s", w.Body.String())
			}
			if f.calls[0] != "delete:42" {
				t.Errorf("unexpected calls %v", f.calls)
			}
		})
	}
}

func TestPlaylistHandlerInvalidMethod(t *testing.T) {
	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			f := &fakePlaylists{}
			w := do(t, newTestRouter(f), method, "/playlist", "")
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
			if got := strings.TrimSpace(w.Body.String()); got != `{"message":"Invalid method"}` {
				t.Errorf("unexpected body %s", got)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	h := newTestRouter(&fakePlaylists{})

	t.Run("ok", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/health", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if decodeBody(t, w)["status"] != "ok" {
			t.Errorf("unexpected body %s", w.Body.String())
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/health", "")
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", w.Code)
		}
	})

	t.Run("unknown path", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/nope", "")
		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", w.Code)
		}
	})
}
