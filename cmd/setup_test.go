package main

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/dzx/internal/services"
	"github.com/desertthunder/dzx/internal/shared"
	tu "github.com/desertthunder/dzx/internal/testing"
)

func TestSetup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	r, out := newTestRunner(nil)

	if err := runCLI(t, r, "setup", "--config", path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tu.AssertFileExists(t, path)
	if !strings.Contains(out.String(), "Config written to") {
		t.Errorf("unexpected output %s", out.String())
	}

	out.Reset()
	if err := runCLI(t, r, "setup", "--config", path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "already exists") {
		t.Errorf("expected existing config notice, got %s", out.String())
	}

	out.Reset()
	if err := runCLI(t, r, "setup", "--force", "--config", path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := shared.LoadConfig(path); err != nil {
		t.Errorf("forced config should load: %v", err)
	}
}

func TestAuthStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/me" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("access_token") != "good" {
			w.Write([]byte(`{"error":{"type":"OAuthException","message":"Invalid OAuth access token.","code":300}}`))
			return
		}
		w.Write([]byte(`{"id":7,"name":"dj","country":"FR","link":"https://www.deezer.com/profile/7"}`))
	}))
	defer srv.Close()

	newRunner := func(t *testing.T, token string) (*Runner, *bytes.Buffer) {
		t.Helper()
		deezer, err := services.NewDeezerService(map[string]string{}, shared.CatalogConfig{BaseURL: srv.URL})
		if err != nil {
			t.Fatal(err)
		}
		if token != "" {
			if err := deezer.Authenticate(t.Context(), map[string]string{"access_token": token}); err != nil {
				t.Fatal(err)
			}
		}
		out := &bytes.Buffer{}
		return NewRunner(RunnerOpts{Deezer: deezer, Logger: shared.NewLogger(io.Discard), Output: out}), out
	}

	t.Run("authenticated", func(t *testing.T) {
		r, out := newRunner(t, "good")
		if err := runCLI(t, r, "auth", "status"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out.String(), "User: dj (7)") || !strings.Contains(out.String(), "Country: FR") {
			t.Errorf("unexpected output %s", out.String())
		}
	})

	t.Run("no token", func(t *testing.T) {
		r, out := newRunner(t, "")
		err := runCLI(t, r, "auth", "status")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if !strings.Contains(out.String(), "Not authenticated") {
			t.Errorf("unexpected output %s", out.String())
		}
	})

	t.Run("expired token", func(t *testing.T) {
		r, _ := newRunner(t, "stale")
		if err := runCLI(t, r, "auth", "status"); !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
	})

	t.Run("login needs app credentials", func(t *testing.T) {
		r, _ := newRunner(t, "")
		r.config.Credentials.Deezer.AppSecret = ""
		err := runCLI(t, r, "auth", "login", "--config", filepath.Join(t.TempDir(), "config.toml"))
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}
