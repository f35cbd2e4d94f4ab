package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/dzx/internal/models"
	"github.com/desertthunder/dzx/internal/shared"
	"github.com/desertthunder/dzx/internal/tasks"
	"github.com/desertthunder/dzx/internal/validation"
)

const maxBodyBytes = 1 << 20

// PlaylistService is the subset of [tasks.Engine] the playlist endpoints need.
type PlaylistService interface {
	Read(ctx context.Context, ref string) (*models.Playlist, error)
	Migrate(ctx context.Context, tracks []models.Track, meta models.PlaylistMeta, progress chan<- tasks.ProgressUpdate) (*models.MigrationOutcome, error)
	Delete(ctx context.Context, ref string) error
}

// PlaylistResponse is the body of a successful or not-found read.
type PlaylistResponse struct {
	IsValid  bool `json:"isValid"`
	Playlist any  `json:"playlist"`
}

// ValidationResponse is the body of a rejected migration request.
type ValidationResponse struct {
	Errors []models.FieldError `json:"errors"`
}

// MessageResponse is the body of every other non-2xx response, and of a successful delete.
type MessageResponse struct {
	Message string `json:"message"`
}

// PlaylistHandler serves /playlist:
//   - GET ?link=<ref> reads a playlist
//   - POST with a JSON body migrates tracks into a new playlist
//   - DELETE ?link=<ref> deletes a playlist
type PlaylistHandler struct {
	playlists PlaylistService
	logger    *log.Logger
}

// NewPlaylistHandler creates a handler backed by playlists.
func NewPlaylistHandler(playlists PlaylistService, logger *log.Logger) *PlaylistHandler {
	return &PlaylistHandler{playlists: playlists, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *PlaylistHandler) Routes() []string {
	return []string{"/playlist"}
}

func (h *PlaylistHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.read(w, r)
	case http.MethodPost:
		h.create(w, r)
	case http.MethodDelete:
		h.delete(w, r)
	default:
		writeMessage(w, http.StatusBadRequest, "Invalid method")
	}
}

func (h *PlaylistHandler) read(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.playlists.Read(r.Context(), r.URL.Query().Get("link"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, PlaylistResponse{IsValid: true, Playlist: playlist})
	case errors.Is(err, shared.ErrPlaylistNotFound):
		writeJSON(w, http.StatusOK, PlaylistResponse{IsValid: false, Playlist: struct{}{}})
	default:
		h.fail(w, r, err)
	}
}

func (h *PlaylistHandler) create(w http.ResponseWriter, r *http.Request) {
	req, result := validation.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if !result.IsValid {
		writeJSON(w, http.StatusBadRequest, ValidationResponse{Errors: result.Errors})
		return
	}

	outcome, err := h.playlists.Migrate(r.Context(), req.ToTracks(), req.Meta(), nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, outcome)
}

func (h *PlaylistHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.playlists.Delete(r.Context(), r.URL.Query().Get("link")); err != nil {
		h.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Done")
}

// fail maps engine errors onto status codes.
func (h *PlaylistHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("playlist request failed", "id", GetRequestID(r.Context()), "method", r.Method, "err", err)
	}
	writeMessage(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidReference), errors.Is(err, shared.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrPlaylistNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// HealthHandler reports that the service is up.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageResponse{Message: msg})
}
