package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/dzx/internal/models"
	"github.com/desertthunder/dzx/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlaylistFetched MsgKind = iota
	MsgProgressUpdate
	MsgMigrationComplete
)

type playlistFetched struct {
	playlist *models.Playlist
	err      error
}

type migrationComplete struct {
	outcome *models.MigrationOutcome
	err     error
}

// playlistFetchedMsg is the constructor for [MsgPlaylistFetched]
func playlistFetchedMsg(playlist *models.Playlist, err error) Msg {
	return Msg{kind: MsgPlaylistFetched, data: playlistFetched{playlist, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// migrationCompleteMsg is the constructor for [MsgMigrationComplete]
func migrationCompleteMsg(outcome *models.MigrationOutcome, err error) Msg {
	return Msg{kind: MsgMigrationComplete, data: migrationComplete{outcome, err}}
}
