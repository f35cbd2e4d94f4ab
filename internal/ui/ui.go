package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/dzx/internal/models"
	"github.com/desertthunder/dzx/internal/shared"
	"github.com/desertthunder/dzx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	InputView ViewState = iota
	TrackListView
	ConfirmView
	TransferView
	ResultView
)

// Engine is the subset of [tasks.Engine] the TUI drives.
type Engine interface {
	Read(ctx context.Context, ref string) (*models.Playlist, error)
	Migrate(ctx context.Context, tracks []models.Track, meta models.PlaylistMeta, progress chan<- tasks.ProgressUpdate) (*models.MigrationOutcome, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	cancel   context.CancelFunc
	view     ViewState
	engine   Engine
	logger   *log.Logger
	width    int
	height   int
	input    textinput.Model
	loading  bool
	playlist *models.Playlist
	tracks   list.Model
	spinner  spinner.Model
	bar      progress.Model
	progress tasks.ProgressUpdate
	updates  chan tasks.ProgressUpdate
	done     chan Msg
	outcome  *models.MigrationOutcome
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model. A nil logger discards output.
func NewModel(ctx context.Context, engine Engine, logger *log.Logger) *Model {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}

	input := textinput.New()
	input.Placeholder = "https://www.deezer.com/playlist/..."
	input.Prompt = "› "
	input.CharLimit = 256
	input.Width = 60
	input.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.title.UnsetMarginBottom()

	h := help.New()
	h.Styles.ShortKey = styles.help.Bold(true)
	h.Styles.ShortDesc = styles.help

	return &Model{
		ctx:     ctx,
		view:    InputView,
		engine:  engine,
		logger:  shared.WithLogger(logger, "component", "tui"),
		input:   input,
		spinner: s,
		bar:     progress.New(progress.WithGradient(purple, green)),
		help:    h,
		keys:    newKeyMap(),
	}
}

// Init starts the cursor blink for the link input.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.playlist != nil {
			m.tracks.SetSize(msg.Width-4, msg.Height-8)
		}
		m.bar.Width = min(max(msg.Width-8, 10), 80)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case InputView:
			return m.handleInputKeys(msg)
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case TransferView:
			return m.handleTransferKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case spinner.TickMsg:
		if !m.loading && m.view != TransferView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateComponents(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlaylistFetched:
		data := msg.data.(playlistFetched)
		m.loading = false
		if data.err != nil {
			m.logger.Warn("read failed", "ref", m.input.Value(), "err", data.err)
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.playlist = data.playlist
		m.tracks = list.New(trackItems(data.playlist.Tracks), list.NewDefaultDelegate(), 0, 0)
		m.tracks.Title = fmt.Sprintf("%s (%d tracks)", data.playlist.Name, data.playlist.TrackCount)
		m.tracks.SetShowHelp(false)
		m.tracks.SetSize(m.width-4, m.height-8)
		m.view = TrackListView
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		m.logger.Debug("progress", "phase", m.progress.Phase, "step", m.progress.Step, "total", m.progress.Total)
		return m, waitForProgress(m.updates, m.done)

	case MsgMigrationComplete:
		data := msg.data.(migrationComplete)
		m.outcome = data.outcome
		m.err = data.err
		m.updates, m.done = nil, nil
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		if data.err != nil {
			m.logger.Error("migration failed", "err", data.err)
		} else {
			m.logger.Info("migration complete", "link", data.outcome.ShareLink, "missing", data.outcome.MissingCount)
		}
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case InputView:
		return m.renderInput()
	case TrackListView:
		return m.renderTrackList()
	case ConfirmView:
		return m.renderConfirm()
	case TransferView:
		return m.renderTransfer()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.abort), key.Matches(msg, m.keys.back):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		ref := strings.TrimSpace(m.input.Value())
		if ref == "" || m.loading {
			return m, nil
		}
		m.loading = true
		m.err = nil
		return m, tea.Batch(m.spinner.Tick, m.fetchPlaylist(ref))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.tracks.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.tracks, cmd = m.tracks.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = InputView
		return m, nil
	case key.Matches(msg, m.keys.migrate):
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.tracks, cmd = m.tracks.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.abort):
		return m, tea.Quit
	case key.Matches(msg, m.keys.no):
		m.view = TrackListView
		return m, nil
	case key.Matches(msg, m.keys.yes):
		m.view = TransferView
		m.progress = tasks.ProgressUpdate{}
		return m, tea.Batch(m.spinner.Tick, m.startMigration())
	}
	return m, nil
}

// handleTransferKeys only allows aborting; the engine rolls back what it created.
func (m *Model) handleTransferKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.abort) && m.cancel != nil {
		m.logger.Warn("migration cancelled")
		m.cancel()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = InputView
		m.playlist = nil
		m.outcome = nil
		m.err = nil
		m.input.Reset()
		return m, textinput.Blink
	}
	return m, nil
}

func (m *Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case InputView:
		m.input, cmd = m.input.Update(msg)
	case TrackListView:
		m.tracks, cmd = m.tracks.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchPlaylist(ref string) tea.Cmd {
	return func() tea.Msg {
		playlist, err := m.engine.Read(m.ctx, ref)
		return playlistFetchedMsg(playlist, err)
	}
}

// startMigration runs the engine in the background; the progress channel is closed before
// the outcome is delivered on done.
func (m *Model) startMigration() tea.Cmd {
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	m.updates = make(chan tasks.ProgressUpdate, 50)
	m.done = make(chan Msg, 1)

	tracks := m.playlist.Tracks
	meta := models.PlaylistMeta{Name: m.playlist.Name, Description: m.playlist.Description}
	updates, done := m.updates, m.done

	go func() {
		outcome, err := m.engine.Migrate(ctx, tracks, meta, updates)
		close(updates)
		done <- migrationCompleteMsg(outcome, err)
	}()

	return waitForProgress(updates, done)
}

func waitForProgress(updates <-chan tasks.ProgressUpdate, done <-chan Msg) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return <-done
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderInput() string {
	title := styles.title.Render("dzx: migrate a Deezer playlist")

	var status string
	switch {
	case m.loading:
		status = fmt.Sprintf("\n\n%s Reading playlist...", m.spinner.View())
	case errors.Is(m.err, shared.ErrPlaylistNotFound):
		status = "\n\n" + styles.warn.Render("Playlist not found")
	case m.err != nil:
		status = "\n\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.abort})
	return fmt.Sprintf("%s\nPlaylist link or id:\n%s%s\n\n%s", title, m.input.View(), status, helpView)
}

func (m *Model) renderTrackList() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.migrate, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.tracks.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Create a copy of '%s'?", m.playlist.Name))
	info := fmt.Sprintf("Tracks: %d\nDuration: %s\n", m.playlist.TrackCount, shared.FormatDuration(m.playlist.Duration))
	if m.playlist.Description != "" {
		info = fmt.Sprintf("Description: %s\n%s", m.playlist.Description, info)
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no, m.keys.abort})
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderTransfer() string {
	title := styles.title.Render("Migrating playlist")

	var phase string
	switch m.progress.Phase {
	case tasks.SearchTracks:
		phase = fmt.Sprintf("Searching tracks (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.CreatePlaylist:
		phase = "Creating playlist..."
	case tasks.SetDescription:
		phase = "Setting description..."
	case tasks.AddTracks:
		phase = "Adding tracks..."
	case tasks.FetchShareLink:
		phase = "Fetching share link..."
	case tasks.Rollback:
		phase = styles.warn.Render("Rolling back...")
	default:
		phase = "Starting..."
	}

	return fmt.Sprintf("%s\n%s %s\n\n%s\n%s\n\n%s",
		title, m.spinner.View(), phase, m.bar.ViewAs(m.percent()), m.progress.Message,
		m.help.ShortHelpView([]key.Binding{m.keys.abort}))
}

// percent maps the current phase onto a 0..1 bar: searching fills the first 80%.
func (m *Model) percent() float64 {
	switch m.progress.Phase {
	case tasks.SearchTracks:
		if m.progress.Total == 0 {
			return 0
		}
		return 0.8 * float64(m.progress.Step) / float64(m.progress.Total)
	case tasks.CreatePlaylist:
		return 0.85
	case tasks.SetDescription:
		return 0.9
	case tasks.AddTracks:
		return 0.95
	case tasks.FetchShareLink, tasks.Complete:
		return 1
	default:
		return 0
	}
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(fmt.Sprintf("Migration failed: %v", m.err)), helpView)
	}
	if m.outcome == nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("No result available"), helpView)
	}

	total := m.playlist.TrackCount
	matched := total - m.outcome.MissingCount
	title := styles.ok.Render("✓ Migration complete")
	info := fmt.Sprintf("\nLink: %s\nMatched: %d/%d", styles.link.Render(m.outcome.ShareLink), matched, total)

	var missing string
	if m.outcome.MissingCount > 0 {
		missing = "\n\n" + styles.warn.Render(fmt.Sprintf("Could not match %d tracks:", m.outcome.MissingCount))
		for _, track := range m.outcome.MissingTracks {
			missing += fmt.Sprintf("\n  • %s - %s", track.Artist, track.Title)
		}
	}

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, missing, helpView)
}
