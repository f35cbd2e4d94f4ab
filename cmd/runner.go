package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/dzx/internal/models"
	"github.com/desertthunder/dzx/internal/services"
	"github.com/desertthunder/dzx/internal/shared"
	"github.com/desertthunder/dzx/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	deezer     *services.DeezerService
	api        *services.APIService
	engine     tasks.Engine
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Deezer     *services.DeezerService
	API        *services.APIService
	Engine     tasks.Engine
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
//
// Without an explicit Engine, one is built over the Deezer service using the matching options from config.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.API == nil {
		opts.API = services.NewAPIService(opts.Config.Catalog.BaseURL, opts.HTTPClient)
	}

	if opts.Engine == nil && opts.Deezer != nil {
		matching, err := tasks.OptionsFromConfig(opts.Config.Matching)
		if err != nil {
			opts.Logger.Warn("invalid matching config, using defaults", "error", err)
			matching = tasks.Options{}
		}
		opts.Engine = tasks.NewPlaylistEngine(opts.Deezer, matching, opts.Logger)
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		deezer:     opts.Deezer,
		api:        opts.API,
		engine:     opts.Engine,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the logger used by commands.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, playlistCommand, apiCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) requireEngine() error {
	if r.engine == nil {
		return fmt.Errorf("%w: playlist engine not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

func (r *Runner) requireDeezer() error {
	if r.deezer == nil {
		return fmt.Errorf("%w: Deezer service not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

// saveTokens stores token in the Deezer credentials and, when the runner has a config path, writes the config to disk.
func (r *Runner) saveTokens(token *oauth2.Token) error {
	if r.config == nil {
		return errors.New("config is nil")
	}

	if err := r.config.Credentials.Deezer.Update(token); err != nil {
		return fmt.Errorf("failed to update deezer configuration: %w", err)
	}

	if r.configPath == "" {
		return nil
	}

	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// withProgress runs fn with a progress channel whose updates are logged as they arrive.
// All updates are drained before it returns.
func (r *Runner) withProgress(fn func(progress chan<- tasks.ProgressUpdate) (*models.MigrationOutcome, error)) (*models.MigrationOutcome, error) {
	progress := make(chan tasks.ProgressUpdate, 50)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			r.logProgress(update)
		}
	}()

	outcome, err := fn(progress)
	close(progress)
	wg.Wait()
	return outcome, err
}

func (r *Runner) logProgress(update tasks.ProgressUpdate) {
	switch update.Phase {
	case tasks.SearchTracks:
		if m, ok := update.Data.(tasks.TrackMatch); ok {
			r.logger.Debug("matched", "track", m.Track.Title, "candidate", m.Match.CandidateID, "score", m.Match.Score)
		}
		r.logger.Info(update.Message)
	case tasks.Rollback:
		r.logger.Warn(update.Message)
	default:
		r.logger.Info(update.Message, "phase", update.Phase)
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
