package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/oshokin/eresus/internal/config"
	"github.com/oshokin/eresus/internal/logger"
	"github.com/oshokin/eresus/internal/repository/archive"
	"github.com/oshokin/eresus/internal/service/archiver"
	"github.com/oshokin/eresus/internal/service/session"
	trackerui "github.com/oshokin/eresus/internal/ui/tracker"
)

// shutdownTimeout bounds how long queued logs may take to reach the archive on exit.
const shutdownTimeout = 15 * time.Second

// Options controls the tracker process.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// LogLevel overrides the configured log level when set.
	LogLevel string
	// LogFile overrides the configured log file when set.
	LogFile string
	// ProgramOptions are appended to the bubbletea program options.
	ProgramOptions []tea.ProgramOption
}

// runtime is everything the tracker screen depends on.
type runtime struct {
	settings *config.Live
	repo     archive.Repository
	archiver *archiver.Service
	session  *session.Session

	stopWatch context.CancelFunc
	closeLog  func() error
}

// Run starts the tracker and blocks until the user quits or ctx is canceled.
// A session still in progress on exit is archived as incomplete.
func Run(ctx context.Context, opts *Options) error {
	rt, err := setup(ctx, opts)
	if err != nil {
		return err
	}

	defer rt.close(ctx)

	ctx = logger.WithName(ctx, "tracker")

	programOptions := append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	}, opts.ProgramOptions...)

	program := tea.NewProgram(trackerui.New(ctx, rt.session), programOptions...)

	logger.InfoKV(ctx, "Tracker started", "timers", rt.settings.TimerSettings())

	_, err = program.Run()

	rt.finish(ctx)

	if err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return fmt.Errorf("run tracker screen: %w", err)
	}

	return nil
}

// setup loads settings, redirects logs to a file and opens the archive.
func setup(ctx context.Context, opts *Options) (*runtime, error) {
	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.DefaultConfigFilename
	}

	settings, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	levelName := settings.LogLevel
	if opts.LogLevel != "" {
		levelName = opts.LogLevel
	}

	if level, ok := logger.ParseLogLevel(levelName); ok {
		logger.SetLevel(level)
	}

	logFile := settings.LogFile
	if opts.LogFile != "" {
		logFile = opts.LogFile
	}

	// The terminal belongs to the tracker screen from here on.
	closeLog, err := logger.RedirectToFile(logFile)
	if err != nil {
		return nil, fmt.Errorf("redirect logs: %w", err)
	}

	ctx = logger.WithName(ctx, "tracker")

	repo, err := archive.Open(ctx, settings.Archive)
	if err != nil {
		_ = closeLog()

		return nil, fmt.Errorf("open archive: %w", err)
	}

	live := config.NewLive(configPath, settings)

	watchCtx, stopWatch := context.WithCancel(ctx)

	go func() {
		if watchErr := live.Watch(watchCtx); watchErr != nil {
			logger.WarnKV(ctx, "Settings hot reload disabled", "error", watchErr)
		}
	}()

	service := archiver.New(repo)

	logger.InfoKV(ctx, "Archive opened",
		"driver", settings.Archive.Driver,
		"path", settings.Archive.Path,
		"config", configPath)

	return &runtime{
		settings:  live,
		repo:      repo,
		archiver:  service,
		session:   session.New(ctx, live, session.WithArchiver(service)),
		stopWatch: stopWatch,
		closeLog:  closeLog,
	}, nil
}

// finish archives a session that was never reset.
func (rt *runtime) finish(ctx context.Context) {
	if rt.session.View().StartedAt.IsZero() {
		return
	}

	if archived := rt.session.Reset(ctx, session.ResetOptions{SaveLog: true}); archived != nil {
		logger.InfoKV(ctx, "Session in progress archived on exit", "log_id", archived.ID, "outcome", archived.Outcome)
	}
}

// close drains the archiver and releases resources in reverse order of setup.
func (rt *runtime) close(ctx context.Context) {
	rt.session.Close()
	rt.stopWatch()

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := rt.archiver.Close(shutdownCtx); err != nil {
		logger.ErrorKV(ctx, "Archiver did not drain", "error", err)
	}

	if err := rt.repo.Close(); err != nil {
		logger.ErrorKV(ctx, "Failed to close archive", "error", err)
	}

	_ = rt.closeLog()
}
