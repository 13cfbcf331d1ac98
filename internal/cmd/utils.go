package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gosense/gosense/internal/completion"
	"github.com/gosense/gosense/internal/config"
	"github.com/gosense/gosense/internal/history"
	"github.com/gosense/gosense/internal/importpath"
	"github.com/gosense/gosense/internal/logging"
	"github.com/gosense/gosense/internal/output"
	"github.com/gosense/gosense/internal/project"
	"github.com/gosense/gosense/internal/report"
)

// session holds what a command needs to answer queries for one project.
type session struct {
	cfg     *config.Config
	project *project.Project
	logger  *slog.Logger
	format  output.Format
	opts    importpath.Options

	// history is nil unless history.enabled is set and .gosense exists.
	history *history.Store
}

// openSession loads configuration and discovers the project. Discovery
// starts at --project when given, else at start (a file or directory).
func openSession(cmd *cobra.Command, start string) (*session, error) {
	if projectDir != "" {
		start = projectDir
	}
	if start == "" {
		start = "."
	}

	cfg, err := loadConfig(start)
	if err != nil {
		return nil, err
	}

	settings.SetDefault("format", cfg.Output.DefaultFormat)
	settings.SetDefault("log_level", cfg.Log.Level)

	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	if name := settings.GetString("toolchain"); name != "" {
		if _, ok := cfg.FindToolchain(name); !ok {
			return nil, fmt.Errorf("toolchain %q is not configured", name)
		}
		cfg.Toolchain.Default = name
	}

	format, err := output.ParseFormat(settings.GetString("format"))
	if err != nil {
		return nil, err
	}

	var proj *project.Project
	if projectDir != "" {
		proj, err = project.New(projectDir, cfg, project.WithLogger(logger))
	} else {
		proj, err = project.Discover(start, cfg, project.WithLogger(logger))
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("project resolved", "root", proj.Root)

	s := &session{
		cfg:     cfg,
		project: proj,
		logger:  logger,
		format:  format,
		opts:    importpath.OptionsFromConfig(cfg, proj.Rules(), logger),
	}

	if cfg.History.Enabled {
		if dir, err := config.FindConfigDir(proj.Root); err == nil {
			store, err := history.Open(dir)
			if err != nil {
				logger.Warn("history disabled", "error", err)
			} else {
				s.history = store
			}
		}
	}
	return s, nil
}

// loadConfig reads --config when given, else the nearest .gosense/config.yaml.
func loadConfig(start string) (*config.Config, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		return config.LoadFromPath(configPath)
	}

	dir := start
	if info, err := os.Stat(start); err == nil && !info.IsDir() {
		dir = filepath.Dir(start)
	}
	return config.Load(dir)
}

// newLogger sets the shared level from --verbose or the log_level setting.
func newLogger(w io.Writer) (*slog.Logger, error) {
	level, ok := logging.ParseLevel(settings.GetString("log_level"))
	if !ok {
		return nil, fmt.Errorf("invalid log level %q", settings.GetString("log_level"))
	}
	if verbose {
		level = slog.LevelDebug
	}
	logging.Leveler.SetLevel(level)
	return logging.New(w), nil
}

func (s *session) Close() error {
	if s.history != nil {
		return s.history.Close()
	}
	return nil
}

func (s *session) engineOptions() []completion.Option {
	opts := []completion.Option{
		completion.WithLogger(s.logger),
		completion.WithKeywords(s.cfg.Completion.KeywordsEnabled()),
	}
	if s.history != nil {
		opts = append(opts, completion.WithRecorder(s.history))
	}
	return opts
}

func (s *session) engine() *completion.Engine {
	return completion.New(s.project, s.opts, s.engineOptions()...)
}

func (s *session) gatherer() *report.DataGatherer {
	return report.NewDataGatherer(s.project, s.opts, s.engineOptions()...)
}

// write renders v to the command's output in the session format.
func (s *session) write(cmd *cobra.Command, v interface{}) error {
	formatter, err := output.GetFormatter(s.format)
	if err != nil {
		return err
	}
	return formatter.FormatToWriter(cmd.OutOrStdout(), v)
}

// readContent returns the unsaved buffer from stdin when requested.
func readContent(cmd *cobra.Command, fromStdin bool) ([]byte, error) {
	if !fromStdin {
		return nil, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	return data, nil
}

// requireFile fails early on paths that are not regular files.
func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("file not found: %s", path)
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}
