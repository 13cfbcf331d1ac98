// Package project maps source files to their owning Go module and the
// toolchain that serves it.
package project

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"

	"github.com/gosense/gosense/internal/config"
	"github.com/gosense/gosense/internal/exclude"
	"github.com/gosense/gosense/internal/logging"
)

// Module is a directory tree owned by one go.mod.
type Module struct {
	// Dir is the absolute directory holding go.mod.
	Dir string
	// Path is the module path; empty for the implicit module of a tree
	// without go.mod.
	Path string
	// GoVersion is the go directive, e.g. "1.22".
	GoVersion string
	// Toolchain is the toolchain directive, e.g. "go1.22.3".
	Toolchain string
}

// Project is a source tree rooted at Root. It is read-only after
// construction and safe for concurrent use.
type Project struct {
	Root string

	cfg    *config.Config
	rules  *exclude.Rules
	logger *slog.Logger
	getenv func(string) string
}

// Option configures a Project.
type Option func(*Project)

// WithLogger sets the logger used for resolution diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(p *Project) { p.logger = l }
}

// WithGetenv replaces the environment lookup used to detect GOROOT.
func WithGetenv(fn func(string) string) Option {
	return func(p *Project) { p.getenv = fn }
}

// New returns the project rooted at root.
func New(root string, cfg *config.Config, opts ...Option) (*Project, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	p := &Project{
		Root:   abs,
		cfg:    cfg,
		logger: logging.Discard(),
		getenv: os.Getenv,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.rules = exclude.New(abs, cfg.Scan.SkipDirs, cfg.Scan.SkipFiles)
	if cfg.Scan.AutoExcludeEnabled() {
		p.rules.WithAutoExcludes()
	}
	return p, nil
}

// Discover finds the project enclosing start: the directory holding
// .gosense, else the nearest go.work or go.mod directory, else start
// itself (or its directory when start is a file).
func Discover(start string, cfg *config.Config, opts ...Option) (*Project, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	if dir, err := config.FindConfigDir(abs); err == nil {
		return New(filepath.Dir(dir), cfg, opts...)
	}
	for _, marker := range []string{"go.work", "go.mod"} {
		if dir, ok := findUp(abs, "", marker); ok {
			return New(dir, cfg, opts...)
		}
	}
	return New(abs, cfg, opts...)
}

// Config returns the configuration the project was built with.
func (p *Project) Config() *config.Config {
	return p.cfg
}

// Rules returns the exclusion rules for walks inside the project.
func (p *Project) Rules() *exclude.Rules {
	return p.rules
}

// Contains reports whether path lies inside the project root.
func (p *Project) Contains(path string) bool {
	rel, err := filepath.Rel(p.Root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ModuleForFile returns the module owning path. Files outside the project,
// excluded files and files under an unreadable go.mod have no module.
func (p *Project) ModuleForFile(path string) (*Module, bool) {
	abs, err := filepath.Abs(path)
	if err != nil || !p.Contains(abs) {
		return nil, false
	}
	if p.rules.Excluded(abs) {
		p.logger.Debug("file excluded from project", "file", abs)
		return nil, false
	}

	dir, ok := findUp(filepath.Dir(abs), p.Root, "go.mod")
	if !ok {
		return &Module{Dir: p.Root}, true
	}

	gomod := filepath.Join(dir, "go.mod")
	data, err := os.ReadFile(gomod)
	if err != nil {
		p.logger.Debug("reading go.mod", "path", gomod, "error", err)
		return nil, false
	}
	mf, err := parseGoMod(gomod, data)
	if err != nil {
		p.logger.Debug("parsing go.mod", "path", gomod, "error", err)
		return nil, false
	}

	m := &Module{Dir: dir}
	if mf.Module != nil {
		m.Path = mf.Module.Mod.Path
	}
	if mf.Go != nil {
		m.GoVersion = mf.Go.Version
	}
	if mf.Toolchain != nil {
		m.Toolchain = mf.Toolchain.Name
	}
	return m, true
}

// parseGoMod parses strictly so the toolchain directive survives, falling
// back to the lax parser for files with directives it rejects.
func parseGoMod(path string, data []byte) (*modfile.File, error) {
	mf, err := modfile.Parse(path, data, nil)
	if err == nil {
		return mf, nil
	}
	return modfile.ParseLax(path, data, nil)
}

// findUp looks for name in dir and its ancestors, stopping after stop
// (or at the filesystem root when stop is empty).
func findUp(dir, stop, name string) (string, bool) {
	for {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return dir, true
		}
		if dir == stop {
			return "", false
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
