package importpath

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gosense/gosense/internal/config"
	"github.com/gosense/gosense/internal/exclude"
	"github.com/gosense/gosense/internal/logging"
	"github.com/gosense/gosense/internal/lookup"
	"github.com/gosense/gosense/internal/parser"
	"github.com/gosense/gosense/internal/project"
)

// Workspace maps a file to its owning module and a module to the
// toolchain serving it. *project.Project implements it.
type Workspace interface {
	ModuleForFile(path string) (*project.Module, bool)
	ToolchainFor(m *project.Module) (*project.Toolchain, bool)
}

// Origin tells where a suggestion came from.
type Origin string

const (
	OriginSDK     Origin = "sdk"
	OriginProject Origin = "project"
)

// Suggestion is one import path candidate.
type Suggestion struct {
	lookup.Entry `yaml:",inline"`
	// Identifier is the package path or relative candidate before
	// prefix-shape formatting.
	Identifier string `json:"identifier" yaml:"identifier"`
	Origin     Origin `json:"origin" yaml:"origin"`
}

// Options carries the scan settings of one enumeration.
type Options struct {
	SourceExt       string
	ArchiveExt      string
	EntryPackage    string
	ViaProjectLabel string
	// Rules filter the local walk; nil skips nothing.
	Rules  *exclude.Rules
	Logger *slog.Logger
}

// OptionsFromConfig builds Options from cfg.
func OptionsFromConfig(cfg *config.Config, rules *exclude.Rules, logger *slog.Logger) Options {
	return Options{
		SourceExt:       cfg.Scan.SourceExt,
		ArchiveExt:      cfg.Scan.ArchiveExt,
		EntryPackage:    cfg.Scan.EntryPackage,
		ViaProjectLabel: cfg.Completion.ViaProjectLabel,
		Rules:           rules,
		Logger:          logger,
	}
}

func (o Options) withDefaults() Options {
	defaults := config.DefaultConfig()
	if o.SourceExt == "" {
		o.SourceExt = defaults.Scan.SourceExt
	}
	if o.ArchiveExt == "" {
		o.ArchiveExt = defaults.Scan.ArchiveExt
	}
	if o.EntryPackage == "" {
		o.EntryPackage = defaults.Scan.EntryPackage
	}
	if o.ViaProjectLabel == "" {
		o.ViaProjectLabel = defaults.Completion.ViaProjectLabel
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	return o
}

// SDKPackages lists every package of the toolchain serving file's module.
// Untracked files and modules without a toolchain yield no suggestions.
// The typed prefix does not filter the result.
func SDKPackages(ctx context.Context, ws Workspace, file, raw string, opts Options) ([]Suggestion, error) {
	opts = opts.withDefaults()
	// Every surrounding quote goes, so a path cleaned upstream cleans to itself.
	prefix := CleanupPath(raw)

	mod, ok := ws.ModuleForFile(file)
	if !ok {
		opts.Logger.Debug("sdk packages: file has no module", "file", file)
		return nil, nil
	}
	tc, ok := ws.ToolchainFor(mod)
	if !ok {
		return nil, nil
	}

	paths, err := SDKIndex(ctx, tc, opts)
	if err != nil {
		return nil, err
	}

	opts.Logger.Debug("sdk packages", "file", file, "prefix", prefix, "toolchain", tc.Name, "count", len(paths))

	out := make([]Suggestion, 0, len(paths))
	for _, p := range paths {
		out = append(out, Suggestion{
			Entry:      lookup.Entry{Text: p},
			Identifier: p,
			Origin:     OriginSDK,
		})
	}
	return out, nil
}

// SDKIndex walks every root of tc concurrently and returns the sorted set
// of package paths found. Archive roots contribute each file ending in the
// archive suffix, relative to its root and without the suffix; source roots
// contribute each directory holding a non-test source file. Missing or
// unreadable roots contribute nothing.
func SDKIndex(ctx context.Context, tc *project.Toolchain, opts Options) ([]string, error) {
	opts = opts.withDefaults()

	var (
		mu  sync.Mutex
		set = make(map[string]struct{})
	)
	merge := func(paths []string) {
		mu.Lock()
		defer mu.Unlock()
		for _, p := range paths {
			set[p] = struct{}{}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, root := range tc.Roots {
		g.Go(func() error {
			paths, err := walkArchives(gctx, root, opts.ArchiveExt)
			merge(paths)
			return err
		})
	}
	for _, root := range tc.SourceRoots {
		g.Go(func() error {
			paths, err := walkSources(gctx, root, opts.SourceExt)
			merge(paths)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return sortedKeys(set), nil
}

func walkArchives(ctx context.Context, root, ext string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ext) || d.Name() == ext {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		paths = append(paths, strings.TrimSuffix(filepath.ToSlash(rel), ext))
		return nil
	})
	return paths, err
}

func walkSources(ctx context.Context, root, ext string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && !importableDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ext) || strings.HasSuffix(d.Name(), "_test"+ext) {
			return nil
		}

		dir := filepath.Dir(path)
		if dir == filepath.Clean(root) {
			return nil
		}
		rel, err := filepath.Rel(root, dir)
		if err != nil {
			return nil
		}
		if rel = filepath.ToSlash(rel); len(paths) == 0 || paths[len(paths)-1] != rel {
			paths = append(paths, rel)
		}
		return nil
	})
	return paths, err
}

// importableDir mirrors the go tool: testdata, vendor and dot or
// underscore prefixed directories hold no importable packages.
func importableDir(name string) bool {
	switch {
	case name == "testdata", name == "vendor":
		return false
	case strings.HasPrefix(name, "."), strings.HasPrefix(name, "_"):
		return false
	}
	return true
}

// LocalPackages lists the packages declared by source files in file's
// directory and below. Each candidate is formatted for the shape of the
// typed prefix and presented bold with the via-project type text.
func LocalPackages(ctx context.Context, ws Workspace, file, raw string, opts Options) ([]Suggestion, error) {
	opts = opts.withDefaults()
	// Every surrounding quote goes, so a path cleaned upstream cleans to itself.
	shape := ShapeOf(CleanupPath(raw))

	if _, ok := ws.ModuleForFile(file); !ok {
		opts.Logger.Debug("local packages: file has no module", "file", file)
		return nil, nil
	}

	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, nil
	}
	ids, err := LocalCandidates(ctx, filepath.Dir(abs), opts)
	if err != nil {
		return nil, err
	}

	out := make([]Suggestion, 0, len(ids))
	for _, id := range ids {
		out = append(out, Suggestion{
			Entry: lookup.Entry{
				Text:     shape.Format(id),
				Bold:     true,
				TypeText: opts.ViaProjectLabel,
			},
			Identifier: id,
			Origin:     OriginProject,
		})
	}
	return out, nil
}

// LocalCandidates walks dir recursively and returns the sorted distinct
// candidates: the package name for files directly in dir, otherwise the
// slash-separated relative directory, suffixed with "/<package>" when the
// directory name differs from the package name. Files that fail to parse
// or declare the entry package are skipped.
func LocalCandidates(ctx context.Context, dir string, opts Options) ([]string, error) {
	opts = opts.withDefaults()
	dir = filepath.Clean(dir)

	p, err := parser.NewParser(parser.Go)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	set := make(map[string]struct{})
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			opts.Logger.Debug("local packages: walk error", "path", path, "error", err)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && opts.Rules.SkipDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), opts.SourceExt) || opts.Rules.SkipFile(path) {
			return nil
		}

		pkg, err := packageName(ctx, p, path)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			opts.Logger.Debug("local packages: skipping file", "path", path, "error", err)
			return nil
		}
		if pkg == opts.EntryPackage {
			return nil
		}

		fileDir := filepath.Dir(path)
		if fileDir == dir {
			set[pkg] = struct{}{}
			return nil
		}
		rel, err := filepath.Rel(dir, fileDir)
		if err != nil {
			return nil
		}
		id := filepath.ToSlash(rel)
		if filepath.Base(fileDir) != pkg {
			id += "/" + pkg
		}
		set[id] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sortedKeys(set), nil
}

func packageName(ctx context.Context, p *parser.Parser, path string) (string, error) {
	result, err := p.ParseFile(ctx, path)
	if err != nil {
		return "", err
	}
	defer result.Close()
	return result.PackageClause()
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
