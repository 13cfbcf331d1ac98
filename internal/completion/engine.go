// Package completion answers a completion request at a byte offset of a Go
// file. Inside an import path literal it offers SDK and project packages;
// elsewhere it offers the file's declarations, imported package names and
// keywords.
package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gosense/gosense/internal/history"
	"github.com/gosense/gosense/internal/importpath"
	"github.com/gosense/gosense/internal/logging"
	"github.com/gosense/gosense/internal/lookup"
	"github.com/gosense/gosense/internal/parser"
	"github.com/gosense/gosense/internal/template"
)

// ErrOffsetOutOfRange is returned for offsets outside the content.
var ErrOffsetOutOfRange = errors.New("offset out of range")

// Kind is the kind of completion performed.
type Kind string

const (
	KindImport     Kind = "import"
	KindIdentifier Kind = "identifier"
)

// Source tells which provider produced an item.
type Source string

const (
	SourceSDK     Source = "sdk"
	SourceProject Source = "project"
	SourceFile    Source = "file"
	SourcePackage Source = "package"
	SourceKeyword Source = "keyword"
)

// Request is one completion request.
type Request struct {
	File string
	// Content is the unsaved buffer. When nil, File is read from disk.
	Content []byte
	// Offset is the byte offset of the cursor.
	Offset int
}

// Item is one completion candidate.
type Item struct {
	lookup.Entry `yaml:",inline"`
	Identifier   string `json:"identifier,omitempty" yaml:"identifier,omitempty"`
	Source       Source `json:"source" yaml:"source"`
}

// Result is the answer to a Request.
type Result struct {
	File   string `json:"file" yaml:"file"`
	Offset int    `json:"offset" yaml:"offset"`
	Kind   Kind   `json:"kind" yaml:"kind"`
	// Prefix is the raw import path or identifier typed before the cursor.
	Prefix string `json:"prefix" yaml:"prefix"`
	// ReplaceStart is the byte offset where accepted text starts replacing
	// the typed prefix. For import paths it is just past the opening quote.
	ReplaceStart int      `json:"replace_start" yaml:"replace_start"`
	Contexts     []string `json:"contexts" yaml:"contexts"`
	Items        []Item   `json:"items" yaml:"items"`
}

// Recorder receives one entry per answered request. *history.Store
// implements it.
type Recorder interface {
	Record(ctx context.Context, q history.Query) error
}

// Engine answers completion requests against a workspace.
type Engine struct {
	ws       importpath.Workspace
	opts     importpath.Options
	keywords bool
	recorder Recorder
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecorder records every answered request.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithKeywords toggles keyword items in identifier completion.
func WithKeywords(on bool) Option {
	return func(e *Engine) { e.keywords = on }
}

// New creates an engine over ws.
func New(ws importpath.Workspace, opts importpath.Options, options ...Option) *Engine {
	e := &Engine{
		ws:       ws,
		opts:     opts,
		keywords: true,
		logger:   logging.Discard(),
	}
	for _, o := range options {
		o(e)
	}
	if e.opts.Logger == nil {
		e.opts.Logger = e.logger
	}
	return e
}

// Complete answers req.
func (e *Engine) Complete(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	content := req.Content
	if content == nil {
		data, err := os.ReadFile(req.File)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", req.File, err)
		}
		content = data
	}
	if req.Offset < 0 || req.Offset > len(content) {
		return nil, fmt.Errorf("%w: %d not in [0, %d]", ErrOffsetOutOfRange, req.Offset, len(content))
	}

	p, err := parser.NewParser(parser.Go)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	file, err := p.Parse(ctx, content)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	file.FilePath = req.File

	result := &Result{
		File:     req.File,
		Offset:   req.Offset,
		Contexts: template.ApplicableIDs(file, max(req.Offset-1, 0)),
	}

	var sdkCount, localCount int
	if raw, ok := ImportPrefix(file, req.Offset); ok {
		result.Kind = KindImport
		result.Prefix = raw
		result.ReplaceStart = req.Offset - len(raw) + 1
		items, sdk, local, err := e.importItems(ctx, req.File, raw)
		if err != nil {
			return nil, err
		}
		result.Items, sdkCount, localCount = items, sdk, local
	} else {
		result.Kind = KindIdentifier
		result.Prefix = IdentifierPrefix(content, req.Offset)
		result.ReplaceStart = req.Offset - len(result.Prefix)
		result.Items = e.identifierItems(file)
	}

	elapsed := time.Since(start)
	e.logger.Debug("complete", "file", req.File, "kind", result.Kind, "prefix", result.Prefix,
		"items", len(result.Items), "syntax_errors", file.HasErrors(), "duration", elapsed)

	if e.recorder != nil {
		q := history.Query{
			File:       req.File,
			RawPath:    result.Prefix,
			Kind:       string(result.Kind),
			Offset:     req.Offset,
			SDKCount:   sdkCount,
			LocalCount: localCount,
			ItemCount:  len(result.Items),
			Duration:   elapsed,
		}
		if err := e.recorder.Record(ctx, q); err != nil {
			e.logger.Warn("record history", "error", err)
		}
	}

	return result, nil
}

func (e *Engine) importItems(ctx context.Context, file, raw string) (items []Item, sdkCount, localCount int, err error) {
	var sdk, local []importpath.Suggestion

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sdk, err = importpath.SDKPackages(gctx, e.ws, file, raw, e.opts)
		return err
	})
	g.Go(func() error {
		var err error
		local, err = importpath.LocalPackages(gctx, e.ws, file, raw, e.opts)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, 0, err
	}

	items = make([]Item, 0, len(sdk)+len(local))
	for _, s := range sdk {
		items = append(items, Item{Entry: s.Entry, Identifier: s.Identifier, Source: SourceSDK})
	}
	for _, s := range local {
		items = append(items, Item{Entry: s.Entry, Identifier: s.Identifier, Source: SourceProject})
	}
	return items, len(sdk), len(local), nil
}

func (e *Engine) identifierItems(file *parser.ParseResult) []Item {
	var items []Item
	for _, entry := range lookup.FileEntries(file) {
		items = append(items, Item{Entry: entry, Source: SourceFile})
	}
	for _, entry := range lookup.ImportedPackages(file) {
		items = append(items, Item{Entry: entry, Source: SourcePackage})
	}
	if e.keywords {
		for _, word := range lookup.Keywords {
			items = append(items, Item{Entry: lookup.Keyword(word), Source: SourceKeyword})
		}
	}
	return items
}
