// Package report gathers completion, lookup and context data for a file and
// shapes it for output. The CLI commands and the MCP tools share it.
package report

import (
	"context"
	"fmt"
	"os"

	"github.com/gosense/gosense/internal/completion"
	"github.com/gosense/gosense/internal/history"
	"github.com/gosense/gosense/internal/importpath"
	"github.com/gosense/gosense/internal/lookup"
	"github.com/gosense/gosense/internal/output"
	"github.com/gosense/gosense/internal/parser"
	"github.com/gosense/gosense/internal/template"
)

// DataGatherer answers queries against one workspace.
type DataGatherer struct {
	ws     importpath.Workspace
	opts   importpath.Options
	engine *completion.Engine
}

// NewDataGatherer creates a DataGatherer. The completion options configure
// the engine behind GatherCompletion.
func NewDataGatherer(ws importpath.Workspace, opts importpath.Options, engineOpts ...completion.Option) *DataGatherer {
	return &DataGatherer{
		ws:     ws,
		opts:   opts,
		engine: completion.New(ws, opts, engineOpts...),
	}
}

// GatherSDKPackages lists the SDK packages visible from file.
func (g *DataGatherer) GatherSDKPackages(ctx context.Context, file, raw string) (*output.SuggestionList, error) {
	suggestions, err := importpath.SDKPackages(ctx, g.ws, file, raw, g.opts)
	if err != nil {
		return nil, fmt.Errorf("sdk packages: %w", err)
	}
	return suggestionList(file, raw, suggestions), nil
}

// GatherLocalPackages lists the project packages visible from file.
func (g *DataGatherer) GatherLocalPackages(ctx context.Context, file, raw string) (*output.SuggestionList, error) {
	suggestions, err := importpath.LocalPackages(ctx, g.ws, file, raw, g.opts)
	if err != nil {
		return nil, fmt.Errorf("local packages: %w", err)
	}
	return suggestionList(file, raw, suggestions), nil
}

func suggestionList(file, raw string, suggestions []importpath.Suggestion) *output.SuggestionList {
	list := &output.SuggestionList{
		File:        file,
		Kind:        string(completion.KindImport),
		Prefix:      raw,
		Count:       len(suggestions),
		Suggestions: make([]output.Suggestion, 0, len(suggestions)),
	}
	for _, s := range suggestions {
		list.Suggestions = append(list.Suggestions, output.NewSuggestion(s.Entry, s.Identifier, string(s.Origin)))
	}
	return list
}

// GatherCompletion completes at offset. A nil content reads file from disk.
func (g *DataGatherer) GatherCompletion(ctx context.Context, file string, content []byte, offset int) (*output.SuggestionList, error) {
	res, err := g.engine.Complete(ctx, completion.Request{File: file, Content: content, Offset: offset})
	if err != nil {
		return nil, err
	}

	list := &output.SuggestionList{
		File:        res.File,
		Offset:      res.Offset,
		Kind:        string(res.Kind),
		Prefix:      res.Prefix,
		Contexts:    res.Contexts,
		Count:       len(res.Items),
		Suggestions: make([]output.Suggestion, 0, len(res.Items)),
	}
	for _, it := range res.Items {
		list.Suggestions = append(list.Suggestions, output.NewSuggestion(it.Entry, it.Identifier, string(it.Source)))
	}
	return list, nil
}

// GatherEntries lists the lookup entries of file's declarations.
func (g *DataGatherer) GatherEntries(ctx context.Context, file string) (*output.EntryList, error) {
	result, err := parseFile(ctx, file)
	if err != nil {
		return nil, err
	}
	defer result.Close()

	entries := lookup.FileEntries(result)
	list := &output.EntryList{
		File:    file,
		Count:   len(entries),
		Entries: make([]output.Entry, 0, len(entries)),
	}
	list.Package, _ = result.PackageClause()
	for _, e := range entries {
		list.Entries = append(list.Entries, output.NewEntry(e))
	}
	return list, nil
}

// GatherImports lists file's imports with the names they bind.
func (g *DataGatherer) GatherImports(ctx context.Context, file string) (*output.ImportList, error) {
	result, err := parseFile(ctx, file)
	if err != nil {
		return nil, err
	}
	defer result.Close()

	imports := result.Imports()
	list := &output.ImportList{
		File:    file,
		Imports: make([]output.Import, 0, len(imports)),
	}
	list.Package, _ = result.PackageClause()
	for _, imp := range imports {
		list.Imports = append(list.Imports, output.Import{
			Path:  imp.Path,
			Alias: imp.Alias,
			Name:  imp.VisibleName(),
			Line:  imp.Line,
		})
	}
	return list, nil
}

// GatherContexts reports the template contexts applicable at offset.
func (g *DataGatherer) GatherContexts(ctx context.Context, file string, content []byte, offset int) (*output.ContextReport, error) {
	if content == nil {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		content = data
	}

	p, err := parser.NewParser(parser.Go)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	result, err := p.Parse(ctx, content)
	if err != nil {
		return nil, err
	}
	defer result.Close()

	report := &output.ContextReport{File: file, Offset: offset, Contexts: []output.Context{}}
	for _, c := range template.Applicable(result, offset) {
		report.Contexts = append(report.Contexts, output.Context{ID: c.ID, Name: c.Name, Base: c.BaseID})
	}
	return report, nil
}

// GatherHistory lists up to limit recorded queries with summary stats.
func GatherHistory(ctx context.Context, store *history.Store, limit int) (*output.HistoryList, error) {
	queries, err := store.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	stats, err := store.GetStats(ctx)
	if err != nil {
		return nil, err
	}

	list := &output.HistoryList{
		Path: store.Path(),
		Stats: &output.HistoryStats{
			Total:        stats.Total,
			ByKind:       stats.ByKind,
			MeanDuration: output.FormatDuration(stats.MeanDuration),
		},
		Queries: make([]output.HistoryQuery, 0, len(queries)),
	}
	for _, q := range queries {
		list.Queries = append(list.Queries, output.HistoryQuery{
			ID:       q.ID,
			File:     q.File,
			Kind:     q.Kind,
			Prefix:   q.RawPath,
			Offset:   q.Offset,
			Items:    q.ItemCount,
			SDK:      q.SDKCount,
			Local:    q.LocalCount,
			Duration: output.FormatDuration(q.Duration),
			At:       q.At.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	return list, nil
}

func parseFile(ctx context.Context, file string) (*parser.ParseResult, error) {
	p, err := parser.NewParser(parser.Go)
	if err != nil {
		return nil, err
	}
	defer p.Close()
	return p.ParseFile(ctx, file)
}
