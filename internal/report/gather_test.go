package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosense/gosense/internal/completion"
	"github.com/gosense/gosense/internal/history"
	"github.com/gosense/gosense/internal/importpath"
	"github.com/gosense/gosense/internal/project"
)

type fakeWorkspace struct {
	module    *project.Module
	toolchain *project.Toolchain
}

func (w fakeWorkspace) ModuleForFile(string) (*project.Module, bool) {
	return w.module, w.module != nil
}

func (w fakeWorkspace) ToolchainFor(*project.Module) (*project.Toolchain, bool) {
	return w.toolchain, w.toolchain != nil
}

const demo = `package main

import (
	"fmt"
	str "strings"
	_ "embed"
)

type Shape interface {
	Area() float64
}

func Describe(s Shape) string {
	return fmt.Sprint(str.TrimSpace("x"))
}
`

func setup(t *testing.T) (*DataGatherer, string) {
	t.Helper()
	root := t.TempDir()
	sdk := t.TempDir()
	for _, rel := range []string{"fmt.a", "strings.a"} {
		require.NoError(t, os.WriteFile(filepath.Join(sdk, rel), nil, 0644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(root, "geo"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "geo", "geo.go"), []byte("package geo\n"), 0644))

	file := filepath.Join(root, "demo.go")
	require.NoError(t, os.WriteFile(file, []byte(demo), 0644))

	ws := fakeWorkspace{
		module:    &project.Module{Dir: root, Path: "example.com/demo"},
		toolchain: &project.Toolchain{Name: "sdk", Roots: []string{sdk}},
	}
	return NewDataGatherer(ws, importpath.Options{}, completion.WithKeywords(false)), file
}

func TestGatherSDKAndLocalPackages(t *testing.T) {
	g, file := setup(t)
	ctx := context.Background()

	sdk, err := g.GatherSDKPackages(ctx, file, `"`)
	require.NoError(t, err)
	assert.Equal(t, "import", sdk.Kind)
	assert.Equal(t, 2, sdk.Count)
	assert.Equal(t, "fmt", sdk.Suggestions[0].Text)
	assert.Equal(t, "sdk", sdk.Suggestions[0].Source)

	local, err := g.GatherLocalPackages(ctx, file, `"./`)
	require.NoError(t, err)
	require.Equal(t, 1, local.Count)
	assert.Equal(t, "geo", local.Suggestions[0].Text)
	assert.True(t, local.Suggestions[0].Bold)
	assert.Equal(t, "via project", local.Suggestions[0].TypeText)
	assert.Equal(t, "project", local.Suggestions[0].Source)
}

func TestGatherCompletion(t *testing.T) {
	g, file := setup(t)

	content := []byte("package main\n\nimport \"st")
	list, err := g.GatherCompletion(context.Background(), file, content, len(content))
	require.NoError(t, err)
	assert.Equal(t, "import", list.Kind)
	assert.Equal(t, `"st`, list.Prefix)
	assert.Equal(t, 3, list.Count)
}

func TestGatherEntries(t *testing.T) {
	g, file := setup(t)

	list, err := g.GatherEntries(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, "main", list.Package)

	var texts []string
	for _, e := range list.Entries {
		texts = append(texts, e.Text)
	}
	assert.Equal(t, []string{"Shape", "Describe"}, texts)
	assert.Equal(t, "interface", list.Entries[0].Style)
	assert.Equal(t, "function", list.Entries[1].Style)
	assert.Equal(t, "(s Shape)", list.Entries[1].TailText)
}

func TestGatherImports(t *testing.T) {
	g, file := setup(t)

	list, err := g.GatherImports(context.Background(), file)
	require.NoError(t, err)
	require.Len(t, list.Imports, 3)

	assert.Equal(t, "fmt", list.Imports[0].Name)
	assert.Equal(t, "strings", list.Imports[1].Path)
	assert.Equal(t, "str", list.Imports[1].Name)
	assert.Equal(t, "embed", list.Imports[2].Path)
	assert.Empty(t, list.Imports[2].Name)
}

func TestGatherContexts(t *testing.T) {
	g, file := setup(t)
	ctx := context.Background()

	inBody := len(demo) - len("str.TrimSpace(\"x\"))\n}\n")
	report, err := g.GatherContexts(ctx, file, nil, inBody)
	require.NoError(t, err)
	require.Len(t, report.Contexts, 2)
	assert.Equal(t, "GO_FUNCTION", report.Contexts[1].ID)
	assert.Equal(t, "GO", report.Contexts[1].Base)

	report, err = g.GatherContexts(ctx, file, nil, len(demo)+10)
	require.NoError(t, err)
	assert.Empty(t, report.Contexts)
}

func TestGatherMissingFile(t *testing.T) {
	g, _ := setup(t)
	_, err := g.GatherEntries(context.Background(), filepath.Join(t.TempDir(), "nope.go"))
	assert.Error(t, err)
}

func TestGatherHistory(t *testing.T) {
	store, err := history.Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Record(ctx, history.Query{
		File: "a.go", Kind: "import", RawPath: `"f`, ItemCount: 2, Duration: time.Millisecond,
		At: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}))

	list, err := GatherHistory(ctx, store, 10)
	require.NoError(t, err)
	assert.Equal(t, store.Path(), list.Path)
	assert.Equal(t, int64(1), list.Stats.Total)
	require.Len(t, list.Queries, 1)
	assert.Equal(t, `"f`, list.Queries[0].Prefix)
	assert.Equal(t, "1ms", list.Queries[0].Duration)
	assert.Equal(t, "2026-01-02T03:04:05Z", list.Queries[0].At)
}
