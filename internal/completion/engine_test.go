package completion

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosense/gosense/internal/history"
	"github.com/gosense/gosense/internal/importpath"
	"github.com/gosense/gosense/internal/lookup"
	"github.com/gosense/gosense/internal/parser"
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

type memRecorder struct {
	mu      sync.Mutex
	queries []history.Query
}

func (r *memRecorder) Record(_ context.Context, q history.Query) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, q)
	return nil
}

func touch(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func parse(t *testing.T, src string) *parser.ParseResult {
	t.Helper()
	p, err := parser.NewParser(parser.Go)
	require.NoError(t, err)
	t.Cleanup(p.Close)
	result, err := p.Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	t.Cleanup(result.Close)
	return result
}

// cursor returns src without the "|" marker and the marker's offset.
func cursor(t *testing.T, src string) (string, int) {
	t.Helper()
	i := strings.Index(src, "|")
	require.GreaterOrEqual(t, i, 0, "missing cursor marker")
	return src[:i] + src[i+1:], i
}

func TestImportPrefix(t *testing.T) {
	tests := []struct {
		name string
		src  string
		raw  string
		ok   bool
	}{
		{"single import", "package a\n\nimport \"fm|t\"\n", `"fm`, true},
		{"unterminated", "package a\n\nimport \"net/ht|", `"net/ht`, true},
		{"empty literal", "package a\n\nimport \"|\"\n", `"`, true},
		{"aliased", "package a\n\nimport f \"fm|t\"\n", `"fm`, true},
		{"blank", "package a\n\nimport _ \"emb|ed\"\n", `"emb`, true},
		{"raw string", "package a\n\nimport `fm|t`\n", "`fm", true},
		{"grouped", "package a\n\nimport (\n\t\"os\"\n\t\"./su|\"\n)\n", `"./su`, true},
		{"grouped unterminated", "package a\n\nimport (\n\t\"os\"\n\t\"./|", `"./`, true},
		{"after closing quote", "package a\n\nimport \"fmt\"|\n", "", false},
		{"before opening quote", "package a\n\nimport |\"fmt\"\n", "", false},
		{"string in function", "package a\n\nfunc f() string {\n\treturn \"ab|c\"\n}\n", "", false},
		{"call argument", "package a\n\nfunc f() {\n\tprintln(\"ab|c\")\n}\n", "", false},
		{"identifier", "package a\n\nvar x = y|\n", "", false},
		{"call named like import", "package a\n\nfunc f() {\n\timporter(\n\t\t\"ab|c", "", false},
		{"single import then call", "package a\n\nimport \"fmt\"\n\nfunc f() {\n\tg(\n\t\t\"ab|c", "", false},
		{"block with spaced paren", "package a\n\nimport  (\n\t\"o|", `"o`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, offset := cursor(t, tt.src)
			raw, ok := ImportPrefix(parse(t, src), offset)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.raw, raw)
		})
	}
}

func TestImportPrefixBounds(t *testing.T) {
	file := parse(t, "package a\n")
	_, ok := ImportPrefix(file, 0)
	assert.False(t, ok)
	_, ok = ImportPrefix(file, len(file.Source)+1)
	assert.False(t, ok)
	_, ok = ImportPrefix(nil, 1)
	assert.False(t, ok)
}

func TestIdentifierPrefix(t *testing.T) {
	src := []byte("x := fmt.Prin")
	assert.Equal(t, "Prin", IdentifierPrefix(src, len(src)))
	assert.Equal(t, "fmt", IdentifierPrefix(src, 8))
	assert.Equal(t, "", IdentifierPrefix(src, 5))
	assert.Equal(t, "Prin", IdentifierPrefix(src, len(src)+3))
}

func TestCompleteImport(t *testing.T) {
	root := t.TempDir()
	sdk := t.TempDir()
	touch(t, sdk, "fmt.a", "")
	touch(t, sdk, "net/http.a", "")
	touch(t, root, "b.go", "package util\n")
	touch(t, root, "sub/s.go", "package sub\n")

	src, offset := cursor(t, "package main\n\nimport (\n\t\"./|\"\n)\n")
	file := touch(t, root, "a.go", src)

	ws := fakeWorkspace{
		module:    &project.Module{Dir: root},
		toolchain: &project.Toolchain{Name: "sdk", Roots: []string{sdk}},
	}
	rec := &memRecorder{}
	e := New(ws, importpath.Options{}, WithRecorder(rec))

	got, err := e.Complete(context.Background(), Request{File: file, Offset: offset})
	require.NoError(t, err)

	assert.Equal(t, KindImport, got.Kind)
	assert.Equal(t, `"./`, got.Prefix)
	assert.Equal(t, offset-2, got.ReplaceStart, "replacement starts after the quote")

	var texts []string
	var sources []Source
	for _, it := range got.Items {
		texts = append(texts, it.Text)
		sources = append(sources, it.Source)
	}
	assert.Equal(t, []string{"fmt", "net/http", "sub", "util"}, texts)
	assert.Equal(t, []Source{SourceSDK, SourceSDK, SourceProject, SourceProject}, sources)

	require.Len(t, rec.queries, 1)
	q := rec.queries[0]
	assert.Equal(t, "import", q.Kind)
	assert.Equal(t, `"./`, q.RawPath)
	assert.Equal(t, 2, q.SDKCount)
	assert.Equal(t, 2, q.LocalCount)
	assert.Equal(t, 4, q.ItemCount)
}

func TestCompleteIdentifier(t *testing.T) {
	src, offset := cursor(t, `package demo

import (
	"fmt"
	_ "embed"
)

const Limit = 3

func Run(n int) error {
	fmt.Println(Li|)
	return nil
}
`)
	e := New(fakeWorkspace{}, importpath.Options{})

	got, err := e.Complete(context.Background(), Request{File: "demo.go", Content: []byte(src), Offset: offset})
	require.NoError(t, err)

	assert.Equal(t, KindIdentifier, got.Kind)
	assert.Equal(t, "Li", got.Prefix)
	assert.Equal(t, offset-2, got.ReplaceStart)
	assert.Equal(t, []string{"GO", "GO_FUNCTION"}, got.Contexts)

	bySource := make(map[Source][]string)
	for _, it := range got.Items {
		bySource[it.Source] = append(bySource[it.Source], it.Text)
	}
	assert.Equal(t, []string{"Limit", "Run"}, bySource[SourceFile])
	assert.Equal(t, []string{"fmt"}, bySource[SourcePackage])
	assert.Len(t, bySource[SourceKeyword], len(lookup.Keywords))

	for _, it := range got.Items {
		if it.Text == "Run" {
			assert.Equal(t, lookup.StyleFunction, it.Style)
			assert.Equal(t, "(n int)", it.TailText)
			assert.Equal(t, "error", it.TypeText)
		}
	}
}

func TestCompleteWithoutKeywords(t *testing.T) {
	e := New(fakeWorkspace{}, importpath.Options{}, WithKeywords(false))
	src := []byte("package demo\n\nvar x = 1\n")

	got, err := e.Complete(context.Background(), Request{Content: src, Offset: len(src)})
	require.NoError(t, err)
	for _, it := range got.Items {
		assert.NotEqual(t, SourceKeyword, it.Source)
	}
}

func TestCompleteErrors(t *testing.T) {
	e := New(fakeWorkspace{}, importpath.Options{})
	ctx := context.Background()

	_, err := e.Complete(ctx, Request{Content: []byte("package a\n"), Offset: 99})
	assert.ErrorIs(t, err, ErrOffsetOutOfRange)

	_, err = e.Complete(ctx, Request{Content: []byte("package a\n"), Offset: -1})
	assert.ErrorIs(t, err, ErrOffsetOutOfRange)

	_, err = e.Complete(ctx, Request{File: filepath.Join(t.TempDir(), "missing.go")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCompleteRecordsToStore(t *testing.T) {
	store, err := history.Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	e := New(fakeWorkspace{}, importpath.Options{}, WithRecorder(store))
	src := []byte("package a\n\nimport \"fm")
	_, err = e.Complete(context.Background(), Request{File: "a.go", Content: src, Offset: len(src)})
	require.NoError(t, err)

	recent, err := store.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "import", recent[0].Kind)
	assert.Equal(t, `"fm`, recent[0].RawPath)
	assert.Zero(t, recent[0].ItemCount)
}
