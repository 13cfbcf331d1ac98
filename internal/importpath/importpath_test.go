package importpath

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosense/gosense/internal/config"
	"github.com/gosense/gosense/internal/exclude"
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

func touch(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func identifiers(s []Suggestion) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = v.Identifier
	}
	return out
}

func texts(s []Suggestion) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = v.Text
	}
	return out
}

func TestCleanupPath(t *testing.T) {
	tests := map[string]string{
		`"fmt"`:      "fmt",
		`"net/ht`:    "net/ht",
		`net/http"`:  "net/http",
		`./sub`:      "./sub",
		`""`:         "",
		"":           "",
		"`embed`":    "embed",
		`""double""`: "double",
	}
	for raw, want := range tests {
		once := CleanupPath(raw)
		assert.Equal(t, want, once, "CleanupPath(%q)", raw)
		assert.Equal(t, once, CleanupPath(once), "CleanupPath must be idempotent for %q", raw)
	}
}

func TestShape(t *testing.T) {
	tests := []struct {
		prefix string
		shape  Shape
		want   string
	}{
		{"./", ShapeDotSlash, "foo"},
		{"./fo", ShapeDotSlash, "foo"},
		{".", ShapeDot, "/foo"},
		{"..", ShapeDot, "/foo"},
		{"", ShapeBare, "./foo"},
		{"fo", ShapeBare, "./foo"},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			s := ShapeOf(tt.prefix)
			assert.Equal(t, tt.shape, s)
			assert.Equal(t, tt.want, s.Format("foo"))
		})
	}
	assert.Equal(t, "dot-slash", ShapeDotSlash.String())
}

func TestSDKPackagesDeduplicatesAcrossRoots(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	touch(t, a, "fmt.a", "")
	touch(t, a, "net/http.a", "")
	touch(t, a, "net/http/README", "")
	touch(t, b, "fmt.a", "")
	touch(t, b, "encoding/json.a", "")
	touch(t, b, "net/http.a", "")
	touch(t, b, ".a", "")

	ws := fakeWorkspace{
		module:    &project.Module{Path: "example.com/m"},
		toolchain: &project.Toolchain{Name: "sdk", Roots: []string{a, b, filepath.Join(a, "missing")}},
	}

	got, err := SDKPackages(context.Background(), ws, "/x/main.go", `"ne`, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"encoding/json", "fmt", "net/http"}, identifiers(got))
	for _, s := range got {
		assert.Equal(t, OriginSDK, s.Origin)
		assert.Equal(t, s.Identifier, s.Text)
		assert.False(t, s.Bold)
		assert.Empty(t, s.TypeText)
	}
}

func TestSDKIndexSourceRoots(t *testing.T) {
	src := t.TempDir()
	touch(t, src, "fmt/print.go", "package fmt\n")
	touch(t, src, "fmt/print_test.go", "package fmt\n")
	touch(t, src, "net/http/server.go", "package http\n")
	touch(t, src, "net/doc.txt", "")
	touch(t, src, "net/http/testdata/x.go", "package x\n")
	touch(t, src, "vendor/golang.org/x/net/a.go", "package net\n")
	touch(t, src, "_old/a.go", "package old\n")
	touch(t, src, "onlytests/x_test.go", "package onlytests\n")
	touch(t, src, "top.go", "package top\n")

	archives := t.TempDir()
	touch(t, archives, "fmt.a", "")
	touch(t, archives, "runtime/cgo.a", "")

	tc := &project.Toolchain{Roots: []string{archives}, SourceRoots: []string{src}}
	got, err := SDKIndex(context.Background(), tc, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"fmt", "net/http", "runtime/cgo"}, got)
}

func TestSDKIndexCustomArchiveExt(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "pkg/lib.so", "")
	touch(t, root, "pkg/other.a", "")

	got, err := SDKIndex(context.Background(), &project.Toolchain{Roots: []string{root}}, Options{ArchiveExt: ".so"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pkg/lib"}, got)
}

func TestSDKPackagesWithoutModuleOrToolchain(t *testing.T) {
	ctx := context.Background()

	got, err := SDKPackages(ctx, fakeWorkspace{}, "/x/main.go", "", Options{})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = SDKPackages(ctx, fakeWorkspace{module: &project.Module{}}, "/x/main.go", "", Options{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSDKIndexCancelled(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "fmt.a", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := SDKIndex(ctx, &project.Toolchain{Roots: []string{root}}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func localTree(t *testing.T) (root, file string) {
	root = t.TempDir()
	file = touch(t, root, "app/app.go", "package app\n")
	touch(t, root, "app/util.go", "package util\n")
	touch(t, root, "app/main.go", "package main\n\nfunc main() {}\n")
	touch(t, root, "app/sub/deep/deep.go", "package deep\n")
	touch(t, root, "app/sub/deep/other.go", "package other\n")
	touch(t, root, "app/sub/deep/broken.go", "not go at all\n")
	touch(t, root, "app/cmd/tool/main.go", "package main\n")
	touch(t, root, "app/lib/lib_test.go", "package lib_test\n")
	touch(t, root, "app/lib/lib.go", "package lib\n")
	touch(t, root, "app/notes.txt", "package text\n")
	touch(t, root, "app/.git/hooks/x.go", "package hooks\n")
	return root, file
}

func TestLocalCandidates(t *testing.T) {
	root, file := localTree(t)
	cfg := config.DefaultConfig()
	rules := exclude.New(root, cfg.Scan.SkipDirs, cfg.Scan.SkipFiles)

	got, err := LocalCandidates(context.Background(), filepath.Dir(file), OptionsFromConfig(cfg, rules, nil))
	require.NoError(t, err)

	assert.Equal(t, []string{"app", "lib", "sub/deep", "sub/deep/other", "util"}, got)
	assert.NotContains(t, got, "main")
	assert.NotContains(t, got, "cmd/tool")
}

func TestLocalCandidatesWithoutRules(t *testing.T) {
	_, file := localTree(t)

	got, err := LocalCandidates(context.Background(), filepath.Dir(file), Options{})
	require.NoError(t, err)

	assert.Contains(t, got, "lib/lib_test")
	assert.Contains(t, got, ".git/hooks")
	for _, c := range got {
		assert.NotEqual(t, "main", c)
	}
}

func TestLocalPackagesPrefixShapes(t *testing.T) {
	root, file := localTree(t)
	cfg := config.DefaultConfig()
	opts := OptionsFromConfig(cfg, exclude.New(root, cfg.Scan.SkipDirs, cfg.Scan.SkipFiles), nil)
	ws := fakeWorkspace{module: &project.Module{Dir: root}}

	tests := []struct {
		raw  string
		want []string
	}{
		{`"./`, []string{"app", "lib", "sub/deep", "sub/deep/other", "util"}},
		{`"./su`, []string{"app", "lib", "sub/deep", "sub/deep/other", "util"}},
		{`".`, []string{"/app", "/lib", "/sub/deep", "/sub/deep/other", "/util"}},
		{`"`, []string{"./app", "./lib", "./sub/deep", "./sub/deep/other", "./util"}},
		{``, []string{"./app", "./lib", "./sub/deep", "./sub/deep/other", "./util"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := LocalPackages(context.Background(), ws, file, tt.raw, opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, texts(got))
			for _, s := range got {
				assert.True(t, s.Bold)
				assert.Equal(t, "via project", s.TypeText)
				assert.Equal(t, OriginProject, s.Origin)
			}
		})
	}
}

func TestLocalPackagesSiblingSameDirectory(t *testing.T) {
	root := t.TempDir()
	file := touch(t, root, "a.go", "package main\n")
	touch(t, root, "b.go", "package util\n")

	got, err := LocalPackages(context.Background(), fakeWorkspace{module: &project.Module{}}, file, `"./`, Options{})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "util", got[0].Identifier)
	assert.Equal(t, "util", got[0].Text)
}

func TestLocalPackagesWithoutModule(t *testing.T) {
	_, file := localTree(t)

	got, err := LocalPackages(context.Background(), fakeWorkspace{}, file, `"./`, Options{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLocalPackagesAgainstProject(t *testing.T) {
	root, file := localTree(t)
	touch(t, root, "go.mod", "module example.com/m\n")

	cfg := config.DefaultConfig()
	p, err := project.New(root, cfg, project.WithGetenv(func(string) string { return "" }))
	require.NoError(t, err)

	got, err := LocalPackages(context.Background(), p, file, `"./`, OptionsFromConfig(cfg, p.Rules(), nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"app", "lib", "sub/deep", "sub/deep/other", "util"}, identifiers(got))

	sdk, err := SDKPackages(context.Background(), p, file, `"`, OptionsFromConfig(cfg, p.Rules(), nil))
	require.NoError(t, err)
	assert.Empty(t, sdk, "no toolchain configured or detected")
}
