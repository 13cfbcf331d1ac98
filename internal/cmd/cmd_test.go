package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosense/gosense/internal/config"
)

// execute runs the root command with args and returns what it wrote to
// stdout. Flags are reset first since the command tree is shared.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	for _, env := range []string{"GOSENSE_FORMAT", "GOSENSE_LOG_LEVEL", "GOSENSE_TOOLCHAIN"} {
		if _, ok := os.LookupEnv(env); !ok {
			t.Setenv(env, "")
		}
	}
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestGolden(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"lookup", []string{"lookup", "testdata/project/geo/geo.go"}},
		{"imports", []string{"imports", "testdata/project/main.go", "--format", "json"}},
		{"local", []string{"local", "testdata/project/main.go", `"./`, "--format", "json"}},
		{"local_dot", []string{"local", "testdata/project/main.go", `".`, "--format", "json"}},
		{"context", []string{"context", "testdata/project/main.go", "--offset", "98"}},
	}

	g := goldie.New(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "", append(tt.args, "--project", "testdata/project")...)
			require.NoError(t, err)
			g.Assert(t, tt.name, []byte(out))
		})
	}
}

func TestGoldenFixtureOffset(t *testing.T) {
	data, err := os.ReadFile("testdata/project/main.go")
	require.NoError(t, err)
	assert.Equal(t, 98, strings.Index(string(data), "fmt.Println"))
}

// setupProject creates a project with a fake toolchain and history on.
func setupProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	sdk := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(sdk, "net"), 0755))
	for _, rel := range []string{"fmt.a", "net/http.a", "net/url.a"} {
		require.NoError(t, os.WriteFile(filepath.Join(sdk, rel), nil, 0644))
	}

	require.NoError(t, os.MkdirAll(filepath.Join(root, "util"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "util", "util.go"), []byte("package util\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n"), 0644))

	configDir := filepath.Join(root, config.ConfigDirName)
	require.NoError(t, os.MkdirAll(configDir, 0755))
	cfg := `toolchain:
  default: fake
  toolchains:
    - name: fake
      version: go1.22.0
      roots: [` + strconv.Quote(sdk) + `]
completion:
  keywords: false
history:
  enabled: true
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, config.ConfigFileName), []byte(cfg), 0644))
	return root
}

type suggestionList struct {
	Kind        string `json:"kind"`
	Prefix      string `json:"prefix"`
	Count       int    `json:"count"`
	Suggestions []struct {
		Text   string `json:"text"`
		Source string `json:"source"`
	} `json:"suggestions"`
}

func TestCompleteImportAndHistory(t *testing.T) {
	root := setupProject(t)
	file := filepath.Join(root, "main.go")
	content := "package main\n\nimport \"ne"

	out, err := execute(t, content, "complete", file,
		"--offset", strconv.Itoa(len(content)), "--stdin", "--format", "json", "--project", root)
	require.NoError(t, err)

	var list suggestionList
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Equal(t, "import", list.Kind)
	assert.Equal(t, `"ne`, list.Prefix)

	var texts, sources []string
	for _, s := range list.Suggestions {
		texts = append(texts, s.Text)
		sources = append(sources, s.Source)
	}
	assert.Equal(t, []string{"fmt", "net/http", "net/url", "./util"}, texts)
	assert.Equal(t, []string{"sdk", "sdk", "sdk", "project"}, sources)

	out, err = execute(t, "", "history", "--format", "json", "--project", root)
	require.NoError(t, err)

	var hist struct {
		Stats struct {
			Total int64 `json:"total"`
		} `json:"stats"`
		Queries []struct {
			Kind   string `json:"kind"`
			Prefix string `json:"prefix"`
			Items  int    `json:"items"`
			SDK    int    `json:"sdk"`
			Local  int    `json:"local"`
		} `json:"queries"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &hist))
	assert.Equal(t, int64(1), hist.Stats.Total)
	require.Len(t, hist.Queries, 1)
	assert.Equal(t, "import", hist.Queries[0].Kind)
	assert.Equal(t, `"ne`, hist.Queries[0].Prefix)
	assert.Equal(t, 4, hist.Queries[0].Items)
	assert.Equal(t, 3, hist.Queries[0].SDK)
	assert.Equal(t, 1, hist.Queries[0].Local)

	out, err = execute(t, "", "history", "--clear", "--project", root)
	require.NoError(t, err)
	assert.Equal(t, "History cleared\n", out)
}

func TestCompleteIdentifier(t *testing.T) {
	root := setupProject(t)
	file := filepath.Join(root, "main.go")
	content := "package main\n\nimport \"fmt\"\n\nfunc helper() {}\n\nfunc main() {\n\thel"

	out, err := execute(t, content, "complete", file,
		"--offset", strconv.Itoa(len(content)), "--stdin", "--format", "json", "--project", root)
	require.NoError(t, err)

	var list suggestionList
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Equal(t, "identifier", list.Kind)
	assert.Equal(t, "hel", list.Prefix)

	var texts []string
	for _, s := range list.Suggestions {
		texts = append(texts, s.Text)
	}
	assert.Contains(t, texts, "helper")
	assert.Contains(t, texts, "fmt")
	assert.NotContains(t, texts, "return", "keywords are disabled in config")
}

func TestSDKWithToolchainOverride(t *testing.T) {
	root := setupProject(t)
	file := filepath.Join(root, "main.go")

	out, err := execute(t, "", "sdk", file, `"n`, "--format", "json", "--project", root, "--toolchain", "fake")
	require.NoError(t, err)

	var list suggestionList
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Equal(t, 3, list.Count)
	assert.Equal(t, `"n`, list.Prefix)

	t.Setenv("GOSENSE_TOOLCHAIN", "missing")
	_, err = execute(t, "", "sdk", file, "--project", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `toolchain "missing" is not configured`)
}

func TestFormatFromEnvironment(t *testing.T) {
	t.Setenv("GOSENSE_FORMAT", "json")
	out, err := execute(t, "", "imports", "testdata/project/main.go", "--project", "testdata/project")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "{"), "expected JSON output, got:\n%s", out)

	out, err = execute(t, "", "imports", "testdata/project/main.go", "--project", "testdata/project", "--format", "yaml")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "file: "), "flag should win over environment, got:\n%s", out)
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "", "init", "--project", dir)
	require.NoError(t, err)
	assert.Equal(t, "Initialized gosense at .gosense\n", out)
	assert.FileExists(t, filepath.Join(dir, ".gosense", "config.yaml"))
	assert.FileExists(t, filepath.Join(dir, ".gosense", "history.db"))

	out, err = execute(t, "", "init", "--project", dir)
	require.NoError(t, err)
	assert.Equal(t, "Already initialized at .gosense\n", out)

	out, err = execute(t, "", "init", "--project", dir, "--force")
	require.NoError(t, err)
	assert.Equal(t, "Initialized gosense at .gosense\n", out)

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Output.DefaultFormat)
}

func TestHistoryWithoutInit(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "", "history", "--project", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gosense init")
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing file", []string{"lookup", "testdata/project/nope.go"}, "file not found"},
		{"directory", []string{"imports", "testdata/project"}, "is a directory"},
		{"bad format", []string{"lookup", "testdata/project/main.go", "--format", "xml"}, "invalid format"},
		{"bad log level", []string{"lookup", "testdata/project/main.go", "--log-level", "loud"}, "invalid log level"},
		{"offset required", []string{"complete", "testdata/project/main.go"}, "offset"},
		{"offset past end", []string{"complete", "testdata/project/main.go", "--offset", "100000"}, "offset out of range"},
		{"serve without mcp", []string{"serve"}, "--mcp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", append(tt.args, "--project", "testdata/project")...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestServeList(t *testing.T) {
	out, err := execute(t, "", "serve", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "gosense_complete")
	assert.Contains(t, out, "gosense_template_context")
}

func TestParseTools(t *testing.T) {
	assert.Equal(t, []string{"gosense_lookup", "gosense_complete"}, parseTools("lookup, gosense_complete,"))
	assert.Nil(t, parseTools(""))
}

func TestForAgents(t *testing.T) {
	out, err := execute(t, "", "--for-agents")
	require.NoError(t, err)

	var info struct {
		Version     string        `json:"version"`
		Commands    []CommandInfo `json:"commands"`
		GlobalFlags []FlagInfo    `json:"global_flags"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, Version, info.Version)

	names := make(map[string]bool)
	for _, c := range info.Commands {
		names[c.Name] = true
	}
	for _, want := range []string{"sdk", "local", "complete", "lookup", "imports", "context", "init", "history", "serve", "lsp"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}
