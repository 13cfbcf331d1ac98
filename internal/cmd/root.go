// Package cmd contains all CLI commands for gosense.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	// Version is the current version of gosense
	Version = "0.1.0"

	// Global flags
	verbose      bool
	configPath   string
	forAgents    bool
	outputFormat string
	projectDir   string
	logLevel     string
	toolchain    string

	// settings layers flags over GOSENSE_* environment variables over the
	// config file.
	settings = viper.New()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gosense",
	Short: "Editor intelligence for Go source trees",
	Long: `gosense completes import paths and identifiers in Go files and reports the
lookup entries and template contexts an editor needs.

It resolves the module owning a file, selects the Go toolchain serving that
module, and lists packages from the toolchain and from the project tree.
The same queries are available to editors over LSP (gosense lsp) and to AI
agents over MCP (gosense serve --mcp).

Output Format:
  All commands output YAML by default. Use --format json to switch.

Environment:
  GOSENSE_FORMAT      Output format (overridden by --format)
  GOSENSE_LOG_LEVEL   Log level: debug | info | warn | error
  GOSENSE_TOOLCHAIN   Configured toolchain to use as the default

Examples:
  gosense sdk main.go '"net/'           # Toolchain packages
  gosense local main.go '"./'           # Project packages below main.go
  gosense complete main.go --offset 42  # Complete at a byte offset
  gosense lookup main.go                # Entries for the file's declarations
  gosense context main.go --offset 42   # Template contexts at an offset

See 'gosense <command> --help' for command-specific options.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags available to all commands
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: .gosense/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "yaml", "Output format (yaml|json)")
	rootCmd.PersistentFlags().StringVar(&projectDir, "project", "", "Project root (default: discovered from the file)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&toolchain, "toolchain", "", "Configured toolchain to use as the default")
	rootCmd.Flags().BoolVar(&forAgents, "for-agents", false, "Output machine-readable capability discovery JSON")

	// Set custom help function to intercept --for-agents flag
	originalHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if forAgents {
			outputAgentHelp(cmd)
			return
		}
		originalHelp(cmd, args)
	})
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if forAgents {
			outputAgentHelp(cmd)
			return nil
		}
		return cmd.Help()
	}
}

// initConfig binds the persistent flags and GOSENSE_* environment variables.
// The config file is layered in per command once the project is known.
func initConfig() {
	settings.SetEnvPrefix("gosense")
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()

	for key, flag := range map[string]string{
		"format":    "format",
		"log_level": "log-level",
		"toolchain": "toolchain",
	} {
		if err := settings.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			fmt.Fprintln(os.Stderr, "binding flag:", err)
		}
	}
}

// CommandInfo represents a command for agent discovery
type CommandInfo struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Usage       string        `json:"usage"`
	Flags       []FlagInfo    `json:"flags,omitempty"`
	Subcommands []CommandInfo `json:"subcommands,omitempty"`
	Examples    []string      `json:"examples,omitempty"`
}

// FlagInfo represents a command flag for agent discovery
type FlagInfo struct {
	Name        string `json:"name"`
	Shorthand   string `json:"shorthand,omitempty"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
}

// outputAgentHelp outputs machine-readable JSON describing all commands
func outputAgentHelp(cmd *cobra.Command) {
	root := buildCommandInfo(cmd.Root())

	out := map[string]interface{}{
		"version":      Version,
		"commands":     root.Subcommands,
		"global_flags": root.Flags,
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.Encode(out)
}

// buildCommandInfo recursively builds command information for agent discovery
func buildCommandInfo(cmd *cobra.Command) CommandInfo {
	info := CommandInfo{
		Name:        cmd.Name(),
		Description: cmd.Short,
		Usage:       cmd.UseLine(),
	}

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		info.Flags = append(info.Flags, FlagInfo{
			Name:        f.Name,
			Shorthand:   f.Shorthand,
			Description: f.Usage,
			Type:        f.Value.Type(),
			Default:     f.DefValue,
		})
	})

	for _, sub := range cmd.Commands() {
		if !sub.Hidden && sub.Name() != "help" && sub.Name() != "completion" {
			info.Subcommands = append(info.Subcommands, buildCommandInfo(sub))
		}
	}

	if cmd.Example != "" {
		for _, line := range strings.Split(cmd.Example, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				info.Examples = append(info.Examples, trimmed)
			}
		}
	}

	return info
}
