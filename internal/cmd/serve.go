package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gosense/gosense/internal/config"
	"github.com/gosense/gosense/internal/mcp"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP server for AI agent integration",
	Long: `Start an MCP (Model Context Protocol) server for AI agent integration.

Agents call gosense queries as MCP tools over stdio instead of spawning a
CLI process per query. File arguments are resolved against the project
root.

Available Tools:
  gosense_sdk_packages      Toolchain packages for a file's module
  gosense_local_packages    Project packages below a file
  gosense_complete          Completion at a byte offset
  gosense_lookup            Lookup entries for a file's declarations
  gosense_imports           A file's imports and bound names
  gosense_template_context  Template contexts at a byte offset

Examples:
  gosense serve --mcp                         # Start with all tools
  gosense serve --mcp --tools complete,lookup # Start with specific tools only
  gosense serve --mcp --timeout 30m           # Auto-stop after 30 minutes idle
  gosense serve --status                      # Check if server is running
  gosense serve --stop                        # Stop running server
  gosense serve --list                        # Show available tools`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveMCP     bool
	serveTools   string
	serveTimeout string
	serveStatus  bool
	serveStop    bool
	serveList    bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveMCP, "mcp", false, "Start MCP server (stdio transport)")
	serveCmd.Flags().StringVar(&serveTools, "tools", "", "Comma-separated list of tools to expose (default: all)")
	serveCmd.Flags().StringVar(&serveTimeout, "timeout", "30m", "Inactivity timeout (0 for no timeout)")
	serveCmd.Flags().BoolVar(&serveStatus, "status", false, "Check if server is running")
	serveCmd.Flags().BoolVar(&serveStop, "stop", false, "Stop running server")
	serveCmd.Flags().BoolVar(&serveList, "list", false, "List available tools")
}

func runServe(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if serveList {
		fmt.Fprintln(out, "Available MCP tools:")
		fmt.Fprintln(out)
		for _, name := range mcp.AllTools {
			schema, _ := mcp.Describe(name)
			fmt.Fprintf(out, "  %-26s %s\n", name, schema.Description)
		}
		return nil
	}

	if serveStatus {
		return checkServerStatus(cmd)
	}

	if serveStop {
		return stopServer(cmd)
	}

	if !serveMCP {
		return fmt.Errorf("use --mcp to start the MCP server, or --help for usage")
	}

	timeout, err := parseDuration(serveTimeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	s, err := openSession(cmd, "")
	if err != nil {
		return err
	}
	defer s.Close()

	server, err := mcp.New(s.gatherer(), s.project.Root, mcp.Config{
		Tools:   parseTools(serveTools),
		Timeout: timeout,
		Logger:  s.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	pidPath := pidFilePath(s.project.Root)
	if err := writePIDFile(pidPath); err != nil {
		s.logger.Warn("could not write PID file", "error", err)
	}
	defer removePIDFile(pidPath)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintf(os.Stderr, "\ngosense serve: shutting down\n")
		s.Close()
		removePIDFile(pidPath)
		os.Exit(0)
	}()

	// stdout carries the MCP protocol
	fmt.Fprintf(os.Stderr, "gosense serve: starting MCP server for %s\n", s.project.Root)
	fmt.Fprintf(os.Stderr, "gosense serve: tools: %v\n", server.ListTools())
	if timeout > 0 {
		fmt.Fprintf(os.Stderr, "gosense serve: timeout: %v\n", timeout)
	}

	return server.ServeStdio()
}

// parseTools splits a comma list, allowing the short form (lookup ->
// gosense_lookup).
func parseTools(list string) []string {
	var tools []string
	for _, t := range strings.Split(list, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !strings.HasPrefix(t, "gosense_") {
			t = "gosense_" + t
		}
		tools = append(tools, t)
	}
	return tools
}

func parseDuration(s string) (time.Duration, error) {
	if s == "0" || s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// pidFilePath is empty when the project has no .gosense directory.
func pidFilePath(root string) string {
	dir, err := config.FindConfigDir(root)
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "serve.pid")
}

func writePIDFile(path string) error {
	if path == "" {
		return fmt.Errorf("no %s directory (run 'gosense init')", config.ConfigDirName)
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644)
}

func removePIDFile(path string) {
	if path != "" {
		os.Remove(path)
	}
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func checkServerStatus(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	root := projectDir
	if root == "" {
		root = "."
	}
	pidPath := pidFilePath(root)
	if pidPath == "" {
		fmt.Fprintln(out, "Status: not running (gosense not initialized)")
		return nil
	}

	pid, err := readPIDFile(pidPath)
	if err != nil {
		fmt.Fprintln(out, "Status: not running")
		return nil
	}

	// On Unix, FindProcess always succeeds, so we need to send signal 0 to check
	process, err := os.FindProcess(pid)
	if err == nil {
		err = process.Signal(syscall.Signal(0))
	}
	if err != nil {
		fmt.Fprintln(out, "Status: not running (stale PID file)")
		removePIDFile(pidPath)
		return nil
	}

	fmt.Fprintf(out, "Status: running (PID %d)\n", pid)
	return nil
}

func stopServer(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	root := projectDir
	if root == "" {
		root = "."
	}
	pidPath := pidFilePath(root)
	if pidPath == "" {
		return fmt.Errorf("gosense not initialized")
	}

	pid, err := readPIDFile(pidPath)
	if err != nil {
		fmt.Fprintln(out, "No server running")
		return nil
	}

	process, err := os.FindProcess(pid)
	if err == nil {
		err = process.Signal(syscall.SIGTERM)
	}
	if err != nil {
		removePIDFile(pidPath)
		fmt.Fprintln(out, "Server already stopped")
		return nil
	}

	fmt.Fprintf(out, "Stopped server (PID %d)\n", pid)
	return nil
}
