package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gosense/gosense/internal/lsp"
)

// lspCmd represents the lsp command
var lspCmd = &cobra.Command{
	Use:   "lsp [flags]",
	Short: "Start the gosense Language Server Protocol server",
	Long: `Start an LSP server that completes import paths and identifiers in Go
documents. Documents are synchronized in full; completion triggers on '"',
'/' and '.'.

Transport modes:
  --stdio      Use stdin/stdout for LSP communication (default)
  --port N     Listen for an LSP client on TCP port N

Examples:
  gosense lsp                  Start with stdio transport
  gosense lsp --port 7998      Start with TCP on port 7998
  gosense lsp --project ~/src  Resolve modules from ~/src`,
	Args: cobra.NoArgs,
	RunE: runLSP,
}

var (
	lspStdio bool
	lspPort  int
)

func init() {
	rootCmd.AddCommand(lspCmd)
	lspCmd.Flags().BoolVar(&lspStdio, "stdio", false, "Use stdin/stdout for LSP communication (default behavior)")
	lspCmd.Flags().IntVar(&lspPort, "port", 0, "TCP port for LSP server (use instead of --stdio)")
}

func runLSP(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, "")
	if err != nil {
		return err
	}
	defer s.Close()

	srv := lsp.New(s.engine(), lsp.WithLogger(s.logger))

	if !lspStdio && lspPort > 0 {
		addr := fmt.Sprintf("localhost:%d", lspPort)
		s.logger.Info("lsp server listening", "addr", addr, "root", s.project.Root)
		if err := srv.RunTCP(addr); err != nil {
			return fmt.Errorf("lsp server: %w", err)
		}
		return nil
	}
	if err := srv.RunStdio(); err != nil {
		return fmt.Errorf("lsp server: %w", err)
	}
	return nil
}
