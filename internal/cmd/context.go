package cmd

import (
	"github.com/spf13/cobra"
)

// contextCmd represents the context command
var contextCmd = &cobra.Command{
	Use:   "context <file>",
	Short: "Report template contexts at a byte offset",
	Long: `Report which code-template contexts apply at the byte --offset in <file>.

  GO           any Go code that is not whitespace
  GO_FUNCTION  inside a function or method declaration

Examples:
  gosense context main.go --offset 98
  cat main.go | gosense context main.go --offset 98 --stdin`,
	Args: cobra.ExactArgs(1),
	RunE: runContext,
}

var (
	contextOffset int
	contextStdin  bool
)

func init() {
	rootCmd.AddCommand(contextCmd)
	contextCmd.Flags().IntVar(&contextOffset, "offset", 0, "Byte offset")
	contextCmd.Flags().BoolVar(&contextStdin, "stdin", false, "Read the file content from stdin")
	contextCmd.MarkFlagRequired("offset")
}

func runContext(cmd *cobra.Command, args []string) error {
	file := args[0]
	content, err := readContent(cmd, contextStdin)
	if err != nil {
		return err
	}
	if content == nil {
		if err := requireFile(file); err != nil {
			return err
		}
	}

	s, err := openSession(cmd, file)
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := s.gatherer().GatherContexts(cmd.Context(), file, content, contextOffset)
	if err != nil {
		return err
	}
	return s.write(cmd, report)
}
