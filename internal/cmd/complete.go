package cmd

import (
	"github.com/spf13/cobra"
)

// completeCmd represents the complete command
var completeCmd = &cobra.Command{
	Use:   "complete <file>",
	Short: "Complete at a byte offset in a file",
	Long: `Complete at the byte --offset in <file>.

Inside an import path literal the result lists toolchain packages followed
by project packages. Anywhere else it lists the file's declarations, the
packages it imports and the Go keywords; the identifier typed before the
cursor is reported as the prefix.

Use --stdin to complete against unsaved content instead of the file on disk.
When history is enabled in .gosense/config.yaml the query is recorded.

Examples:
  gosense complete main.go --offset 120
  cat main.go | gosense complete main.go --offset 120 --stdin
  gosense complete main.go --offset 120 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runComplete,
}

var (
	completeOffset int
	completeStdin  bool
)

func init() {
	rootCmd.AddCommand(completeCmd)
	completeCmd.Flags().IntVar(&completeOffset, "offset", 0, "Cursor byte offset")
	completeCmd.Flags().BoolVar(&completeStdin, "stdin", false, "Read the file content from stdin")
	completeCmd.MarkFlagRequired("offset")
}

func runComplete(cmd *cobra.Command, args []string) error {
	file := args[0]
	content, err := readContent(cmd, completeStdin)
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

	list, err := s.gatherer().GatherCompletion(cmd.Context(), file, content, completeOffset)
	if err != nil {
		return err
	}
	return s.write(cmd, list)
}
