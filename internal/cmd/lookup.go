package cmd

import (
	"github.com/spf13/cobra"
)

// lookupCmd represents the lookup command
var lookupCmd = &cobra.Command{
	Use:   "lookup <file>",
	Short: "Show lookup entries for a file's declarations",
	Long: `Show the lookup entry of every package-level declaration in <file> and of
the fields of its struct types, in source order.

Each entry carries the text, the presentation style (function, method,
struct, interface, constant, variable, field), the tail text (parameters)
and the type text (results or declared type).

Examples:
  gosense lookup internal/geo/geo.go
  gosense lookup main.go --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

// importsCmd represents the imports command
var importsCmd = &cobra.Command{
	Use:   "imports <file>",
	Short: "List a file's imports and the names they bind",
	Long: `List the import specs of <file> with their alias and the package name each
binds in the file scope. Blank and dot imports bind no name.

Examples:
  gosense imports main.go`,
	Args: cobra.ExactArgs(1),
	RunE: runImports,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(importsCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	file := args[0]
	if err := requireFile(file); err != nil {
		return err
	}

	s, err := openSession(cmd, file)
	if err != nil {
		return err
	}
	defer s.Close()

	list, err := s.gatherer().GatherEntries(cmd.Context(), file)
	if err != nil {
		return err
	}
	return s.write(cmd, list)
}

func runImports(cmd *cobra.Command, args []string) error {
	file := args[0]
	if err := requireFile(file); err != nil {
		return err
	}

	s, err := openSession(cmd, file)
	if err != nil {
		return err
	}
	defer s.Close()

	list, err := s.gatherer().GatherImports(cmd.Context(), file)
	if err != nil {
		return err
	}
	return s.write(cmd, list)
}
