package cmd

import (
	"github.com/spf13/cobra"
)

// sdkCmd represents the sdk command
var sdkCmd = &cobra.Command{
	Use:   "sdk <file> [path]",
	Short: "List packages of the toolchain serving a file",
	Long: `List every package of the Go toolchain that serves the module owning <file>.

The optional [path] is the import path typed so far, opening quote included.
It is reported back but does not filter the list: editors narrow the
suggestions themselves.

Examples:
  gosense sdk main.go
  gosense sdk main.go '"net/'
  gosense sdk main.go --toolchain go1.21`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSDK,
}

// localCmd represents the local command
var localCmd = &cobra.Command{
	Use:   "local <file> [path]",
	Short: "List project packages below a file's directory",
	Long: `List the packages declared by source files in the directory of <file> and
below. Each candidate is shaped for the typed [path]:

  "./   candidates are inserted as-is (geo, geo/calc/mathx)
  ".    candidates get a leading slash (/geo)
  "     candidates get a leading ./ (./geo)

Files declaring the entry package (main) are skipped.

Examples:
  gosense local cmd/app/main.go '"./'
  gosense local cmd/app/main.go --format json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runLocal,
}

func init() {
	rootCmd.AddCommand(sdkCmd)
	rootCmd.AddCommand(localCmd)
}

func runSDK(cmd *cobra.Command, args []string) error {
	file, raw := fileAndPath(args)
	if err := requireFile(file); err != nil {
		return err
	}

	s, err := openSession(cmd, file)
	if err != nil {
		return err
	}
	defer s.Close()

	list, err := s.gatherer().GatherSDKPackages(cmd.Context(), file, raw)
	if err != nil {
		return err
	}
	return s.write(cmd, list)
}

func runLocal(cmd *cobra.Command, args []string) error {
	file, raw := fileAndPath(args)
	if err := requireFile(file); err != nil {
		return err
	}

	s, err := openSession(cmd, file)
	if err != nil {
		return err
	}
	defer s.Close()

	list, err := s.gatherer().GatherLocalPackages(cmd.Context(), file, raw)
	if err != nil {
		return err
	}
	return s.write(cmd, list)
}

func fileAndPath(args []string) (file, raw string) {
	file = args[0]
	if len(args) > 1 {
		raw = args[1]
	}
	return file, raw
}
