// tabops - data-ops toolbox for tabular files.
// Splits datasets by category, unpacks archives, and maintains hash
// manifests and line-count reports for data directories.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "tabops",
	Short:   "tabops - data-ops toolbox for tabular files",
	Long:    `tabops is a CLI toolbox for preparing tabular datasets: split files by a category column, unpack zip archives, create and verify hash manifests, and report line counts.`,
	Version: fmt.Sprintf("%s (%s)", version, commit),
}

func init() {
	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(hashCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(countCmd)
}
