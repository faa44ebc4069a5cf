package main

import (
	"github.com/spf13/cobra"

	"github.com/tabops/tabops/pkg/archive"
	"github.com/tabops/tabops/pkg/tui"
)

var (
	extractDir            string
	extractRemoveArchives bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Unpack all zip archives in a directory",
	Long: `Unpack every zip archive in a directory into its own timestamped
subdirectory. Corrupt archives are moved to a bad_zip_<name> quarantine
directory and the run continues.

Examples:
  tabops extract -d ./downloads
  tabops extract -d ./downloads --remove-archives`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractDir, "dir", "d", "", "Directory containing zip archives (required)")
	extractCmd.Flags().BoolVarP(&extractRemoveArchives, "remove-archives", "r", false, "Delete archives after successful extraction")
	extractCmd.MarkFlagRequired("dir")
}

func runExtract(cmd *cobra.Command, args []string) error {
	tui.Infof("extracting archives from %s", extractDir)

	report, err := archive.ExtractDir(extractDir, archive.Options{
		RemoveArchives: extractRemoveArchives,
	})
	if err != nil {
		return err
	}

	for _, e := range report.Entries {
		switch {
		case e.Quarantined:
			tui.Warnf("corrupt archive %s moved to %s", e.Archive, e.Dir)
		case e.Err != nil:
			tui.Warnf("failed to extract %s: %v", e.Archive, e.Err)
		default:
			tui.Mutedf("%s -> %s", e.Archive, e.Dir)
		}
	}

	tui.Successf("extracted %d archives (%d quarantined, %d removed)",
		report.Extracted, report.Quarantined, report.Removed)
	return nil
}
