package main

import (
	"github.com/spf13/cobra"

	"github.com/tabops/tabops/pkg/count"
	"github.com/tabops/tabops/pkg/tui"
)

var (
	countDir        string
	countExt        string
	countHasHeader  bool
	countGroup      bool
	countSliceStart int
	countSliceEnd   int
	countVerbose    bool
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Report line counts for files under a directory",
	Long: `Count the lines of every matching file under a directory, aggregate
by file name and location, and write the report as a spreadsheet next to the
data.

Examples:
  tabops count -d ./data -e csv
  tabops count -d ./data -e csv --has-header --group
  tabops count -d ./data -e txt --slice-start 0 --slice-end 6`,
	RunE: runCount,
}

func init() {
	countCmd.Flags().StringVarP(&countDir, "dir", "d", "", "Directory to scan (required)")
	countCmd.Flags().StringVarP(&countExt, "ext", "e", "", "File extension to count (required)")
	countCmd.Flags().BoolVar(&countHasHeader, "has-header", false, "Exclude one header line per file")
	countCmd.Flags().BoolVar(&countGroup, "group", false, "Aggregate by parent directory and file name")
	countCmd.Flags().IntVar(&countSliceStart, "slice-start", 0, "Start of the file-name slice used for grouping")
	countCmd.Flags().IntVar(&countSliceEnd, "slice-end", 0, "End of the file-name slice used for grouping (0 = end)")
	countCmd.Flags().BoolVarP(&countVerbose, "verbose", "v", false, "Print the report rows")
	countCmd.MarkFlagRequired("dir")
	countCmd.MarkFlagRequired("ext")
}

func runCount(cmd *cobra.Command, args []string) error {
	tui.Infof("listing files in %s with extension %s", countDir, countExt)

	table, skipped, err := count.Dir(countDir, count.Options{
		Ext:        countExt,
		HasHeader:  countHasHeader,
		Group:      countGroup,
		SliceStart: countSliceStart,
		SliceEnd:   countSliceEnd,
	})
	if err != nil {
		return err
	}

	for _, path := range skipped {
		tui.Warnf("unable to read %s, skipped", path)
	}
	if countVerbose {
		for _, row := range table.Rows() {
			tui.Mutedf("%v", row)
		}
	}

	reportPath := count.ReportPath(countDir)
	if err := count.WriteReport(table, reportPath); err != nil {
		return err
	}
	tui.Successf("report written to %s (%d rows)", reportPath, table.NumRows())
	return nil
}
