package main

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/tabops/tabops/pkg/config"
	"github.com/tabops/tabops/pkg/frame"
	"github.com/tabops/tabops/pkg/listing"
	"github.com/tabops/tabops/pkg/split"
	"github.com/tabops/tabops/pkg/tui"
	"github.com/tabops/tabops/pkg/writer"
)

var (
	splitCategoryCol     string
	splitInputPath       string
	splitOutputDir       string
	splitExtension       string
	splitOutputFormat    string
	splitSeparator       string
	splitOutputSeparator string
	splitKeepCategoryCol bool
	splitMakeDir         bool
	splitFillNullValue   string
	splitVerbose         bool
	splitWorkers         int
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split tabular files into one output per category value",
	Long: `Split delimited or parquet files into one output artifact per distinct
value of a category column. Rows with a null category are skipped unless a
fill value is given. Partitions of one file are written in parallel.

Examples:
  tabops split -c region -i sales.csv -o out/
  tabops split -c region -i data/ -o out/ --extension csv --output-format parquet
  tabops split -c region -i sales.csv -o out/ --fill-null-value OTHER --make-dir
  tabops split -c region -i events.parquet -o out/ --extension parquet --output-format xlsx`,
	RunE: runSplit,
}

func init() {
	splitCmd.Flags().StringVarP(&splitCategoryCol, "category-col", "c", "", "Column to split by (required)")
	splitCmd.Flags().StringVarP(&splitInputPath, "input", "i", "", "Input file or directory (required)")
	splitCmd.Flags().StringVarP(&splitOutputDir, "output-dir", "o", "", "Output directory (required)")
	splitCmd.Flags().StringVarP(&splitExtension, "extension", "e", "csv", "Input format/extension (csv|txt|parquet)")
	splitCmd.Flags().StringVarP(&splitOutputFormat, "output-format", "f", "", "Output format (csv|txt|parquet|xlsx)")
	splitCmd.Flags().StringVar(&splitSeparator, "separator", "", "Input field separator for delimited files")
	splitCmd.Flags().StringVar(&splitOutputSeparator, "output-separator", "", "Output field separator for delimited output")
	splitCmd.Flags().BoolVarP(&splitKeepCategoryCol, "keep-category-col", "k", false, "Keep the category column in output rows")
	splitCmd.Flags().BoolVar(&splitMakeDir, "make-dir", false, "Write each category into its own subdirectory")
	splitCmd.Flags().StringVar(&splitFillNullValue, "fill-null-value", "", "Fill null category values with this sentinel instead of skipping the rows")
	splitCmd.Flags().BoolVarP(&splitVerbose, "verbose", "v", false, "Log the resolved category list before writing")
	splitCmd.Flags().IntVarP(&splitWorkers, "workers", "w", 0, "Partition writer pool size (0 = available parallelism)")
	splitCmd.MarkFlagRequired("category-col")
	splitCmd.MarkFlagRequired("input")
	splitCmd.MarkFlagRequired("output-dir")
}

// splitOptions merges flags over config file defaults into engine options.
func splitOptions(cmd *cobra.Command) (split.Options, error) {
	cfg := config.Discover()

	outputFormat := splitOutputFormat
	if outputFormat == "" {
		outputFormat = cfg.Split.OutputFormat
	}
	sepFlag := splitSeparator
	if sepFlag == "" {
		sepFlag = cfg.Split.Separator
	}
	outSepFlag := splitOutputSeparator
	if outSepFlag == "" {
		outSepFlag = cfg.Split.OutputSeparator
	}
	workers := splitWorkers
	if workers == 0 {
		workers = cfg.Split.Workers
	}

	inputFormat, err := frame.ParseFormat(splitExtension)
	if err != nil {
		return split.Options{}, err
	}
	sep, err := parseSeparator(sepFlag)
	if err != nil {
		return split.Options{}, err
	}
	outSep, err := parseSeparator(outSepFlag)
	if err != nil {
		return split.Options{}, err
	}

	return split.Options{
		CategoryCol:     splitCategoryCol,
		InputFormat:     inputFormat,
		Separator:       sep,
		OutputFormat:    writer.ParseFormat(outputFormat),
		OutputSeparator: outSep,
		OutputDir:       splitOutputDir,
		KeepCategoryCol: splitKeepCategoryCol,
		MakeDir:         splitMakeDir,
		FillNull:        cmd.Flags().Changed("fill-null-value"),
		FillNullValue:   splitFillNullValue,
		Verbose:         splitVerbose,
		Workers:         workers,
		Logger:          tui.Logger{},
	}, nil
}

func runSplit(cmd *cobra.Command, args []string) error {
	opts, err := splitOptions(cmd)
	if err != nil {
		return err
	}

	// Writer lookup happens here: an unknown output format fails the run
	// before any file is touched.
	splitter, err := split.New(opts)
	if err != nil {
		return err
	}

	info, err := os.Stat(splitInputPath)
	if err != nil {
		return fmt.Errorf("input path: %w", err)
	}

	if !info.IsDir() {
		res, err := splitter.SplitFile(splitInputPath)
		if err != nil {
			return err
		}
		reportSplit(res)
		return nil
	}

	files, err := listing.Files(splitInputPath, splitExtension)
	if err != nil {
		return err
	}
	bar := tui.NewProgress(len(files), "splitting files")
	err = splitter.SplitDir(splitInputPath, splitExtension, func(path string, res *split.Result, err error) {
		bar.Add(1)
		if err == nil && res != nil {
			reportSplit(res)
		}
	})
	bar.Finish()
	if err != nil {
		return err
	}
	tui.Successf("files saved in %s", splitOutputDir)
	return nil
}

func reportSplit(res *split.Result) {
	if res.Skipped {
		return
	}
	tui.Mutedf("%s: %d partitions", res.File, res.Partitions)
}

// parseSeparator turns a separator flag value into a rune. Named values are
// accepted for characters that are awkward to pass through a shell.
func parseSeparator(s string) (rune, error) {
	switch s {
	case "", "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	case "tab", "\\t":
		return '\t', nil
	case "pipe":
		return '|', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) {
		return 0, fmt.Errorf("separator must be a single character, got %q", s)
	}
	return r, nil
}
