package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tabops/tabops/pkg/split"
	"github.com/tabops/tabops/pkg/tui"
	"github.com/tabops/tabops/pkg/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a directory and split new files as they land",
	Long: `Watch the input directory and split each newly created file with the
given options. Files are picked up once their write activity settles.
Runs until interrupted.

Examples:
  tabops watch -c region -i ./incoming -o out/
  tabops watch -c region -i ./incoming -o out/ --output-format parquet --make-dir`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().AddFlagSet(splitCmd.Flags())
}

func runWatch(cmd *cobra.Command, args []string) error {
	opts, err := splitOptions(cmd)
	if err != nil {
		return err
	}
	splitter, err := split.New(opts)
	if err != nil {
		return err
	}

	w := watch.NewWatcher(splitInputPath, splitExtension)
	w.OnFile = func(path string) error {
		res, err := splitter.SplitFile(path)
		if err != nil {
			return err
		}
		reportSplit(res)
		return nil
	}
	w.OnError = func(path string, err error) {
		tui.Warnf("watch: %s: %v", path, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		tui.Infof("interrupted, stopping watch")
		cancel()
	}()

	tui.Infof("watching %s for *.%s files", splitInputPath, splitExtension)
	if err := w.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
