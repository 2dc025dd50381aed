package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/arnavsurve/synan/internal/history"
)

var historyLimit int

// history: list recorded runs
var HistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent check runs",
	Args:  cobra.NoArgs,
	RunE:  historyRun,
}

func init() {
	HistoryCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show")
}

func historyRun(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if _, err := os.Stat(cfg.History.Path); os.IsNotExist(err) {
		fmt.Fprintf(out, "no history at %s\n", cfg.History.Path)
		return nil
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(historyLimit)
	if err != nil {
		return err
	}
	printRuns(out, runs, painter{color: cfg.Output.Color})
	return nil
}

func printRuns(w io.Writer, runs []history.Run, p painter) {
	for _, run := range runs {
		when := p.paint(dimStyle, run.CheckedAt.Local().Format(time.DateTime))
		if run.OK {
			fmt.Fprintf(w, "%s %s %s\n", when, p.paint(passStyle, "✔︎"), run.Path)
			continue
		}
		if run.ErrorKind == "" {
			fmt.Fprintf(w, "%s %s %s: %s\n", when, p.paint(failStyle, "✘"), run.Path, run.ErrorMessage)
			continue
		}
		fmt.Fprintf(w, "%s %s %s: %s on line %d\n", when, p.paint(failStyle, "✘"), run.Path, run.ErrorKind, run.ErrorLine)
	}
}
