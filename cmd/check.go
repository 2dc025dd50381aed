package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/arnavsurve/synan/internal/compiler"
	"github.com/arnavsurve/synan/internal/history"
)

var (
	showEvents  bool
	showSymbols bool
)

// check: analyse programs
var CheckCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Analyse program files or directories",
	RunE:  checkRun,
}

func init() {
	CheckCmd.Flags().BoolVar(&showEvents, "events", false, "print the grammar event log")
	CheckCmd.Flags().BoolVar(&showSymbols, "symbols", false, "print the final symbol table of each program")
}

func checkRun(cmd *cobra.Command, args []string) error {
	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	total, failed, err := checkPaths(cmd.OutOrStdout(), cmd.ErrOrStderr(), paths)
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d programs failed", failed, total)
	}
	return nil
}

// checkPaths analyses paths with the loaded configuration, prints a report to
// out and records the runs when history is enabled.
func checkPaths(out, errOut io.Writer, paths []string) (total, failed int, err error) {
	opts := compiler.Options{
		Extensions: cfg.Check.Extensions,
		Logger:     slog.Default(),
	}
	if showEvents || cfg.Output.Events {
		opts.Events = out
	}
	if cfg.Output.Trace {
		opts.TraceOutput = errOut
	}

	results, err := compiler.CheckFiles(paths, opts)
	if err != nil {
		return 0, 0, err
	}

	failed = report(out, results, painter{color: cfg.Output.Color}, showSymbols || cfg.Output.Symbols)

	if cfg.History.Enabled {
		if err := recordRuns(cfg.History.Path, results); err != nil {
			slog.Warn("failed to record history", "path", cfg.History.Path, "error", err)
		}
	}
	return len(results), failed, nil
}

func recordRuns(path string, results []compiler.Result) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, res := range results {
		if _, err := store.Save(runFromResult(res)); err != nil {
			return err
		}
	}
	return nil
}

func runFromResult(res compiler.Result) history.Run {
	run := history.Run{
		Path:        res.Path,
		OK:          res.OK,
		SymbolCount: len(res.Symbols),
		Duration:    res.Duration,
	}
	if ce := res.CompilationError(); ce != nil {
		run.ErrorKind = string(ce.Kind)
		run.ErrorMessage = ce.Message
		run.ErrorLine = ce.Token.Line
	} else if res.Err != nil {
		run.ErrorMessage = res.Err.Error()
	}
	return run
}
