package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arnavsurve/synan/internal/watcher"
)

// watch: re-check programs on change
var WatchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Re-check programs whenever they change",
	Args:  cobra.MaximumNArgs(1),
	RunE:  watchRun,
}

func watchRun(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	if _, _, err := checkPaths(out, errOut, []string{dir}); err != nil {
		return err
	}

	w, err := watcher.New(watcher.Options{
		Debounce:     cfg.Watch.Debounce,
		ExcludeDirs:  cfg.Watch.ExcludeDirs,
		ExcludeFiles: cfg.Watch.ExcludeFiles,
		Extensions:   cfg.Check.Extensions,
	}, func(paths []string) {
		slog.Debug("programs changed", "count", len(paths))
		if _, _, err := checkPaths(out, errOut, paths); err != nil {
			slog.Error("re-check failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("watching for changes", "dir", dir, "debounce", cfg.Watch.Debounce)
	if err := w.Watch(ctx, []string{dir}); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
