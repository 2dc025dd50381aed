package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/arnavsurve/synan/internal/config"
)

var (
	configPath string
	verbose    bool

	cfg = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "synan",
	Short: "synan: syntax analyser for begin/end programs",
	Long: `synan checks programs against the grammar, tracks variable scopes and
string/number expression types, and reports the first error with its rule trace.

Commands:
  check    Analyse program files or directories
  watch    Re-check programs whenever they change
  history  List recent check runs
  init     Scaffold a synan.toml and a sample program
`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultFile, "path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(InitCmd, CheckCmd, WatchCmd, HistoryCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	cfg = loaded

	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	slog.Debug("config loaded", "path", configPath, "extensions", cfg.Check.Extensions)
	return nil
}
