package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/expml/internal/config"
	"github.com/rileyhilliard/expml/internal/logger"
	"github.com/rileyhilliard/expml/internal/logview"
	"github.com/rileyhilliard/expml/internal/ui"
)

// cfgFile is the --config flag shared by every command.
var cfgFile string

var debugLog = logger.NewEnvLogger("[cli]")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "expml",
	Short: "Terminal dashboard for ML experiment runs",
	Long: `expml watches the run directories an experiment writer produces
(config.json, metadata.json, summary.json and metrics.jsonl) and shows them
as a live terminal dashboard.

Examples:
  expml run                 Open the latest run under ./expml_runs
  expml run -p ~/runs --pick
  expml list
  expml logs --follow`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure. SIGINT and
// SIGTERM cancel the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .expml.yaml, then ~/.config/expml/config.yaml)")
}

// loadConfig finds, loads and validates the config. Plain-text output is
// switched on when colors are off or stdout isn't a terminal.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	debugLog.Debug("config loaded: runs_dir=%s refresh=%s", cfg.RunsDir, cfg.RefreshInterval)

	if useColor(cfg.Display.Color) {
		return cfg, nil
	}
	ui.DisableColors()
	return cfg, nil
}

// useColor resolves display.color for line-oriented output.
func useColor(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return logview.IsTTY(os.Stdout)
	}
}

// runsDir picks the --path flag over the configured runs directory.
func runsDir(flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}
	return cfg.RunsDir
}
