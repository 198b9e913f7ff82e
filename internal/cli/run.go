package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rileyhilliard/expml/internal/config"
	"github.com/rileyhilliard/expml/internal/dashboard"
	"github.com/rileyhilliard/expml/internal/errors"
	"github.com/rileyhilliard/expml/internal/logger"
	"github.com/rileyhilliard/expml/internal/storage"
	"github.com/rileyhilliard/expml/internal/tui/terminal"
	"github.com/rileyhilliard/expml/internal/ui"
)

var (
	runPathFlag     string
	runIntervalFlag string
	runPickFlag     bool
)

// runCmd opens the dashboard
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the live dashboard for a run",
	Long: `Open the terminal dashboard for the most recent run in the runs directory.

The latest-run symlink is followed when present; otherwise the most recently
modified run directory is used. The dashboard reloads the run files on every
refresh tick and as soon as they change on disk. Refreshing stops once the
run reports FINISHED, FAILED, CRASHED or STOPPED.

Keys:
  Tab / Shift+Tab   Switch panel
  arrows, j/k       Move within a panel
  y                 Copy the selected value
  Ctrl+L            Redraw
  h                 Help
  q / Ctrl+C        Quit

Examples:
  expml run
  expml run -p ~/experiments/runs
  expml run --interval 500ms
  expml run --pick`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd.Context())
	},
}

func init() {
	runCmd.Flags().StringVarP(&runPathFlag, "path", "p", "", "runs directory (default: runs_dir from config)")
	runCmd.Flags().StringVar(&runIntervalFlag, "interval", "", "refresh interval (e.g., 1s, 500ms)")
	runCmd.Flags().BoolVar(&runPickFlag, "pick", false, "choose the run interactively instead of opening the latest")
	rootCmd.AddCommand(runCmd)
}

func runCommand(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	interval, err := ParseInterval(runIntervalFlag)
	if err != nil {
		return err
	}
	if interval > 0 {
		cfg.RefreshInterval = interval
	}

	fs := afero.NewOsFs()
	runDir, err := resolveRun(fs, runsDir(runPathFlag, cfg), runPickFlag, pickRun)
	if err != nil {
		return err
	}
	debugLog.Debug("opening run %s", runDir)

	runLog := openRunLog(runDir, cfg.Log.Level)
	defer runLog.Close()
	var log logger.Logger = logger.Noop()
	if runLog != nil {
		log = runLog
	}
	prev := logger.Default()
	logger.SetDefault(log)
	defer logger.SetDefault(prev)

	app := dashboard.New(dashboard.Options{
		Fs:      fs,
		RunDir:  runDir,
		Config:  cfg,
		Version: version,
		Log:     log,
	})
	return app.Run(ctx, terminal.Options{
		Theme:     dashboard.Theme(cfg.Display.Color),
		AltScreen: true,
	})
}

// ParseInterval parses --interval. An empty flag returns zero, meaning
// "keep the configured interval".
func ParseInterval(flag string) (time.Duration, error) {
	if flag == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid interval", flag),
			"Try something like 1s, 2s or 500ms.")
	}
	if d < config.MinRefreshInterval {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("Interval %s is too short", d),
			fmt.Sprintf("Use at least %s", config.MinRefreshInterval))
	}
	return d, nil
}

// runPicker chooses one of runs and returns its path. An empty path means
// no choice was made and the latest run should be used.
type runPicker func(runs []storage.RunInfo) (string, error)

// resolveRun returns the run directory to open under dir.
func resolveRun(fs afero.Fs, dir string, pick bool, picker runPicker) (string, error) {
	if !pick {
		return storage.FindLatestRun(fs, dir)
	}

	runs, err := storage.ListRuns(fs, dir)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", errors.NewRunNotFound(dir)
	}

	path, err := picker(runs)
	if err != nil {
		return "", err
	}
	if path == "" {
		return storage.FindLatestRun(fs, dir)
	}
	return path, nil
}

// pickRun asks with a huh select. Without a terminal on stdin there is no
// one to ask, so the latest run is used.
func pickRun(runs []storage.RunInfo) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		debugLog.Debug("stdin is not a terminal, skipping --pick")
		return "", nil
	}

	options := make([]huh.Option[string], len(runs))
	for i, r := range runs {
		label := fmt.Sprintf("%s %s  %s", ui.StatusSymbol(r.Status), r.Name, r.Status)
		options[i] = huh.NewOption(label, r.Path)
	}

	var selected string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which run?").
				Options(options...).
				Value(&selected),
		),
	)
	if err := form.Run(); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrTerminal,
			"Run selection cancelled",
			"Run without --pick to open the latest run")
	}
	return selected, nil
}

// openRunLog opens <run>/debug.log. A run directory that can't be written to
// still gets a dashboard, just without a log.
func openRunLog(runDir, level string) *logger.FileLogger {
	min, ok := logger.ParseLevel(level)
	if !ok {
		min = logger.LevelInfo
	}
	log, err := logger.OpenFile(filepath.Join(runDir, storage.LogFile), min)
	if err != nil {
		debugLog.Warn("%v", err)
		return nil
	}
	return log
}
