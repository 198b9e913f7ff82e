package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/expml/internal/errors"
	"github.com/rileyhilliard/expml/internal/logger"
	"github.com/rileyhilliard/expml/internal/logview"
	"github.com/rileyhilliard/expml/internal/storage"
)

var (
	logsPathFlag   string
	logsTailFlag   int
	logsLevelFlag  string
	logsFollowFlag bool
)

// logsCmd implements `expml logs` for reading a run's debug.log.
var logsCmd = &cobra.Command{
	Use:   "logs [run]",
	Short: "Show the dashboard's debug log for a run",
	Long: `Print the tail of debug.log from the latest run, or from the named run
directory under the runs directory.

--level keeps lines at that severity or worse (emerg, alert, crit, error,
warn, notice, info, debug). Lines without a level tag stay with the line
they belong to.

Examples:
  expml logs
  expml logs --tail 200 --level warn
  expml logs run-20240102_115700 --follow`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		run := ""
		if len(args) == 1 {
			run = args[0]
		}
		return logsCommand(cmd.Context(), cmd.OutOrStdout(), run)
	},
}

func init() {
	logsCmd.Flags().StringVarP(&logsPathFlag, "path", "p", "", "runs directory (default: runs_dir from config)")
	logsCmd.Flags().IntVarP(&logsTailFlag, "tail", "n", logview.DefaultTail, "number of lines to show (0 for all)")
	logsCmd.Flags().StringVar(&logsLevelFlag, "level", "", "minimum severity to show")
	logsCmd.Flags().BoolVarP(&logsFollowFlag, "follow", "f", false, "keep printing lines as they are written")
	rootCmd.AddCommand(logsCmd)
}

func logsCommand(ctx context.Context, out io.Writer, run string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	min := logger.LevelDebug
	if logsLevelFlag != "" {
		lvl, ok := logger.ParseLevel(logsLevelFlag)
		if !ok {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Unknown log level '%s'", logsLevelFlag),
				"Use one of emerg, alert, crit, error, warn, notice, info, debug")
		}
		min = lvl
	}

	fs := afero.NewOsFs()
	dir := runsDir(logsPathFlag, cfg)
	runDir := filepath.Join(dir, run)
	if run == "" {
		runDir, err = storage.FindLatestRun(fs, dir)
		if err != nil {
			return err
		}
	}

	path := filepath.Join(runDir, storage.LogFile)
	f, err := fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.WrapWithCode(err, errors.ErrLog,
				"No debug.log in "+runDir,
				"The log is created the first time the run is opened with 'expml run'")
		}
		return errors.WrapWithCode(err, errors.ErrLog, "Can't open "+path, "Check file permissions")
	}
	lines, err := logview.Tail(f, logsTailFlag)
	f.Close()
	if err != nil {
		return err
	}

	c := logview.NewColorizer(lipgloss.NewRenderer(out), useColor(cfg.Display.Color))
	for _, line := range logview.Filter(lines, min) {
		fmt.Fprintln(out, c.Colorize(line))
	}

	if !logsFollowFlag {
		return nil
	}
	keep := true
	return logview.Follow(ctx, path, func(line string) {
		if lvl, ok := logview.ParseLevel(line); ok {
			keep = lvl <= min
		}
		if keep {
			fmt.Fprintln(out, c.Colorize(line))
		}
	})
}
