package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/expml/internal/storage"
	"github.com/rileyhilliard/expml/internal/ui"
)

var listPathFlag string

// listCmd lists runs
var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List runs in the runs directory",
	Long: `List every run directory, newest first, with its status, last step,
metrics file size and when it was last written. The run 'expml run' would
open is marked with ` + ui.SymbolLatest + `.

Examples:
  expml list
  expml list -p ~/experiments/runs`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listCommand(cmd.OutOrStdout(), time.Now())
	},
}

func init() {
	listCmd.Flags().StringVarP(&listPathFlag, "path", "p", "", "runs directory (default: runs_dir from config)")
	rootCmd.AddCommand(listCmd)
}

func listCommand(out io.Writer, now time.Time) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dir := runsDir(listPathFlag, cfg)
	runs, err := storage.ListRuns(afero.NewOsFs(), dir)
	if err != nil {
		return err
	}

	ui.PrintHeader(out, ui.HeaderInfo{Version: formatVersion(version), Dir: dir})
	fmt.Fprintln(out, ui.RenderRunTable(runs, now))

	for _, r := range runs {
		if !r.Latest {
			continue
		}
		status := lipgloss.NewStyle().Foreground(ui.StatusColor(r.Status)).Render(r.Status)
		fmt.Fprintf(out, "\nLatest: %s %s (%s)\n", ui.StatusSymbol(r.Status), r.Name, status)
	}
	fmt.Fprintln(out, english.Plural(len(runs), "run", ""))
	return nil
}
