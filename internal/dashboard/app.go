package dashboard

import (
	"context"

	"github.com/muesli/termenv"
	"github.com/spf13/afero"

	"github.com/rileyhilliard/expml/internal/chart"
	"github.com/rileyhilliard/expml/internal/config"
	"github.com/rileyhilliard/expml/internal/logger"
	"github.com/rileyhilliard/expml/internal/series"
	"github.com/rileyhilliard/expml/internal/storage"
	"github.com/rileyhilliard/expml/internal/tui"
	"github.com/rileyhilliard/expml/internal/tui/terminal"
)

// Header fallbacks when the run has no name.
const (
	TitleSnapshot = "Experiment Snapshot"
	TitleRunning  = "Running Experiment"
)

// Options configures an App.
type Options struct {
	Fs      afero.Fs
	RunDir  string
	Config  *config.Config
	Version string
	Log     logger.Logger
}

// App is the dashboard for one run.
type App struct {
	collector *Collector
	log       logger.Logger

	screen  *tui.ScreenManager
	run     *tui.KVPanel
	metrics *tui.MetricsPanel
	system  *tui.KVPanel
	bar     *tui.FunctionBar

	stopped bool
}

// New builds the screen for the run in opts.RunDir. Nothing is read from the
// metrics stream until the first Refresh.
func New(opts Options) *App {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log := opts.Log
	if log == nil {
		log = logger.Noop()
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	md, _ := storage.ReadMetadata(fs, opts.RunDir)
	sum, _ := storage.ReadSummary(fs, opts.RunDir)

	a := &App{
		collector: NewCollector(fs, opts.RunDir, log),
		log:       log,
		screen:    tui.NewScreenManager(HeaderTitle(md, sum), cfg.RefreshInterval),
		run:       tui.NewRunPanel(),
		metrics:   tui.NewMetricsPanel(),
		system:    tui.NewSystemPanel(),
		bar:       tui.NewFunctionBar([]string{"h", "q"}, []string{"Help", "Quit"}),
	}

	a.screen.SetVersion(opts.Version)
	a.screen.SetHints(cfg.Display.Hints)
	a.screen.SetMinWidths(cfg.Layout.MainMinWidth, cfg.Layout.SidebarMinWidth)
	a.screen.SetFunctionBar(a.bar)

	a.metrics.SetCardSize(cfg.Layout.CardMinWidth, cfg.Layout.CardHeight)
	a.metrics.SetGlyphs(chart.GlyphSetByName(cfg.Display.Glyphs))
	a.run.SetLogger(log)
	a.system.SetLogger(log)

	a.screen.AddPanel(a.run, cfg.Layout.SidebarWidth)
	a.screen.AddPanel(a.metrics, 0)
	a.screen.AddPanel(a.system, cfg.Layout.SidebarWidth)

	a.screen.SetRefreshFunc(a.Refresh)
	return a
}

// HeaderTitle picks the header text: the run name, or a fallback based on
// whether the run has finished.
func HeaderTitle(md storage.Metadata, sum storage.Summary) string {
	if md.Name != "" && md.Name != "unknown" {
		return md.Name
	}
	if sum.Status == storage.StatusFinished {
		return TitleSnapshot
	}
	return TitleRunning
}

// Screen returns the screen manager.
func (a *App) Screen() *tui.ScreenManager {
	return a.screen
}

// Stopped reports whether refreshing was switched off because the run ended.
func (a *App) Stopped() bool {
	return a.stopped
}

// Refresh reloads the run and pushes it into the panels. Selections survive
// the reload. Once the run reaches a terminal status the timer is disabled.
func (a *App) Refresh() {
	snap, err := a.collector.Collect()
	if err != nil {
		a.log.Error("refresh %s: %v", a.collector.Dir(), err)
		return
	}

	if snap.Series != nil {
		row, col := a.metrics.Selected()
		sysSel := a.system.Panel.Selected()
		a.fill(snap.Series)
		a.metrics.Select(row, col)
		a.system.Panel.SetSelected(sysSel)
	}

	runSel := a.run.Panel.Selected()
	a.run.SetData(snap.Run)
	a.run.Panel.SetSelected(runSel)

	sum := snap.Run.Summary
	a.screen.SetStatus(sum.Status)
	a.screen.SetRuntime(sum.Runtime)
	a.bar.SetContext(" Run: %s | State: %s | Runtime: %.0fs | Step: %d",
		snap.Run.Metadata.Name, sum.Status, sum.Runtime, sum.Step)

	if storage.IsTerminal(sum.Status) && !a.stopped {
		a.log.Info("run is %s, refresh stopped", sum.Status)
		a.screen.SetRefreshFunc(nil)
		a.stopped = true
	}
}

func (a *App) fill(set *series.Set) {
	a.metrics.Clear()
	a.system.Panel.Clear()

	for _, s := range set.Metrics() {
		a.metrics.AddMetric(s.Name, s.Last(), s.Values)
	}
	for _, r := range set.System() {
		a.system.AddKV(r.Name, r.Format())
	}
}

// Theme resolves the display.color setting against what the terminal
// environment supports.
func Theme(mode string) *terminal.Theme {
	return terminal.NewTheme(terminal.ProfileFor(mode, termenv.EnvColorProfile()))
}

// Run watches the run directory and drives the screen until the user quits
// or ctx is cancelled.
func (a *App) Run(ctx context.Context, opts terminal.Options) error {
	w, err := Watch(a.collector.Dir(), a.log, a.screen.RequestRefresh)
	if err != nil {
		a.log.Warn("watch %s: %v", a.collector.Dir(), err)
	} else {
		defer w.Close()
	}

	a.log.Info("--- TUI Session Started ---")
	a.log.Info("Run Path: %s", a.collector.Dir())
	defer a.log.Info("TUI Session Ended")

	return a.screen.Run(ctx, func(ctx context.Context, app terminal.App) error {
		return terminal.Run(ctx, app, opts)
	})
}
