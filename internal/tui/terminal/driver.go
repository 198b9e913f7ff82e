package terminal

import (
	"context"
	"errors"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
)

// DefaultPoll is how often the app is stepped when no key arrives.
const DefaultPoll = 100 * time.Millisecond

// App is the single-threaded program the driver runs. Every method is called
// from the bubbletea update loop, never concurrently.
type App interface {
	// Resize reports the new terminal size. A KeyResize step follows.
	Resize(w, h int)
	// Step handles one key (KeyNone on a poll tick) and any timers due at now.
	Step(key Key, now time.Time)
	// Draw paints changed regions into the surface.
	Draw(s *Surface)
	// Invalidate asks for a full repaint on the next Draw, e.g. after resume.
	Invalidate()
	// Done reports whether the app wants to exit.
	Done() bool
}

// Options configures Run.
type Options struct {
	Theme     *Theme
	Poll      time.Duration
	AltScreen bool
	Input     io.Reader
	Output    io.Writer
}

type pollMsg time.Time

// model adapts an App to bubbletea's Model/Update/View cycle.
type model struct {
	app     App
	surface *Surface
	theme   *Theme
	poll    time.Duration
	frame   string
	now     func() time.Time
}

func newModel(app App, opts Options) *model {
	poll := opts.Poll
	if poll <= 0 {
		poll = DefaultPoll
	}
	theme := opts.Theme
	if theme == nil {
		theme = NewTheme(termenv.TrueColor)
	}
	return &model{
		app:     app,
		surface: NewSurface(0, 0),
		theme:   theme,
		poll:    poll,
		now:     time.Now,
	}
}

func (m *model) pollCmd() tea.Cmd {
	return tea.Tick(m.poll, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

// Init starts the poll ticker.
func (m *model) Init() tea.Cmd {
	return m.pollCmd()
}

// Update routes bubbletea messages into App steps.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.surface.Resize(msg.Width, msg.Height)
		m.app.Resize(msg.Width, msg.Height)
		m.app.Step(KeyResize, m.now())

	case tea.KeyMsg:
		key := FromKeyMsg(msg)
		if key == KeyCtrlZ {
			return m, tea.Suspend
		}
		m.app.Step(key, m.now())

	case pollMsg:
		m.app.Step(KeyNone, time.Time(msg))
		cmd = m.pollCmd()

	case tea.ResumeMsg:
		m.surface.Clear()
		m.app.Invalidate()
		m.app.Step(KeyNone, m.now())
	}

	if m.app.Done() {
		return m, tea.Quit
	}

	m.app.Draw(m.surface)
	if m.surface.Changed() {
		m.frame = m.surface.Render(m.theme)
	}
	return m, cmd
}

// View returns the last rendered frame.
func (m *model) View() string {
	return m.frame
}

// Run drives app until it reports Done or ctx is cancelled. The terminal is
// restored on return, including on suspend/resume cycles.
func Run(ctx context.Context, app App, opts Options) error {
	progOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.AltScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}

	p := tea.NewProgram(newModel(app, opts), progOpts...)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
