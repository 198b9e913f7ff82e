package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/expml/internal/logger"
	"github.com/rileyhilliard/expml/internal/storage"
	"github.com/rileyhilliard/expml/internal/tui/terminal"
)

// kvRows flattens a KVPanel into "key=value", "#section" and "" entries.
func kvRows(k *KVPanel) []string {
	var out []string
	for i := 0; i < k.Panel.Len(); i++ {
		it, _ := k.Panel.Item(i)
		switch d := it.Data.(type) {
		case KV:
			out = append(out, d.Key+"="+d.Value)
		case Section:
			out = append(out, "#"+it.Text)
		default:
			out = append(out, it.Text)
		}
	}
	return out
}

func testRun() *storage.Run {
	cfg := storage.NewOrderedMap()
	cfg.Set("lr", 0.001)
	cfg.Set("optimizer", "adam")
	cfg.Set("layers", map[string]interface{}{"depth": 4.0})
	cfg.Set("epochs", 10.0)
	cfg.Set("amp", true)

	fields := storage.NewOrderedMap()
	fields.Set("status", "RUNNING")
	fields.Set("_runtime", 12.5)
	fields.Set("loss", 0.25)
	fields.Set("note", "warmup")

	return &storage.Run{
		Dir:    "/runs/run-1",
		Config: cfg,
		Metadata: storage.Metadata{
			ID:        "abc123",
			Name:      "baseline",
			Host:      "gpu-box",
			CPUCount:  16,
			GPUCount:  2,
			DiskTotal: "512.0GB",
		},
		Summary: storage.Summary{
			Status:    "RUNNING",
			Runtime:   12.5,
			Timestamp: 1700000000.5,
			Step:      300,
			Epoch:     3,
			HasEpoch:  true,
			Fields:    fields,
		},
	}
}

func TestKVPanel_SetData(t *testing.T) {
	k := NewRunPanel()
	k.SetData(testRun())

	rows := kvRows(k)
	assert.Equal(t, []string{"State=RUNNING", "Name=baseline", "Project=N/A", "ID=abc123", ""}, rows[:5])
	assert.Equal(t, "#Environment", rows[5])
	assert.Contains(t, rows, "Host=gpu-box")
	assert.Contains(t, rows, "User=N/A")
	assert.Contains(t, rows, "CPUs=16")
	assert.Contains(t, rows, "Disk=512.0GB")

	cfgStart := indexOf(rows, "#Configuration")
	require.NotEqual(t, -1, cfgStart)
	assert.Equal(t, []string{"lr=0.0010", "optimizer=adam", "epochs=10", "amp=true", ""}, rows[cfgStart+1:cfgStart+6])

	sumStart := indexOf(rows, "#Summary")
	require.NotEqual(t, -1, sumStart)
	assert.Equal(t, []string{
		"status=RUNNING",
		"_runtime=12.5s",
		"_timestamp=1700000000.50",
		"_step=300",
		"epoch=3",
		"loss=0.2500",
	}, rows[sumStart+1:])
}

func TestKVPanel_SetData_NoConfig(t *testing.T) {
	run := testRun()
	run.Config = storage.NewOrderedMap()

	k := NewRunPanel()
	k.SetData(run)
	assert.Equal(t, -1, indexOf(kvRows(k), "#Configuration"))

	k.SetData(nil)
	assert.Equal(t, 0, k.Panel.Len())
}

func indexOf(rows []string, want string) int {
	for i, r := range rows {
		if r == want {
			return i
		}
	}
	return -1
}

func TestKVPanel_Copy(t *testing.T) {
	k := NewRunPanel()
	var copied []string
	k.SetCopier(func(s string) error {
		copied = append(copied, s)
		return nil
	})
	k.AddKV("State", "RUNNING")
	k.AddSection("Env")

	assert.True(t, k.OnKey('y'))
	k.Panel.SetSelected(1)
	assert.True(t, k.OnKey('y'), "y on a heading is swallowed")

	assert.Equal(t, []string{"RUNNING"}, copied)
}

func TestKVPanel_CopyErrorIsLogged(t *testing.T) {
	k := NewRunPanel()
	log := logger.NewBufferLogger()
	k.SetLogger(log)
	k.SetCopier(func(string) error { return errors.New("no clipboard") })
	k.AddKV("ID", "abc")

	k.OnKey('y')

	require.True(t, log.HasLevel("warn"))
	assert.Contains(t, log.Messages[0].Message, "no clipboard")
}

func TestKVPanel_ArrowsAreUnconsumed(t *testing.T) {
	k := NewSystemPanel()
	k.AddKV("cpu", "12%")
	assert.False(t, k.OnKey(terminal.KeyLeft))
	assert.False(t, k.OnKey(terminal.KeyRight))
	assert.Equal(t, 0, k.ScrollH())
	assert.True(t, k.OnKey(terminal.KeyDown))
}

func TestKVPanel_DrawRunLayout(t *testing.T) {
	s := terminal.NewSurface(40, 6)
	k := NewRunPanel()
	k.Resize(40, 6)
	k.AddKV("learning_rate_schedule", "cosine")
	k.AddKV("cmd", "abcdefghijklmnopqrstuvwxyz")
	k.AddSection("Environment")

	k.Draw(s, true)

	assert.True(t, strings.HasPrefix(s.Line(2), "learning_ra... cosine"))
	assert.True(t, strings.HasPrefix(s.Line(3), "cmd            abcdefghijklmnopqrs..."))
	assert.True(t, strings.HasPrefix(s.Line(4), "Environment"))
	assert.Equal(t, terminal.Header.Bold(), s.Cell(4, 0).Style)
	assert.Equal(t, terminal.Selected, s.Cell(2, 0).Style, "selected row uses one style")
}

func TestKVPanel_DrawSystemLayout(t *testing.T) {
	tests := []struct {
		name  string
		width int
		want  string
	}{
		{name: "wide", width: 40, want: "cpu_percent           123456789"},
		{name: "narrow", width: 30, want: "cpu_percent         123456.."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := terminal.NewSurface(tt.width, 4)
			k := NewSystemPanel()
			k.Resize(tt.width, 4)
			k.AddKV("cpu_percent", "123456789")

			k.Draw(s, true)

			assert.True(t, strings.HasPrefix(s.Line(2), tt.want), "got %q", s.Line(2))
		})
	}
}

func TestFunctionBar_Draw(t *testing.T) {
	s := terminal.NewSurface(40, 1)
	fb := NewFunctionBar([]string{"F1", "q"}, []string{"Help", "Quit"})
	fb.SetContext("%s", "ctx")

	fb.Draw(s, 0, 40)

	assert.Equal(t, " ctx                  F1:Help   q:Quit  ", s.Line(0))
	assert.Equal(t, terminal.StatusBar.Bold(), s.Cell(0, 22).Style)
	assert.Equal(t, terminal.StatusBar, s.Cell(0, 24).Style)
}

func TestFunctionBar_DropsKeysThatHitContext(t *testing.T) {
	s := terminal.NewSurface(40, 1)
	fb := NewFunctionBar([]string{"F1", "q"}, []string{"Help", "Quit"})
	fb.SetContext("a fairly long context line")

	fb.Draw(s, 0, 40)

	assert.Contains(t, s.Line(0), "q:Quit")
	assert.NotContains(t, s.Line(0), "F1:Help")
}

func TestFunctionBar_Limits(t *testing.T) {
	keys := make([]string, 20)
	labels := make([]string, 18)
	fb := NewFunctionBar(keys, labels)
	assert.Len(t, fb.keys, MaxFunctionKeys)

	fb = NewFunctionBar([]string{"a", "b"}, []string{"A"})
	assert.Len(t, fb.keys, 1)

	fb.SetContext("%s", strings.Repeat("é", 300))
	assert.Len(t, []rune(fb.Context()), MaxContextLen)

	var nilBar *FunctionBar
	assert.Equal(t, "", nilBar.Context())
}

func TestHeader_Draw(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		status   string
		runtime  float64
		want     string
		subtitle string
	}{
		{name: "both", width: 80, status: "RUNNING", runtime: 12.4, want: "status: RUNNING | runtime: 12s", subtitle: Subtitle},
		{name: "status only", width: 70, status: "FINISHED", want: "status: FINISHED", subtitle: Subtitle},
		{name: "runtime only", width: 70, runtime: 90, want: "runtime: 90s", subtitle: Subtitle},
		{name: "neither", width: 70, subtitle: Subtitle},
		{name: "narrow cuts subtitle", width: 70, status: "RUNNING", runtime: 12.4, want: "status: RUNNING | runtime: 12s", subtitle: "terminal-based ML experiment track status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := terminal.NewSurface(tt.width, 4)
			h := &Header{App: "expml", Version: "0.1.0", Title: "run-1", Status: tt.status, Runtime: tt.runtime}

			h.Draw(s, tt.width)

			assert.Equal(t, terminal.RuneULCorner, s.Cell(0, 0).Rune)
			assert.Equal(t, terminal.RuneLRCorner, s.Cell(3, tt.width-1).Rune)
			assert.Contains(t, s.Line(1), "expml v0.1.0")
			assert.True(t, strings.HasSuffix(s.Line(1), "run-1  │"))

			line := s.Line(2)
			assert.Contains(t, line, tt.subtitle)
			if tt.want == "" {
				assert.NotContains(t, line, "status")
				assert.NotContains(t, line, "runtime")
				return
			}
			assert.True(t, strings.HasSuffix(line, tt.want+"  │"), "got %q", line)
		})
	}
}

func TestKeymap(t *testing.T) {
	km := DefaultKeymap()

	assert.True(t, key.Matches(terminal.Key('q'), km.Quit))
	assert.True(t, key.Matches(terminal.KeyCtrlC, km.Quit))
	assert.True(t, key.Matches(terminal.KeyCtrlL, km.Redraw))
	assert.True(t, key.Matches(terminal.KeyShiftTab, km.SwitchPanel))
	assert.False(t, key.Matches(terminal.Key('x'), km.Help))

	secs := km.Sections()
	require.Len(t, secs, 2)
	assert.Equal(t, "Navigation", secs[0].Title)
	assert.Equal(t, "General", secs[1].Title)
	assert.Equal(t, "Quit", secs[1].Bindings[1].Help().Desc)
}
