package tui

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/mattn/go-runewidth"

	"github.com/rileyhilliard/expml/internal/logger"
	"github.com/rileyhilliard/expml/internal/storage"
	"github.com/rileyhilliard/expml/internal/tui/terminal"
)

// KVMode selects the key/value column layout.
type KVMode int

const (
	// RunLayout puts values at a fixed offset and truncates with "...".
	RunLayout KVMode = iota
	// SystemLayout right-aligns short values in narrow panels and truncates
	// with "..".
	SystemLayout
)

const (
	runValueOffset    = 15
	systemValueOffset = 22
	// systemNarrow is the width below which values keep only eight columns.
	systemNarrow = 32
)

// KV is the Data of a key/value row.
type KV struct {
	Key   string
	Value string
}

// Section is the Data of a section heading row. The heading is Item.Text.
type Section struct{}

// KVPanel lists key/value rows with optional section headings.
type KVPanel struct {
	*Panel
	mode   KVMode
	copier func(string) error
	log    logger.Logger
}

// NewKVPanel returns an empty panel.
func NewKVPanel(header string, mode KVMode) *KVPanel {
	k := &KVPanel{
		Panel:  NewPanel(header),
		mode:   mode,
		copier: clipboard.WriteAll,
		log:    logger.Noop(),
	}
	k.Panel.SetDrawer(k)
	k.Panel.SetKeyHandler(k)
	return k
}

// NewRunPanel returns the run overview panel.
func NewRunPanel() *KVPanel {
	return NewKVPanel("Run Overview", RunLayout)
}

// NewSystemPanel returns the system metrics panel.
func NewSystemPanel() *KVPanel {
	return NewKVPanel("System Metrics", SystemLayout)
}

// SetCopier replaces the clipboard writer.
func (k *KVPanel) SetCopier(fn func(string) error) {
	if k == nil || fn == nil {
		return
	}
	k.copier = fn
}

// SetLogger sets where clipboard failures are reported.
func (k *KVPanel) SetLogger(log logger.Logger) {
	if k == nil || log == nil {
		return
	}
	k.log = log
}

// AddKV appends a key/value row. An empty value shows as N/A.
func (k *KVPanel) AddKV(key, value string) int {
	if value == "" {
		value = "N/A"
	}
	return k.Panel.AddItem(key, KV{Key: key, Value: value})
}

// AddSection appends a heading row.
func (k *KVPanel) AddSection(title string) int {
	return k.Panel.AddItem(title, Section{})
}

// AddBlank appends an empty spacer row.
func (k *KVPanel) AddBlank() int {
	return k.Panel.AddItem("", nil)
}

// SetData fills the panel from a loaded run.
func (k *KVPanel) SetData(run *storage.Run) {
	if k == nil {
		return
	}
	k.Panel.Clear()
	if run == nil {
		return
	}

	state := run.Summary.Status
	if state == "" {
		state = "N/A"
	}
	k.AddKV("State", state)
	k.AddKV("Name", run.Metadata.Name)
	k.AddKV("Project", "N/A")
	k.AddKV("ID", run.Metadata.ID)
	k.AddBlank()

	md := run.Metadata
	k.AddSection("Environment")
	k.AddKV("Host", md.Host)
	k.AddKV("User", md.User)
	k.AddKV("OS", md.OS)
	k.AddKV("Python", md.Python)
	k.AddKV("GPU", md.GPUName)
	k.AddKV("CPUs", fmt.Sprintf("%d", md.CPUCount))
	k.AddKV("GPUs", fmt.Sprintf("%d", md.GPUCount))
	k.AddKV("Disk", string(md.DiskTotal))
	k.AddKV("RAM", string(md.RAMTotal))
	k.AddKV("Command", md.Command)
	k.AddBlank()

	if run.Config.Len() > 0 {
		k.AddSection("Configuration")
		for _, key := range run.Config.Keys() {
			v, _ := run.Config.Get(key)
			switch v.(type) {
			case string, bool:
			default:
				if _, ok := storage.AsFloat(v); !ok {
					continue
				}
			}
			k.AddKV(key, storage.FormatConfigValue(v))
		}
		k.AddBlank()
	}

	sum := run.Summary
	k.AddSection("Summary")
	k.AddKV("status", sum.Status)
	k.AddKV("_runtime", fmt.Sprintf("%.1fs", sum.Runtime))
	k.AddKV("_timestamp", fmt.Sprintf("%.2f", sum.Timestamp))
	k.AddKV("_step", fmt.Sprintf("%d", sum.Step))
	k.AddKV("epoch", fmt.Sprintf("%d", int64(sum.Epoch)))
	for _, key := range sum.Fields.Keys() {
		switch key {
		case "status", "_runtime", "_timestamp", "_step", "epoch":
			continue
		}
		if f, ok := sum.Fields.Float(key); ok {
			k.AddKV(key, fmt.Sprintf("%.4f", f))
		}
	}
}

// HandleKey copies the selected value on y. Left and right are passed back
// so the screen manager can move focus.
func (k *KVPanel) HandleKey(p *Panel, key terminal.Key) Result {
	switch key {
	case 'y':
		it, ok := p.SelectedItem()
		if !ok {
			return Handled
		}
		if kv, isKV := it.Data.(KV); isKV {
			if err := k.copier(kv.Value); err != nil {
				k.log.Warn("copy %q: %v", kv.Key, err)
			}
		}
		return Handled
	case terminal.KeyLeft, terminal.KeyRight:
		return Unconsumed
	}
	return Ignored
}

// DrawItem renders one row in the panel's layout.
func (k *KVPanel) DrawItem(s *terminal.Surface, _ *Panel, item Item, _, y, x, w, _ int, selected bool) {
	base := terminal.Normal
	if selected {
		base = terminal.Selected
	}
	s.HLine(y, x, ' ', w, base)

	pick := func(st terminal.Style) terminal.Style {
		if selected {
			return base
		}
		return st
	}

	switch d := item.Data.(type) {
	case KV:
		if k.mode == SystemLayout {
			k.drawSystemKV(s, d, y, x, w, pick)
			return
		}
		s.Print(y, x, runewidth.Truncate(d.Key, runValueOffset-1, "..."), pick(terminal.Dim))
		avail := w - runValueOffset - 1
		if avail > 0 {
			s.Print(y, x+runValueOffset, runewidth.Truncate(d.Value, avail, "..."), pick(terminal.Bright))
		}

	case Section:
		if item.Text == "" || w < 2 {
			return
		}
		st := pick(terminal.Header).Bold()
		s.Print(y, x, runewidth.Truncate(item.Text, w-1, "..."), st)

	default:
		if k.mode == SystemLayout {
			s.PrintMax(y, x, item.Text, w, pick(terminal.Dim))
		}
	}
}

func (k *KVPanel) drawSystemKV(s *terminal.Surface, d KV, y, x, w int, pick func(terminal.Style) terminal.Style) {
	offset := systemValueOffset
	if w < systemNarrow {
		offset = w - 8
	}
	if offset < 2 {
		offset = 2
	}

	s.Print(y, x, runewidth.Truncate(d.Key, offset-1, ".."), pick(terminal.Dim))
	avail := w - offset
	if avail > 0 {
		s.Print(y, x+offset, runewidth.Truncate(d.Value, avail, ".."), pick(terminal.Bright).Bold())
	}
}
