package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .expml.yaml configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// RunsDir is where the experiment writer keeps its runs (one dir per run
	// plus a latest-run symlink).
	RunsDir string `yaml:"runs_dir" mapstructure:"runs_dir"`

	// RefreshInterval is how often the dashboard reloads run files.
	RefreshInterval time.Duration `yaml:"refresh_interval" mapstructure:"refresh_interval"`

	Layout  LayoutConfig  `yaml:"layout" mapstructure:"layout"`
	Display DisplayConfig `yaml:"display" mapstructure:"display"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// LayoutConfig holds the sizing constants of the dashboard.
type LayoutConfig struct {
	// CardMinWidth is the narrowest a metric card may get before the grid
	// drops a column.
	CardMinWidth int `yaml:"card_min_width" mapstructure:"card_min_width"`

	// CardHeight is the number of rows one metric card occupies.
	CardHeight int `yaml:"card_height" mapstructure:"card_height"`

	// SidebarWidth is the requested width of the run and system panels.
	SidebarWidth int `yaml:"sidebar_width" mapstructure:"sidebar_width"`

	// SidebarMinWidth is the hard floor sidebars compress to on narrow terminals.
	SidebarMinWidth int `yaml:"sidebar_min_width" mapstructure:"sidebar_min_width"`

	// MainMinWidth is the width reserved for the metrics grid before sidebars compress.
	MainMinWidth int `yaml:"main_min_width" mapstructure:"main_min_width"`
}

// DisplayConfig controls rendering.
type DisplayConfig struct {
	// Color: auto, always, never.
	Color string `yaml:"color" mapstructure:"color"`

	// Glyphs selects the sparkline glyph set: braille or blocks.
	Glyphs string `yaml:"glyphs" mapstructure:"glyphs"`

	// Hints toggles the "press Tab" hint lines under the header.
	Hints bool `yaml:"hints" mapstructure:"hints"`
}

// LogConfig controls the run's debug.log.
type LogConfig struct {
	// Level is the most verbose level written (emerg ... debug).
	Level string `yaml:"level" mapstructure:"level"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:         CurrentConfigVersion,
		RunsDir:         "expml_runs",
		RefreshInterval: time.Second,
		Layout: LayoutConfig{
			CardMinWidth:    40,
			CardHeight:      12,
			SidebarWidth:    35,
			SidebarMinWidth: 20,
			MainMinWidth:    30,
		},
		Display: DisplayConfig{
			Color:  "auto",
			Glyphs: "braille",
			Hints:  true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
