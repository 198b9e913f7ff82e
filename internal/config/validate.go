package config

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/expml/internal/errors"
	"github.com/rileyhilliard/expml/internal/logger"
)

// MinRefreshInterval is the fastest the dashboard will poll run files.
const MinRefreshInterval = 100 * time.Millisecond

var (
	validColors = map[string]bool{"auto": true, "always": true, "never": true}
	validGlyphs = map[string]bool{"braille": true, "blocks": true}
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but expml only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade expml or lower the version field")
	}

	if cfg.RunsDir == "" {
		return errors.New(errors.ErrConfig,
			"runs_dir is empty",
			"Set runs_dir to the directory your experiments write to (default: expml_runs)")
	}

	if cfg.RefreshInterval < MinRefreshInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("refresh_interval %s is too fast", cfg.RefreshInterval),
			fmt.Sprintf("Use at least %s", MinRefreshInterval))
	}

	if err := validateLayout(cfg.Layout); err != nil {
		return err
	}

	if !validColors[cfg.Display.Color] {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown display.color '%s'", cfg.Display.Color),
			"Use one of: auto, always, never")
	}
	if !validGlyphs[cfg.Display.Glyphs] {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown display.glyphs '%s'", cfg.Display.Glyphs),
			"Use one of: braille, blocks")
	}

	if _, ok := logger.ParseLevel(cfg.Log.Level); !ok {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown log.level '%s'", cfg.Log.Level),
			"Use one of: emerg, alert, crit, error, warn, notice, info, debug")
	}

	return nil
}

func validateLayout(l LayoutConfig) error {
	positive := []struct {
		name  string
		value int
	}{
		{"layout.card_min_width", l.CardMinWidth},
		{"layout.card_height", l.CardHeight},
		{"layout.sidebar_width", l.SidebarWidth},
		{"layout.sidebar_min_width", l.SidebarMinWidth},
		{"layout.main_min_width", l.MainMinWidth},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("%s must be positive, got %d", p.name, p.value),
				"Remove the key to use the default")
		}
	}

	// A card needs its border, two label columns and a one-cell chart.
	if l.CardHeight < 7 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("layout.card_height %d leaves no room for the chart", l.CardHeight),
			"Use 7 or more (default: 12)")
	}
	if l.CardMinWidth < 10 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("layout.card_min_width %d leaves no room for the chart", l.CardMinWidth),
			"Use 10 or more (default: 40)")
	}

	if l.SidebarMinWidth > l.SidebarWidth {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("layout.sidebar_min_width (%d) is larger than layout.sidebar_width (%d)", l.SidebarMinWidth, l.SidebarWidth),
			"Lower sidebar_min_width or raise sidebar_width")
	}

	return nil
}
