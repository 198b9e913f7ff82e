package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "future version",
			mutate:  func(c *Config) { c.Version = CurrentConfigVersion + 1 },
			wantErr: "from the future",
		},
		{
			name:    "empty runs dir",
			mutate:  func(c *Config) { c.RunsDir = "" },
			wantErr: "runs_dir is empty",
		},
		{
			name:    "refresh too fast",
			mutate:  func(c *Config) { c.RefreshInterval = 10 * time.Millisecond },
			wantErr: "too fast",
		},
		{
			name:    "zero card width",
			mutate:  func(c *Config) { c.Layout.CardMinWidth = 0 },
			wantErr: "layout.card_min_width must be positive",
		},
		{
			name:    "card too short",
			mutate:  func(c *Config) { c.Layout.CardHeight = 5 },
			wantErr: "no room for the chart",
		},
		{
			name:    "sidebar floor above sidebar width",
			mutate:  func(c *Config) { c.Layout.SidebarMinWidth = 50 },
			wantErr: "sidebar_min_width (50)",
		},
		{
			name:    "unknown color mode",
			mutate:  func(c *Config) { c.Display.Color = "sometimes" },
			wantErr: "display.color 'sometimes'",
		},
		{
			name:    "unknown glyph set",
			mutate:  func(c *Config) { c.Display.Glyphs = "ascii" },
			wantErr: "display.glyphs 'ascii'",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Log.Level = "chatty" },
			wantErr: "log.level 'chatty'",
		},
		{
			name:   "numeric log level",
			mutate: func(c *Config) { c.Log.Level = "8" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
