package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)

	require.NoError(t, WriteDefault(path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "refresh_interval: 1s")
	assert.Contains(t, string(data), "card_min_width: 40")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg, "written defaults load back unchanged")
}

func TestWriteDefault_NoClobber(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("runs_dir: mine\n"), 0o644))

	err := WriteDefault(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	require.NoError(t, WriteDefault(path, true))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "expml_runs", cfg.RunsDir)
}

func TestSetValue(t *testing.T) {
	tests := []struct {
		name         string
		initialYAML  string
		key          string
		value        string
		wantContains []string
		wantErr      bool
	}{
		{
			name:         "replace top-level scalar",
			initialYAML:  "# my runs\nruns_dir: old\n",
			key:          "runs_dir",
			value:        "new",
			wantContains: []string{"# my runs", "runs_dir: new"},
		},
		{
			name:         "replace nested scalar",
			initialYAML:  "layout:\n  sidebar_width: 35\n  card_height: 12\n",
			key:          "layout.sidebar_width",
			value:        "28",
			wantContains: []string{"sidebar_width: 28", "card_height: 12"},
		},
		{
			name:         "create missing mapping",
			initialYAML:  "version: 1\n",
			key:          "display.glyphs",
			value:        "blocks",
			wantContains: []string{"display:", "glyphs: blocks"},
		},
		{
			name:        "descend through scalar",
			initialYAML: "layout: wide\n",
			key:         "layout.sidebar_width",
			value:       "30",
			wantErr:     true,
		},
		{
			name:        "document is a list",
			initialYAML: "- a\n- b\n",
			key:         "runs_dir",
			value:       "x",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ConfigFileName)
			require.NoError(t, os.WriteFile(path, []byte(tt.initialYAML), 0o644))

			err := SetValue(path, tt.key, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			for _, want := range tt.wantContains {
				assert.Contains(t, string(data), want)
			}
		})
	}
}

func TestSetValue_RoundTripsThroughLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, WriteDefault(path, false))

	require.NoError(t, SetValue(path, "refresh_interval", "3s"))
	require.NoError(t, SetValue(path, "layout.sidebar_width", "30"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 30, cfg.Layout.SidebarWidth)
}

func TestSetValue_MissingFile(t *testing.T) {
	err := SetValue(filepath.Join(t.TempDir(), "nope.yaml"), "runs_dir", "x")
	assert.Error(t, err)
}
