package series

import (
	"testing"

	"github.com/rileyhilliard/expml/internal/storage"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(t *testing.T, raw string) *storage.OrderedMap {
	t.Helper()
	m := storage.NewOrderedMap()
	require.NoError(t, m.UnmarshalJSON([]byte(raw)))
	return m
}

func TestSet_Add(t *testing.T) {
	s := New()
	s.Add(record(t, `{"_step": 1, "_timestamp": 100.5, "loss": 2.0, "system/cpu_percent": 40, "note": "warmup"}`))
	s.Add(record(t, `{"_step": 2, "acc": 0.5, "loss": 1.5, "system/cpu_percent": 55, "flag": true}`))
	s.Add(record(t, `{"_step": 3, "loss": 1.0}`))

	metrics := s.Metrics()
	require.Len(t, metrics, 2)
	assert.Equal(t, "loss", metrics[0].Name, "first-seen order")
	assert.Equal(t, []float64{2.0, 1.5, 1.0}, metrics[0].Values)
	assert.Equal(t, "acc", metrics[1].Name)
	assert.Equal(t, []float64{0.5}, metrics[1].Values)

	system := s.System()
	require.Len(t, system, 1)
	assert.Equal(t, Reading{Name: "cpu_percent", Value: 55}, system[0])

	assert.Equal(t, int64(3), s.Step())
	assert.Equal(t, 3, s.Records())

	_, ok := s.Lookup("note")
	assert.False(t, ok, "strings are skipped")
	_, ok = s.Lookup("flag")
	assert.False(t, ok, "bools are skipped")
	_, ok = s.Lookup("_timestamp")
	assert.False(t, ok, "underscore keys are skipped")
}

func TestSeries_Last(t *testing.T) {
	assert.Equal(t, 0.0, (&Series{}).Last())
	assert.Equal(t, 3.0, (&Series{Values: []float64{1, 3}}).Last())
}

func TestReading_Format(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{"cpu_percent", 42.26, "42.3%"},
		{"gpu_util", 99, "99.0%"},
		{"load_avg", 1.5, "1.5%"},
		{"ram_percent", 63.0, "63.0%"},
		{"ram_gb", 12.34, "12.3GB"},
		{"vram_GB", 8, "8.0GB"},
		{"gpu_temp", 71.46, "71.5°C"},
		{"fan_rpm", 1200.126, "1200.13"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reading{Name: tt.name, Value: tt.value}.Format())
		})
	}
}

func TestLoad(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/r/metrics.jsonl", []byte(
		"{\"_step\":1,\"loss\":0.9}\n{\"_step\":2,\"loss\":0.7,\"system/ram_gb\":3.2}\n"), 0o644))

	s, err := Load(fsys, "/r", nil)
	require.NoError(t, err)

	require.Len(t, s.Metrics(), 1)
	assert.Equal(t, []float64{0.9, 0.7}, s.Metrics()[0].Values)
	assert.Equal(t, "3.2GB", s.System()[0].Format())
}

func TestLoad_NoMetricsFile(t *testing.T) {
	s, err := Load(afero.NewMemMapFs(), "/r", nil)
	require.NoError(t, err)
	assert.Empty(t, s.Metrics())
	assert.Empty(t, s.System())
}
