package classifier

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero clip limit", func(c *Config) { c.ClipLimit = 0 }},
		{"empty tile grid", func(c *Config) { c.TileGrid.Rows = 0 }},
		{"hue out of range", func(c *Config) { c.Thresholds.GreenMax = 200 }},
		{"red overlaps yellow", func(c *Config) { c.Thresholds.RedLowMax = 25 }},
		{"yellow overlaps green", func(c *Config) { c.Thresholds.YellowMax = 50 }},
		{"green overlaps red", func(c *Config) { c.Thresholds.GreenMax = 175 }},
		{"empty green band", func(c *Config) { c.Thresholds.GreenMin = 80 }},
		{"negative weight", func(c *Config) { c.Weights.Yellow.Top = -1 }},
		{"negative floor", func(c *Config) { c.PixelFloor = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))

			_, err = New(cfg)
			assert.Error(t, err)
		})
	}
}

func TestConfigValidateNamesFirstBadHueBound(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Thresholds.GreenMax = 300
	cfg.Thresholds.YellowMin = -1
	cfg.Thresholds.RedHighMin = 200

	for i := 0; i < 20; i++ {
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "red_high_min must be within [0, 179], got 200")
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
clip_limit: 2.0
tile_grid:
  rows: 4
  cols: 4
thresholds:
  sat_min: 80
score_floor: 75
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 2.0, cfg.ClipLimit)
	assert.Equal(t, TileGrid{Rows: 4, Cols: 4}, cfg.TileGrid)
	assert.Equal(t, 80, cfg.Thresholds.SatMin)
	assert.Equal(t, 100, cfg.Thresholds.ValMin, "unset keys keep defaults")
	assert.Equal(t, 75.0, cfg.ScoreFloor)
	assert.Equal(t, DefaultConfig().Weights, cfg.Weights)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("thresholds:\n  yellow_max: 60\n"), 0o600))
	_, err = LoadConfig(path)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestLabelText(t *testing.T) {
	for _, l := range Labels {
		text, err := l.MarshalText()
		require.NoError(t, err)

		var parsed Label
		require.NoError(t, parsed.UnmarshalText(text))
		assert.Equal(t, l, parsed)
	}

	out, err := json.Marshal(map[string]Label{"label": Yellow})
	require.NoError(t, err)
	assert.JSONEq(t, `{"label":"Yellow"}`, string(out))

	l, err := ParseLabel(" red ")
	require.NoError(t, err)
	assert.Equal(t, Red, l)

	_, err = ParseLabel("blue")
	assert.Error(t, err)
	assert.False(t, Label(7).Valid())
	assert.Equal(t, "Label(7)", Label(7).String())
}
