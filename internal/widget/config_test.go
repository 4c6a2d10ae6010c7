// ABOUTME: Tests for widget configuration clamping and YAML loading
// ABOUTME: Out-of-range values snap to bounds, they never error
package widget

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 300, cfg.Size)
	assert.Equal(t, 5, cfg.Samples)
	assert.Equal(t, 100, cfg.SampleIntervalMs)
	assert.False(t, cfg.Trim)
	assert.GreaterOrEqual(t, cfg.HandWidth, 1, "hand width derived from size")
}

func TestClampSize(t *testing.T) {
	cfg := Config{Size: 10}
	cfg.Clamp()
	assert.Equal(t, MinSize, cfg.Size)

	cfg = Config{Size: 99_999}
	cfg.Clamp()
	assert.Equal(t, MaxSize, cfg.Size)
}

func TestClampTickOffset(t *testing.T) {
	cfg := Config{Size: 300, TickOffsetMs: 10_000_000}
	cfg.Clamp()
	assert.Equal(t, MaxTickOffsetMs, cfg.TickOffsetMs)

	cfg = Config{Size: 300, TickOffsetMs: -10_000_000}
	cfg.Clamp()
	assert.Equal(t, -MaxTickOffsetMs, cfg.TickOffsetMs)
}

func TestClampTimezone(t *testing.T) {
	cfg := Config{Size: 300, TimezoneOffsetMinutes: 5000}
	cfg.Clamp()
	assert.Equal(t, 840, cfg.TimezoneOffsetMinutes)
}

func TestHandWidthProportionalDefault(t *testing.T) {
	cfg := Config{Size: 2000}
	cfg.Clamp()
	assert.Equal(t, 20, cfg.HandWidth)

	cfg = Config{Size: 60}
	cfg.Clamp()
	assert.Equal(t, 1, cfg.HandWidth, "never below one")
}

func TestLoadConfigMissingPathReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverlaysAndClamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "widget.yaml")
	data := []byte("size: 9999\ntimezone_offset_minutes: -300\ntrim: true\nsamples: 7\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, MaxSize, cfg.Size, "out-of-range size clamps")
	assert.Equal(t, -300, cfg.TimezoneOffsetMinutes)
	assert.True(t, cfg.Trim)
	assert.Equal(t, 7, cfg.Samples)
	assert.Equal(t, "245", cfg.FaceColor, "unset fields keep defaults")
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "widget.yaml")
	require.NoError(t, os.WriteFile(path, []byte("size: [not a number"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
