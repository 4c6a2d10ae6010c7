// ABOUTME: Widget configuration with clamping and size-proportional defaults
// ABOUTME: Loadable from YAML; out-of-range values clamp, they never fail
package widget

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chronosync/chrono-go/internal/clock"
)

// Clamping bounds for the configuration surface. Clamping is a deliberate
// leniency policy: this is a cosmetic-attribute surface, so out-of-range
// input snaps to the nearest valid bound instead of erroring.
const (
	MinSize = 60
	MaxSize = 2000

	MaxTickOffsetMs = 600_000.0
)

// Config is the full widget configuration surface.
type Config struct {
	// Geometry and colors.
	Size        int    `yaml:"size"`
	HandWidth   int    `yaml:"hand_width"`
	FaceColor   string `yaml:"face_color"`
	HandColor   string `yaml:"hand_color"`
	AccentColor string `yaml:"accent_color"`

	// Time behavior.
	TickOffsetMs          float64 `yaml:"tick_offset_ms"`
	TimezoneOffsetMinutes int     `yaml:"timezone_offset_minutes"`
	Paused                bool    `yaml:"paused"`

	// Synchronization.
	Samples          int  `yaml:"samples"`
	SampleIntervalMs int  `yaml:"sample_interval_ms"`
	Trim             bool `yaml:"trim"`
	ResyncIntervalS  int  `yaml:"resync_interval_s"`
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	cfg := Config{
		Size:             300,
		FaceColor:        "245",
		HandColor:        "252",
		AccentColor:      "203",
		Samples:          5,
		SampleIntervalMs: 100,
		ResyncIntervalS:  64,
	}
	cfg.Clamp()
	return cfg
}

// LoadConfig reads a YAML config file over the defaults and clamps the
// result. A missing path returns plain defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Clamp()
	return cfg, nil
}

// Clamp snaps every numeric field into its valid range and fills unset
// values with defaults proportional to Size.
func (c *Config) Clamp() {
	c.Size = clampInt(c.Size, MinSize, MaxSize)

	if c.HandWidth <= 0 {
		c.HandWidth = c.Size / 100
	}
	c.HandWidth = clampInt(c.HandWidth, 1, c.Size/10)

	if c.TickOffsetMs > MaxTickOffsetMs {
		c.TickOffsetMs = MaxTickOffsetMs
	}
	if c.TickOffsetMs < -MaxTickOffsetMs {
		c.TickOffsetMs = -MaxTickOffsetMs
	}

	c.TimezoneOffsetMinutes = clampInt(c.TimezoneOffsetMinutes,
		clock.MinTimezoneOffsetMinutes, clock.MaxTimezoneOffsetMinutes)

	if c.Samples <= 0 {
		c.Samples = 5
	}
	c.Samples = clampInt(c.Samples, 1, 50)

	if c.SampleIntervalMs < 0 {
		c.SampleIntervalMs = 0
	}
	c.SampleIntervalMs = clampInt(c.SampleIntervalMs, 0, 10_000)

	if c.ResyncIntervalS <= 0 {
		c.ResyncIntervalS = 64
	}
	c.ResyncIntervalS = clampInt(c.ResyncIntervalS, 5, 86_400)
}

// SampleInterval returns the inter-sample delay as a duration.
func (c Config) SampleInterval() time.Duration {
	return time.Duration(c.SampleIntervalMs) * time.Millisecond
}

// ResyncInterval returns the gap between full estimation passes.
func (c Config) ResyncInterval() time.Duration {
	return time.Duration(c.ResyncIntervalS) * time.Second
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
