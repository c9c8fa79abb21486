// Package config loads mudra's runtime configuration from MUDRA_*
// environment variables and command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Config is the process configuration. Flags override the environment.
type Config struct {
	CameraID  int    `env:"MUDRA_CAMERA" envDefault:"0"`
	Addr      string `env:"MUDRA_ADDR" envDefault:":8080"`
	DataDir   string `env:"MUDRA_DATA_DIR"`
	PluginDir string `env:"MUDRA_PLUGIN_DIR"`
	WebDir    string `env:"MUDRA_WEB_DIR"`

	HandIndex       int           `env:"MUDRA_HAND_INDEX" envDefault:"0"`
	MaxHands        int           `env:"MUDRA_MAX_HANDS" envDefault:"2"`
	DetectionConf   float64       `env:"MUDRA_DETECTION_CONFIDENCE" envDefault:"0.8"`
	TrackingConf    float64       `env:"MUDRA_TRACKING_CONFIDENCE" envDefault:"0.6"`
	PinchMin        float64       `env:"MUDRA_PINCH_MIN" envDefault:"50"`
	PinchMax        float64       `env:"MUDRA_PINCH_MAX" envDefault:"160"`
	Draw            bool          `env:"MUDRA_DRAW" envDefault:"true"`
	MotionThreshold float64       `env:"MUDRA_MOTION_THRESHOLD" envDefault:"1.0"`
	MotionHold      time.Duration `env:"MUDRA_MOTION_HOLD" envDefault:"2s"`
	PluginTimeout   time.Duration `env:"MUDRA_PLUGIN_TIMEOUT" envDefault:"5s"`
	VolumeTimeout   time.Duration `env:"MUDRA_VOLUME_TIMEOUT" envDefault:"1s"`

	Journal      bool   `env:"MUDRA_JOURNAL" envDefault:"true"`
	JournalKeep  int    `env:"MUDRA_JOURNAL_KEEP" envDefault:"10000"`
	Tray         bool   `env:"MUDRA_TRAY" envDefault:"true"`
	OTelEndpoint string `env:"MUDRA_OTEL_ENDPOINT"`
}

// Load parses the environment, then args into fs.
func Load(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.IntVar(&cfg.CameraID, "camera", cfg.CameraID, "camera device id")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "data directory (default ~/.mudra)")
	fs.StringVar(&cfg.PluginDir, "plugin-dir", cfg.PluginDir, "plugin directory (default <data-dir>/plugins)")
	fs.StringVar(&cfg.WebDir, "web-dir", cfg.WebDir, "static files served at /")
	fs.IntVar(&cfg.HandIndex, "hand", cfg.HandIndex, "index of the detected hand to track")
	fs.IntVar(&cfg.MaxHands, "max-hands", cfg.MaxHands, "maximum hands to detect")
	fs.Float64Var(&cfg.DetectionConf, "detection-confidence", cfg.DetectionConf, "minimum hand detection confidence")
	fs.Float64Var(&cfg.TrackingConf, "tracking-confidence", cfg.TrackingConf, "minimum hand tracking confidence")
	fs.Float64Var(&cfg.PinchMin, "pinch-min", cfg.PinchMin, "pinch distance in pixels mapped to minimum volume")
	fs.Float64Var(&cfg.PinchMax, "pinch-max", cfg.PinchMax, "pinch distance in pixels mapped to maximum volume")
	fs.BoolVar(&cfg.Draw, "draw", cfg.Draw, "draw feedback onto preview frames")
	fs.Float64Var(&cfg.MotionThreshold, "motion-threshold", cfg.MotionThreshold, "percent of changed pixels that counts as motion")
	fs.DurationVar(&cfg.MotionHold, "motion-hold", cfg.MotionHold, "how long detection stays active after motion")
	fs.DurationVar(&cfg.PluginTimeout, "plugin-timeout", cfg.PluginTimeout, "plugin execution timeout")
	fs.DurationVar(&cfg.VolumeTimeout, "volume-timeout", cfg.VolumeTimeout, "timeout for a single volume change")
	fs.BoolVar(&cfg.Journal, "journal", cfg.Journal, "record dispatched gestures")
	fs.IntVar(&cfg.JournalKeep, "journal-keep", cfg.JournalKeep, "journal entries kept")
	fs.BoolVar(&cfg.Tray, "tray", cfg.Tray, "show the system tray icon")
	fs.StringVar(&cfg.OTelEndpoint, "otel-endpoint", cfg.OTelEndpoint, "OTLP/HTTP trace endpoint")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.fillDirs(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) fillDirs() error {
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("locate home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, ".mudra")
	}
	if c.PluginDir == "" {
		c.PluginDir = filepath.Join(c.DataDir, "plugins")
	}
	return nil
}

// DBPath returns the SQLite database path inside DataDir.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "mudra.db")
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.PinchMin >= c.PinchMax {
		return fmt.Errorf("%w: pinch min %g must be below max %g", ErrInvalid, c.PinchMin, c.PinchMax)
	}
	if c.PinchMin < 0 {
		return fmt.Errorf("%w: pinch min %g is negative", ErrInvalid, c.PinchMin)
	}
	if c.HandIndex < 0 {
		return fmt.Errorf("%w: hand index %d is negative", ErrInvalid, c.HandIndex)
	}
	if c.MaxHands < 1 {
		return fmt.Errorf("%w: max hands %d must be at least 1", ErrInvalid, c.MaxHands)
	}
	if c.HandIndex >= c.MaxHands {
		return fmt.Errorf("%w: hand index %d is outside max hands %d", ErrInvalid, c.HandIndex, c.MaxHands)
	}
	for name, v := range map[string]float64{
		"detection confidence": c.DetectionConf,
		"tracking confidence":  c.TrackingConf,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s %g is outside [0, 1]", ErrInvalid, name, v)
		}
	}
	if c.PluginTimeout <= 0 {
		return fmt.Errorf("%w: plugin timeout must be positive", ErrInvalid)
	}
	if c.VolumeTimeout <= 0 {
		return fmt.Errorf("%w: volume timeout must be positive", ErrInvalid)
	}
	if c.JournalKeep < 0 {
		return fmt.Errorf("%w: journal keep %d is negative", ErrInvalid, c.JournalKeep)
	}
	return nil
}
