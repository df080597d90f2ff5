package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/ini.v1"

	"github.com/touchrec/touchrec/gesture"
	"github.com/touchrec/touchrec/types"
	"github.com/touchrec/touchrec/utils"
)

const fileName = "touchrec.ini"

type PathsConfig struct {
	Recordings string `ini:"recordings"`
}

type CalibrationConfig struct {
	TouchMaxX int `ini:"touch_max_x"`
	TouchMaxY int `ini:"touch_max_y"`
	OffsetX   int `ini:"offset_x"`
	OffsetY   int `ini:"offset_y"`
}

type RecorderConfig struct {
	MinMovement     float64       `ini:"min_movement"`
	TapDistance     float64       `ini:"tap_distance"`
	MaxPoints       int           `ini:"max_points"`
	IdleThresholdMs int           `ini:"idle_threshold_ms"`
	FlushEvery      int           `ini:"flush_every"`
	Countdown       time.Duration `ini:"countdown"`
	UseSudo         bool          `ini:"use_sudo"`
}

type PlayerConfig struct {
	Speed     float64 `ini:"speed"`
	RandomMin float64 `ini:"random_min"`
	RandomMax float64 `ini:"random_max"`
	CacheSize int     `ini:"cache_size"`
	Shell     string  `ini:"shell"`
}

type ServerConfig struct {
	Listen string `ini:"listen"`
}

type LogConfig struct {
	Level string `ini:"level"`
	File  string `ini:"file"`
}

// Config is the on-disk INI configuration.
type Config struct {
	Paths       PathsConfig
	Calibration CalibrationConfig
	Recorder    RecorderConfig
	Player      PlayerConfig
	Server      ServerConfig
	Log         LogConfig

	path string
}

func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Paths: PathsConfig{
			Recordings: filepath.Join(home, "recordings"),
		},
		Calibration: CalibrationConfig{
			TouchMaxX: 16382,
			TouchMaxY: 9598,
		},
		Recorder: RecorderConfig{
			MinMovement:     2,
			TapDistance:     20,
			MaxPoints:       500,
			IdleThresholdMs: 10,
			FlushEvery:      3,
			Countdown:       3 * time.Second,
			UseSudo:         true,
		},
		Player: PlayerConfig{
			Speed:     1.0,
			RandomMin: 0.5,
			RandomMax: 2.0,
			CacheSize: 16,
			Shell:     "bash",
		},
		Server: ServerConfig{
			Listen: "localhost:12100",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/touchrec/touchrec.ini.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config dir: %w", err)
	}
	return filepath.Join(dir, "touchrec", fileName), nil
}

// Load reads path over the defaults. An empty path means DefaultPath; a
// missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	cfg.path = path

	file, err := ini.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			utils.Verbose("no config at %s, using defaults", path)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	for name, target := range cfg.sections() {
		if !file.HasSection(name) {
			continue
		}
		if err := file.Section(name).MapTo(target); err != nil {
			return nil, fmt.Errorf("invalid [%s] section in %s: %w", name, path, err)
		}
	}

	cfg.Paths.Recordings = utils.ExpandHome(cfg.Paths.Recordings)
	cfg.Log.File = utils.ExpandHome(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	utils.Verbose("loaded config from %s", path)
	return cfg, nil
}

func (c *Config) sections() map[string]interface{} {
	return map[string]interface{}{
		"paths":       &c.Paths,
		"calibration": &c.Calibration,
		"recorder":    &c.Recorder,
		"player":      &c.Player,
		"server":      &c.Server,
		"log":         &c.Log,
	}
}

func (c *Config) Path() string {
	return c.path
}

func (c *Config) Validate() error {
	if c.Calibration.TouchMaxX <= 0 || c.Calibration.TouchMaxY <= 0 {
		return fmt.Errorf("touch range must be positive, got %dx%d", c.Calibration.TouchMaxX, c.Calibration.TouchMaxY)
	}
	if c.Recorder.MaxPoints < 1 {
		return fmt.Errorf("max_points must be at least 1")
	}
	if c.Player.Speed <= 0 {
		return fmt.Errorf("player speed must be positive")
	}
	if c.Player.RandomMin <= 0 || c.Player.RandomMin > c.Player.RandomMax {
		return fmt.Errorf("random speed range %v-%v is invalid", c.Player.RandomMin, c.Player.RandomMax)
	}
	return nil
}

// Save writes the whole configuration back to its path.
func (c *Config) Save() error {
	if c.path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		c.path = p
	}

	file := ini.Empty()
	for name, source := range c.sections() {
		if err := file.Section(name).ReflectFrom(source); err != nil {
			return fmt.Errorf("failed to encode [%s]: %w", name, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := file.SaveTo(c.path); err != nil {
		return fmt.Errorf("failed to save config %s: %w", c.path, err)
	}

	utils.Verbose("saved config to %s", c.path)
	return nil
}

// SetPath changes where Save writes.
func (c *Config) SetPath(path string) {
	c.path = path
}

// TouchCalibration combines the stored touch range with a screen size.
func (c *Config) TouchCalibration(width, height int) types.Calibration {
	return types.Calibration{
		TouchMaxX:    c.Calibration.TouchMaxX,
		TouchMaxY:    c.Calibration.TouchMaxY,
		OffsetX:      c.Calibration.OffsetX,
		OffsetY:      c.Calibration.OffsetY,
		ScreenWidth:  width,
		ScreenHeight: height,
	}
}

// SetCalibration stores a new touch range.
func (c *Config) SetCalibration(cal types.Calibration) {
	c.Calibration = CalibrationConfig{
		TouchMaxX: cal.TouchMaxX,
		TouchMaxY: cal.TouchMaxY,
		OffsetX:   cal.OffsetX,
		OffsetY:   cal.OffsetY,
	}
}

// GestureOptions maps the recorder section onto reconstruction options.
func (c *Config) GestureOptions() gesture.Options {
	opts := gesture.DefaultOptions()
	opts.MinMovement = c.Recorder.MinMovement
	opts.TapDistance = c.Recorder.TapDistance
	opts.MaxPoints = c.Recorder.MaxPoints
	opts.IdleThresholdMs = c.Recorder.IdleThresholdMs
	return opts
}
