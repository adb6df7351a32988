// Package config loads mudra settings from defaults, an optional config.yaml,
// MUDRA_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/input"
)

// ErrInvalid is returned when a setting is out of range.
var ErrInvalid = errors.New("invalid config")

// AppName is used for the config and data directories.
const AppName = "mudra"

// Config is the fully resolved application configuration.
type Config struct {
	Movement MovementConfig
	Gesture  GestureConfig
	Bindings map[gesture.Label]string
	Camera   CameraConfig
	Detector DetectorConfig
	Store    StoreConfig
	Server   ServerConfig
	UI       UIConfig
	Log      LogConfig
}

type MovementConfig struct {
	Threshold  float64
	ReferenceX float64
	ReferenceY float64
}

type GestureConfig struct {
	Cooldown        time.Duration
	StabilityFrames int
}

type CameraConfig struct {
	Device int
	Width  int
	Height int
	FPS    float64
	Mirror bool
}

type DetectorConfig struct {
	MinConfidence         float64
	MinTrackingConfidence float64
	// Script is the path to mediapipe_service.py. Empty searches the usual places.
	Script string
}

type StoreConfig struct {
	Path string
}

type ServerConfig struct {
	// Addr is the listen address for the status API. Empty disables it.
	Addr string
}

type UIConfig struct {
	Preview bool
	Tray    bool
}

type LogConfig struct {
	Level  string
	Format string
}

// DefaultDBPath returns the default database location under the XDG data home.
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, AppName, AppName+".db")
}

// New returns a viper instance with defaults, search paths and environment
// bindings set up. Flags may be bound to it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("movement.threshold", control.DefaultMoveThreshold)
	v.SetDefault("movement.reference_x", control.DefaultReference)
	v.SetDefault("movement.reference_y", control.DefaultReference)

	v.SetDefault("gesture.cooldown_seconds", control.DefaultCooldown.Seconds())
	v.SetDefault("gesture.stability_frames", gesture.DefaultStabilityFrames)

	for label, key := range control.DefaultBindings() {
		v.SetDefault("bindings."+string(label), string(key))
	}

	v.SetDefault("camera.device", 0)
	v.SetDefault("camera.width", 640)
	v.SetDefault("camera.height", 480)
	v.SetDefault("camera.fps", 30)
	v.SetDefault("camera.mirror", true)

	v.SetDefault("detector.min_confidence", 0.7)
	v.SetDefault("detector.min_tracking_confidence", 0.7)
	v.SetDefault("detector.script", "")

	v.SetDefault("store.path", DefaultDBPath())
	v.SetDefault("server.addr", "")
	v.SetDefault("ui.preview", true)
	v.SetDefault("ui.tray", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix("MUDRA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, path := range []string{".", filepath.Join(xdg.ConfigHome, AppName), "/etc/" + AppName} {
		v.AddConfigPath(os.ExpandEnv(path))
	}

	return v
}

// Load reads the config file if one exists and returns the validated
// configuration. A missing config file is not an error unless it was set
// explicitly with SetConfigFile.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Movement: MovementConfig{
			Threshold:  v.GetFloat64("movement.threshold"),
			ReferenceX: v.GetFloat64("movement.reference_x"),
			ReferenceY: v.GetFloat64("movement.reference_y"),
		},
		Gesture: GestureConfig{
			Cooldown:        time.Duration(v.GetFloat64("gesture.cooldown_seconds") * float64(time.Second)),
			StabilityFrames: v.GetInt("gesture.stability_frames"),
		},
		Bindings: make(map[gesture.Label]string),
		Camera: CameraConfig{
			Device: v.GetInt("camera.device"),
			Width:  v.GetInt("camera.width"),
			Height: v.GetInt("camera.height"),
			FPS:    v.GetFloat64("camera.fps"),
			Mirror: v.GetBool("camera.mirror"),
		},
		Detector: DetectorConfig{
			MinConfidence:         v.GetFloat64("detector.min_confidence"),
			MinTrackingConfidence: v.GetFloat64("detector.min_tracking_confidence"),
			Script:                v.GetString("detector.script"),
		},
		Store:  StoreConfig{Path: v.GetString("store.path")},
		Server: ServerConfig{Addr: v.GetString("server.addr")},
		UI: UIConfig{
			Preview: v.GetBool("ui.preview"),
			Tray:    v.GetBool("ui.tray"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}
	for _, label := range gesture.ActionLabels() {
		cfg.Bindings[label] = v.GetString("bindings." + string(label))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(key string, format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s: %s", ErrInvalid, key, fmt.Sprintf(format, args...)))
	}

	if c.Movement.Threshold <= 0 || c.Movement.Threshold >= 0.5 {
		invalid("movement.threshold", "%v not in (0, 0.5)", c.Movement.Threshold)
	}
	if c.Movement.ReferenceX < 0 || c.Movement.ReferenceX > 1 {
		invalid("movement.reference_x", "%v not in [0, 1]", c.Movement.ReferenceX)
	}
	if c.Movement.ReferenceY < 0 || c.Movement.ReferenceY > 1 {
		invalid("movement.reference_y", "%v not in [0, 1]", c.Movement.ReferenceY)
	}
	if c.Gesture.Cooldown < 0 {
		invalid("gesture.cooldown_seconds", "must not be negative")
	}
	if c.Gesture.StabilityFrames < 1 {
		invalid("gesture.stability_frames", "%d is less than 1", c.Gesture.StabilityFrames)
	}
	for _, label := range gesture.ActionLabels() {
		if _, err := input.ParseKey(c.Bindings[label]); err != nil {
			invalid("bindings."+string(label), "%v", err)
		}
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		invalid("camera", "resolution %dx%d", c.Camera.Width, c.Camera.Height)
	}
	if c.Camera.FPS <= 0 {
		invalid("camera.fps", "%v must be positive", c.Camera.FPS)
	}
	if c.Detector.MinConfidence < 0 || c.Detector.MinConfidence > 1 {
		invalid("detector.min_confidence", "%v not in [0, 1]", c.Detector.MinConfidence)
	}
	if c.Detector.MinTrackingConfidence < 0 || c.Detector.MinTrackingConfidence > 1 {
		invalid("detector.min_tracking_confidence", "%v not in [0, 1]", c.Detector.MinTrackingConfidence)
	}
	if c.Store.Path == "" {
		invalid("store.path", "must not be empty")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		invalid("log.level", "%v", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		invalid("log.format", "%q is not text or json", c.Log.Format)
	}

	return errors.Join(errs...)
}

// MergeBindings overlays saved bindings, keyed by gesture name, on the
// configured ones. Saved entries for gestures that carry no key are skipped
// and reported.
func (c *Config) MergeBindings(saved map[string]string) (map[gesture.Label]string, []string) {
	merged := make(map[gesture.Label]string, len(c.Bindings))
	for label, key := range c.Bindings {
		merged[label] = key
	}

	var skipped []string
	for name, key := range saved {
		label, err := gesture.ParseLabel(name)
		if err != nil || !label.OneShot() {
			skipped = append(skipped, name)
			continue
		}
		merged[label] = key
	}
	return merged, skipped
}

// Control returns the controller settings. Bindings passed in override the
// configured ones; the store uses this to apply saved bindings.
func (c *Config) Control(overrides map[gesture.Label]string) (control.Config, error) {
	cc := control.Config{
		MoveThreshold: c.Movement.Threshold,
		ReferenceX:    c.Movement.ReferenceX,
		ReferenceY:    c.Movement.ReferenceY,
		Cooldown:      c.Gesture.Cooldown,
		Bindings:      make(map[gesture.Label]control.Key),
	}

	for label, name := range c.Bindings {
		if o, ok := overrides[label]; ok {
			name = o
		}
		key, err := input.ParseKey(name)
		if err != nil {
			return control.Config{}, fmt.Errorf("%w: binding for %s: %v", ErrInvalid, label, err)
		}
		cc.Bindings[label] = key
	}
	return cc, nil
}
