// Package app runs the frame loop: capture, hand detection, classification,
// stabilization and input control.
package app

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/input"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
)

var log = logrus.WithField("component", "app")

// DefaultHistoryLimit is how many action records are kept across runs.
const DefaultHistoryLimit = 10000

// Config holds the collaborators of the frame loop. Store and Hub are optional.
type Config struct {
	Camera          capture.Camera
	Detector        detector.Detector
	Sink            control.InputSink
	Control         control.Config
	StabilityFrames int
	Store           *store.Store
	Hub             *server.Hub
	Enabled         bool
	HistoryLimit    int
}

// App is the main application that turns camera frames into input.
type App struct {
	config     Config
	classifier *gesture.Classifier
	stabilizer *gesture.Stabilizer
	controller *control.Controller
	frames     uint64

	mu       sync.RWMutex
	enabled  bool
	bindings map[gesture.Label]control.Key
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.HistoryLimit <= 0 {
		config.HistoryLimit = DefaultHistoryLimit
	}
	return &App{
		config:     config,
		classifier: gesture.NewClassifier(),
		stabilizer: gesture.NewStabilizer(config.StabilityFrames),
		controller: control.New(config.Control, config.Sink),
		enabled:    config.Enabled,
	}
}

// Controller returns the input controller. Only the frame loop may call its
// mutating methods.
func (a *App) Controller() *control.Controller {
	return a.controller
}

// SetEnabled turns input on or off and persists the choice. While disabled
// every frame counts as no hand, so all keys are released.
func (a *App) SetEnabled(enabled bool) error {
	a.mu.Lock()
	changed := a.enabled != enabled
	a.enabled = enabled
	a.mu.Unlock()

	if changed {
		log.WithField("enabled", enabled).Info("input toggled")
	}
	if a.config.Store != nil {
		if err := a.config.Store.Settings().SetBool(store.SettingEnabled, enabled); err != nil {
			return fmt.Errorf("save enabled setting: %w", err)
		}
	}
	return nil
}

// Enabled reports whether input is on.
func (a *App) Enabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// UpdateBindings validates a new key map and hands it to the frame loop,
// which applies it before the next frame.
func (a *App) UpdateBindings(bindings map[gesture.Label]string) error {
	keys := make(map[gesture.Label]control.Key, len(bindings))
	for label, name := range bindings {
		key, err := input.ParseKey(name)
		if err != nil {
			return fmt.Errorf("binding for %s: %w", label, err)
		}
		keys[label] = key
	}

	a.mu.Lock()
	a.bindings = keys
	a.mu.Unlock()
	return nil
}

func (a *App) takePendingBindings() map[gesture.Label]control.Key {
	a.mu.Lock()
	defer a.mu.Unlock()
	pending := a.bindings
	a.bindings = nil
	return pending
}

// PruneHistory trims the stored action history to the configured limit.
func (a *App) PruneHistory() error {
	if a.config.Store == nil {
		return nil
	}
	n, err := a.config.Store.Actions().Prune(a.config.HistoryLimit)
	if err != nil {
		return fmt.Errorf("prune history: %w", err)
	}
	if n > 0 {
		log.WithField("deleted", n).Debug("pruned action history")
	}
	return nil
}
