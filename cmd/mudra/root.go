package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/input"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

const version = "dev"

var log = logrus.WithField("component", "main")

// cli carries the configuration shared by every command.
type cli struct {
	v   *viper.Viper
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{v: config.New()}
	var configFile string

	root := &cobra.Command{
		Use:   "mudra",
		Short: "Play games with hand poses in front of a webcam",
		Long: `mudra watches the webcam, recognises hand poses and turns them into
keyboard and mouse input: an open hand steers with WASD, a fist drags the
mouse and the one-shot poses tap their bound key.`,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				c.v.SetConfigFile(configFile)
			}
			cfg, err := config.Load(c.v)
			if err != nil {
				return err
			}
			if err := config.SetupLogging(cfg.Log, os.Stderr); err != nil {
				return err
			}
			c.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runController(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default searches ., $XDG_CONFIG_HOME/mudra and /etc/mudra)")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("db", config.DefaultDBPath(), "database path")
	c.bind(flags.Lookup("log-level"), "log.level")
	c.bind(flags.Lookup("db"), "store.path")

	run := root.Flags()
	run.String("server", "", "listen address for the status API, e.g. 127.0.0.1:8090 (empty disables it)")
	run.Bool("preview", true, "show the camera preview window")
	run.Bool("tray", false, "show the system tray menu")
	run.Int("camera", 0, "camera device index")
	c.bind(run.Lookup("server"), "server.addr")
	c.bind(run.Lookup("preview"), "ui.preview")
	c.bind(run.Lookup("tray"), "ui.tray")
	c.bind(run.Lookup("camera"), "camera.device")

	root.AddCommand(
		newBindCmd(c),
		newUnbindCmd(c),
		newBindingsCmd(c),
		newHistoryCmd(c),
	)
	return root
}

func (c *cli) bind(flag *pflag.Flag, key string) {
	if err := c.v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", key, err))
	}
}

func (c *cli) openStore() (*store.Store, error) {
	st, err := store.New(c.cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

func (c *cli) runController(ctx context.Context) error {
	cfg := c.cfg

	st, err := c.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	saved, err := st.Bindings().Map()
	if err != nil {
		return fmt.Errorf("load bindings: %w", err)
	}
	bindings, skipped := cfg.MergeBindings(saved)
	for _, name := range skipped {
		log.WithField("gesture", name).Warn("ignoring saved binding for a gesture without a key")
	}
	controlCfg, err := cfg.Control(bindings)
	if err != nil {
		return err
	}

	enabled, err := st.Settings().GetBool(store.SettingEnabled, true)
	if err != nil {
		return fmt.Errorf("load enabled setting: %w", err)
	}

	det, err := detector.NewMediaPipeDetector(detector.Config{
		MaxHands:        1,
		MinConfidence:   cfg.Detector.MinConfidence,
		MinTrackingConf: cfg.Detector.MinTrackingConfidence,
		ScriptPath:      cfg.Detector.Script,
	})
	if err != nil {
		return fmt.Errorf("start hand detector: %w", err)
	}
	defer det.Close()

	hub := server.NewHub()
	a := app.New(app.Config{
		Camera: capture.NewCamera(capture.Options{
			Device: cfg.Camera.Device,
			Width:  cfg.Camera.Width,
			Height: cfg.Camera.Height,
			FPS:    cfg.Camera.FPS,
			Mirror: cfg.Camera.Mirror,
		}),
		Detector:        det,
		Sink:            input.NewRobotSink(),
		Control:         controlCfg,
		StabilityFrames: cfg.Gesture.StabilityFrames,
		Store:           st,
		Hub:             hub,
		Enabled:         enabled,
	})
	if err := a.PruneHistory(); err != nil {
		log.WithError(err).Warn("could not prune action history")
	}

	for _, line := range bannerLines(controlCfg) {
		log.Info(line)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if cfg.Server.Addr != "" {
		srv := server.New(server.Config{
			Hub:    hub,
			Store:  st,
			App:    cfg,
			Toggle: a,
			OnBindingsChange: func(b map[gesture.Label]string) {
				if err := a.UpdateBindings(b); err != nil {
					log.WithError(err).Error("rejected binding update")
				}
			},
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
				log.WithError(err).Error("status API stopped")
			}
		}()
	}

	var runErr error
	if cfg.UI.Tray {
		runErr = runWithTray(ctx, cancel, a, hub, cfg.UI.Preview)
	} else {
		hook, closePreview := previewHook(cfg.UI.Preview)
		runErr = a.Run(ctx, hook)
		closePreview()
	}

	cancel()
	wg.Wait()
	return runErr
}

// runWithTray gives the main thread to the tray and runs the frame loop
// beside it. The preview window cannot share the main thread with the tray.
func runWithTray(ctx context.Context, cancel context.CancelFunc, a *app.App, hub *server.Hub, preview bool) error {
	if preview {
		log.Warn("preview window is not available with the tray; use the status API stream instead")
	}

	t := tray.New(a.Enabled())
	t.OnToggle(func(enabled bool) {
		if err := a.SetEnabled(enabled); err != nil {
			log.WithError(err).Error("toggle input")
		}
	})
	t.OnQuit(cancel)

	updates, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	errCh := make(chan error, 1)
	t.OnReady(func() {
		go t.Watch(updates)
		go func() {
			errCh <- a.Run(ctx, nil)
			t.Quit()
		}()
	})
	t.Run()

	cancel()
	return <-errCh
}

func previewHook(enabled bool) (app.FrameHook, func()) {
	if !enabled {
		return nil, func() {}
	}
	p := capture.NewPreview("mudra")
	hook := func(frame *gocv.Mat, _ app.Result) bool {
		return p.Show(frame)
	}
	return hook, func() {
		if err := p.Close(); err != nil {
			log.WithError(err).Debug("close preview")
		}
	}
}

// bannerLines describes the active controls.
func bannerLines(cfg control.Config) []string {
	lines := []string{
		"open_hand: steer with W/A/S/D",
		"fist: hold the left mouse button",
	}

	labels := make([]string, 0, len(cfg.Bindings))
	for label := range cfg.Bindings {
		labels = append(labels, string(label))
	}
	sort.Strings(labels)
	for _, name := range labels {
		lines = append(lines, fmt.Sprintf("%s: tap %s", name, strings.ToUpper(string(cfg.Bindings[gesture.Label(name)]))))
	}
	return append(lines, "press q in the preview or Ctrl+C to quit")
}
