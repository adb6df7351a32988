package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
)

// Result describes what the loop did with one frame.
type Result struct {
	HandDetected bool
	Raw          gesture.Label
	Stable       gesture.Label
	Actions      []control.Action
	State        control.State
}

// FrameHook is called with every processed frame, before the frame is
// released. Returning true stops the loop.
type FrameHook func(frame *gocv.Mat, res Result) (quit bool)

// Run opens the camera and processes frames until ctx is cancelled, the hook
// asks to quit, capture fails or the input sink fails. The controller is
// drained on every exit path.
func (a *App) Run(ctx context.Context, hook FrameHook) (err error) {
	if err := a.config.Camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer a.config.Camera.Close()

	defer func() {
		if cerr := a.controller.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		a.publish(Result{Raw: gesture.None, Stable: gesture.None, State: a.controller.State()})
		log.Info("frame loop stopped")
	}()

	log.Info("frame loop started")
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		quit, err := a.Step(hook)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// Step reads and processes a single frame.
func (a *App) Step(hook FrameHook) (quit bool, err error) {
	frame, err := a.config.Camera.ReadFrame()
	if err != nil {
		return false, fmt.Errorf("read frame: %w", err)
	}
	defer frame.Close()

	var (
		hands     []detector.HandLandmarks
		malformed bool
	)
	if a.Enabled() && a.config.Detector != nil {
		hands, err = a.config.Detector.Detect(frame)
		switch {
		case errors.Is(err, detector.ErrInvalidLandmarks):
			log.WithError(err).Debug("malformed landmarks")
			hands, malformed = nil, true
		case err != nil:
			log.WithError(err).Warn("hand detection failed")
			hands = nil
		}
	}
	a.publishFrame(frame)

	res, err := a.process(hands, malformed)
	if err != nil {
		return false, err
	}

	if hook != nil {
		return hook(frame, res), nil
	}
	return false, nil
}

// Process runs one frame's worth of detected hands through the classifier,
// stabilizer and controller. Only the first hand is used.
func (a *App) Process(hands []detector.HandLandmarks) (Result, error) {
	return a.process(hands, false)
}

// process handles one frame. malformed marks a hand the detector saw but
// could not describe; it counts as an unknown gesture.
func (a *App) process(hands []detector.HandLandmarks, malformed bool) (Result, error) {
	a.frames++

	if pending := a.takePendingBindings(); pending != nil {
		a.controller.SetBindings(pending)
	}

	res := Result{Raw: gesture.None}
	var points []detector.Point3D

	if a.Enabled() {
		if hand, ok := detector.FirstHand(hands); ok {
			res.HandDetected = true
			points = hand.Points[:]

			label, err := a.classifier.Classify(points)
			if err != nil {
				log.WithError(err).Debug("unusable landmarks")
				label = gesture.Unknown
			}
			res.Raw = label
		} else if malformed {
			res.HandDetected = true
			res.Raw = gesture.Unknown
		}
	}

	res.Stable = a.stabilizer.Update(res.Raw)

	actions, err := a.controller.Handle(res.Stable, points)
	res.Actions = actions
	res.State = a.controller.State()

	a.record(actions)
	a.publish(res)

	if err != nil {
		return res, fmt.Errorf("apply %s: %w", res.Stable, err)
	}
	return res, nil
}

func (a *App) record(actions []control.Action) {
	if len(actions) == 0 {
		return
	}
	for _, act := range actions {
		log.WithFields(logrus.Fields{
			"gesture": act.Gesture,
			"action":  act.String(),
		}).Debug("input")
	}

	if a.config.Store == nil {
		return
	}
	records := make([]*store.ActionRecord, len(actions))
	for i, act := range actions {
		records[i] = &store.ActionRecord{
			Gesture:   string(act.Gesture),
			Kind:      string(act.Kind),
			Key:       string(act.Key),
			CreatedAt: act.At,
		}
	}
	if err := a.config.Store.Actions().CreateBatch(records); err != nil {
		log.WithError(err).Warn("failed to record actions")
	}
}

func (a *App) publish(res Result) {
	if a.config.Hub == nil {
		return
	}
	a.config.Hub.Publish(server.Snapshot{
		Enabled:      a.Enabled(),
		HandDetected: res.HandDetected,
		RawGesture:   res.Raw,
		Gesture:      res.Stable,
		Mode:         res.State.Mode,
		HeldKeys:     res.State.HeldKeys,
		Dragging:     res.State.Dragging,
		LastAction:   res.State.LastAction,
		Actions:      res.Actions,
		Frame:        a.frames,
		UpdatedAt:    time.Now(),
	})
}

// publishFrame JPEG-encodes the frame for stream viewers, if there are any.
func (a *App) publishFrame(frame *gocv.Mat) {
	if a.config.Hub == nil || !a.config.Hub.HasViewers() {
		return
	}
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		log.WithError(err).Debug("encode frame")
		return
	}
	defer buf.Close()
	a.config.Hub.SetFrame(append([]byte(nil), buf.GetBytes()...))
}
