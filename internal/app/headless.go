package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"glsandbox/internal/asynclog"
	"glsandbox/internal/config"
	"glsandbox/internal/domain"
	"glsandbox/internal/eventbus"
	"glsandbox/internal/metrics"
	"glsandbox/internal/render"
	"glsandbox/internal/scene"
	"glsandbox/internal/ui"
)

// headless renders every demo for a fixed number of frames without a
// terminal. Input is simulated by publishing key events, so the same bus
// handlers drive mode switching and snapshots as in the UI.
type headless struct {
	bus       *eventbus.Bus
	cfg       *config.Config
	scene     *scene.Scene
	logger    zerolog.Logger
	pipeline  *asynclog.Pipeline
	frames    int
	snapshots bool
	metrics   *metrics.Frames

	last     scene.Frame
	quitting bool
}

func (h *headless) run(ctx context.Context) error {
	ctrl := ui.NewController(h.bus, &h.scene.Camera, h.cfg.StartMode(), h.cfg.Render.SnapshotDir, h.logger)
	defer ctrl.Close()
	tracker := ui.NewFrameTracker(h.bus, h.metrics)
	defer tracker.Close()

	subs := []eventbus.Subscription{
		eventbus.Subscribe(h.bus, h, (*headless).onSnapshot),
		eventbus.Subscribe(h.bus, h, (*headless).onQuit),
	}
	defer func() {
		for _, s := range subs {
			s.Unsubscribe()
		}
	}()

	aspect := float64(h.cfg.Window.Width) / float64(h.cfg.Window.Height)
	step := 1.0 / float64(h.cfg.Window.TargetFPS)
	eventbus.Publish(h.bus, domain.WindowResizedEvent{Width: h.cfg.Window.Width, Height: h.cfg.Window.Height})

	start := time.Now()
	for range domain.AllDrawModes() {
		mode := ctrl.Mode()
		for i := 0; i < h.frames; i++ {
			if err := ctx.Err(); err != nil {
				h.logger.Warn().Err(err).Msg("headless run interrupted")
				return nil
			}
			if h.quitting {
				return nil
			}

			frame, err := h.scene.Build(ctx, mode, float64(i)*step, aspect)
			if err != nil {
				return err
			}
			h.last = frame
			eventbus.Publish(h.bus, domain.FrameRenderedEvent{Stats: frame.Stats, At: time.Now()})
		}

		last := tracker.Last()
		h.pipeline.Infof("%s: %d frames, %d instances, %d segments, compute %s",
			mode, h.frames, last.Instances, last.Segments, last.ComputeDuration)

		if h.snapshots {
			eventbus.Publish(h.bus, domain.KeyPressedEvent{Key: "p"})
		}
		eventbus.Publish(h.bus, domain.KeyPressedEvent{Key: "n"})
	}

	h.logger.Info().
		Uint64("frames", tracker.Total()).
		Dur("elapsed", time.Since(start)).
		Msg("headless run finished")
	return nil
}

func (h *headless) onSnapshot(e *domain.SnapshotRequestedEvent) {
	path, err := render.SaveSnapshot(e.Dir, h.last, h.cfg.Render.SnapshotWidth, h.cfg.Render.SnapshotHeight)
	eventbus.Publish(h.bus, domain.SnapshotSavedEvent{Path: path, Mode: h.last.Stats.Mode, Err: err})
}

func (h *headless) onQuit(*domain.QuitRequestedEvent) {
	h.quitting = true
}
