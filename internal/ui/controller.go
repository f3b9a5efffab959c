package ui

import (
	"github.com/rs/zerolog"

	"glsandbox/internal/domain"
	"glsandbox/internal/eventbus"
	"glsandbox/internal/scene"
)

const (
	orbitStep  = 0.1  // radians per arrow key
	mouseScale = 0.02 // radians per cell of mouse motion
)

// Controller reacts to input events on the bus. It owns the active draw
// mode and steers the camera; it is shared by the terminal UI and the
// headless runner.
type Controller struct {
	bus         *eventbus.Bus
	camera      *scene.Camera
	logger      zerolog.Logger
	mode        domain.DrawMode
	snapshotDir string
	width       int
	height      int
	subs        []eventbus.Subscription
}

// NewController subscribes a controller to input events
func NewController(bus *eventbus.Bus, camera *scene.Camera, start domain.DrawMode, snapshotDir string, logger zerolog.Logger) *Controller {
	if !start.Valid() {
		start = domain.DrawTriangle
	}
	c := &Controller{
		bus:         bus,
		camera:      camera,
		logger:      logger,
		mode:        start,
		snapshotDir: snapshotDir,
	}
	c.subs = []eventbus.Subscription{
		eventbus.Subscribe(bus, c, (*Controller).onKey),
		eventbus.Subscribe(bus, c, (*Controller).onMouse),
		eventbus.Subscribe(bus, c, (*Controller).onResize),
	}
	return c
}

// Mode returns the active draw mode
func (c *Controller) Mode() domain.DrawMode {
	return c.mode
}

// Size returns the last size seen in a WindowResizedEvent
func (c *Controller) Size() (width, height int) {
	return c.width, c.height
}

// SetMode switches the active draw mode and announces the change
func (c *Controller) SetMode(mode domain.DrawMode) {
	if !mode.Valid() || mode == c.mode {
		return
	}
	from := c.mode
	c.mode = mode
	c.logger.Info().Str("from", from.String()).Str("to", mode.String()).Msg("draw mode changed")
	eventbus.Publish(c.bus, domain.DrawModeChangedEvent{From: from, To: mode})
}

// Close removes the controller's subscriptions
func (c *Controller) Close() {
	for _, s := range c.subs {
		s.Unsubscribe()
	}
	c.subs = nil
}

func (c *Controller) onKey(e *domain.KeyPressedEvent) {
	if e.Handled {
		return
	}

	switch e.Key {
	case " ", "space", "n":
		c.SetMode(c.mode.Next())
	case "1", "2", "3", "4":
		c.SetMode(domain.DrawMode(e.Key[0] - '1'))
	case "left":
		c.orbit(-orbitStep, 0)
	case "right":
		c.orbit(orbitStep, 0)
	case "up":
		c.orbit(0, orbitStep)
	case "down":
		c.orbit(0, -orbitStep)
	case "p":
		eventbus.Publish(c.bus, domain.SnapshotRequestedEvent{Dir: c.snapshotDir})
	case "q", "esc", "ctrl+c":
		eventbus.Publish(c.bus, domain.QuitRequestedEvent{Reason: "key " + e.Key})
	default:
		return
	}
	e.Handled = true
}

func (c *Controller) onMouse(e *domain.MouseMovedEvent) {
	if e.DX == 0 && e.DY == 0 {
		return
	}
	c.orbit(float64(e.DX)*mouseScale, float64(-e.DY)*mouseScale)
}

func (c *Controller) onResize(e *domain.WindowResizedEvent) {
	c.width, c.height = e.Width, e.Height
	c.logger.Debug().Int("width", e.Width).Int("height", e.Height).Msg("window resized")
}

func (c *Controller) orbit(dYaw, dPitch float64) {
	if c.camera != nil {
		c.camera.Orbit(dYaw, dPitch)
	}
}
