package ui

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glsandbox/internal/domain"
	"glsandbox/internal/eventbus"
	"glsandbox/internal/scene"
)

func newTestController(t *testing.T, start domain.DrawMode) (*eventbus.Bus, *scene.Camera, *Controller) {
	t.Helper()
	bus := eventbus.New()
	cam := &scene.Camera{}
	c := NewController(bus, cam, start, "shots", zerolog.Nop())
	t.Cleanup(c.Close)
	return bus, cam, c
}

func TestControllerCyclesModes(t *testing.T) {
	bus, _, c := newTestController(t, domain.DrawTriangle)

	var changes []domain.DrawModeChangedEvent
	eventbus.SubscribeFunc(bus, func(e *domain.DrawModeChangedEvent) {
		changes = append(changes, *e)
	})

	for _, k := range []string{"n", " ", "space", "n"} {
		eventbus.Publish(bus, domain.KeyPressedEvent{Key: k})
	}

	assert.Equal(t, domain.DrawTriangle, c.Mode(), "four steps wrap around")
	require.Len(t, changes, 4)
	assert.Equal(t, domain.DrawModeChangedEvent{From: domain.DrawCompute, To: domain.DrawTriangle}, changes[3])
}

func TestControllerSelectsModeByNumber(t *testing.T) {
	bus, _, c := newTestController(t, domain.DrawTriangle)

	eventbus.Publish(bus, domain.KeyPressedEvent{Key: "3"})
	assert.Equal(t, domain.DrawInstanced, c.Mode())

	var changed int
	eventbus.SubscribeFunc(bus, func(*domain.DrawModeChangedEvent) { changed++ })
	eventbus.Publish(bus, domain.KeyPressedEvent{Key: "3"})
	assert.Zero(t, changed, "selecting the active mode is a no-op")
}

func TestControllerMarksHandledKeys(t *testing.T) {
	bus, _, _ := newTestController(t, domain.DrawTriangle)

	var seen []domain.KeyPressedEvent
	eventbus.SubscribeFunc(bus, func(e *domain.KeyPressedEvent) { seen = append(seen, *e) })

	eventbus.Publish(bus, domain.KeyPressedEvent{Key: "n"})
	eventbus.Publish(bus, domain.KeyPressedEvent{Key: "x"})

	require.Len(t, seen, 2)
	assert.True(t, seen[0].Handled)
	assert.False(t, seen[1].Handled)
}

func TestControllerIgnoresHandledKeys(t *testing.T) {
	bus := eventbus.New()
	eventbus.SubscribeFunc(bus, func(e *domain.KeyPressedEvent) { e.Handled = true })
	c := NewController(bus, nil, domain.DrawCube, "", zerolog.Nop())
	defer c.Close()

	eventbus.Publish(bus, domain.KeyPressedEvent{Key: "n"})
	assert.Equal(t, domain.DrawCube, c.Mode())
}

func TestControllerPublishesRequests(t *testing.T) {
	bus, _, _ := newTestController(t, domain.DrawTriangle)

	var snaps []domain.SnapshotRequestedEvent
	var quits []domain.QuitRequestedEvent
	eventbus.SubscribeFunc(bus, func(e *domain.SnapshotRequestedEvent) { snaps = append(snaps, *e) })
	eventbus.SubscribeFunc(bus, func(e *domain.QuitRequestedEvent) { quits = append(quits, *e) })

	eventbus.Publish(bus, domain.KeyPressedEvent{Key: "p"})
	eventbus.Publish(bus, domain.KeyPressedEvent{Key: "esc"})

	require.Len(t, snaps, 1)
	assert.Equal(t, "shots", snaps[0].Dir)
	require.Len(t, quits, 1)
	assert.Equal(t, "key esc", quits[0].Reason)
}

func TestControllerOrbitsCamera(t *testing.T) {
	bus, cam, _ := newTestController(t, domain.DrawCube)

	eventbus.Publish(bus, domain.KeyPressedEvent{Key: "right"})
	assert.InDelta(t, orbitStep, cam.Yaw, 1e-9)

	eventbus.Publish(bus, domain.KeyPressedEvent{Key: "up"})
	assert.InDelta(t, orbitStep, cam.Pitch, 1e-9)

	eventbus.Publish(bus, domain.MouseMovedEvent{X: 5, Y: 5, DX: 5, DY: 0})
	assert.InDelta(t, orbitStep+5*mouseScale, cam.Yaw, 1e-9)
}

func TestControllerTracksSize(t *testing.T) {
	bus, _, c := newTestController(t, domain.DrawCube)
	eventbus.Publish(bus, domain.WindowResizedEvent{Width: 120, Height: 40})

	w, h := c.Size()
	assert.Equal(t, 120, w)
	assert.Equal(t, 40, h)
}

func TestControllerCloseUnsubscribes(t *testing.T) {
	bus := eventbus.New()
	c := NewController(bus, nil, domain.DrawTriangle, "", zerolog.Nop())
	assert.Equal(t, 1, bus.HandlerCount(eventbus.TypeOf[domain.KeyPressedEvent]()))

	c.Close()
	assert.Zero(t, bus.HandlerCount(eventbus.TypeOf[domain.KeyPressedEvent]()))
	assert.Empty(t, bus.Types())
}
