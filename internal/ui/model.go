package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"glsandbox/internal/config"
	"glsandbox/internal/domain"
	"glsandbox/internal/eventbus"
	"glsandbox/internal/metrics"
	"glsandbox/internal/render"
	"glsandbox/internal/scene"
)

// E2EEnv makes the view print ReadyMarker so a test harness knows the UI is up
const (
	E2EEnv      = "SANDBOX_E2E_TEST"
	ReadyMarker = "__READY__"
)

const (
	headerLines = 2
	footerLines = 2
	maxFPS      = 60
)

// Model represents the UI state
type Model struct {
	ctx    context.Context
	bus    *eventbus.Bus
	config *config.Config
	logger zerolog.Logger

	scene      *scene.Scene
	controller *Controller
	frames     *FrameTracker
	canvas     *render.Canvas
	lastFrame  scene.Frame

	width    int
	height   int
	start    time.Time
	interval time.Duration
	styles   *Styles
	keys     keyMap
	help     help.Model

	status      string
	statusStyle lipgloss.Style
	mouseX      int
	mouseY      int
	hasMouse    bool
	e2e         bool
	quitting    bool

	// commands queued by bus handlers during the current Update
	pending []tea.Cmd
	subs    []eventbus.Subscription

	// Program reference for terminal management
	pager *PagerOps
}

// NewModel creates a new UI model. frameMetrics may be nil.
func NewModel(ctx context.Context, bus *eventbus.Bus, cfg *config.Config, sc *scene.Scene, logger zerolog.Logger, frameMetrics *metrics.Frames) *Model {
	fps := cfg.Window.TargetFPS
	if fps <= 0 || fps > maxFPS {
		fps = maxFPS
	}

	styles := NewStyles()
	m := &Model{
		ctx:         ctx,
		bus:         bus,
		config:      cfg,
		logger:      logger,
		scene:       sc,
		controller:  NewController(bus, &sc.Camera, cfg.StartMode(), cfg.Render.SnapshotDir, logger),
		frames:      NewFrameTracker(bus, frameMetrics),
		canvas:      render.NewCanvas(80, 20),
		width:       80,
		height:      20 + headerLines + footerLines,
		interval:    time.Second / time.Duration(fps),
		styles:      styles,
		keys:        newKeyMap(),
		help:        help.New(),
		statusStyle: styles.Status,
		e2e:         os.Getenv(E2EEnv) == "1",
	}

	// registered after the controller so it sees keys the controller left unhandled
	m.subs = []eventbus.Subscription{
		eventbus.Subscribe(bus, m, (*Model).onKey),
		eventbus.Subscribe(bus, m, (*Model).onModeChanged),
		eventbus.Subscribe(bus, m, (*Model).onSnapshotRequested),
		eventbus.Subscribe(bus, m, (*Model).onSnapshotSaved),
		eventbus.Subscribe(bus, m, (*Model).onQuit),
	}
	m.setStatus("demo: "+m.controller.Mode().Title(), styles.Status)
	return m
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.pager = NewPagerOps(p)
}

// Mode returns the active draw mode
func (m *Model) Mode() domain.DrawMode {
	return m.controller.Mode()
}

// Frames exposes frame statistics
func (m *Model) Frames() *FrameTracker {
	return m.frames
}

// Close removes every bus subscription the model holds
func (m *Model) Close() {
	for _, s := range m.subs {
		s.Unsubscribe()
	}
	m.subs = nil
	m.controller.Close()
	m.frames.Close()
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	m.start = time.Now()
	return m.tick()
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		eventbus.Publish(m.bus, domain.WindowResizedEvent{Width: msg.Width, Height: msg.Height})

	case tea.KeyMsg:
		eventbus.Publish(m.bus, domain.KeyPressedEvent{Key: msg.String()})

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionMotion {
			ev := domain.MouseMovedEvent{X: msg.X, Y: msg.Y}
			if m.hasMouse {
				ev.DX, ev.DY = msg.X-m.mouseX, msg.Y-m.mouseY
			}
			m.mouseX, m.mouseY, m.hasMouse = msg.X, msg.Y, true
			eventbus.Publish(m.bus, ev)
		} else {
			m.hasMouse = false
		}

	case tickMsg:
		if m.quitting {
			break
		}
		m.renderFrame(time.Time(msg))
		m.pending = append(m.pending, m.tick())

	case snapshotDoneMsg:
		eventbus.Publish(m.bus, domain.SnapshotSavedEvent{Path: msg.path, Mode: msg.mode, Err: msg.err})

	case pagerDoneMsg:
		if msg.err != nil {
			m.logger.Error().Err(msg.err).Str("target", msg.what).Msg("pager failed")
			m.setStatus("pager: "+msg.err.Error(), m.styles.StatusError)
		}
	}

	return m, m.flush()
}

// View renders the UI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	mode := m.controller.Mode()
	title := m.styles.Title.Render(m.config.Window.Title)
	if m.e2e {
		title = ReadyMarker + " " + title
	}
	modeLabel := m.styles.Mode.Foreground(ModeColor(mode)).Render(fmt.Sprintf("[%d] %s", int(mode)+1, mode.Title()))

	last := m.frames.Last()
	stats := m.styles.Stats.Render(fmt.Sprintf(
		"frame %d  fps %.0f  instances %d  vertices %d  segments %d  build %s  compute %s",
		last.Frame, m.frames.FPS(), last.Instances, last.Vertices, last.Segments,
		last.BuildDuration.Round(time.Microsecond), last.ComputeDuration.Round(time.Microsecond),
	))

	var b strings.Builder
	b.WriteString(title + "  " + modeLabel + "\n")
	b.WriteString(stats + "\n")
	b.WriteString(m.styles.Canvas.Render(m.canvas.String()) + "\n")
	b.WriteString(m.statusStyle.Render(m.status) + "\n")
	b.WriteString(m.styles.Help.Render(m.help.View(m.keys)))
	return b.String()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) flush() tea.Cmd {
	cmds := m.pending
	m.pending = nil
	if m.quitting {
		cmds = append(cmds, tea.Quit)
	}
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	}
	return tea.Batch(cmds...)
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width
	m.canvas = render.NewCanvas(width, height-headerLines-footerLines)
}

func (m *Model) renderFrame(at time.Time) {
	cols, rows := m.canvas.Size()
	// terminal cells are about twice as tall as they are wide
	aspect := float64(cols) / float64(rows*2)

	frame, err := m.scene.Build(m.ctx, m.controller.Mode(), at.Sub(m.start).Seconds(), aspect)
	if err != nil {
		m.logger.Error().Err(err).Msg("frame build failed")
		return
	}
	m.lastFrame = frame
	m.canvas.Clear()
	m.canvas.Draw(frame)
	eventbus.Publish(m.bus, domain.FrameRenderedEvent{Stats: frame.Stats, At: at})
}

func (m *Model) setStatus(text string, style lipgloss.Style) {
	m.status = text
	m.statusStyle = style
}

func (m *Model) onKey(e *domain.KeyPressedEvent) {
	if e.Handled {
		return
	}
	switch e.Key {
	case "?":
		m.pending = append(m.pending, m.pager.helpCmd())
	case "l":
		if m.config.Log.File == "" {
			m.setStatus("no log file configured", m.styles.StatusError)
		} else {
			m.pending = append(m.pending, m.pager.fileCmd(m.config.Log.File))
		}
	default:
		return
	}
	e.Handled = true
}

func (m *Model) onModeChanged(e *domain.DrawModeChangedEvent) {
	m.setStatus("demo: "+e.To.Title(), m.styles.Status)
}

func (m *Model) onSnapshotRequested(e *domain.SnapshotRequestedEvent) {
	frame := m.lastFrame
	if len(frame.Segments) == 0 {
		m.setStatus("nothing to snapshot yet", m.styles.StatusError)
		return
	}
	dir := e.Dir
	w, h := m.config.Render.SnapshotWidth, m.config.Render.SnapshotHeight
	m.setStatus("saving snapshot...", m.styles.Status)
	m.pending = append(m.pending, func() tea.Msg {
		path, err := render.SaveSnapshot(dir, frame, w, h)
		return snapshotDoneMsg{path: path, mode: frame.Stats.Mode, err: err}
	})
}

func (m *Model) onSnapshotSaved(e *domain.SnapshotSavedEvent) {
	if e.Err != nil {
		m.setStatus("snapshot failed: "+e.Err.Error(), m.styles.StatusError)
		return
	}
	m.setStatus("saved "+e.Path, m.styles.StatusSuccess)
}

func (m *Model) onQuit(e *domain.QuitRequestedEvent) {
	m.logger.Info().Str("reason", e.Reason).Msg("quit requested")
	m.quitting = true
}
