package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownMode is returned when a draw mode name is not recognised
var ErrUnknownMode = errors.New("unknown draw mode")

// DrawMode selects which draw demonstration is shown
type DrawMode int

const (
	DrawTriangle DrawMode = iota // single triangle
	DrawCube                     // single cube
	DrawInstanced                // instanced cubes via per-instance offsets
	DrawCompute                  // instanced cubes positioned by the compute pass
	drawModeCount
)

var drawModeNames = [...]string{
	DrawTriangle:  "triangle",
	DrawCube:      "cube",
	DrawInstanced: "instanced",
	DrawCompute:   "compute",
}

// AllDrawModes returns every mode in cycling order
func AllDrawModes() []DrawMode {
	modes := make([]DrawMode, 0, drawModeCount)
	for m := DrawTriangle; m < drawModeCount; m++ {
		modes = append(modes, m)
	}
	return modes
}

// String returns the mode name used in config and on the command line
func (m DrawMode) String() string {
	if m < 0 || m >= drawModeCount {
		return fmt.Sprintf("DrawMode(%d)", int(m))
	}
	return drawModeNames[m]
}

// Title returns a human readable label
func (m DrawMode) Title() string {
	switch m {
	case DrawTriangle:
		return "Single triangle"
	case DrawCube:
		return "Single cube"
	case DrawInstanced:
		return "Instanced cubes (attribute offsets)"
	case DrawCompute:
		return "Instanced cubes (compute positions)"
	default:
		return m.String()
	}
}

// Next returns the mode after m, wrapping around
func (m DrawMode) Next() DrawMode {
	return (m + 1) % drawModeCount
}

// Valid reports whether m is a known mode
func (m DrawMode) Valid() bool {
	return m >= 0 && m < drawModeCount
}

// ParseDrawMode parses a mode name
func ParseDrawMode(s string) (DrawMode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range drawModeNames {
		if n == name {
			return DrawMode(i), nil
		}
	}
	return DrawTriangle, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// FrameStats describes one built frame
type FrameStats struct {
	Frame           uint64
	Mode            DrawMode
	Instances       int
	Vertices        int
	Segments        int
	BuildDuration   time.Duration
	ComputeDuration time.Duration
}
