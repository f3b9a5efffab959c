package ui

import (
	"github.com/charmbracelet/lipgloss"

	"glsandbox/internal/domain"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title         lipgloss.Style
	Mode          lipgloss.Style
	Stats         lipgloss.Style
	Canvas        lipgloss.Style
	Status        lipgloss.Style
	StatusError   lipgloss.Style
	StatusSuccess lipgloss.Style
	Help          lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title:         lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		Mode:          lipgloss.NewStyle().Bold(true),
		Stats:         lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Canvas:        lipgloss.NewStyle().Foreground(lipgloss.Color("208")), // orange, like the fragment shader
		Status:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
		Help:          lipgloss.NewStyle().Faint(true),
	}
}

// ModeColor returns the accent colour used for a draw mode
func ModeColor(mode domain.DrawMode) lipgloss.Color {
	switch mode {
	case domain.DrawTriangle:
		return "214" // yellow
	case domain.DrawCube:
		return "33" // blue
	case domain.DrawInstanced:
		return "78" // green
	default:
		return "51" // cyan
	}
}
