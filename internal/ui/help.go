package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"

	"glsandbox/internal/domain"
)

// RenderHelpContent generates help content with colors for the pager
func RenderHelpContent() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220"))

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	row := func(b *strings.Builder, key, desc string) {
		fmt.Fprintf(b, "  %-10s %s\n", keyStyle.Render(key), descStyle.Render(desc))
	}

	var help strings.Builder

	help.WriteString(titleStyle.Render("glsandbox Help"))
	help.WriteString("\n")

	help.WriteString(sectionStyle.Render("Demos"))
	help.WriteString("\n")
	row(&help, "Space, n", "Next demo")
	for i, mode := range domain.AllDrawModes() {
		row(&help, fmt.Sprint(i+1), mode.Title())
	}
	help.WriteString("\n")

	help.WriteString(sectionStyle.Render("Camera"))
	help.WriteString("\n")
	row(&help, "←/→", "Orbit left/right")
	row(&help, "↑/↓", "Tilt up/down")
	row(&help, "Mouse", "Drag to orbit")
	help.WriteString("\n")

	help.WriteString(sectionStyle.Render("Other"))
	help.WriteString("\n")
	row(&help, "p", "Save the current frame as PNG")
	row(&help, "l", "View the log file")
	row(&help, "?", "Show this help")
	row(&help, "q, Esc", "Quit")

	return help.String()
}

// PagerOps runs ov on top of the bubbletea program
type PagerOps struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
}

// NewPagerOps creates a new pager operations instance
func NewPagerOps(program *tea.Program) *PagerOps {
	return &PagerOps{program: program}
}

// ShowText shows content using ov pager
func (p *PagerOps) ShowText(content string) error {
	return p.run(func() (*oviewer.Root, error) {
		return oviewer.NewRoot(strings.NewReader(content))
	})
}

// ShowFile opens a file in ov pager
func (p *PagerOps) ShowFile(path string) error {
	return p.run(func() (*oviewer.Root, error) {
		return oviewer.Open(path)
	})
}

func (p *PagerOps) run(open func() (*oviewer.Root, error)) error {
	if p == nil || p.program == nil {
		return fmt.Errorf("program not set")
	}

	// Release terminal control to run ov
	if err := p.program.ReleaseTerminal(); err != nil {
		return err
	}
	defer func() {
		// Small delay to ensure ov has fully exited before restoring terminal
		time.Sleep(100 * time.Millisecond)
		_ = p.program.RestoreTerminal()
	}()

	root, err := open()
	if err != nil {
		return err
	}

	// Configure ov to not write on exit (to avoid messing with our screen)
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}

func (p *PagerOps) helpCmd() tea.Cmd {
	return func() tea.Msg {
		return pagerDoneMsg{what: "help", err: p.ShowText(RenderHelpContent())}
	}
}

func (p *PagerOps) fileCmd(path string) tea.Cmd {
	return func() tea.Msg {
		return pagerDoneMsg{what: path, err: p.ShowFile(path)}
	}
}
