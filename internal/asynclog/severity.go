package asynclog

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Severity is the category marker prefixed to every rendered line
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

var severityNames = map[Severity]string{
	SeverityDebug: "DEBUG",
	SeverityInfo:  "INFO",
	SeverityWarn:  "WARN",
	SeverityError: "ERROR",
}

// String returns the upper-case severity name
func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SEVERITY(%d)", int(s))
}

// ParseSeverity parses a case-insensitive severity name
func ParseSeverity(s string) (Severity, error) {
	for sev, name := range severityNames {
		if strings.EqualFold(s, name) {
			return sev, nil
		}
	}
	if strings.EqualFold(s, "warning") {
		return SeverityWarn, nil
	}
	return SeverityInfo, fmt.Errorf("unknown severity %q", s)
}

// markerStyles colour the prelude when colour output is enabled
var markerStyles = map[Severity]lipgloss.Style{
	SeverityDebug: lipgloss.NewStyle().Faint(true),
	SeverityInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("15")), // white
	SeverityWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	SeverityError: lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
}

// Marker returns the line prelude, e.g. "[INFO]: "
func (s Severity) Marker(color bool) string {
	marker := "[" + s.String() + "]: "
	if !color {
		return marker
	}
	style, ok := markerStyles[s]
	if !ok {
		return marker
	}
	return style.Render(marker)
}
