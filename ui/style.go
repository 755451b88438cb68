package ui

import "github.com/charmbracelet/lipgloss"

// Severity names a log sink message's visual treatment.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityAccent  Severity = "accent"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

var severityColors = map[Severity]string{
	SeveritySuccess: "#2ecc71",
	SeverityAccent:  "#3498db",
	SeverityWarning: "#f1c40f",
	SeverityDanger:  "#e74c3c",
}

// Colorize renders text in the style associated with severity, falling
// back to an unstyled render for an unrecognized severity.
func Colorize(text string, severity Severity) string {
	hex, ok := severityColors[severity]
	if !ok {
		return text
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(text)
}
