package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

func headerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Bold(true).MarginBottom(1)
}

func linesStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Lines)
}

func graphStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.GraphLine).Padding(1, 0)
}

// StatusBadge renders the run state of the dynamics.
func StatusBadge(running, reversed bool) string {
	switch {
	case running && reversed:
		return lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Reversed).Render("RUNNING (REVERSED)")
	case running:
		return lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Running).Render("RUNNING")
	}
	return lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Paused).Render("PAUSED")
}

// Stat renders one label/value row.
func Stat(label string, format string, args ...any) string {
	return labelStyle.Render(label) + valueStyle.Render(fmt.Sprintf(format, args...)) + "\n"
}

// SpeedBar renders speed against a full scale of maxSpeed.
func SpeedBar(speed, maxSpeed float64, width int) string {
	ratio := 0.0
	if maxSpeed > 0 {
		ratio = speed / maxSpeed
	}
	filled := int(ratio * float64(width))
	filled = max(0, min(width, filled))
	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
}
