package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/magfield/internal/config"
	"github.com/san-kum/magfield/internal/sim"
)

var presetInfo = map[string]string{
	"single":       "one dipole, pointing up",
	"antiparallel": "opposed pair, attracting",
	"parallel":     "aligned pair, repelling",
	"bar":          "bar magnet grid",
	"quad":         "four alternating dipoles",
}

const (
	stateMenu = iota
	stateLive
)

// menu picks a preset and hands over to the live viewer.
type menu struct {
	state   int
	cursor  int
	presets []string
	live    Model
}

func NewMenu() menu {
	return menu{state: stateMenu, presets: config.ListPresets()}
}

func (m menu) Init() tea.Cmd { return nil }

func (m menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateLive {
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.presets) == 0 {
			return m, nil
		}
		name := m.presets[m.cursor]
		m.live = NewModel(sim.BuildScene(config.GetPreset(name)), name)
		m.state = stateLive
		return m, m.live.Init()
	}
	return m, nil
}

func (m menu) View() string {
	if m.state == stateLive {
		return m.live.View()
	}

	var b strings.Builder
	h := lipgloss.NewStyle().Foreground(CurrentTheme.Lines).Bold(true)
	sub := lipgloss.NewStyle().Foreground(CurrentTheme.Muted)
	sel := lipgloss.NewStyle().Foreground(CurrentTheme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(CurrentTheme.Accent)
	key := lipgloss.NewStyle().Foreground(CurrentTheme.Lines).Bold(true)

	b.WriteString("\n\n    " + h.Render("MAGFIELD") + "\n    " + sub.Render("dipole field lines") + "\n    " + sub.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", key.Render("▸"), sel.Render(fmt.Sprintf("%-14s", name)), desc.Render(presetInfo[name])))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", sub.Render(fmt.Sprintf("%-14s", name)), sub.Render(presetInfo[name])))
		}
	}
	b.WriteString("\n    " + key.Render("j/k") + sub.Render(" navigate  ") + key.Render("enter") + sub.Render(" select  ") + key.Render("q") + sub.Render(" quit") + "\n")
	return b.String()
}

// RunInteractive starts at the preset menu.
func RunInteractive() error {
	_, err := tea.NewProgram(NewMenu(), tea.WithAltScreen()).Run()
	return err
}
