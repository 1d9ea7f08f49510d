package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/magfield/internal/metrics"
	"github.com/san-kum/magfield/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	frameRate       = 60

	speedStep = 0.25
	maxSpeed  = 4.0
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is the live viewer: it advances the scene once per frame and redraws
// the field lines whenever the scene changed.
type Model struct {
	scene      *sim.Scene
	name       string
	dt         float64
	canvas     *Canvas
	camera     *Camera
	perspect   bool
	separation []float64
	traceTime  time.Duration
	showHelp   bool
}

func NewModel(scene *sim.Scene, name string) Model {
	m := Model{
		scene:      scene,
		name:       name,
		dt:         1.0 / frameRate,
		canvas:     NewCanvas(width, height),
		camera:     NewCamera(),
		separation: make([]float64, 0, historyCapacity),
	}
	m.draw()
	return m
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Scene() *sim.Scene { return m.scene }

// Update handles input events and steps the scene.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		m.advance()
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	dyn := m.scene.Dynamics()
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		if m.scene.Running() {
			m.scene.Stop()
		} else {
			m.scene.Start()
		}
	case "n":
		m.scene.StepOnce()
	case "r":
		m.scene.SetReverse(!dyn.Reversed())
	case "+", "=":
		m.scene.SetSpeed(min(maxSpeed, dyn.Speed()+speedStep))
	case "-", "_":
		m.scene.SetSpeed(dyn.Speed() - speedStep)
	case "a":
		m.scene.ToggleAdaptive()
	case "v":
		m.perspect = !m.perspect
	case "x":
		m.camera.RotateX(0.1)
	case "X":
		m.camera.RotateX(-0.1)
	case "y":
		m.camera.RotateY(0.1)
	case "Y":
		m.camera.RotateY(-0.1)
	case "z":
		m.camera.RotateZ(0.1)
	case "Z":
		m.camera.RotateZ(-0.1)
	case ">", ".":
		m.camera.ZoomIn()
	case "<", ",":
		m.camera.ZoomOut()
	case "0":
		m.camera.Reset()
	case "t":
		NextTheme()
	case "?":
		m.showHelp = !m.showHelp
	}
	m.draw()
	return m, nil
}

// advance steps the dynamics by one frame and records the separation history.
func (m *Model) advance() {
	if m.scene.Update(m.dt) {
		if len(m.scene.Dipoles()) > 1 {
			m.separation = append(m.separation, metrics.Separation(m.scene.Dipoles()))
			if len(m.separation) > historyCapacity {
				m.separation = m.separation[1:]
			}
		}
	}
	m.draw()
}

func (m *Model) project() func(mgl64.Vec3) (int, int, bool) {
	if m.perspect {
		w, h := m.canvas.Dots()
		return m.camera.Projector(m.scene.Bounds(), w, h)
	}
	return NewPlane(m.scene.Bounds(), m.canvas).Project
}

func (m *Model) draw() {
	m.canvas.Clear()
	project := m.project()

	if m.scene.Dirty() {
		start := time.Now()
		m.scene.FieldLines()
		m.traceTime = time.Since(start)
	}
	DrawLines(m.canvas, m.scene.FieldLines(), project)

	if m.perspect {
		for _, e := range BoxEdges(m.scene.Bounds()) {
			m.canvas.Polyline(e[:], project)
		}
	}

	axis := m.scene.Bounds().Size().Len() * 0.03
	for _, d := range m.scene.Dipoles() {
		p := d.Position()
		if x, y, ok := project(p); ok {
			m.canvas.Marker(x, y)
		}
		m.canvas.Polyline([]mgl64.Vec3{p, p.Add(d.Direction().Mul(axis))}, project)
	}
	for _, b := range m.scene.Bars() {
		if x, y, ok := project(b.Position()); ok {
			m.canvas.Marker(x, y)
		}
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	dyn := m.scene.Dynamics()
	cfg := m.scene.TraceConfig()

	lines := m.scene.FieldLines()
	samples := 0
	for _, l := range lines {
		samples += l.Len()
	}

	var s strings.Builder
	s.WriteString(headerStyle().Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(StatusBadge(dyn.Running(), dyn.Reversed()) + "\n\n")

	if len(m.separation) > 1 {
		chart := asciigraph.Plot(m.separation, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Separation"))
		s.WriteString(graphStyle().Render(chart) + "\n\n")
	}

	s.WriteString(Stat("Time", "%.2fs", dyn.Time()))
	s.WriteString(Stat("Speed", "%s %.2fx", SpeedBar(dyn.Speed(), maxSpeed, 10), dyn.Speed()))
	s.WriteString(Stat("Steps", "%d", dyn.Steps()))
	s.WriteString(Stat("Dipoles", "%d free, %d bars", len(m.scene.Dipoles()), len(m.scene.Bars())))
	s.WriteString(Stat("Lines", "%d (%d samples)", len(lines), samples))
	s.WriteString(Stat("Trace", "%.1fms", float64(m.traceTime.Microseconds())/1000))
	mode := "fixed"
	if cfg.Adaptive {
		mode = "adaptive"
	}
	s.WriteString(Stat("Stepping", "%s", mode))
	view := "plane XY"
	if m.perspect {
		view = fmt.Sprintf("3d x%.1f", m.camera.Zoom)
	}
	s.WriteString(Stat("View", "%s", view))
	s.WriteString(helpStyle.Render("─────────────────────\nSP:Run N:Step R:Reverse\n+/-:Speed A:Adaptive V:View\nT:Theme ?:Help Q:Quit"))

	canvasView := canvasStyle.Render(linesStyle().Render(m.canvas.String()))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Start/stop dynamics      ║
║  N        - Single step              ║
║  R        - Toggle reverse time      ║
║  +/-      - Speed up / slow down     ║
║  A        - Toggle adaptive stepping ║
║  V        - Plane / 3d view          ║
║  x y z    - Rotate camera (shift:-)  ║
║  < >      - Zoom camera              ║
║  0        - Reset camera             ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

// Run opens the live viewer on scene until the user quits.
func Run(scene *sim.Scene, name string) error {
	_, err := tea.NewProgram(NewModel(scene, name), tea.WithAltScreen()).Run()
	return err
}
