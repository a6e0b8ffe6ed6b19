package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/clothsim/internal/metrics"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/xpbd"
)

const (
	canvasCols      = 60
	canvasRows      = 24
	historyCapacity = 300
)

var (
	canvasStyle      = lipgloss.NewStyle().Padding(1, 2)
	statsStyle       = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(44)
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeParamStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Model is the interactive cloth view: it drives the stepper from a
// 60 Hz tick and owns the editable solver parameters. The stepper only
// ever reads the parameters it is handed.
type Model struct {
	stepper *sim.Stepper
	params  xpbd.Params

	canvas    *Canvas
	start     time.Time
	paused    bool
	pausedAt  time.Time
	residuals []float64

	paramNames []string
	selected   int
	lastErr    string
	showHelp   bool
}

// NewModel builds the interactive view for a cols x rows cloth.
func NewModel(cols, rows int, params xpbd.Params) Model {
	return Model{
		stepper:    sim.NewStepper(cols, rows),
		params:     params,
		canvas:     NewCanvas(canvasCols, canvasRows),
		start:      time.Now(),
		paramNames: xpbd.ParamNames(),
		residuals:  make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		if !m.paused {
			m.tick()
		}
		return m, tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) tick() {
	out, err := m.stepper.Step(time.Since(m.start).Seconds(), m.params)
	if err != nil {
		m.lastErr = err.Error()
		m.paused = true
		return
	}
	if out.Stepped {
		m.residuals = append(m.residuals, metrics.RMSResidual(m.stepper.Cloth()))
		if len(m.residuals) > historyCapacity {
			m.residuals = m.residuals[1:]
		}
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		if m.paused {
			// Re-base the clock so the pause gap does not land on the
			// stepper as one giant delta.
			m.start = m.start.Add(time.Since(m.pausedAt))
		} else {
			m.pausedAt = time.Now()
		}
		m.paused = !m.paused
	case "r":
		m.stepper.RequestReset()
		m.residuals = m.residuals[:0]
		m.lastErr = ""
		m.paused = false
	case "f":
		m.stepper.RequestImpulseClear()
	case "m":
		if m.params.Mode == xpbd.GaussSeidel {
			m.params.Mode = xpbd.Jacobi
		} else {
			m.params.Mode = xpbd.GaussSeidel
		}
	case "w":
		m.params.WarmStart = !m.params.WarmStart
	case "tab":
		m.selected = (m.selected + 1) % len(m.paramNames)
	case "up", "k":
		m.adjustParam(true)
	case "down", "j":
		m.adjustParam(false)
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// adjustParam nudges the selected parameter. Out-of-range results are
// rejected by Params.Set, so the previous valid value stays in effect.
func (m *Model) adjustParam(up bool) {
	name := m.paramNames[m.selected]
	val, _ := m.params.Get(name)
	switch name {
	case "iterations":
		if up {
			val++
		} else {
			val--
		}
	case "stiffness":
		if up {
			val *= 2
		} else {
			val /= 2
		}
	default:
		if up {
			val += 0.05
		} else {
			val -= 0.05
		}
	}
	if err := m.params.Set(name, val); err != nil {
		m.lastErr = err.Error()
	} else {
		m.lastErr = ""
	}
}

func (m Model) View() string {
	m.draw()

	var s strings.Builder
	s.WriteString(headerStyle.Render("CLOTHSIM") + "\n")
	status := "RUNNING"
	if m.paused {
		status = "PAUSED"
	}
	s.WriteString(status + "\n\n")

	if len(m.residuals) > 1 {
		chart := asciigraph.Plot(m.residuals, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("RMS residual"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Step") + valueStyle.Render(fmt.Sprintf("%d", m.stepper.StepCount())) + "\n")
	s.WriteString(labelStyle.Render("Mode") + valueStyle.Render(m.params.Mode.String()) + "\n")
	warm := "off"
	if m.params.WarmStart {
		warm = "on"
	}
	s.WriteString(labelStyle.Render("Warm start") + valueStyle.Render(warm) + "\n")

	s.WriteString("\nPARAMETERS\n")
	for i, name := range m.paramNames {
		val, _ := m.params.Get(name)
		line := fmt.Sprintf("%-18s %10.4g", name, val)
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}

	if m.lastErr != "" {
		s.WriteString("\n" + errorStyle.Render(m.lastErr) + "\n")
	}

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reset F:Forget-Impulse\nM:Mode W:Warm Tab:Select ↑↓:Tune Q:Quit"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(m.canvas.String()),
		statsStyle.Render(s.String()))

	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Reset (rebuild cloth)    ║
║  F        - Forget stored impulse    ║
║  M        - Gauss-Seidel <-> Jacobi  ║
║  W        - Toggle warm start        ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter       ║
║  Down/J   - Decrease parameter       ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
`

// draw projects the cloth onto the canvas and rasterizes every
// constraint as a line segment.
func (m *Model) draw() {
	m.canvas.Clear()
	positions := m.stepper.Positions()
	if positions == nil {
		return
	}
	pw, ph := m.canvas.PixelSize()

	// The cloth starts on [-0.5,0.5] and sags downward; leave margin.
	toScreen := func(p xpbd.Vec3) (int, int) {
		sx := int((p.X + 0.65) / 1.3 * float64(pw-1))
		sy := int((0.55 - p.Y) / 1.3 * float64(ph-1))
		return sx, sy
	}

	for _, e := range m.stepper.Edges() {
		x0, y0 := toScreen(positions[e[0]])
		x1, y1 := toScreen(positions[e[1]])
		m.canvas.DrawLine(x0, y0, x1, y1)
	}
}

// Run starts the interactive viewer.
func Run(cols, rows int, params xpbd.Params) error {
	p := tea.NewProgram(NewModel(cols, rows, params), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
