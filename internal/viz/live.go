package viz

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/mpsfluid/internal/metrics"
	"github.com/san-kum/mpsfluid/internal/mps"
	"github.com/san-kum/mpsfluid/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
)

// Source is the runner side of the viewer. *sim.Runner satisfies it.
type Source interface {
	Snapshots() <-chan mps.Snapshot
	Apply(c sim.Control)
	Active() bool
}

type snapshotMsg mps.Snapshot

// Model renders snapshots as they arrive and sends activation changes back.
type Model struct {
	src           Source
	view          mps.Bounds
	scene         string
	width, height int
	canvas        *Canvas
	theme         Theme
	styles        styles
	stats         *metrics.Collector
	last          *mps.Snapshot
	showHelp      bool
}

func NewModel(src Source, view mps.Bounds, scene string) Model {
	return Model{
		src:    src,
		view:   view,
		scene:  scene,
		width:  width,
		height: height,
		canvas: NewCanvas(width, height),
		theme:  ThemeOcean,
		styles: newStyles(ThemeOcean),
		stats:  metrics.NewCollector(historyCapacity),
	}
}

// Run blocks until the user quits.
func Run(src Source, view mps.Bounds, scene string) error {
	_, err := tea.NewProgram(NewModel(src, view, scene), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd { return m.wait() }

func (m Model) wait() tea.Cmd {
	ch := m.src.Snapshots()
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return tea.Quit()
		}
		return snapshotMsg(snap)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			active := !m.src.Active()
			m.src.Apply(sim.Control{Active: &active})
		case "t":
			m.theme = NextTheme(m.theme.Name)
			m.styles = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case snapshotMsg:
		snap := mps.Snapshot(msg)
		m.last = &snap
		m.stats.Observe(&snap)
		m.draw()
		return m, m.wait()
	}
	return m, nil
}

// project maps world coordinates to canvas dots, y up, keeping the aspect ratio.
func (m *Model) project(x, y float64) (int, int) {
	cw, ch := float64(m.width*2), float64(m.height*4)
	vw, vh := m.view.MaxX-m.view.MinX, m.view.MaxY-m.view.MinY
	if vw <= 0 || vh <= 0 {
		return -1, -1
	}
	scale := math.Min((cw-1)/vw, (ch-1)/vh)
	px := (x - m.view.MinX) * scale
	py := (m.view.MaxY - y) * scale
	if math.IsNaN(px) || math.IsNaN(py) {
		return -1, -1
	}
	return int(px), int(py)
}

func (m *Model) draw() {
	m.canvas.Clear()
	if m.last == nil {
		return
	}
	snap := m.last
	colors := Colors(snap)
	for k, t := range snap.Types {
		if t == mps.Ghost {
			continue
		}
		x, y := m.project(snap.Positions[2*k], snap.Positions[2*k+1])
		m.canvas.Paint(x, y, colors[k].Hex())
	}
}

func (m Model) View() string {
	st := m.styles
	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.scene)) + "\n")

	if m.src.Active() {
		s.WriteString(st.running.Render("RUNNING") + "\n\n")
	} else {
		s.WriteString(st.paused.Render("PAUSED") + "\n\n")
	}

	speed := m.stats.Series(func(r metrics.Record) float64 { return r.MaxSpeed })
	if len(speed) > 1 {
		chart := asciigraph.Plot(speed, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("max speed"))
		s.WriteString(st.graph.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	if m.last != nil {
		rec := metrics.Summarize(m.last)
		row("Step", fmt.Sprintf("%d", rec.Step))
		row("Time", fmt.Sprintf("%.4fs", rec.Time))
		row("dt", fmt.Sprintf("%.2e", rec.Dt))
		row("Fluid", fmt.Sprintf("%d", rec.Fluid))
		row("Boundary", fmt.Sprintf("%d", rec.Wall+rec.Dummy))
		row("Max speed", fmt.Sprintf("%.3f m/s", rec.MaxSpeed))
		row("Max p", fmt.Sprintf("%.1f Pa", rec.MaxPressure))
		row("Tick", fmt.Sprintf("%.2fms", float64(rec.ProcessingUs)/1000))
	} else {
		row("Step", "waiting")
	}
	proc := m.stats.Series(func(r metrics.Record) float64 { return float64(r.ProcessingUs) })
	if len(proc) > 0 {
		s.WriteString("\n" + st.label.Render("Load") + Sparkline(proc, 24) + "\n")
	}

	s.WriteString(st.help.Render("─────────────────────\nSP:Pause T:Theme ?:Help Q:Quit"))

	canvasView := st.canvas.Render(m.canvas.Render())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.stats.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}
