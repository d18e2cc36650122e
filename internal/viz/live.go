// Package viz renders running yarn scenes in the terminal: a side-view rune
// canvas inside a bubbletea program, with joint-gap telemetry alongside.
package viz

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/mkraev/yarnsim/internal/config"
	"github.com/mkraev/yarnsim/internal/scene"
	"github.com/mkraev/yarnsim/internal/yarn"
)

const (
	canvasWidth   = 90
	canvasHeight  = 26
	gapHistoryCap = 400
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(42)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
)

type TickMsg time.Time

// Model steps a built scene and draws the chain side view.
type Model struct {
	handles *scene.Handles
	cfg     *config.Config

	canvas        *Canvas
	running       bool
	failed        bool
	stepsPerFrame int
	frameRate     int
	gapHistory    []float64
}

func NewModel(handles *scene.Handles, cfg *config.Config, frameRate int) Model {
	if frameRate <= 0 {
		frameRate = 30
	}
	stepsPerFrame := int(1 / (cfg.Sim.Dt * float64(frameRate)))
	if stepsPerFrame < 1 {
		stepsPerFrame = 1
	}

	// window: chain extent with margin, floor included
	minX := cfg.Yarn.StartPosition[0] - 0.2*cfg.Yarn.Length
	maxX := cfg.Yarn.StartPosition[0] + 1.2*cfg.Yarn.Length
	maxY := cfg.Yarn.StartPosition[1] + 0.2*cfg.Yarn.Length
	minY := cfg.Floor.Position[1] - cfg.Floor.HalfSize[1] - 0.05

	return Model{
		handles:       handles,
		cfg:           cfg,
		canvas:        NewCanvas(canvasWidth, canvasHeight, minX, maxX, minY, maxY),
		running:       true,
		stepsPerFrame: stepsPerFrame,
		frameRate:     frameRate,
	}
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.frameRate), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		}
	case TickMsg:
		if m.running && !m.failed {
			for i := 0; i < m.stepsPerFrame; i++ {
				if err := m.handles.Sys.Step(m.cfg.Sim.Dt); err != nil {
					m.failed = true
					break
				}
			}
			if hasInvalid(m.handles.Chain) {
				m.failed = true
				m.running = false
			}
			gap := yarn.MaxNeighborJointGap(m.handles.Chain)
			m.gapHistory = append(m.gapHistory, gap*1000) // millimeters
			if len(m.gapHistory) > gapHistoryCap {
				m.gapHistory = m.gapHistory[1:]
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) View() string {
	m.drawScene()

	stats := headerStyle.Render("yarn chain") + "\n" +
		row("time", fmt.Sprintf("%.3f s", m.handles.Sys.Time())) +
		row("segments", fmt.Sprintf("%d", len(m.handles.Chain.Segments))) +
		row("joints", fmt.Sprintf("%d", len(m.handles.Chain.Joints))) +
		row("aux links", fmt.Sprintf("%d", len(m.handles.Chain.AuxLinks))) +
		row("joint gap", fmt.Sprintf("%.4f mm", yarn.MaxNeighborJointGap(m.handles.Chain)*1000))

	if m.failed {
		stats += "\n" + pausedStyle.Render("UNSTABLE: NaN positions, stopped")
	} else if !m.running {
		stats += "\n" + pausedStyle.Render("paused")
	}

	if len(m.gapHistory) > 2 {
		graph := asciigraph.Plot(m.gapHistory,
			asciigraph.Height(6),
			asciigraph.Width(36),
			asciigraph.Caption("joint gap (mm)"),
		)
		stats += "\n" + graphStyle.Render(graph)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(m.canvas.String()),
		statsStyle.Render(stats),
	)
	return body + "\n" + helpStyle.Render("space pause · q quit")
}

func (m Model) drawScene() {
	m.canvas.Clear()

	floorTop := m.cfg.Floor.Position[1] + m.cfg.Floor.HalfSize[1]
	m.canvas.HLine(
		m.cfg.Floor.Position[0]-m.cfg.Floor.HalfSize[0],
		m.cfg.Floor.Position[0]+m.cfg.Floor.HalfSize[0],
		floorTop, '▔')

	for i, seg := range m.handles.Chain.Segments {
		p := seg.Pos()
		r := '·'
		if i == 0 || i == len(m.handles.Chain.Segments)-1 {
			r = 'o'
		}
		m.canvas.Mark(p.X, p.Y, r)
	}
	if m.handles.Anchor != nil {
		p := m.handles.Anchor.Pos()
		m.canvas.Mark(p.X, p.Y, '+')
	}
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
}

func hasInvalid(chain *yarn.Chain) bool {
	for _, seg := range chain.Segments {
		if !seg.Pos().IsValid() {
			return true
		}
	}
	return false
}
