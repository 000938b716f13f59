// Package tui is the interactive lane viewer.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"scriptline/internal/config"
	"scriptline/internal/render"
	"scriptline/internal/viewmodel"
)

// gutter is the lane-name column the renderer reserves on every row.
const gutter = 20

// scrollStep is how many columns one left/right press moves.
const scrollStep = 8

// TimelineMsg replaces the displayed timeline, e.g. after the script file
// changed on disk.
type TimelineMsg struct {
	Timeline viewmodel.Timeline
}

// ErrMsg shows a derivation error in place of the lanes until the next
// TimelineMsg.
type ErrMsg struct {
	Err error
}

var (
	styleTitle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00BFFF")).
			Bold(true)

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5252")).
			Bold(true)

	styleFooterKey = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Bold(true)

	styleFooterDesc = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8C8C8C"))
)

// Model is the bubbletea model of the viewer.
type Model struct {
	Title    string
	Timeline viewmodel.Timeline
	Zoom     float64
	Offset   int
	Width    int
	Height   int
	Err      error
	Keys     KeyMap
}

// New returns a viewer over tl at the given zoom, clamped to the allowed range.
func New(title string, tl viewmodel.Timeline, zoom float64) Model {
	return Model{
		Title:    title,
		Timeline: tl,
		Zoom:     clampZoom(zoom),
		Width:    80,
		Height:   24,
		Keys:     DefaultKeyMap(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.Offset = m.clampOffset(m.Offset)
	case TimelineMsg:
		m.Timeline = msg.Timeline
		m.Err = nil
		m.Offset = m.clampOffset(m.Offset)
	case ErrMsg:
		m.Err = msg.Err
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.Keys.ZoomIn):
		m.setZoom(m.Zoom * 2)
	case key.Matches(msg, m.Keys.ZoomOut):
		m.setZoom(m.Zoom / 2)
	case key.Matches(msg, m.Keys.Left):
		m.Offset = m.clampOffset(m.Offset - scrollStep)
	case key.Matches(msg, m.Keys.Right):
		m.Offset = m.clampOffset(m.Offset + scrollStep)
	case key.Matches(msg, m.Keys.Home):
		m.Offset = 0
	}
	return m, nil
}

// setZoom keeps the time at the left edge in place while zooming.
func (m *Model) setZoom(z float64) {
	z = clampZoom(z)
	leftSeconds := float64(m.Offset) / m.Zoom
	m.Zoom = z
	m.Offset = m.clampOffset(int(leftSeconds * z))
}

func (m Model) trackWidth() int {
	if w := m.Width - gutter; w > 1 {
		return w
	}
	return 1
}

func (m Model) clampOffset(off int) int {
	max := render.Columns(m.Timeline.TotalDuration, m.Zoom) - m.trackWidth()
	if off > max {
		off = max
	}
	if off < 0 {
		off = 0
	}
	return off
}

func clampZoom(z float64) float64 {
	if z < config.MinZoom {
		return config.MinZoom
	}
	if z > config.MaxZoom {
		return config.MaxZoom
	}
	return z
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render(render.Truncate(m.Title, m.Width)))
	b.WriteString("\n\n")
	if m.Err != nil {
		b.WriteString(styleError.Render("error: " + m.Err.Error()))
		b.WriteString("\n")
	} else {
		b.WriteString(render.Lanes(m.Timeline, render.LaneOptions{
			Zoom:   m.Zoom,
			Offset: m.Offset,
			Width:  m.trackWidth(),
		}))
	}
	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m Model) footer() string {
	var parts []string
	for _, kb := range m.Keys.Bindings() {
		h := kb.Help()
		parts = append(parts, styleFooterKey.Render(h.Key)+" "+styleFooterDesc.Render(h.Desc))
	}
	return render.Truncate(strings.Join(parts, "  "), m.Width)
}
