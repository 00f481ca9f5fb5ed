package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/robby/sprintreport/internal/domain"
	"github.com/robby/sprintreport/internal/render"
	"github.com/robby/sprintreport/internal/report"
)

// Layout constants
const (
	leftPanelRatio = 0.35 // Left panel takes 35% of width
	minLeftWidth   = 30
	maxLeftWidth   = 50
	headerHeight   = 1
	footerHeight   = 1
	borderSize     = 2 // Top + bottom border
)

// markdownStyle is the glamour style for descriptions; the terminal cannot
// be queried for its background while the program owns it.
const markdownStyle = "dark"

// Detail view styles
var (
	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	detailLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))

	detailValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	panelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240"))

	focusedPanelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("205"))

	scrollIndicatorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205"))
)

// DetailModel shows one card: metadata on the left, the description
// rendered as markdown on the right.
type DetailModel struct {
	card *report.CardView

	viewport viewport.Model

	// Last width the description was rendered for
	renderedWidth int
	errorMsg      string

	width  int
	height int
}

// NewDetailModel creates a new detail view model
func NewDetailModel(card *report.CardView) DetailModel {
	vp := viewport.New(40, 10) // Resized in WindowSizeMsg
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	m := DetailModel{
		card:     card,
		viewport: vp,
	}
	m.updateViewportContent()
	return m
}

// Init initializes the detail model
func (m DetailModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages
func (m DetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeComponents()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

// resizeComponents sizes the viewport and re-renders the description
func (m *DetailModel) resizeComponents() {
	leftWidth := panelWidth(m.width)

	rightWidth := m.width - leftWidth - 3 // 3 = gap between panels
	if rightWidth < 30 {
		rightWidth = 30
	}

	contentHeight := m.height - headerHeight - footerHeight - borderSize
	if contentHeight < 10 {
		contentHeight = 10
	}

	m.viewport.Width = rightWidth - borderSize - 2 // -2 for padding
	m.viewport.Height = contentHeight - borderSize

	if m.viewport.Width != m.renderedWidth {
		m.updateViewportContent()
	}
}

// handleKeyPress processes keyboard input
func (m DetailModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		return m, func() tea.Msg { return closeDetailMsg{} }
	case "o":
		if url := m.card.URL(); url != "" {
			if err := openURL(url); err != nil {
				m.errorMsg = fmt.Sprintf("Open failed: %v", err)
			}
		}
	case "j", "down":
		m.viewport.LineDown(1)
	case "k", "up":
		m.viewport.LineUp(1)
	case "ctrl+d":
		m.viewport.HalfViewDown()
	case "ctrl+u":
		m.viewport.HalfViewUp()
	case "g":
		m.viewport.GotoTop()
	case "G":
		m.viewport.GotoBottom()
	}

	return m, nil
}

// View renders the split-screen detail view
func (m DetailModel) View() string {
	width := m.width
	height := m.height
	if width == 0 {
		width = 100
	}
	if height == 0 {
		height = 30
	}

	leftWidth := panelWidth(width)
	rightWidth := width - leftWidth - 1 // 1 char gap

	contentHeight := height - headerHeight - footerHeight
	if contentHeight < 10 {
		contentHeight = 10
	}

	header := dimStyle.Render("[q]back [o]open [j/k]scroll [g/G]top/bottom")

	leftPanel := panelBorderStyle.
		Width(leftWidth - borderSize).
		Height(contentHeight - borderSize).
		Render(m.renderLeftPanel(leftWidth - borderSize))

	rightPanel := focusedPanelBorderStyle.
		Width(rightWidth - borderSize).
		Height(contentHeight - borderSize).
		Render(m.renderRightPanel())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, " ", rightPanel)

	return lipgloss.JoinVertical(lipgloss.Left, header, panels, m.renderFooter(width))
}

func panelWidth(width int) int {
	w := int(float64(width) * leftPanelRatio)
	if w < minLeftWidth {
		w = minLeftWidth
	}
	if w > maxLeftWidth {
		w = maxLeftWidth
	}
	return w
}

// renderFooter renders the bottom status bar
func (m DetailModel) renderFooter(width int) string {
	var left, right string
	if m.errorMsg != "" {
		left = ErrorStyle.Render("✗ " + m.errorMsg)
	} else if url := m.card.URL(); url != "" {
		left = dimStyle.Render(url)
	}

	if m.viewport.TotalLineCount() > m.viewport.Height {
		switch {
		case m.viewport.AtTop():
			right = "TOP"
		case m.viewport.AtBottom():
			right = "END"
		default:
			right = fmt.Sprintf("%d%%", int(m.viewport.ScrollPercent()*100))
		}
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}
	return left + strings.Repeat(" ", padding) + dimStyle.Render(right)
}

// renderLeftPanel renders the card metadata
func (m DetailModel) renderLeftPanel(width int) string {
	var b strings.Builder

	b.WriteString(detailTitleStyle.Render(wordwrap.String(m.card.Name, width-2)))
	b.WriteString("\n\n")

	writeField := func(label, value string, style lipgloss.Style) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label + ": "))
		b.WriteString(style.Render(value))
		b.WriteString("\n")
	}

	writeField("List", m.card.ListName, detailValueStyle)
	writeField("State", string(m.card.State), stateStyle(m.card.State))
	if m.card.Incoming {
		writeField("Incoming", "added during the sprint", incomingStyle)
	}

	if len(m.card.Labels) > 0 {
		names := make([]string, 0, len(m.card.Labels))
		for _, l := range m.card.Labels {
			names = append(names, labelName(l))
		}
		b.WriteString(detailLabelStyle.Render("Labels:"))
		b.WriteString("\n")
		b.WriteString(detailValueStyle.Render(wordwrap.String(strings.Join(names, ", "), width-2)))
		b.WriteString("\n")
	}

	writeField("Due", m.card.Text("due"), detailValueStyle)
	writeField("Repo", m.card.Text("repo"), detailValueStyle)
	writeField("Issue", m.card.Text("issueState"), detailValueStyle)
	writeField("ID", m.card.ID, dimStyle)

	return b.String()
}

func labelName(l domain.Label) string {
	if l.Name != "" {
		return l.Name
	}
	if l.Color != "" {
		return "(" + l.Color + ")"
	}
	return l.ID
}

// renderRightPanel renders the description viewport
func (m DetailModel) renderRightPanel() string {
	var b strings.Builder

	scrollHint := ""
	totalLines := m.viewport.TotalLineCount()
	if totalLines > m.viewport.Height {
		switch {
		case m.viewport.AtTop():
			scrollHint = " ↓"
		case m.viewport.AtBottom():
			scrollHint = " ↑"
		default:
			scrollHint = " ↕"
		}
	}

	b.WriteString(detailLabelStyle.Render("Description"))
	b.WriteString(scrollIndicatorStyle.Render(scrollHint))
	b.WriteString("\n")

	if strings.TrimSpace(m.card.Text("desc")) == "" {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("No description"))
		return b.String()
	}

	b.WriteString(m.viewport.View())
	return b.String()
}

// updateViewportContent renders the description as markdown at the
// viewport's width, falling back to plain wrapped text
func (m *DetailModel) updateViewportContent() {
	desc := m.card.Text("desc")
	wrapWidth := m.viewport.Width - 2
	if wrapWidth < 20 {
		wrapWidth = 20
	}

	content, err := render.MarkdownStyle(desc, wrapWidth, markdownStyle)
	if err != nil {
		content = wordwrap.String(desc, wrapWidth)
	}

	m.viewport.SetContent(strings.TrimRight(content, "\n"))
	m.renderedWidth = m.viewport.Width
}
