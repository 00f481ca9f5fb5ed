package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/pkg/browser"

	"github.com/robby/sprintreport/internal/report"
	"github.com/robby/sprintreport/internal/store"
)

// Layout constants
const (
	minColumnWidth = 20
	maxColumnWidth = 35
	headerLines    = 2  // Title line + hints line
	pageJumpSize   = 10 // Number of items to jump with Ctrl+D/U
)

// openURL opens a card in the browser; tests replace it.
var openURL = browser.OpenURL

// Styles for the board view - base styles without width/height (set dynamically)
var (
	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	abandonedHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("196"))

	cardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedCardStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true)

	titleStyle = lipgloss.NewStyle().
			Bold(true)
)

// BoardModel represents the sprint board: the end snapshot's lists plus the
// abandoned column.
type BoardModel struct {
	// Dependencies
	store *store.Store

	// UI components
	keymap      KeyMap
	help        HelpModel
	filterInput textinput.Model

	// Board state
	columns        []string            // Column keys in order
	columnNames    map[string]string   // Column key -> display name
	filteredCards  map[string][]string // Column key -> card IDs
	selectedColumn int                 // Currently selected column
	columnOffset   int                 // Horizontal scroll offset (first visible column index)
	selectedCard   map[string]int      // Column key -> selected card index
	scrollOffset   map[string]int      // Column key -> scroll offset

	// View state
	width        int
	height       int
	showHelp     bool
	filterMode   bool
	filterText   string
	incomingOnly bool
	errorToast   string
}

// NewBoardModel creates a new board model
func NewBoardModel(s *store.Store) BoardModel {
	ti := textinput.New()
	ti.Placeholder = "Filter..."
	ti.Prompt = "/ "

	m := BoardModel{
		store:         s,
		keymap:        DefaultKeyMap(),
		help:          NewHelpModel(DefaultKeyMap()),
		filterInput:   ti,
		columns:       []string{},
		columnNames:   make(map[string]string),
		filteredCards: make(map[string][]string),
		selectedCard:  make(map[string]int),
		scrollOffset:  make(map[string]int),
	}
	m.rebuildColumns()
	m.applyFilter()
	return m
}

// Init requests the terminal size.
func (m BoardModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages
func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

// handleKeyPress processes keyboard input
func (m BoardModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.ForceQuit) {
		return m, tea.Quit
	}

	// Help overlay
	if m.showHelp {
		if key.Matches(msg, m.keymap.Help, m.keymap.Quit, m.keymap.CancelFilter) {
			m.showHelp = false
		}
		return m, nil
	}

	// Filter mode
	if m.filterMode {
		switch {
		case key.Matches(msg, m.keymap.ApplyFilter):
			m.filterMode = false
			m.filterText = m.filterInput.Value()
			m.filterInput.Blur()
			(&m).applyFilter()
			return m, nil
		case key.Matches(msg, m.keymap.CancelFilter):
			m.filterMode = false
			m.filterInput.SetValue(m.filterText)
			m.filterInput.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			return m, cmd
		}
	}

	m.errorToast = ""

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.showHelp = true
	case key.Matches(msg, m.keymap.Filter):
		m.filterMode = true
		return m, m.filterInput.Focus()
	case key.Matches(msg, m.keymap.Left):
		if m.selectedColumn > 0 {
			m.selectedColumn--
			(&m).adjustColumnScroll()
		}
	case key.Matches(msg, m.keymap.Right):
		if m.selectedColumn < len(m.columns)-1 {
			m.selectedColumn++
			(&m).adjustColumnScroll()
		}
	case key.Matches(msg, m.keymap.Down):
		(&m).moveCardSelection(1)
	case key.Matches(msg, m.keymap.Up):
		(&m).moveCardSelection(-1)
	case key.Matches(msg, m.keymap.Top):
		(&m).jumpToCard(0)
	case key.Matches(msg, m.keymap.Bottom):
		(&m).jumpToCard(-1)
	case msg.String() == "ctrl+d":
		(&m).moveCardSelection(pageJumpSize)
	case msg.String() == "ctrl+u":
		(&m).moveCardSelection(-pageJumpSize)
	case key.Matches(msg, m.keymap.Incoming):
		m.incomingOnly = !m.incomingOnly
		(&m).applyFilter()
	case key.Matches(msg, m.keymap.Open):
		card := m.getSelectedCard()
		if card == nil {
			break
		}
		if url := card.URL(); url == "" {
			m.errorToast = "card has no URL"
		} else if err := openURL(url); err != nil {
			m.errorToast = fmt.Sprintf("Open failed: %v", err)
		}
	case key.Matches(msg, m.keymap.Detail):
		card := m.getSelectedCard()
		if card != nil {
			return m, func() tea.Msg { return openDetailMsg{card: card} }
		}
	}

	return m, nil
}

// View renders the board - fills entire terminal exactly
func (m BoardModel) View() string {
	// Use sensible defaults if dimensions not yet set
	width := m.width
	height := m.height
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	var sections []string
	sections = append(sections, m.renderHeader(width))
	sections = append(sections, m.renderSecondHeader(width))

	if m.filterMode {
		sections = append(sections, m.filterInput.View())
	}

	boardHeight := height - headerLines
	if m.filterMode {
		boardHeight--
	}
	if boardHeight < 5 {
		boardHeight = 5
	}

	var mainContent string
	if m.showHelp {
		helpContent := m.help.View(width)
		helpLines := strings.Split(helpContent, "\n")
		// Truncate help to fit in available space
		if len(helpLines) > boardHeight {
			helpLines = helpLines[:boardHeight]
		}
		mainContent = strings.Join(helpLines, "\n")
	} else if len(m.columns) == 0 {
		emptyMsg := "The end snapshot has no lists."
		mainContent = lipgloss.Place(width, boardHeight, lipgloss.Center, lipgloss.Center, emptyMsg)
	} else {
		mainContent = m.renderBoard(width, boardHeight)
	}
	sections = append(sections, mainContent)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader renders the sprint dates on the left and counts on the right
func (m BoardModel) renderHeader(width int) string {
	r := m.store.Report()
	title := fmt.Sprintf("Sprint %s → %s (%d days)",
		r.StartDate().Format("2006-01-02"), r.EndDate().Format("2006-01-02"), r.SprintDays())

	sum := r.Summary()
	statusParts := []string{
		fmt.Sprintf("%d cards", sum.Total),
		fmt.Sprintf("%d done", sum.Done),
		fmt.Sprintf("%d new", sum.Incoming),
		fmt.Sprintf("%d abandoned", sum.Abandoned),
	}
	if m.incomingOnly {
		statusParts = append(statusParts, "new only")
	}
	if m.filterText != "" {
		statusParts = append(statusParts, fmt.Sprintf("/%s", m.filterText))
	}
	statusParts = append(statusParts, "[?]help")
	status := strings.Join(statusParts, " | ")

	padding := width - lipgloss.Width(title) - lipgloss.Width(status) - 2
	if padding < 1 {
		padding = 1
	}

	return titleStyle.Render(title) + strings.Repeat(" ", padding) + dimStyle.Render(status)
}

// renderSecondHeader renders navigation hints and position info
func (m BoardModel) renderSecondHeader(width int) string {
	left := "h/l:col j/k:card enter:view o:open i:new /:filter"

	right := ""
	if m.errorToast != "" {
		right = ErrorStyle.Render(m.errorToast)
	} else if len(m.columns) > 0 {
		colKey := m.columns[m.selectedColumn]
		cards := m.filteredCards[colKey]

		colPos := fmt.Sprintf("col %d/%d", m.selectedColumn+1, len(m.columns))
		if len(cards) > 0 {
			right = fmt.Sprintf("%s | card %d/%d", colPos, m.selectedCard[colKey]+1, len(cards))
		} else {
			right = colPos
		}
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}

	return dimStyle.Render(left) + strings.Repeat(" ", padding) + right
}

// renderBoard renders the columns within the given dimensions, scrolling
// horizontally when they overflow
func (m BoardModel) renderBoard(totalWidth, totalHeight int) string {
	numCols := len(m.columns)
	if numCols == 0 {
		return ""
	}

	// lipgloss Border adds 2 lines (top + bottom) to the content height
	colContentHeight := totalHeight - 2
	if colContentHeight < 3 {
		colContentHeight = 3
	}

	maxVisibleCols := totalWidth / minColumnWidth
	if maxVisibleCols < 1 {
		maxVisibleCols = 1
	}
	visibleCols := maxVisibleCols
	if visibleCols > numCols {
		visibleCols = numCols
	}

	colWidth := totalWidth / visibleCols
	if colWidth > maxColumnWidth {
		colWidth = maxColumnWidth
	}
	if colWidth < minColumnWidth {
		colWidth = minColumnWidth
	}

	// Content width inside column (2 border + 2 padding)
	innerWidth := colWidth - 4
	if innerWidth < 10 {
		innerWidth = 10
	}

	maxCardLines := colContentHeight - 1
	if maxCardLines < 1 {
		maxCardLines = 1
	}

	startCol := m.columnOffset
	endCol := startCol + visibleCols
	if endCol > numCols {
		endCol = numCols
		startCol = endCol - visibleCols
		if startCol < 0 {
			startCol = 0
		}
	}

	columnViews := make([]string, 0, visibleCols+2)

	if startCol > 0 {
		columnViews = append(columnViews, scrollIndicator("◀", colContentHeight+2))
	}
	for i := startCol; i < endCol; i++ {
		colKey := m.columns[i]
		columnViews = append(columnViews, m.renderColumn(colKey, i == m.selectedColumn, colWidth, colContentHeight, innerWidth, maxCardLines))
	}
	if endCol < numCols {
		columnViews = append(columnViews, scrollIndicator("▶", colContentHeight+2))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, columnViews...)
}

func scrollIndicator(arrow string, height int) string {
	return lipgloss.NewStyle().
		Width(2).
		Height(height).
		Foreground(lipgloss.Color("205")).
		Align(lipgloss.Center, lipgloss.Center).
		Render(arrow)
}

// renderColumn renders a single column. innerHeight excludes the border;
// maxCardLines excludes the header.
func (m BoardModel) renderColumn(colKey string, selected bool, width, innerHeight, innerWidth, maxCardLines int) string {
	cards := m.filteredCards[colKey]
	name := m.columnNames[colKey]

	headerText := truncate.StringWithTail(fmt.Sprintf("%s (%d)", name, len(cards)), uint(innerWidth), "…")
	headerStyle := columnHeaderStyle
	if colKey == store.AbandonedKey {
		headerStyle = abandonedHeaderStyle
	}

	scrollOffset := m.scrollOffset[colKey]
	selectedIdx := m.selectedCard[colKey]

	cardSlots := maxCardLines - 1
	if cardSlots < 1 {
		cardSlots = 1
	}

	needUpIndicator := scrollOffset > 0
	availableSlots := cardSlots
	if needUpIndicator {
		availableSlots--
	}

	endIdx := scrollOffset + availableSlots
	if endIdx > len(cards) {
		endIdx = len(cards)
	}

	needDownIndicator := false
	if endIdx < len(cards) {
		needDownIndicator = true
		availableSlots--
		endIdx = scrollOffset + availableSlots
		if endIdx > len(cards) {
			endIdx = len(cards)
		}
	}

	lines := []string{headerStyle.Render(headerText)}

	if needUpIndicator {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("↑ %d more", scrollOffset)))
	}

	for i := scrollOffset; i < endIdx; i++ {
		card, err := m.store.GetCard(cards[i])
		if err != nil {
			continue
		}

		cardText := m.formatCardText(card, innerWidth-3) // 3 for "> " or "  " prefix
		if selected && i == selectedIdx {
			lines = append(lines, selectedCardStyle.Render("> ")+cardText)
		} else {
			lines = append(lines, cardStyle.Render("  ")+cardText)
		}
	}

	remaining := len(cards) - endIdx
	if needDownIndicator && remaining > 0 {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("↓ %d more", remaining)))
	}

	if len(cards) == 0 {
		lines = append(lines, dimStyle.Render("(empty)"))
	}

	borderColor := lipgloss.Color("240")
	if selected {
		borderColor = lipgloss.Color("205")
	}

	// Height sets the content height; the border adds 2 more lines.
	// MaxHeight would truncate the border.
	colStyle := lipgloss.NewStyle().
		Width(width-2).
		Height(innerHeight).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor)

	return colStyle.Render(strings.Join(lines, "\n"))
}

// formatCardText formats a card for display within maxWidth, with the state
// badge and incoming marker right-aligned
func (m BoardModel) formatCardText(card *report.CardView, maxWidth int) string {
	suffix := stateBadges[card.State]
	if card.Incoming {
		suffix = "+" + suffix
	}

	if suffix == "" {
		return cardStyle.Render(truncate.StringWithTail(card.Name, uint(maxWidth), "…"))
	}

	suffixLen := lipgloss.Width(suffix)
	availableForTitle := maxWidth - suffixLen - 1
	if availableForTitle < 5 {
		availableForTitle = 5
	}
	title := truncate.StringWithTail(card.Name, uint(availableForTitle), "…")

	padding := maxWidth - lipgloss.Width(title) - suffixLen
	if padding < 1 {
		padding = 1
	}

	badge := stateStyle(card.State).Render(strings.TrimPrefix(suffix, "+"))
	if card.Incoming {
		badge = incomingStyle.Render("+") + badge
	}
	return cardStyle.Render(title) + strings.Repeat(" ", padding) + badge
}

// rebuildColumns rebuilds the column structure from the store
func (m *BoardModel) rebuildColumns() {
	cols := m.store.Columns()
	m.columns = make([]string, 0, len(cols))
	m.columnNames = make(map[string]string, len(cols))

	for _, col := range cols {
		m.columns = append(m.columns, col.Key)
		m.columnNames[col.Key] = col.Name
	}

	if m.selectedColumn >= len(m.columns) {
		m.selectedColumn = 0
	}
}

// applyFilter filters each column's cards by name and the incoming toggle
func (m *BoardModel) applyFilter() {
	m.filteredCards = make(map[string][]string, len(m.columns))
	for _, colKey := range m.columns {
		m.filteredCards[colKey] = m.store.FilterCardIDs(colKey, m.filterText, m.incomingOnly)
	}

	// Reset scroll offsets and clamp selection when the filter changes
	for colKey, cards := range m.filteredCards {
		m.scrollOffset[colKey] = 0
		if m.selectedCard[colKey] >= len(cards) {
			if len(cards) > 0 {
				m.selectedCard[colKey] = len(cards) - 1
			} else {
				m.selectedCard[colKey] = 0
			}
		}
	}
}

// moveCardSelection moves the card selection up or down by delta
func (m *BoardModel) moveCardSelection(delta int) {
	if len(m.columns) == 0 {
		return
	}

	colKey := m.columns[m.selectedColumn]
	cards := m.filteredCards[colKey]
	if len(cards) == 0 {
		return
	}

	newIdx := m.selectedCard[colKey] + delta
	if newIdx < 0 {
		newIdx = 0
	}
	if newIdx >= len(cards) {
		newIdx = len(cards) - 1
	}

	m.selectedCard[colKey] = newIdx
	m.adjustScroll(colKey)
}

// jumpToCard jumps to a specific card index. Use -1 to jump to last card.
func (m *BoardModel) jumpToCard(idx int) {
	if len(m.columns) == 0 {
		return
	}

	colKey := m.columns[m.selectedColumn]
	cards := m.filteredCards[colKey]
	if len(cards) == 0 {
		return
	}

	if idx < 0 || idx >= len(cards) {
		idx = len(cards) - 1
	}

	m.selectedCard[colKey] = idx
	m.adjustScroll(colKey)
}

// adjustScroll ensures the selected card is visible
func (m *BoardModel) adjustScroll(colKey string) {
	selectedIdx := m.selectedCard[colKey]
	scrollOffset := m.scrollOffset[colKey]

	contentHeight := m.height - headerLines - 2 // 2 for column borders
	if m.filterMode {
		contentHeight--
	}
	visibleCards := contentHeight - 3 // header + potential scroll indicators
	if visibleCards < 3 {
		visibleCards = 3
	}

	if selectedIdx < scrollOffset {
		m.scrollOffset[colKey] = selectedIdx
	}
	if selectedIdx >= scrollOffset+visibleCards {
		m.scrollOffset[colKey] = selectedIdx - visibleCards + 1
	}
}

// adjustColumnScroll ensures the selected column is visible
func (m *BoardModel) adjustColumnScroll() {
	if len(m.columns) == 0 || m.width == 0 {
		return
	}

	visibleCols := m.width / minColumnWidth
	if visibleCols < 1 {
		visibleCols = 1
	}
	if visibleCols > len(m.columns) {
		visibleCols = len(m.columns)
	}

	if m.selectedColumn < m.columnOffset {
		m.columnOffset = m.selectedColumn
	}
	if m.selectedColumn >= m.columnOffset+visibleCols {
		m.columnOffset = m.selectedColumn - visibleCols + 1
	}
}

// getSelectedCard returns the currently selected card
func (m BoardModel) getSelectedCard() *report.CardView {
	if len(m.columns) == 0 {
		return nil
	}

	colKey := m.columns[m.selectedColumn]
	cards := m.filteredCards[colKey]
	if len(cards) == 0 {
		return nil
	}

	cardIdx := m.selectedCard[colKey]
	if cardIdx >= len(cards) {
		cardIdx = 0
	}

	card, err := m.store.GetCard(cards[cardIdx])
	if err != nil {
		return nil
	}
	return card
}
