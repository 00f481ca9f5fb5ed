package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/robby/sprintreport/internal/store"
)

// AppScreen represents the different screens in the application flow.
type AppScreen int

const (
	ScreenBoard AppScreen = iota
	ScreenDetail
)

// AppModel is the root Bubble Tea model that switches between the board and
// the card detail screen.
type AppModel struct {
	store *store.Store

	currentScreen AppScreen
	currentModel  tea.Model
	err           error

	// Cached to preserve selection and scroll across detail views
	boardModel *BoardModel
}

// NewAppModel creates the viewer for a store.
func NewAppModel(s *store.Store) AppModel {
	board := NewBoardModel(s)
	return AppModel{
		store:         s,
		currentScreen: ScreenBoard,
		currentModel:  board,
		boardModel:    &board,
	}
}

// Run starts the viewer on the alternate screen and blocks until it exits.
func Run(s *store.Store) error {
	p := tea.NewProgram(NewAppModel(s), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}

// Init initializes the app model.
func (m AppModel) Init() tea.Cmd {
	return m.currentModel.Init()
}

// Update handles messages and transitions between screens.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.err != nil && msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case QuitMsg:
		return m, tea.Quit

	case openDetailMsg:
		m.currentScreen = ScreenDetail
		detailModel := NewDetailModel(msg.card)
		m.currentModel = detailModel
		return m, detailModel.Init()

	case closeDetailMsg:
		m.currentScreen = ScreenBoard
		m.currentModel = *m.boardModel
		// Request window size to ensure proper rendering
		return m, tea.WindowSize()
	}

	var cmd tea.Cmd
	m.currentModel, cmd = m.currentModel.Update(msg)
	// Keep boardModel in sync when on board screen
	if m.currentScreen == ScreenBoard {
		if bm, ok := m.currentModel.(BoardModel); ok {
			m.boardModel = &bm
		}
	}
	return m, cmd
}

// View renders the current screen.
func (m AppModel) View() string {
	if m.err != nil {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v\n\nPress Ctrl+C to quit", m.err))
	}
	return m.currentModel.View()
}
