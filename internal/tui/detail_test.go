package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robby/sprintreport/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetailModel_View(t *testing.T) {
	s := createTestStore(t)
	card, err := s.GetCard("card-3")
	require.NoError(t, err)

	detail := NewDetailModel(card)
	model, _ := detail.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	detail = model.(DetailModel)

	view := detail.View()
	assert.Contains(t, view, "Task 3")
	assert.Contains(t, view, "Done")
	assert.Contains(t, view, string(domain.StateDone))
	assert.Contains(t, view, "Bug")
	assert.Contains(t, view, "Notes")
	assert.Contains(t, view, "early")
	assert.NotContains(t, view, "Incoming")
}

func TestDetailModel_NoDescription(t *testing.T) {
	s := createTestStore(t)
	card, err := s.GetCard("card-5")
	require.NoError(t, err)

	detail := NewDetailModel(card)
	view := detail.View()

	assert.Contains(t, view, "No description")
	assert.Contains(t, view, "Incoming")
	assert.Contains(t, view, "https://trello.com/c/abc")
}

func TestDetailModel_Keys(t *testing.T) {
	s := createTestStore(t)
	card, err := s.GetCard("card-5")
	require.NoError(t, err)

	var opened []string
	orig := openURL
	t.Cleanup(func() { openURL = orig })
	openURL = func(url string) error {
		opened = append(opened, url)
		return nil
	}

	detail := NewDetailModel(card)

	_, cmd := detail.Update(keyRunes('o'))
	assert.Nil(t, cmd)
	assert.Equal(t, []string{"https://trello.com/c/abc"}, opened)

	_, cmd = detail.Update(keyRunes('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, closeDetailMsg{}, cmd())
}

func TestAppModel_ScreenTransitions(t *testing.T) {
	app := NewAppModel(createTestStore(t))
	assert.Equal(t, ScreenBoard, app.currentScreen)

	// Move to the Done column and open the first card
	model, _ := app.Update(keyRunes('l'))
	model, _ = model.Update(keyRunes('l'))
	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	model, _ = model.Update(cmd())
	app = model.(AppModel)
	require.Equal(t, ScreenDetail, app.currentScreen)
	assert.Contains(t, app.View(), "Task 3")

	// Closing returns to the board with its selection intact
	model, _ = app.Update(closeDetailMsg{})
	app = model.(AppModel)
	assert.Equal(t, ScreenBoard, app.currentScreen)
	assert.Equal(t, 2, app.boardModel.selectedColumn)
}

func TestAppModel_Error(t *testing.T) {
	app := NewAppModel(createTestStore(t))

	model, _ := app.Update(ErrorMsg{Err: assert.AnError})
	app = model.(AppModel)

	assert.Contains(t, app.View(), "Error:")
}
