package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/tally/internal/board"
	"github.com/julianstephens/tally/internal/completion"
	"github.com/julianstephens/tally/internal/logger"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		// date line, tabs, search, status and help
		m.list.SetSize(msg.Width-h, msg.Height-v-6)
		return m, nil

	case boardUpdateMsg:
		// Updates can be dropped when the channel is full, so the message is
		// only a signal; the board's current view is always re-read.
		if msg.Version != m.version || !msg.Diff.Empty() {
			m.version = msg.Version
			m.setView(m.board.View())
		}
		return m, waitForUpdate(m.board.Updates())
	}

	switch m.state {
	case StateAddTracker, StateEditTracker:
		return m.updateForm(msg)
	case StateSearch:
		return m.updateSearch(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if handled, cmd := m.handleBoardKeys(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleBoardKeys reports whether the key was consumed.
func (m *Model) handleBoardKeys(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return true, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return true, nil

	case key.Matches(msg, m.keys.Toggle):
		m.clearMessages()
		it, ok := m.selected()
		if !ok {
			return true, nil
		}
		if it.Locked {
			m.err = "Future days cannot be marked"
			return true, nil
		}
		done, err := m.board.Toggle(it.Tracker.ID)
		if err != nil {
			m.showError(err)
		} else if done {
			m.status = fmt.Sprintf("%s marked done", it.Tracker.Name)
		} else {
			m.status = fmt.Sprintf("%s unmarked", it.Tracker.Name)
		}
		m.setView(m.board.View())
		return true, nil

	case key.Matches(msg, m.keys.PrevDay):
		m.moveDay(-1)
		return true, nil

	case key.Matches(msg, m.keys.NextDay):
		m.moveDay(1)
		return true, nil

	case key.Matches(msg, m.keys.Today):
		m.clearMessages()
		m.search.SetValue("")
		m.setView(m.board.SelectDate(m.board.Now()))
		return true, nil

	case key.Matches(msg, m.keys.Filter):
		m.clearMessages()
		v, err := m.board.SelectFilter(m.view.Mode.Next())
		if err != nil {
			m.showError(err)
		}
		m.setView(v)
		return true, nil

	case key.Matches(msg, m.keys.Search):
		m.clearMessages()
		m.state = StateSearch
		return true, m.search.Focus()

	case key.Matches(msg, m.keys.Back):
		if m.view.Search != "" {
			m.search.SetValue("")
			m.setView(m.board.Search(""))
		}
		return true, nil

	case key.Matches(msg, m.keys.Counts):
		m.clearMessages()
		settings := m.board.Snapshot().Settings
		settings.ShowCounts = !settings.ShowCounts
		if err := m.board.SaveSettings(settings); err != nil {
			m.showError(err)
			return true, nil
		}
		*m.showCounts = settings.ShowCounts
		return true, nil

	case key.Matches(msg, m.keys.Add):
		m.clearMessages()
		m.trackerForm = newTrackerFormModel()
		m.editingID = ""
		m.form = NewTrackerForm(m.trackerForm, m.categoryTitles())
		m.state = StateAddTracker
		return true, m.form.Init()

	case key.Matches(msg, m.keys.Edit):
		m.clearMessages()
		it, ok := m.selected()
		if !ok {
			return true, nil
		}
		m.trackerForm = formModelFrom(board.DraftFrom(it.Tracker, it.Category))
		m.editingID = it.Tracker.ID
		m.form = NewTrackerForm(m.trackerForm, m.categoryTitles())
		m.state = StateEditTracker
		return true, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		m.clearMessages()
		if it, ok := m.selected(); ok {
			m.deleteTarget = &it
			m.state = StateConfirmDelete
		}
		return true, nil
	}
	return false, nil
}

func (m *Model) moveDay(days int) {
	m.clearMessages()
	m.search.SetValue("")
	date := m.board.Selection().Date.AddDate(0, 0, days)
	m.setView(m.board.SelectDate(date))
}

func (m Model) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			m.search.SetValue("")
			m.search.Blur()
			m.state = StateBoard
			m.setView(m.board.Search(""))
			return m, nil
		case key.Matches(msg, m.keys.Complete):
			m.search.Blur()
			m.state = StateBoard
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.view.Search {
		m.setView(m.board.Search(m.search.Value()))
	}
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateBoard
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.submitForm()
		m.state = StateBoard
	case huh.StateAborted:
		m.state = StateBoard
	}
	return m, cmd
}

// submitForm saves the tracker form. Errors are shown on the board.
func (m *Model) submitForm() {
	draft := m.trackerForm.Draft()
	if m.editingID == "" {
		t, err := m.board.AddTracker(draft)
		if err != nil {
			m.showError(err)
			return
		}
		m.status = fmt.Sprintf("Added %s %s", t.Emoji, t.Name)
	} else {
		t, err := m.board.UpdateTracker(m.editingID, draft)
		if err != nil {
			m.showError(err)
			return
		}
		m.status = fmt.Sprintf("Updated %s", t.Name)
	}
	m.setView(m.board.View())
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		if m.deleteTarget != nil {
			if err := m.board.DeleteTracker(m.deleteTarget.Tracker.ID); err != nil {
				m.showError(err)
			} else {
				m.status = fmt.Sprintf("Deleted %s", m.deleteTarget.Tracker.Name)
			}
			m.setView(m.board.View())
		}
		m.deleteTarget = nil
		m.state = StateBoard
	case key.Matches(keyMsg, m.keys.Cancel):
		m.deleteTarget = nil
		m.state = StateBoard
	}
	return m, nil
}

func (m *Model) categoryTitles() []string {
	var titles []string
	for _, c := range m.board.Snapshot().Categories {
		titles = append(titles, c.Title)
	}
	return titles
}

func (m *Model) showError(err error) {
	if errors.Is(err, completion.ErrFutureDate) {
		m.err = "Future days cannot be marked"
		return
	}
	logger.Debug("Board operation failed", "error", err)
	m.err = err.Error()
}

func (m *Model) clearMessages() {
	m.status = ""
	m.err = ""
}
