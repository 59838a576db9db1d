package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/utils"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case StateAddTracker, StateEditTracker:
		return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			dateStyle.Render(m.formTitle()),
			"",
			m.form.View(),
		))
	case StateConfirmDelete:
		return m.viewConfirmDelete()
	}

	ui := lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		m.viewSearch(),
		m.viewBoard(),
		m.viewStatus(),
		m.help.View(m),
	)
	return docStyle.Render(ui)
}

func (m Model) formTitle() string {
	if m.state == StateEditTracker {
		return "Edit tracker"
	}
	return "New tracker"
}

func (m Model) viewHeader() string {
	date := m.view.Date.Format("Monday, Jan 2 2006")
	if utils.SameDay(m.view.Date, m.board.Now()) {
		date += " (today)"
	}
	header := dateStyle.Render(date)

	// Filters only make sense when something is scheduled for the day.
	if !m.view.ShowFilterButton {
		return header
	}
	var tabs []string
	for _, mode := range models.FilterModes {
		if mode == m.view.Mode {
			tabs = append(tabs, activeTabStyle.Render(mode.Label()))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(mode.Label()))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

func (m Model) viewSearch() string {
	if m.state == StateSearch {
		return m.search.View()
	}
	if m.view.Search != "" {
		return dimStyle.Render(fmt.Sprintf("Search: %q (esc to clear)", m.view.Search))
	}
	return ""
}

func (m Model) viewBoard() string {
	if m.view.Empty {
		msg := emptyStyle.Render(m.view.EmptyReason.String())
		if m.width == 0 || m.height == 0 {
			return "\n  " + msg + "\n"
		}
		h, v := docStyle.GetFrameSize()
		return lipgloss.Place(m.width-h, m.height-v-6, lipgloss.Center, lipgloss.Center, msg)
	}
	return m.list.View()
}

func (m Model) viewStatus() string {
	switch {
	case m.err != "":
		return dangerStyle.Render(m.err)
	case m.status != "":
		return statusStyle.Render(m.status)
	}
	return ""
}

func (m Model) viewConfirmDelete() string {
	name := ""
	if m.deleteTarget != nil {
		name = m.deleteTarget.Tracker.Emoji + " " + m.deleteTarget.Tracker.Name
	}
	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete %s?", name)),
			warningStyle.Render("Completion history is kept and the tracker can be restored."),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
