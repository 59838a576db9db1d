// Package tui is the interactive tracker board.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/tally/internal/board"
	"github.com/julianstephens/tally/internal/visibility"
)

type SessionState int

const (
	StateBoard SessionState = iota
	StateSearch
	StateAddTracker
	StateEditTracker
	StateConfirmDelete
)

// boardUpdateMsg carries a view change pushed by the board.
type boardUpdateMsg board.Update

type Model struct {
	board        *board.Board
	state        SessionState
	keys         KeyMap
	help         help.Model
	list         list.Model
	search       textinput.Model
	form         *huh.Form
	trackerForm  *TrackerFormModel
	editingID    string
	deleteTarget *Item
	view         visibility.View
	version      uint64
	showCounts   *bool
	status       string
	err          string
	quitting     bool
	width        int
	height       int
}

func NewModel(b *board.Board) Model {
	showCounts := b.Snapshot().Settings.ShowCounts

	l := list.New(nil, trackerDelegate{showCounts: &showCounts}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	ti := textinput.New()
	ti.Placeholder = "Search"
	ti.Prompt = "🔍 "
	ti.CharLimit = 64

	m := Model{
		board:      b,
		state:      StateBoard,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		list:       l,
		search:     ti,
		showCounts: &showCounts,
		version:    b.Snapshot().Version,
	}
	m.setView(b.View())
	return m
}

func (m Model) Init() tea.Cmd {
	return waitForUpdate(m.board.Updates())
}

// waitForUpdate blocks on the board's update channel. It is re-issued after
// every delivered update.
func waitForUpdate(ch <-chan board.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return nil
		}
		return boardUpdateMsg(u)
	}
}

// setView replaces the list contents, keeping the cursor on the same tracker
// when it is still visible.
func (m *Model) setView(v visibility.View) {
	selectedID := ""
	if it, ok := m.list.SelectedItem().(Item); ok {
		selectedID = it.Tracker.ID
	}

	m.view = v
	items := itemsFromView(v)
	m.list.SetItems(items)

	for idx, it := range items {
		if it.(Item).Tracker.ID == selectedID {
			m.list.Select(idx)
			return
		}
	}
	if m.list.Index() >= len(items) && len(items) > 0 {
		m.list.Select(len(items) - 1)
	}
}

// selected returns the tracker under the cursor.
func (m Model) selected() (Item, bool) {
	it, ok := m.list.SelectedItem().(Item)
	return it, ok
}

func (m Model) ShortHelp() []key.Binding {
	switch m.state {
	case StateSearch:
		return []key.Binding{m.keys.Complete, m.keys.Back}
	case StateConfirmDelete:
		return []key.Binding{m.keys.Confirm, m.keys.Cancel}
	}
	return []key.Binding{m.keys.Toggle, m.keys.PrevDay, m.keys.NextDay, m.keys.Filter, m.keys.Search, m.keys.Add, m.keys.Help, m.keys.Quit}
}

func (m Model) FullHelp() [][]key.Binding {
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.PrevDay, m.keys.NextDay, m.keys.Today}
	board := []key.Binding{m.keys.Toggle, m.keys.Filter, m.keys.Search, m.keys.Counts}
	trackers := []key.Binding{m.keys.Add, m.keys.Edit, m.keys.Delete}
	global := []key.Binding{m.keys.Help, m.keys.Quit}
	return [][]key.Binding{navigation, board, trackers, global}
}
