package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/julianstephens/tally/internal/completion"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/visibility"
)

type Item struct {
	Tracker   models.Tracker
	Category  string
	Completed bool
	Count     int
	Locked    bool
	// First marks the first item of a section; the delegate prints the
	// category title above it.
	First bool
}

func (i Item) Title() string {
	mark := "○"
	switch {
	case i.Locked:
		mark = "·"
	case i.Completed:
		mark = "✓"
	}
	return fmt.Sprintf("%s %s %s", mark, i.Tracker.Emoji, i.Tracker.Name)
}

func (i Item) Description() string {
	if i.Tracker.Kind == models.TrackerKindEvent {
		return "irregular event"
	}
	return i.Tracker.Schedule.String()
}

func (i Item) FilterValue() string { return i.Tracker.Name }

// itemsFromView flattens a view into list items, section by section.
func itemsFromView(v visibility.View) []list.Item {
	var items []list.Item
	for _, s := range v.Sections {
		for j, it := range s.Items {
			items = append(items, Item{
				Tracker:   it.Tracker,
				Category:  s.Title,
				Completed: it.Completed,
				Count:     it.CompletionCount,
				Locked:    it.Locked,
				First:     j == 0,
			})
		}
	}
	return items
}

// trackerDelegate renders one tracker per line, preceded by its category
// title when it opens a section.
type trackerDelegate struct {
	showCounts *bool
}

func (d trackerDelegate) Height() int                             { return 2 }
func (d trackerDelegate) Spacing() int                            { return 0 }
func (d trackerDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d trackerDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(Item)
	if !ok {
		return
	}

	header := ""
	if i.First {
		header = dimStyle.Render(strings.ToUpper(i.Category))
	}

	width := m.Width() - 4
	if width < 10 {
		width = 10
	}
	title := runewidth.Truncate(i.Title(), width, "…")
	marker := trackerStyle(i.Tracker.Color.String()).Render("▌")
	cursor := "  "
	if index == m.Index() {
		cursor = selectedStyle.Render("> ")
		title = selectedStyle.Render(title)
	} else if i.Completed {
		title = dimStyle.Render(title)
	}

	line := cursor + marker + " " + title
	if d.showCounts != nil && *d.showCounts {
		line += "  " + dimStyle.Render(completion.DaysLabel(i.Count))
	}
	fmt.Fprintf(w, "%s\n%s", header, line)
}
