package board

import (
	"github.com/julianstephens/tally/internal/visibility"
)

// IndexPath addresses an item within a view.
type IndexPath struct {
	Section int
	Item    int
}

// Diff describes how to turn one view into the next. Deletions use indexes
// in the old view, insertions and reloads use indexes in the new one.
// Sections are matched by title and items by tracker id.
type Diff struct {
	InsertedSections []int
	DeletedSections  []int
	InsertedItems    []IndexPath
	DeletedItems     []IndexPath
	ReloadedItems    []IndexPath
}

func (d Diff) Empty() bool {
	return len(d.InsertedSections) == 0 && len(d.DeletedSections) == 0 &&
		len(d.InsertedItems) == 0 && len(d.DeletedItems) == 0 && len(d.ReloadedItems) == 0
}

// ComputeDiff compares two views.
func ComputeDiff(prev, next visibility.View) Diff {
	var d Diff

	prevSections := make(map[string]int, len(prev.Sections))
	for i, s := range prev.Sections {
		prevSections[s.Title] = i
	}
	nextSections := make(map[string]int, len(next.Sections))
	for i, s := range next.Sections {
		nextSections[s.Title] = i
	}

	for i, s := range prev.Sections {
		if _, ok := nextSections[s.Title]; !ok {
			d.DeletedSections = append(d.DeletedSections, i)
		}
	}

	for ni, s := range next.Sections {
		pi, ok := prevSections[s.Title]
		if !ok {
			d.InsertedSections = append(d.InsertedSections, ni)
			continue
		}

		old := prev.Sections[pi]
		oldItems := make(map[string]int, len(old.Items))
		for i, it := range old.Items {
			oldItems[it.Tracker.ID] = i
		}
		newItems := make(map[string]int, len(s.Items))
		for i, it := range s.Items {
			newItems[it.Tracker.ID] = i
		}

		for i, it := range old.Items {
			if _, ok := newItems[it.Tracker.ID]; !ok {
				d.DeletedItems = append(d.DeletedItems, IndexPath{Section: pi, Item: i})
			}
		}
		for i, it := range s.Items {
			oi, ok := oldItems[it.Tracker.ID]
			if !ok {
				d.InsertedItems = append(d.InsertedItems, IndexPath{Section: ni, Item: i})
				continue
			}
			if !sameItem(old.Items[oi], it) {
				d.ReloadedItems = append(d.ReloadedItems, IndexPath{Section: ni, Item: i})
			}
		}
	}
	return d
}

func sameItem(a, b visibility.Item) bool {
	return a.Completed == b.Completed &&
		a.CompletionCount == b.CompletionCount &&
		a.Locked == b.Locked &&
		a.Tracker.Name == b.Tracker.Name &&
		a.Tracker.Emoji == b.Tracker.Emoji &&
		a.Tracker.Color == b.Tracker.Color &&
		a.Tracker.Schedule == b.Tracker.Schedule &&
		a.Tracker.Kind == b.Tracker.Kind
}
