package board

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/visibility"
)

func item(id string, done bool) visibility.Item {
	return visibility.Item{Tracker: models.Tracker{ID: id, Name: id}, Completed: done}
}

func TestComputeDiff(t *testing.T) {
	prev := visibility.View{Sections: []visibility.Section{
		{Title: "Health", Items: []visibility.Item{item("run", false), item("swim", false)}},
		{Title: "Mind", Items: []visibility.Item{item("read", false)}},
	}}
	next := visibility.View{Sections: []visibility.Section{
		{Title: "Chores", Items: []visibility.Item{item("dishes", false)}},
		{Title: "Health", Items: []visibility.Item{item("run", true), item("stretch", false)}},
	}}

	d := ComputeDiff(prev, next)
	assert.Equal(t, []int{0}, d.InsertedSections)
	assert.Equal(t, []int{1}, d.DeletedSections)
	assert.Equal(t, []IndexPath{{Section: 0, Item: 1}}, d.DeletedItems)
	assert.Equal(t, []IndexPath{{Section: 1, Item: 1}}, d.InsertedItems)
	assert.Equal(t, []IndexPath{{Section: 1, Item: 0}}, d.ReloadedItems)
	assert.False(t, d.Empty())
}

func TestComputeDiffIdentical(t *testing.T) {
	v := visibility.View{Sections: []visibility.Section{
		{Title: "Health", Items: []visibility.Item{item("run", true)}},
	}}
	assert.True(t, ComputeDiff(v, v).Empty())
	assert.True(t, ComputeDiff(visibility.View{}, visibility.View{}).Empty())
}
