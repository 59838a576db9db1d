package storage

import (
	"testing"
)

func TestNotifierDeliversInOrder(t *testing.T) {
	n := NewNotifier()
	ch, cancel := n.Subscribe(4)
	defer cancel()

	n.Publish(EntityTracker, OpCreate, "t1")
	n.Publish(EntityRecord, OpCreate, "r1")

	first := <-ch
	second := <-ch
	if first.Seq != 1 || first.Entity != EntityTracker || first.ID != "t1" {
		t.Errorf("first change = %+v", first)
	}
	if second.Seq != 2 || second.Entity != EntityRecord {
		t.Errorf("second change = %+v", second)
	}
	if n.Seq() != 2 {
		t.Errorf("Seq() = %d, want 2", n.Seq())
	}
}

func TestNotifierNeverBlocks(t *testing.T) {
	n := NewNotifier()
	ch, cancel := n.Subscribe(1)
	defer cancel()

	for i := 0; i < 10; i++ {
		n.Publish(EntityRecord, OpCreate, "r")
	}

	if got := len(ch); got != 1 {
		t.Errorf("buffered changes = %d, want 1", got)
	}
	if n.Seq() != 10 {
		t.Errorf("Seq() = %d, want 10", n.Seq())
	}
}

func TestNotifierUnsubscribe(t *testing.T) {
	n := NewNotifier()
	ch, cancel := n.Subscribe(1)
	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after unsubscribe")
	}
	// Publishing after unsubscribe must not panic.
	n.Publish(EntitySettings, OpUpdate, "")
}
