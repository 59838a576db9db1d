package storage

import (
	"sync"

	"go.uber.org/atomic"
)

type Entity string

const (
	EntitySettings Entity = "settings"
	EntityCategory Entity = "category"
	EntityTracker  Entity = "tracker"
	EntityRecord   Entity = "record"
)

type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Change describes one committed write. Seq increases by one per write.
type Change struct {
	Seq    uint64
	Entity Entity
	Op     Op
	ID     string
}

// Notifier fans committed changes out to subscribers. Sends never block: a
// subscriber whose buffer is full misses the change, but still has the
// pending ones queued, and Seq lets it tell how far behind it is.
type Notifier struct {
	seq  atomic.Uint64
	mu   sync.Mutex
	subs map[int]chan Change
	next int
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]chan Change)}
}

// Seq returns the sequence number of the last published change.
func (n *Notifier) Seq() uint64 {
	return n.seq.Load()
}

// Publish assigns the next sequence number and delivers the change.
func (n *Notifier) Publish(entity Entity, op Op, id string) Change {
	n.mu.Lock()
	defer n.mu.Unlock()

	c := Change{Seq: n.seq.Inc(), Entity: entity, Op: op, ID: id}
	for _, ch := range n.subs {
		select {
		case ch <- c:
		default:
		}
	}
	return c
}

// Subscribe registers a listener. The returned func unsubscribes and closes
// the channel; it is safe to call more than once.
func (n *Notifier) Subscribe(buffer int) (<-chan Change, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Change, buffer)

	n.mu.Lock()
	id := n.next
	n.next++
	n.subs[id] = ch
	n.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			n.mu.Unlock()
			close(ch)
		})
	}
}
