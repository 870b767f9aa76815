package events

import (
	"sync"
	"time"
)

type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Info    Kind = "info"
	Warning Kind = "warning"
)

// Event is a short-lived notification (what the admin UI shows as a toast).
type Event struct {
	ID      int64             `json:"id"`
	Kind    Kind              `json:"kind"`
	Topic   string            `json:"topic"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data,omitempty"`
	At      time.Time         `json:"at"`
}

// Bus fans events out to subscribers. Create one at the application root and
// pass it down; a nil *Bus drops everything.
type Bus struct {
	mu     sync.RWMutex
	nextID int64
	seq    int
	subs   map[int]func(Event)
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(Event))}
}

// Subscribe registers fn and returns the function that removes it.
// Calling the returned function more than once is harmless.
func (b *Bus) Subscribe(fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	b.seq++
	id := b.seq
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish stamps e with an id and time and delivers it synchronously.
func (b *Bus) Publish(e Event) Event {
	if b == nil {
		return e
	}
	b.mu.Lock()
	b.nextID++
	e.ID = b.nextID
	if e.At.IsZero() {
		e.At = time.Now()
	}
	subs := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.Unlock()

	for _, fn := range subs {
		fn(e)
	}
	return e
}

func (b *Bus) Len() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
