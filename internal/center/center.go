// Package center implements the in-app notification center: an ordered,
// session-scoped log of user-facing messages with unread tracking.
package center

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind is the severity of an entry.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
)

// Entry is a single in-app notification.
type Entry struct {
	ID        string
	Kind      Kind
	Title     string
	Message   string
	Read      bool
	CreatedAt time.Time
}

// EventType describes a change to the center.
type EventType int

const (
	EventAdded EventType = iota
	EventRead
	EventRemoved
	EventCleared
)

// Event is delivered to subscribers after every mutation.
type Event struct {
	Type   EventType
	Entry  Entry // zero for EventCleared and bulk reads
	Unread int
}

// Option configures a Center.
type Option func(*Center)

// WithLimit caps the number of retained entries; the oldest are evicted first.
// A limit <= 0 means unbounded.
func WithLimit(n int) Option {
	return func(c *Center) { c.limit = n }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Center) { c.now = now }
}

// Center holds the entries for the current process. It is safe for
// concurrent use; Show calls append in the order they acquire the lock.
type Center struct {
	mu      sync.Mutex
	entries []Entry
	unread  int
	limit   int
	now     func() time.Time

	subsMu sync.Mutex
	subs   map[int]chan Event
	nextID int
}

// New creates an empty center.
func New(opts ...Option) *Center {
	c := &Center{
		now:  time.Now,
		subs: make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Show appends a new unread entry and returns it.
func (c *Center) Show(kind Kind, title, message string) Entry {
	e := Entry{
		ID:        uuid.New().String(),
		Kind:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: c.now(),
	}

	c.mu.Lock()
	c.entries = append(c.entries, e)
	c.unread++
	if c.limit > 0 && len(c.entries) > c.limit {
		evicted := len(c.entries) - c.limit
		for _, old := range c.entries[:evicted] {
			if !old.Read {
				c.unread--
			}
		}
		c.entries = append([]Entry(nil), c.entries[evicted:]...)
	}
	unread := c.unread
	c.mu.Unlock()

	c.publish(Event{Type: EventAdded, Entry: e, Unread: unread})
	return e
}

// Success records a success entry.
func (c *Center) Success(title, message string) Entry { return c.Show(KindSuccess, title, message) }

// Error records an error entry.
func (c *Center) Error(title, message string) Entry { return c.Show(KindError, title, message) }

// Info records an informational entry.
func (c *Center) Info(title, message string) Entry { return c.Show(KindInfo, title, message) }

// Warning records a warning entry.
func (c *Center) Warning(title, message string) Entry { return c.Show(KindWarning, title, message) }

// MarkRead marks the entry as read. Unknown ids are ignored.
func (c *Center) MarkRead(id string) {
	c.mu.Lock()
	var marked Entry
	found := false
	for i := range c.entries {
		if c.entries[i].ID == id {
			if !c.entries[i].Read {
				c.entries[i].Read = true
				c.unread--
				marked = c.entries[i]
				found = true
			}
			break
		}
	}
	unread := c.unread
	c.mu.Unlock()

	if found {
		c.publish(Event{Type: EventRead, Entry: marked, Unread: unread})
	}
}

// MarkAllRead marks every entry as read.
func (c *Center) MarkAllRead() {
	c.mu.Lock()
	changed := c.unread > 0
	for i := range c.entries {
		c.entries[i].Read = true
	}
	c.unread = 0
	c.mu.Unlock()

	if changed {
		c.publish(Event{Type: EventRead})
	}
}

// Remove deletes a single entry. Unknown ids are ignored.
func (c *Center) Remove(id string) {
	c.mu.Lock()
	var removed Entry
	found := false
	for i := range c.entries {
		if c.entries[i].ID == id {
			removed = c.entries[i]
			if !removed.Read {
				c.unread--
			}
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			found = true
			break
		}
	}
	unread := c.unread
	c.mu.Unlock()

	if found {
		c.publish(Event{Type: EventRemoved, Entry: removed, Unread: unread})
	}
}

// Clear removes all entries.
func (c *Center) Clear() {
	c.mu.Lock()
	c.entries = nil
	c.unread = 0
	c.mu.Unlock()

	c.publish(Event{Type: EventCleared})
}

// Entries returns a copy of the entries in insertion order.
func (c *Center) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// UnreadCount returns the number of unread entries.
func (c *Center) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread
}

// Recount counts unread entries from scratch.
func Recount(entries []Entry) int {
	n := 0
	for _, e := range entries {
		if !e.Read {
			n++
		}
	}
	return n
}

// Subscribe registers a listener. Events are dropped for a subscriber whose
// buffer is full so producers never block. The returned func unsubscribes.
func (c *Center) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	c.subsMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = ch
	c.subsMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.subsMu.Lock()
			delete(c.subs, id)
			c.subsMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (c *Center) publish(ev Event) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
