// Package receiver implements the background notification receiver: it turns
// push messages into native notifications and routes clicks back to the app.
package receiver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rushmanagement/rushnotify/internal/logging"
	"github.com/rushmanagement/rushnotify/internal/notify"
	"github.com/rushmanagement/rushnotify/internal/prefs"
)

// ErrStopped is returned when events are sent to a receiver that has exited.
var ErrStopped = errors.New("receiver stopped")

const defaultInbox = 64

// Config holds the display defaults and the navigation target.
type Config struct {
	RootURL string // opened on every click
	Icon    string // used when the payload has no icon
	Badge   string // used when the payload has no badge
	Timeout int32  // ms, -1 = server default
}

type eventKind int

const (
	pushEvent eventKind = iota
	clickEvent
)

type event struct {
	kind eventKind
	data []byte
	id   uint32
}

// Receiver is an actor: events are queued on its inbox and handled one at a
// time by Run. It has no access to in-app state; preferences are read from
// the persisted store for every event.
type Receiver struct {
	notifier notify.Notifier
	opener   Opener
	store    prefs.Store
	cfg      Config
	log      logging.Logger
	metrics  *Metrics
	now      func() time.Time

	inbox    chan event
	done     chan struct{}
	stopOnce sync.Once
}

// Option configures a Receiver.
type Option func(*Receiver)

// WithMetrics records handled events in m.
func WithMetrics(m *Metrics) Option {
	return func(r *Receiver) { r.metrics = m }
}

// WithClock overrides the clock used for quiet hours.
func WithClock(now func() time.Time) Option {
	return func(r *Receiver) { r.now = now }
}

// WithInboxSize sets the inbox buffer.
func WithInboxSize(n int) Option {
	return func(r *Receiver) {
		if n > 0 {
			r.inbox = make(chan event, n)
		}
	}
}

// New creates a receiver. Run must be called to start processing.
func New(n notify.Notifier, opener Opener, store prefs.Store, cfg Config, log logging.Logger, opts ...Option) *Receiver {
	if cfg.Timeout == 0 {
		cfg.Timeout = -1
	}
	r := &Receiver{
		notifier: n,
		opener:   opener,
		store:    store,
		cfg:      cfg,
		log:      logging.WithComponent(log, "receiver"),
		now:      time.Now,
		inbox:    make(chan event, defaultInbox),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Push queues a raw push message. It blocks while the inbox is full.
func (r *Receiver) Push(data []byte) error {
	return r.enqueue(event{kind: pushEvent, data: data})
}

// Click queues a click on the notification with the given id.
func (r *Receiver) Click(id uint32) error {
	return r.enqueue(event{kind: clickEvent, id: id})
}

func (r *Receiver) enqueue(ev event) error {
	select {
	case <-r.done:
		return ErrStopped
	default:
	}
	select {
	case r.inbox <- ev:
		return nil
	case <-r.done:
		return ErrStopped
	}
}

// Run handles events until ctx is cancelled. Clicks reported by the
// notifier are handled alongside queued events.
func (r *Receiver) Run(ctx context.Context) error {
	defer r.stopOnce.Do(func() { close(r.done) })

	clicks := r.notifier.Clicks()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-r.inbox:
			r.dispatch(ev)
		case id, ok := <-clicks:
			if !ok {
				clicks = nil
				continue
			}
			r.dispatch(event{kind: clickEvent, id: id})
		}
	}
}

func (r *Receiver) dispatch(ev event) {
	defer func() {
		if p := recover(); p != nil {
			r.log.WithField("panic", p).Error("event handler panicked")
		}
	}()
	switch ev.kind {
	case pushEvent:
		_ = r.HandlePush(ev.data)
	case clickEvent:
		_ = r.HandleClick(ev.id)
	}
}

// HandlePush parses one push message and displays it, applying the user's
// sound, lock screen and category preferences. It returns the displayed
// notification id, or 0 when nothing was shown.
func (r *Receiver) HandlePush(data []byte) uint32 {
	p, err := ParsePayload(data)
	if err != nil {
		r.log.WithError(err).Warn("dropping push message")
		r.metrics.recordPush(resultMalformed)
		return 0
	}

	pr := r.store.Load()
	if !pr.CategoryEnabled(p.Category) {
		r.log.WithField("category", p.Category).Debug("category muted, not displaying")
		r.metrics.recordPush(resultFiltered)
		return 0
	}

	n := r.build(p, pr)
	id, err := r.notifier.Notify(n)
	if err != nil {
		r.log.WithError(err).WithField("title", p.Title).Error("display notification")
		r.metrics.recordPush(resultDisplayError)
		return 0
	}
	r.log.WithFields(logging.Fields{"id": id, "title": p.Title}).Info("notification displayed")
	r.metrics.recordPush(resultDisplayed)
	return id
}

func (r *Receiver) build(p Payload, pr prefs.Preferences) notify.Notification {
	n := notify.Notification{
		Title:         p.Title,
		Body:          p.Body,
		Icon:          p.Icon,
		Badge:         p.Badge,
		Data:          p.notificationData(),
		Timeout:       r.cfg.Timeout,
		Urgency:       notify.UrgencyNormal,
		SuppressSound: !pr.SoundEnabled || pr.QuietHours.Active(r.now()),
		Transient:     !pr.ShowOnLockScreen,
	}
	if n.Icon == "" {
		n.Icon = r.cfg.Icon
	}
	if n.Badge == "" {
		n.Badge = r.cfg.Badge
	}
	return n
}

// HandleClick closes the clicked notification and opens the app root. The
// destination never depends on the notification's payload.
func (r *Receiver) HandleClick(id uint32) error {
	r.metrics.recordClick()
	log := r.log.WithField("id", id)

	if err := r.notifier.Close(id); err != nil {
		log.WithError(err).Warn("close notification")
	}
	if err := r.opener.Open(r.cfg.RootURL); err != nil {
		log.WithError(err).Error("open app")
		return fmt.Errorf("open %s: %w", r.cfg.RootURL, err)
	}
	log.Debug("opened app after click")
	return nil
}
