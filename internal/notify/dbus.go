//go:build linux

package notify

import (
	"encoding/json"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	dbusNotifyDest      = "org.freedesktop.Notifications"
	dbusNotifyPath      = "/org/freedesktop/Notifications"
	dbusNotifyInterface = "org.freedesktop.Notifications"

	signalActionInvoked = dbusNotifyInterface + ".ActionInvoked"
	signalClosed        = dbusNotifyInterface + ".NotificationClosed"

	appName      = "Rush Management"
	desktopEntry = "rushnotify"
	dataHint     = "x-rushnotify-data"
)

// dbusNotifier sends notifications via D-Bus.
type dbusNotifier struct {
	conn    *dbus.Conn
	obj     dbus.BusObject
	signals chan *dbus.Signal
	clicks  chan uint32
	once    sync.Once

	// Notification signals are broadcast to the whole session; only ids
	// returned by our own Notify calls are routed to Clicks.
	mu     sync.Mutex
	issued map[uint32]struct{}
}

// New creates a Notifier that sends desktop notifications via D-Bus.
// Returns a no-op notifier if D-Bus is unavailable.
func New() (Notifier, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		// D-Bus not available, return no-op notifier (intentional graceful degradation)
		return newNoop(), nil //nolint:nilerr // graceful fallback when D-Bus unavailable
	}

	for _, member := range []string{"ActionInvoked", "NotificationClosed"} {
		if err := conn.AddMatchSignal(
			dbus.WithMatchSender(dbusNotifyDest),
			dbus.WithMatchObjectPath(dbusNotifyPath),
			dbus.WithMatchInterface(dbusNotifyInterface),
			dbus.WithMatchMember(member),
		); err != nil {
			conn.Close()
			return nil, err
		}
	}

	n := newDBusNotifier(conn)
	conn.Signal(n.signals)
	go n.forwardClicks()

	return n, nil
}

func newDBusNotifier(conn *dbus.Conn) *dbusNotifier {
	n := &dbusNotifier{
		conn:    conn,
		signals: make(chan *dbus.Signal, 16),
		clicks:  make(chan uint32, 16),
		issued:  make(map[uint32]struct{}),
	}
	if conn != nil {
		n.obj = conn.Object(dbusNotifyDest, dbusNotifyPath)
	}
	return n
}

// forwardClicks runs until Shutdown closes the signal channel. A click is
// dropped rather than blocking when nobody drains Clicks.
func (n *dbusNotifier) forwardClicks() {
	defer close(n.clicks)
	for sig := range n.signals {
		id, ok := n.route(sig)
		if !ok {
			continue
		}
		select {
		case n.clicks <- id:
		default:
		}
	}
}

// route reports the id of a click on one of our notifications. Closed
// notifications are forgotten.
func (n *dbusNotifier) route(sig *dbus.Signal) (uint32, bool) {
	if id, ok := parseClosed(sig); ok {
		n.take(id)
		return 0, false
	}
	id, ok := parseActionInvoked(sig)
	if !ok || !n.take(id) {
		return 0, false
	}
	return id, true
}

func (n *dbusNotifier) track(id uint32) {
	n.mu.Lock()
	n.issued[id] = struct{}{}
	n.mu.Unlock()
}

// take removes id and reports whether it was ours.
func (n *dbusNotifier) take(id uint32) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.issued[id]
	delete(n.issued, id)
	return ok
}

// parseActionInvoked extracts the notification ID from an ActionInvoked
// signal for the default action.
func parseActionInvoked(sig *dbus.Signal) (uint32, bool) {
	if sig == nil || sig.Name != signalActionInvoked || len(sig.Body) < 2 {
		return 0, false
	}
	id, ok := sig.Body[0].(uint32)
	if !ok {
		return 0, false
	}
	action, ok := sig.Body[1].(string)
	if !ok || action != DefaultAction {
		return 0, false
	}
	return id, true
}

func parseClosed(sig *dbus.Signal) (uint32, bool) {
	if sig == nil || sig.Name != signalClosed || len(sig.Body) < 1 {
		return 0, false
	}
	id, ok := sig.Body[0].(uint32)
	return id, ok
}

// buildHints maps a Notification onto freedesktop hints.
func buildHints(notif Notification) map[string]dbus.Variant {
	hints := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(notif.Urgency)),
		"desktop-entry": dbus.MakeVariant(desktopEntry),
	}
	if notif.Badge != "" {
		hints["image-path"] = dbus.MakeVariant(notif.Badge)
	}
	if notif.SuppressSound {
		hints["suppress-sound"] = dbus.MakeVariant(true)
	}
	if notif.Transient {
		hints["transient"] = dbus.MakeVariant(true)
	}
	if len(notif.Data) > 0 {
		if data, err := json.Marshal(notif.Data); err == nil {
			hints[dataHint] = dbus.MakeVariant(string(data))
		}
	}
	return hints
}

// Notify sends a notification via D-Bus.
func (n *dbusNotifier) Notify(notif Notification) (uint32, error) {
	// D-Bus Notify method signature:
	// Notify(app_name, replaces_id, icon, summary, body, actions, hints, timeout) -> id
	call := n.obj.Call(
		dbusNotifyInterface+".Notify",
		0,                               // flags
		appName,                         // app_name
		notif.ReplacesID,                // replaces_id
		notif.Icon,                      // app_icon (path or icon name)
		notif.Title,                     // summary
		notif.Body,                      // body
		[]string{DefaultAction, "Open"}, // actions
		buildHints(notif),               // hints
		notif.Timeout,                   // expire_timeout
	)

	if call.Err != nil {
		return 0, call.Err
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, err
	}
	n.track(id)

	return id, nil
}

// Close closes a notification by ID.
func (n *dbusNotifier) Close(id uint32) error {
	n.take(id)
	call := n.obj.Call(dbusNotifyInterface+".CloseNotification", 0, id)
	return call.Err
}

// Clicks implements Notifier.
func (n *dbusNotifier) Clicks() <-chan uint32 {
	return n.clicks
}

// Available checks whether a notification server owns the well-known name.
func (n *dbusNotifier) Available() bool {
	var owned bool
	err := n.conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, dbusNotifyDest).Store(&owned)
	return err == nil && owned
}

// Shutdown stops signal delivery and closes the connection.
func (n *dbusNotifier) Shutdown() error {
	var err error
	n.once.Do(func() {
		n.conn.RemoveSignal(n.signals)
		close(n.signals)
		err = n.conn.Close()
	})
	return err
}
