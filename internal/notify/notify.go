// Package notify provides native desktop notifications via D-Bus.
package notify

// Urgency represents notification priority levels as defined by org.freedesktop.Notifications.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// DefaultAction is the action key servers invoke when the notification body
// is clicked.
const DefaultAction = "default"

// Notification contains data for a desktop notification.
type Notification struct {
	Title         string         // Summary text (required)
	Body          string         // Body text (optional, supports basic markup)
	Icon          string         // Path to image file or icon name (optional)
	Badge         string         // Secondary image shown by servers that support image-path
	Data          map[string]any // Opaque payload fields passed through as a hint
	Timeout       int32          // ms, -1 = server default, 0 = never expire
	ReplacesID    uint32         // 0 = new notification, >0 = replace existing
	Urgency       Urgency        // Low, Normal, Critical
	SuppressSound bool           // Ask the server not to play a sound
	Transient     bool           // Bypass the persistence/lock-screen history
}

// Notifier displays desktop notifications.
type Notifier interface {
	// Notify shows a notification and returns its ID.
	// Returns 0 and nil error if notifications are unavailable.
	Notify(n Notification) (uint32, error)
	// Close closes a notification by ID.
	Close(id uint32) error
	// Clicks delivers the IDs of notifications whose default action was
	// invoked. The channel is closed by Shutdown.
	Clicks() <-chan uint32
	// Available reports whether a notification server is reachable.
	Available() bool
	// Shutdown releases the connection.
	Shutdown() error
}

// noopNotifier is used when no notification server is reachable.
type noopNotifier struct {
	clicks chan uint32
}

func newNoop() *noopNotifier {
	return &noopNotifier{clicks: make(chan uint32)}
}

func (s *noopNotifier) Notify(_ Notification) (uint32, error) { return 0, nil }

func (s *noopNotifier) Close(_ uint32) error { return nil }

func (s *noopNotifier) Clicks() <-chan uint32 { return s.clicks }

func (s *noopNotifier) Available() bool { return false }

func (s *noopNotifier) Shutdown() error {
	close(s.clicks)
	return nil
}
