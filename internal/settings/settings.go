// Package settings orchestrates the notification settings screen: stored
// preferences, the platform permission and the backend subscription, with
// every outcome reported through the in-app notification center.
package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rushmanagement/rushnotify/internal/api"
	"github.com/rushmanagement/rushnotify/internal/center"
	"github.com/rushmanagement/rushnotify/internal/errmsg"
	"github.com/rushmanagement/rushnotify/internal/logging"
	"github.com/rushmanagement/rushnotify/internal/permission"
	"github.com/rushmanagement/rushnotify/internal/prefs"
)

// ErrTestUnavailable is returned by SendTest when push is disabled or
// permission is not granted.
var ErrTestUnavailable = errors.New("test notification unavailable")

// Backend is the part of the REST API the settings screen calls.
type Backend interface {
	Subscribe(ctx context.Context, sub api.Subscription) (api.SubscriptionResult, error)
	SendTest(ctx context.Context, req api.TestRequest) error
}

// Device identifies this installation to the backend.
type Device struct {
	ID       string `json:"id"`
	Platform string `json:"platform"`
	Endpoint string `json:"endpoint"` // where the backend should deliver pushes
}

// Badge is the read-only permission indicator.
type Badge struct {
	State permission.State
	Label string
}

// BadgeFor maps a permission state to its badge.
func BadgeFor(st permission.State) Badge {
	switch st {
	case permission.Granted:
		return Badge{State: st, Label: "Allowed"}
	case permission.Denied:
		return Badge{State: st, Label: "Blocked"}
	default:
		return Badge{State: permission.Default, Label: "Not requested"}
	}
}

// Controller holds the settings screen's in-memory copy of the
// preferences and the last observed permission state.
type Controller struct {
	store      prefs.Store
	negotiator *permission.Negotiator
	center     *center.Center
	backend    Backend
	device     Device
	log        logging.Logger

	mu     sync.Mutex
	prefs  prefs.Preferences
	status permission.State
}

// New creates a controller. backend may be nil when no API is configured;
// subscription registration is then skipped.
func New(store prefs.Store, negotiator *permission.Negotiator, c *center.Center, backend Backend, device Device, log logging.Logger) *Controller {
	return &Controller{
		store:      store,
		negotiator: negotiator,
		center:     c,
		backend:    backend,
		device:     device,
		log:        logging.WithComponent(log, "settings"),
		prefs:      prefs.Default(),
		status:     permission.Default,
	}
}

// Mount loads the preferences and probes the permission. The two reads are
// independent and may disagree, e.g. push enabled while permission was
// revoked outside the app.
func (c *Controller) Mount() (prefs.Preferences, permission.State) {
	p := c.store.Load()
	st := c.negotiator.CurrentStatus()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.prefs = p
	c.status = st
	if p.PushEnabled && st != permission.Granted {
		c.log.WithField("permission", st).Warn("push enabled but permission not granted")
	}
	return p.Clone(), st
}

// Refresh re-derives the permission state.
func (c *Controller) Refresh() permission.State {
	st := c.negotiator.CurrentStatus()
	c.mu.Lock()
	c.status = st
	c.mu.Unlock()
	return st
}

// Preferences returns a copy of the current preferences.
func (c *Controller) Preferences() prefs.Preferences {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prefs.Clone()
}

// Status returns the last observed permission state.
func (c *Controller) Status() permission.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Badge derives the permission badge from the platform state only.
func (c *Controller) Badge() Badge {
	return BadgeFor(c.Status())
}

// CanSendTest reports whether the test action is enabled.
func (c *Controller) CanSendTest() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prefs.PushEnabled && c.status == permission.Granted
}

// TogglePush applies the push toggle. The outcome is reported as exactly
// one center entry. The permission prompt may block, so callers on a UI
// loop should run this off the loop.
func (c *Controller) TogglePush(ctx context.Context, enabled bool) error {
	current := c.Preferences()

	next, st, err := c.negotiator.SetPushEnabled(ctx, current, enabled)
	c.mu.Lock()
	c.prefs = next
	c.status = st
	c.mu.Unlock()

	switch {
	case errors.Is(err, permission.ErrPermissionDenied):
		c.log.WithField("permission", st).Info("push permission not granted")
		c.center.Error("Notifications blocked", deniedMessage(st))
		return err
	case err != nil:
		c.log.WithError(err).Error("save push preference")
		c.center.Error("Settings not saved", errmsg.Format(errmsg.OpPrefsSave, err))
		return err
	case !enabled:
		c.center.Info("Push notifications disabled", "This device will no longer receive push notifications.")
		return nil
	}

	if err := c.subscribe(ctx, next); err != nil {
		c.log.WithError(err).Error("register push subscription")
		// Without a subscription nothing would be delivered. Only the flag
		// is reverted; edits made while subscribing are kept.
		if saveErr := c.apply(func(p *prefs.Preferences) { p.PushEnabled = false }); saveErr != nil {
			c.log.WithError(saveErr).Error("roll back push preference")
		}
		c.center.Error("Push registration failed", errmsg.Format(errmsg.OpPushSubscribe, err))
		return err
	}

	c.center.Success("Push notifications enabled", "You will receive notifications on this device.")
	return nil
}

func deniedMessage(st permission.State) string {
	if st == permission.Denied {
		return "Notification permission is blocked. Allow notifications for Rush Management in your system settings, then try again."
	}
	return "Notification permission was not granted. Push notifications remain off."
}

func (c *Controller) subscribe(ctx context.Context, p prefs.Preferences) error {
	if c.backend == nil {
		return nil
	}
	var cats []string
	for _, cat := range prefs.Categories {
		if p.CategoryEnabled(cat) {
			cats = append(cats, string(cat))
		}
	}
	res, err := c.backend.Subscribe(ctx, api.Subscription{
		DeviceID:   c.device.ID,
		Platform:   c.device.Platform,
		Endpoint:   c.device.Endpoint,
		Categories: cats,
	})
	if err != nil {
		return err
	}
	c.log.WithField("subscription", res.ID).Info("push subscription registered")
	return nil
}

// update mutates the in-memory copy and persists the whole object. On a
// failed save the in-memory copy is left unchanged.
func (c *Controller) update(mutate func(*prefs.Preferences)) error {
	if err := c.apply(mutate); err != nil {
		c.log.WithError(err).Error("save preferences")
		c.center.Error("Settings not saved", errmsg.Format(errmsg.OpPrefsSave, err))
		return err
	}
	return nil
}

// apply is update without the center entry.
func (c *Controller) apply(mutate func(*prefs.Preferences)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.prefs.Clone()
	mutate(&next)
	if err := c.store.Save(next); err != nil {
		return err
	}
	c.prefs = next
	return nil
}

// SetSound toggles notification sounds.
func (c *Controller) SetSound(on bool) error {
	return c.update(func(p *prefs.Preferences) { p.SoundEnabled = on })
}

// SetVibration toggles vibration.
func (c *Controller) SetVibration(on bool) error {
	return c.update(func(p *prefs.Preferences) { p.VibrationEnabled = on })
}

// SetLockScreen toggles showing notifications on the lock screen.
func (c *Controller) SetLockScreen(on bool) error {
	return c.update(func(p *prefs.Preferences) { p.ShowOnLockScreen = on })
}

// SetQuietHours replaces the quiet hours window.
func (c *Controller) SetQuietHours(q prefs.QuietHours) error {
	return c.update(func(p *prefs.Preferences) { p.QuietHours = q })
}

// SetCategory opts in or out of a category.
func (c *Controller) SetCategory(cat prefs.Category, on bool) error {
	if !cat.Known() {
		return fmt.Errorf("unknown category %q", cat)
	}
	return c.update(func(p *prefs.Preferences) { p.Categories[cat] = on })
}

// SendTest asks the backend to push a test notification. It is refused,
// with a descriptive error, unless push is enabled and permission granted.
func (c *Controller) SendTest(ctx context.Context) error {
	c.mu.Lock()
	pushOn, st := c.prefs.PushEnabled, c.status
	c.mu.Unlock()

	var reason string
	switch {
	case st != permission.Granted:
		reason = fmt.Sprintf("notification permission is %s", st)
	case !pushOn:
		reason = "push notifications are disabled"
	}
	if reason != "" {
		err := fmt.Errorf("%w: %s", ErrTestUnavailable, reason)
		c.center.Error("Cannot send test", errmsg.Format(errmsg.OpSendTest, err))
		return err
	}

	if c.backend == nil {
		err := fmt.Errorf("%w: no backend configured", ErrTestUnavailable)
		c.center.Error("Cannot send test", errmsg.Format(errmsg.OpSendTest, err))
		return err
	}

	err := c.backend.SendTest(ctx, api.TestRequest{
		DeviceID: c.device.ID,
		Title:    "Test notification",
		Body:     "Push notifications are working on this device.",
	})
	if err != nil {
		c.log.WithError(err).Error("send test notification")
		c.center.Error("Test failed", errmsg.Format(errmsg.OpSendTest, err))
		return err
	}
	c.center.Info("Test sent", "A test notification is on its way.")
	return nil
}
