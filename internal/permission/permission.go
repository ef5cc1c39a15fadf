// Package permission negotiates the platform's notification permission and
// ties it to the user's push preference.
package permission

import (
	"context"
	"errors"
	"fmt"

	"github.com/rushmanagement/rushnotify/internal/prefs"
)

// State is the platform permission tri-state.
type State string

const (
	Granted State = "granted"
	Denied  State = "denied"
	Default State = "default"
)

// ParseState converts a stored or reported value to a State. Anything
// unrecognised is treated as undecided.
func ParseState(s string) State {
	switch State(s) {
	case Granted, Denied:
		return State(s)
	default:
		return Default
	}
}

// Decided reports whether the user has answered the consent prompt.
func (s State) Decided() bool {
	return s == Granted || s == Denied
}

// ErrPermissionDenied is returned when enabling push fails because the
// platform did not grant permission. It is a normal terminal outcome.
var ErrPermissionDenied = errors.New("notification permission not granted")

// Platform is the system that owns the permission decision.
type Platform interface {
	// Status reports the current state without prompting.
	Status() State
	// Request shows the consent UI if the platform decides to and returns
	// the resulting state. A dismissed prompt yields Default.
	Request(ctx context.Context) (State, error)
}

// Negotiator bridges the push preference toggle and the platform permission.
type Negotiator struct {
	platform Platform
	store    prefs.Store
}

// NewNegotiator creates a negotiator persisting through store.
func NewNegotiator(platform Platform, store prefs.Store) *Negotiator {
	return &Negotiator{platform: platform, store: store}
}

// CurrentStatus probes the platform without prompting.
func (n *Negotiator) CurrentStatus() State {
	return n.platform.Status()
}

// RequestPermission triggers the consent UI at most once. When the state is
// already decided the platform is not asked again.
func (n *Negotiator) RequestPermission(ctx context.Context) State {
	if st := n.platform.Status(); st.Decided() {
		return st
	}
	st, err := n.platform.Request(ctx)
	if err != nil {
		// Cancellation or a broken prompt is a non-granted outcome, never pending.
		return Default
	}
	return st
}

// SetPushEnabled applies the push toggle to p and persists the whole object.
// Enabling requests permission when it is not granted and only stores
// PushEnabled=true on Granted; otherwise PushEnabled is stored false and
// ErrPermissionDenied is returned alongside the saved preferences. Disabling
// never touches the platform.
func (n *Negotiator) SetPushEnabled(ctx context.Context, p prefs.Preferences, enabled bool) (prefs.Preferences, State, error) {
	next := p.Clone()

	if !enabled {
		next.PushEnabled = false
		if err := n.store.Save(next); err != nil {
			return p, n.platform.Status(), fmt.Errorf("save preferences: %w", err)
		}
		return next, n.platform.Status(), nil
	}

	st := n.platform.Status()
	if st != Granted {
		st = n.RequestPermission(ctx)
	}

	next.PushEnabled = st == Granted
	if err := n.store.Save(next); err != nil {
		return p, st, fmt.Errorf("save preferences: %w", err)
	}
	if st != Granted {
		return next, st, fmt.Errorf("%w (%s)", ErrPermissionDenied, st)
	}
	return next, st, nil
}
