// Package prefs defines the device-local notification preferences and their
// persistence.
package prefs

import (
	"encoding/json"
	"fmt"
	"maps"
	"time"
)

// Category is a notification category the user can opt in or out of.
type Category string

const (
	CategorySystem    Category = "system"
	CategoryUpdates   Category = "updates"
	CategoryReminders Category = "reminders"
	CategorySocial    Category = "social"
)

// Categories lists every known category in display order.
var Categories = []Category{CategorySystem, CategoryUpdates, CategoryReminders, CategorySocial}

// Known reports whether c is one of the known categories.
func (c Category) Known() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// TimeOfDay is a wall-clock time encoded as "HH:MM".
type TimeOfDay struct {
	Hour   int
	Minute int
}

const timeOfDayLayout = "15:04"

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse(timeOfDayLayout, s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// MustTimeOfDay is ParseTimeOfDay for constants.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) minutes() int {
	return t.Hour*60 + t.Minute
}

// MarshalJSON encodes the time as "HH:MM".
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes "HH:MM". Unparseable values leave t unchanged so the
// default survives a bad record.
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil //nolint:nilerr // keep the previous value
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return nil //nolint:nilerr // keep the previous value
	}
	*t = parsed
	return nil
}

// QuietHours is the window during which sound and vibration are suppressed.
type QuietHours struct {
	Enabled bool      `json:"enabled"`
	Start   TimeOfDay `json:"start"`
	End     TimeOfDay `json:"end"`
}

// Active reports whether now falls inside the window. Windows where start is
// after end wrap past midnight. The start is inclusive, the end exclusive.
func (q QuietHours) Active(now time.Time) bool {
	if !q.Enabled {
		return false
	}
	cur := now.Hour()*60 + now.Minute()
	start, end := q.Start.minutes(), q.End.minutes()
	if start == end {
		return false
	}
	if start < end {
		return cur >= start && cur < end
	}
	return cur >= start || cur < end
}

// Preferences is the full persisted notification configuration.
type Preferences struct {
	PushEnabled      bool              `json:"pushEnabled"`
	SoundEnabled     bool              `json:"soundEnabled"`
	VibrationEnabled bool              `json:"vibrationEnabled"`
	ShowOnLockScreen bool              `json:"showOnLockScreen"`
	QuietHours       QuietHours        `json:"quietHours"`
	Categories       map[Category]bool `json:"categories"`
}

// Default returns the preferences used when nothing valid is stored.
func Default() Preferences {
	cats := make(map[Category]bool, len(Categories))
	for _, c := range Categories {
		cats[c] = true
	}
	return Preferences{
		PushEnabled:      false,
		SoundEnabled:     true,
		VibrationEnabled: true,
		ShowOnLockScreen: true,
		QuietHours: QuietHours{
			Enabled: false,
			Start:   MustTimeOfDay("22:00"),
			End:     MustTimeOfDay("07:00"),
		},
		Categories: cats,
	}
}

// Clone returns a deep copy.
func (p Preferences) Clone() Preferences {
	out := p
	out.Categories = maps.Clone(p.Categories)
	return out
}

// CategoryEnabled reports whether notifications of category c are wanted.
// Unknown or empty categories are always allowed.
func (p Preferences) CategoryEnabled(c Category) bool {
	if !c.Known() {
		return true
	}
	enabled, ok := p.Categories[c]
	return !ok || enabled
}

// Encode serializes the complete preferences object.
func Encode(p Preferences) ([]byte, error) {
	return json.Marshal(p)
}

// Decode parses a stored record. Missing keys take their default values and
// unknown categories are dropped, so the result is always fully populated.
func Decode(data []byte) (Preferences, error) {
	p := Default()
	if err := json.Unmarshal(data, &p); err != nil {
		return Default(), fmt.Errorf("decode preferences: %w", err)
	}

	// A null categories object wipes the map.
	if p.Categories == nil {
		p.Categories = Default().Categories
	}
	for c := range p.Categories {
		if !c.Known() {
			delete(p.Categories, c)
		}
	}
	for _, c := range Categories {
		if _, ok := p.Categories[c]; !ok {
			p.Categories[c] = true
		}
	}
	return p, nil
}
