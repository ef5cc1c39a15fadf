// Package action carries outcomes from popups back to the screen that
// opened them.
package action

// Action is an outcome produced by a popup.
type Action interface {
	ActionType() string
}

// Msg delivers an Action to the opening screen's Update.
type Msg struct {
	Source string // popup that produced the action, e.g. "confirm"
	Action Action
}
