// Package ui holds pieces shared by the terminal screens.
package ui

// Base tracks the area a screen or popup draws into. Embedding it supplies
// SetSize for popup.Popup.
type Base struct {
	width, height int
}

func (b *Base) SetSize(width, height int) {
	b.width, b.height = width, height
}

func (b Base) Width() int { return b.width }

func (b Base) Height() int { return b.height }
