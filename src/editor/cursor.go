package editor

import "screen-snap/src/geometry"

// Cursor is the pointer shape the overlay should show.
type Cursor int

const (
	CursorCrosshair Cursor = iota
	CursorPointer
	CursorText
	CursorDefault
)

// CursorAt picks the pointer shape for logical point p.
func (s *Session) CursorAt(p geometry.Point) Cursor {
	if s.State != StateEditing {
		return CursorCrosshair
	}
	if s.Layout().Covers(p) {
		return CursorPointer
	}
	if s.Mode == ModeDraggingShape || s.Mode == ModeMovingSelection || s.Hovered >= 0 {
		return CursorPointer
	}
	if !s.Selection().Contains(p) {
		return CursorDefault
	}
	switch s.Tool {
	case ToolText:
		return CursorText
	case ToolMove:
		return CursorPointer
	default:
		return CursorCrosshair
	}
}
