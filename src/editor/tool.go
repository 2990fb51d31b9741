package editor

import (
	"fmt"
	"strings"

	"screen-snap/src/shapes"
)

// Tool is the active annotation tool.
type Tool int

const (
	ToolMove Tool = iota
	ToolRectangle
	ToolEllipse
	ToolPen
	ToolArrow
	ToolLine
	ToolText
	ToolEraser
)

// Tools lists every tool in toolbar order.
var Tools = []Tool{ToolMove, ToolRectangle, ToolEllipse, ToolPen, ToolArrow, ToolLine, ToolText, ToolEraser}

func (t Tool) String() string {
	switch t {
	case ToolMove:
		return "move"
	case ToolRectangle:
		return "rectangle"
	case ToolEllipse:
		return "ellipse"
	case ToolPen:
		return "pen"
	case ToolArrow:
		return "arrow"
	case ToolLine:
		return "line"
	case ToolText:
		return "text"
	case ToolEraser:
		return "eraser"
	default:
		return fmt.Sprintf("tool(%d)", int(t))
	}
}

// ParseTool resolves a tool name as printed by String. Unknown names map to
// ToolMove.
func ParseTool(name string) Tool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, t := range Tools {
		if t.String() == name {
			return t
		}
	}
	return ToolMove
}

// Parameterized reports whether the tool uses the color and width panel.
func (t Tool) Parameterized() bool {
	switch t {
	case ToolPen, ToolRectangle, ToolEllipse, ToolArrow, ToolLine, ToolText:
		return true
	default:
		return false
	}
}

// spanKind maps the two-point drawing tools to their shape kind.
func (t Tool) spanKind() (shapes.Kind, bool) {
	switch t {
	case ToolRectangle:
		return shapes.KindRectangle, true
	case ToolEllipse:
		return shapes.KindEllipse, true
	case ToolArrow:
		return shapes.KindArrow, true
	case ToolLine:
		return shapes.KindLine, true
	default:
		return 0, false
	}
}
