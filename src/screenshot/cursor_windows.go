//go:build windows

package screenshot

import (
	"image"

	"github.com/lxn/win"
)

// CursorPos returns the pointer position in physical virtual-screen
// coordinates.
func CursorPos() (image.Point, bool) {
	var pt win.POINT
	if !win.GetCursorPos(&pt) {
		return image.Point{}, false
	}
	return image.Pt(int(pt.X), int(pt.Y)), true
}
