//go:build !windows

package screenshot

import "image"

// CursorPos is unavailable here; callers fall back to the position tracked
// from global input events.
func CursorPos() (image.Point, bool) { return image.Point{}, false }
