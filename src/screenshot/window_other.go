//go:build !windows

package screenshot

import "image"

func captureWindow(uintptr, image.Rectangle) (*image.RGBA, error) {
	return nil, ErrWindowCaptureUnsupported
}
