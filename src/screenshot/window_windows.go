//go:build windows

package screenshot

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

// pwRenderFullContent lets PrintWindow capture DirectComposition content.
const pwRenderFullContent = 0x2

var (
	user32DLL       = windows.NewLazySystemDLL("user32.dll")
	procPrintWindow = user32DLL.NewProc("PrintWindow")
)

// captureWindow renders hwnd into a memory DC. Unlike a screen grab this
// works while the overlay covers the window.
func captureWindow(id uintptr, frame image.Rectangle) (*image.RGBA, error) {
	hwnd := win.HWND(id)
	var rc win.RECT
	if !win.GetWindowRect(hwnd, &rc) {
		return nil, fmt.Errorf("GetWindowRect %#x failed", id)
	}
	width := int(rc.Right - rc.Left)
	height := int(rc.Bottom - rc.Top)
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("window %#x has empty bounds", id)
	}

	screenDC := win.GetDC(0)
	if screenDC == 0 {
		return nil, fmt.Errorf("GetDC failed")
	}
	defer win.ReleaseDC(0, screenDC)

	memDC := win.CreateCompatibleDC(screenDC)
	if memDC == 0 {
		return nil, fmt.Errorf("CreateCompatibleDC failed")
	}
	defer win.DeleteDC(memDC)

	bitmapInfo := win.BITMAPINFO{
		BmiHeader: win.BITMAPINFOHEADER{
			BiSize:        uint32(unsafe.Sizeof(win.BITMAPINFOHEADER{})),
			BiWidth:       int32(width),
			BiHeight:      -int32(height), // Negative for top-down
			BiPlanes:      1,
			BiBitCount:    32,
			BiCompression: win.BI_RGB,
		},
	}
	var pBits unsafe.Pointer
	hBitmap := win.CreateDIBSection(memDC, &bitmapInfo.BmiHeader, win.DIB_RGB_COLORS, &pBits, 0, 0)
	if hBitmap == 0 || pBits == nil {
		return nil, fmt.Errorf("CreateDIBSection failed")
	}
	defer win.DeleteObject(win.HGDIOBJ(hBitmap))

	oldBitmap := win.SelectObject(memDC, win.HGDIOBJ(hBitmap))
	defer win.SelectObject(memDC, oldBitmap)

	if r, _, err := procPrintWindow.Call(uintptr(hwnd), uintptr(memDC), pwRenderFullContent); r == 0 {
		return nil, fmt.Errorf("PrintWindow %#x: %v", id, err)
	}

	// 32bpp rows are always DWORD aligned, so the stride is width*4.
	src := unsafe.Slice((*byte)(pBits), width*height*4)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(src); i += 4 {
		img.Pix[i] = src[i+2]   // R
		img.Pix[i+1] = src[i+1] // G
		img.Pix[i+2] = src[i]   // B
		img.Pix[i+3] = 255
	}

	// GetWindowRect includes the invisible resize borders; keep only the
	// visible frame.
	crop := frame.Sub(image.Pt(int(rc.Left), int(rc.Top))).Intersect(img.Bounds())
	if frame.Empty() || crop.Empty() {
		return img, nil
	}
	out := img.SubImage(crop).(*image.RGBA)
	out.Rect = out.Rect.Sub(out.Rect.Min)
	return out, nil
}
