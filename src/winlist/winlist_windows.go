//go:build windows

package winlist

import (
	"image"
	"os"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

const (
	dwmwaExtendedFrameBounds = 9
	dwmwaCloaked             = 14
	maxTitle                 = 256
)

var (
	user32DLL                 = windows.NewLazySystemDLL("user32.dll")
	procGetWindowTextW        = user32DLL.NewProc("GetWindowTextW")
	dwmapiDLL                 = windows.NewLazySystemDLL("dwmapi.dll")
	procDwmGetWindowAttribute = dwmapiDLL.NewProc("DwmGetWindowAttribute")
)

type systemLister struct{}

// Windows walks the top-level windows in z-order. Invisible, minimized,
// cloaked and tool windows are skipped, as is every window of this process
// so the overlay never selects itself.
func (systemLister) Windows() ([]Window, error) {
	self := uint32(os.Getpid())
	var out []Window
	z := 0
	for h := win.GetWindow(win.GetDesktopWindow(), win.GW_CHILD); h != 0; h = win.GetWindow(h, win.GW_HWNDNEXT) {
		if !eligible(h, self) {
			continue
		}
		r, ok := frameBounds(h)
		if !ok || r.Empty() {
			continue
		}
		out = append(out, Window{ID: uintptr(h), Title: windowTitle(h), Bounds: r, Z: z})
		z++
	}
	return out, nil
}

func eligible(h win.HWND, self uint32) bool {
	if !win.IsWindowVisible(h) || win.IsIconic(h) {
		return false
	}
	if win.GetWindowLong(h, win.GWL_EXSTYLE)&win.WS_EX_TOOLWINDOW != 0 {
		return false
	}
	var pid uint32
	win.GetWindowThreadProcessId(h, &pid)
	if pid == self {
		return false
	}
	var cloaked uint32
	if r, _, _ := procDwmGetWindowAttribute.Call(uintptr(h), dwmwaCloaked, uintptr(unsafe.Pointer(&cloaked)), unsafe.Sizeof(cloaked)); r == 0 && cloaked != 0 {
		return false
	}
	return true
}

// frameBounds prefers the DWM frame, which excludes the invisible resize
// borders GetWindowRect reports.
func frameBounds(h win.HWND) (image.Rectangle, bool) {
	var rc win.RECT
	if r, _, _ := procDwmGetWindowAttribute.Call(uintptr(h), dwmwaExtendedFrameBounds, uintptr(unsafe.Pointer(&rc)), unsafe.Sizeof(rc)); r != 0 {
		if !win.GetWindowRect(h, &rc) {
			return image.Rectangle{}, false
		}
	}
	return image.Rect(int(rc.Left), int(rc.Top), int(rc.Right), int(rc.Bottom)), true
}

func windowTitle(h win.HWND) string {
	buf := make([]uint16, maxTitle)
	n, _, _ := procGetWindowTextW.Call(uintptr(h), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf[:n])
}
