// Package tray puts the resident's menu in the system tray.
package tray

import (
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

type Config struct {
	Hotkey    string
	OnCapture func()
	OnQuit    func()
}

// Tray is the resident's tray menu.
type Tray struct {
	desk    desktop.App
	menu    *fyne.Menu
	capture *fyne.MenuItem
	label   string
}

// New installs the tray menu on a. It returns nil when the driver has no
// system tray.
func New(a fyne.App, cfg Config) *Tray {
	desk, ok := a.(desktop.App)
	if !ok {
		log.Printf("TRAY: system tray not supported by this driver")
		return nil
	}
	t := &Tray{desk: desk, label: CaptureLabel(cfg.Hotkey)}
	t.capture = fyne.NewMenuItem(t.label, func() {
		if cfg.OnCapture != nil {
			cfg.OnCapture()
		}
	})
	quit := fyne.NewMenuItem("Quit", func() {
		if cfg.OnQuit != nil {
			cfg.OnQuit()
		}
	})
	quit.IsQuit = true
	t.menu = fyne.NewMenu("screen-snap", t.capture, fyne.NewMenuItemSeparator(), quit)

	desk.SetSystemTrayIcon(Icon)
	desk.SetSystemTrayMenu(t.menu)
	return t
}

// CaptureLabel is the menu text of the capture item.
func CaptureLabel(hotkey string) string {
	if hotkey == "" {
		return "Capture"
	}
	return fmt.Sprintf("Capture (%s)", hotkey)
}

// SetBusy disables the capture item while a session runs. Safe to call from
// any goroutine.
func (t *Tray) SetBusy(busy bool) {
	if t == nil {
		return
	}
	fyne.Do(func() {
		t.capture.Disabled = busy
		if busy {
			t.capture.Label = "Capturing..."
		} else {
			t.capture.Label = t.label
		}
		t.menu.Refresh()
	})
}
