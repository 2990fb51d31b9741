// Package notification tells the user how a capture ended.
package notification

import (
	"errors"
	"log"
	"sync"

	"fyne.io/fyne/v2"

	"screen-snap/src/logutil"
	"screen-snap/src/session"
)

const maxBody = 200

var (
	mu  sync.Mutex
	app fyne.App
)

// Init routes notifications through a. Until Init is called, or when a is
// nil, notifications are only logged.
func Init(a fyne.App) {
	mu.Lock()
	app = a
	mu.Unlock()
}

// Show posts a desktop notification.
func Show(title, body string) {
	body = logutil.Shorten(body, maxBody)
	log.Printf("Notification: %s: %s", title, body)

	mu.Lock()
	a := app
	mu.Unlock()
	if a == nil {
		return
	}
	a.SendNotification(fyne.NewNotification(title, body))
}

// Saved announces an exported capture.
func Saved(res session.Result) {
	switch {
	case res.Path != "":
		Show("Screenshot saved", res.Path)
	default:
		Show("Screenshot captured", "Copied to the clipboard")
	}
}

// Failed reports a failed capture. Cancellation is silent.
func Failed(err error) {
	if err == nil || errors.Is(err, session.ErrCancelled) {
		return
	}
	Show("Screenshot failed", err.Error())
}

// Busy tells the user a capture is already running.
func Busy() {
	Show("Screenshot in progress", "Finish the current capture first")
}
