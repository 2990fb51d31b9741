// Package winlist enumerates visible top-level windows for click-to-select.
package winlist

import (
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Window is a top-level window. Bounds are the visible frame in physical
// virtual-screen coordinates. Lower Z is closer to the top.
type Window struct {
	ID     uintptr
	Title  string
	Bounds image.Rectangle
	Z      int
}

// Lister enumerates windows from top to bottom of the stacking order.
type Lister interface {
	Windows() ([]Window, error)
}

// System returns the Lister for the running OS. On platforms without
// window enumeration it returns a Lister that always yields no windows.
func System() Lister { return systemLister{} }

// DefaultRefresh bounds how often the tracker re-enumerates windows while
// the pointer hovers.
const DefaultRefresh = 200 * time.Millisecond

// Tracker caches the window list and answers hit queries. Re-enumeration is
// rate limited so hover tracking does not walk the window list on every
// pointer event.
type Tracker struct {
	lister  Lister
	limiter *rate.Limiter

	mu      sync.Mutex
	windows []Window
	loaded  bool
}

func NewTracker(l Lister, every time.Duration) *Tracker {
	if every <= 0 {
		every = DefaultRefresh
	}
	return &Tracker{lister: l, limiter: rate.NewLimiter(rate.Every(every), 1)}
}

// Refresh re-enumerates unconditionally.
func (t *Tracker) Refresh() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.refreshLocked()
}

func (t *Tracker) refreshLocked() {
	list, err := t.lister.Windows()
	if err != nil {
		log.Printf("winlist: enumeration failed: %v", err)
		return
	}
	t.windows = list
	t.loaded = true
}

// Snapshot returns the cached list, enumerating first if nothing is cached.
func (t *Tracker) Snapshot() []Window {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.loaded {
		t.refreshLocked()
	}
	return append([]Window(nil), t.windows...)
}

// At returns the topmost window whose frame contains p.
func (t *Tracker) At(p image.Point) (Window, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.loaded || t.limiter.Allow() {
		t.refreshLocked()
	}
	return topmost(t.windows, p)
}

func topmost(list []Window, p image.Point) (Window, bool) {
	var best Window
	found := false
	for _, w := range list {
		if !p.In(w.Bounds) {
			continue
		}
		if !found || w.Z < best.Z {
			best, found = w, true
		}
	}
	return best, found
}
