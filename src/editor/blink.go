package editor

import (
	"sync"
	"time"
)

// BlinkInterval is the text cursor toggle period.
const BlinkInterval = 500 * time.Millisecond

// Ticker is the part of time.Ticker the blinker needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock creates tickers. Tests substitute a manual clock.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

type realClock struct{}

type realTicker struct{ t *time.Ticker }

func (realClock) NewTicker(d time.Duration) Ticker { return realTicker{time.NewTicker(d)} }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// Blinker runs fn every interval on its own goroutine until stopped. It is
// a cancellable repeating task: Start and Stop may be called any number of
// times and a stopped blinker leaves no goroutine behind.
type Blinker struct {
	clock    Clock
	interval time.Duration
	fn       func()

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewBlinker(clock Clock, interval time.Duration, fn func()) *Blinker {
	if clock == nil {
		clock = realClock{}
	}
	return &Blinker{clock: clock, interval: interval, fn: fn}
}

// Start begins ticking. It is a no-op when already running.
func (b *Blinker) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stop != nil {
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	b.stop, b.done = stop, done
	t := b.clock.NewTicker(b.interval)
	go func() {
		defer close(done)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C():
				select {
				case <-stop:
					return
				default:
				}
				b.fn()
			}
		}
	}()
}

// Stop cancels the task and waits for its goroutine to exit.
func (b *Blinker) Stop() {
	b.mu.Lock()
	stop, done := b.stop, b.done
	b.stop, b.done = nil, nil
	b.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Running reports whether the task is active.
func (b *Blinker) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stop != nil
}
