package overlay

import (
	"context"

	"fyne.io/fyne/v2"

	"screen-snap/src/session"
)

// RunOnce runs a single capture session on a's main loop and returns once
// the session ended and the app stopped. It must be called from the main
// goroutine. opts.Annotator is normally an *Annotator bound to a.
func RunOnce(ctx context.Context, a fyne.App, opts session.Options) (session.Result, error) {
	type outcome struct {
		res session.Result
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		res, err := session.Execute(ctx, opts)
		ch <- outcome{res: res, err: err}
		fyne.Do(a.Quit)
	}()
	a.Run()
	out := <-ch
	return out.res, out.err
}
