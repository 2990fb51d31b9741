package eventloop

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"

	"screen-snap/src/config"
	"screen-snap/src/export"
	"screen-snap/src/hotkey"
	"screen-snap/src/notification"
	"screen-snap/src/screenshot"
	"screen-snap/src/session"
	"screen-snap/src/singleinstance"
	"screen-snap/src/worker"
)

// ErrBusy is reported to delegated clients while a capture is running.
var ErrBusy = errors.New("Busy, please retry")

// Loop is the single-threaded coordinator for hotkey, tray and delegated
// capture requests. One capture runs at a time.
type Loop struct {
	cfg       *config.Config
	annotator session.Annotator
	provider  screenshot.Provider
	pool      *worker.Pool
	srv       singleinstance.Server
	onBusy    func(bool)
	listener  *hotkey.Listener

	busy     bool
	results  chan result
	hotkeyCh chan struct{}
}

type result struct {
	res    session.Result
	err    error
	target resultTarget
}

type resultTarget interface {
	session.ResultTarget
	Close()
}

// hotkeyResultTarget reports through desktop notifications.
type hotkeyResultTarget struct{}

func (hotkeyResultTarget) OnSuccess(res session.Result) error {
	notification.Saved(res)
	return nil
}

func (hotkeyResultTarget) OnFailure(err error) error {
	notification.Failed(err)
	return nil
}

func (hotkeyResultTarget) Close() {}

// delegatedResultTarget answers a CLI client over its connection.
type delegatedResultTarget struct {
	conn singleinstance.Conn
}

func (t delegatedResultTarget) OnSuccess(res session.Result) error {
	path := ""
	if t.conn.Request().SaveToFile {
		path = res.Path
	}
	return t.conn.RespondSuccess(path)
}

func (t delegatedResultTarget) OnFailure(err error) error {
	if errors.Is(err, session.ErrCancelled) {
		return t.conn.RespondCancelled()
	}
	return t.conn.RespondError(err.Error())
}

func (t delegatedResultTarget) Close() {
	if t.conn != nil {
		_ = t.conn.Close()
	}
}

type Options struct {
	Config    *config.Config
	Annotator session.Annotator
	// Provider defaults to the system capture provider.
	Provider screenshot.Provider
	// Execute defaults to session.Execute.
	Execute worker.ExecuteFunc
	// Server defaults to the loopback TCP server.
	Server singleinstance.Server
	// Busy is told when a capture starts and ends.
	Busy func(bool)
}

func New(opts Options) *Loop {
	cfg := opts.Config
	if cfg == nil {
		cfg = &config.Config{SaveToFile: true, CopyToClipboard: true}
	}
	provider := opts.Provider
	if provider == nil {
		provider = screenshot.System{}
	}
	execute := opts.Execute
	if execute == nil {
		execute = session.Execute
	}
	srv := opts.Server
	if srv == nil {
		srv = singleinstance.NewServer()
	}
	return &Loop{
		cfg:       cfg,
		annotator: opts.Annotator,
		provider:  provider,
		pool:      worker.NewWithExecutor(1, execute),
		srv:       srv,
		onBusy:    opts.Busy,
		results:   make(chan result, 1),
		hotkeyCh:  make(chan struct{}, 4),
	}
}

func (l *Loop) setBusy(b bool) {
	l.busy = b
	if l.onBusy != nil {
		l.onBusy(b)
	}
}

// Trigger requests a capture, as the hotkey or the tray menu does. It never
// blocks; triggers beyond the buffer are dropped.
func (l *Loop) Trigger() {
	select {
	case l.hotkeyCh <- struct{}{}:
	default:
	}
}

// StartHotkey registers a global hotkey that triggers captures.
func (l *Loop) StartHotkey(combo string) error {
	if combo == "" {
		return nil
	}
	ln, err := hotkey.Listen(combo, l.Trigger)
	if err != nil {
		return err
	}
	l.listener = ln
	return nil
}

// cursor reports the pointer in physical virtual-screen coordinates.
func (l *Loop) cursor() (image.Point, bool) {
	if p, ok := screenshot.CursorPos(); ok {
		return p, true
	}
	return l.listener.Cursor()
}

// Run starts the singleinstance server and processes requests until ctx is
// cancelled.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.srv.Start(ctx); err != nil {
		return err
	}
	if p := l.srv.Port(); p > 0 {
		log.Printf("Resident listening on 127.0.0.1:%d", p)
	}
	defer l.pool.Close()
	defer l.srv.Close()

	// Accept loop in background to avoid blocking result handling
	reqCh := make(chan singleinstance.Conn, 4)
	go func() {
		for {
			conn, err := l.srv.Next(ctx)
			if err != nil {
				close(reqCh)
				return
			}
			reqCh <- conn
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.hotkeyCh:
			l.handleHotkey(ctx)
		case conn, ok := <-reqCh:
			if !ok {
				return nil
			}
			l.handleConn(ctx, conn)
		case res := <-l.results:
			l.handleResult(res)
		}
	}
}

func (l *Loop) handleHotkey(ctx context.Context) {
	log.Printf("handleHotkey: called")
	req := singleinstance.Request{
		SaveToFile:      l.cfg.SaveToFile,
		CopyToClipboard: l.cfg.CopyToClipboard,
	}
	if !l.startRequest(ctx, req, hotkeyResultTarget{}) {
		log.Printf("handleHotkey: busy, skipping")
		notification.Busy()
	}
}

func (l *Loop) handleConn(ctx context.Context, conn singleinstance.Conn) {
	req := conn.Request()
	log.Printf("handleConn: delegated capture file=%v clipboard=%v dir=%q", req.SaveToFile, req.CopyToClipboard, req.Dir)
	target := delegatedResultTarget{conn: conn}
	if !l.startRequest(ctx, req, target) {
		_ = target.OnFailure(ErrBusy)
		target.Close()
	}
}

// startRequest submits a capture session. It returns false when one is
// already running.
func (l *Loop) startRequest(ctx context.Context, req singleinstance.Request, target resultTarget) bool {
	if l.busy {
		return false
	}
	if l.annotator == nil {
		_ = target.OnFailure(fmt.Errorf("%w: no overlay available", session.ErrCaptureFailed))
		target.Close()
		return true
	}

	l.setBusy(true)
	submitted := l.pool.Submit(ctx, l.sessionOptions(req), func(res session.Result, err error) {
		l.results <- result{res: res, err: err, target: target}
	})
	if !submitted {
		l.setBusy(false)
		return false
	}
	return true
}

func (l *Loop) sessionOptions(req singleinstance.Request) session.Options {
	dir := req.Dir
	if dir == "" {
		dir = l.cfg.OutputDir
	}
	if dir == "" {
		dir = export.DefaultDir()
	}
	return session.Options{
		Provider:  l.provider,
		Annotator: l.annotator,
		Sink: export.Sinks(export.Options{
			SaveToFile:      req.SaveToFile,
			CopyToClipboard: req.CopyToClipboard && l.cfg.CopyToClipboard,
		}),
		Cursor: l.cursor,
		Dir:    dir,
	}
}

func (l *Loop) handleResult(res result) {
	log.Printf("handleResult: path=%q err=%v", res.res.Path, res.err)
	defer l.setBusy(false)
	if res.target == nil {
		log.Printf("handleResult: missing target")
		return
	}
	defer res.target.Close()

	if res.err != nil {
		_ = res.target.OnFailure(res.err)
		return
	}
	if err := res.target.OnSuccess(res.res); err != nil {
		log.Printf("handleResult: delivery error: %v", err)
		_ = res.target.OnFailure(err)
	}
}
