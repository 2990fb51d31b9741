package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"screen-snap/src/config"
	"screen-snap/src/editor"
	"screen-snap/src/eventloop"
	"screen-snap/src/export"
	"screen-snap/src/hotkey"
	"screen-snap/src/logutil"
	"screen-snap/src/notification"
	"screen-snap/src/overlay"
	"screen-snap/src/runtimeinit"
	"screen-snap/src/screenshot"
	"screen-snap/src/session"
	"screen-snap/src/singleinstance"
	"screen-snap/src/tray"
	"screen-snap/src/winlist"
)

const appID = "io.github.screen-snap"

type mainOptions struct {
	runOnce bool
	dir     string
}

func main() {
	// Ensure DPI awareness before creating any windows or querying metrics
	enableDPIAwareness()

	// fyne needs the main goroutine on the main OS thread
	runtime.LockOSThread()

	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(normalizeLegacyArgs(os.Args)[1:])
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "screen-snap-resident",
		Short:         "Resident screen capture and annotation tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.runOnce {
				return runOnceWithDelegation(*opts)
			}
			return runResident()
		},
	}
	cmd.Flags().BoolVar(&opts.runOnce, "run-once", false, "Capture once and exit, delegating to a running resident when possible")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "Output directory for --run-once")
	return cmd
}

// normalizeLegacyArgs maps single-dash long flags to their GNU form.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	normalized := make([]string, len(args))
	copy(normalized, args)
	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"run-once", "dir"} {
			switch {
			case arg == "-"+name:
				normalized[i] = "--" + name
			case strings.HasPrefix(arg, "-"+name+"="):
				normalized[i] = "-" + arg
			}
		}
	}
	return normalized
}

func runOnceWithDelegation(opts mainOptions) error {
	// Load .env early so SINGLEINSTANCE_PORT_* are applied before delegation scan
	_, _ = config.Load()
	req := singleinstance.Request{Dir: opts.dir, SaveToFile: true, CopyToClipboard: true}
	var err error
	handleRunOnceWithDelegation(req, singleinstance.NewClient(), func() {
		err = runStandalone(opts)
	})
	if errors.Is(err, session.ErrCancelled) {
		return nil
	}
	return err
}

// handleRunOnceWithDelegation delegates req to a resident and calls fallback
// when none answered or delegation failed.
func handleRunOnceWithDelegation(req singleinstance.Request, client singleinstance.Client, fallback func()) {
	delegated, path, err := client.TryCapture(context.Background(), req)
	switch {
	case errors.Is(err, singleinstance.ErrCancelled):
		log.Printf("Delegated capture cancelled")
	case err != nil:
		log.Printf("Delegation error: %v; falling back to standalone", err)
		fallback()
	case delegated:
		log.Printf("Delegated to resident, saved %q", path)
	default:
		log.Printf("No resident detected (not delegated), running standalone")
		fallback()
	}
}

func runStandalone(opts mainOptions) error {
	cfg, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:    config.LoadOptions{OutputDirOverride: opts.dir},
		SetupLogging:   logutil.Setup,
		RequireDisplay: true,
	})
	if err != nil {
		return err
	}

	a := app.NewWithID(appID)
	a.SetIcon(tray.Icon)
	notification.Init(a)

	dir := cfg.OutputDir
	if dir == "" {
		dir = export.DefaultDir()
	}
	res, err := overlay.RunOnce(context.Background(), a, session.Options{
		Provider:  screenshot.System{},
		Annotator: newAnnotator(a, cfg),
		Sink: export.Sinks(export.Options{
			SaveToFile:      cfg.SaveToFile,
			CopyToClipboard: cfg.CopyToClipboard,
		}),
		Cursor: screenshot.CursorPos,
		Dir:    dir,
	})
	if err != nil {
		return err
	}
	log.Printf("Capture saved to %s", res.Path)
	return nil
}

func newAnnotator(a fyne.App, cfg *config.Config) *overlay.Annotator {
	ann := &overlay.Annotator{App: a, Pen: cfg.Pen(), Tool: editor.ToolRectangle}
	if cfg.WindowDetection {
		ann.Windows = winlist.NewTracker(winlist.System(), winlist.DefaultRefresh)
	}
	return ann
}

func runResident() error {
	// Load .env early so SINGLEINSTANCE_PORT_* are available for pre-flight
	_, _ = config.Load()
	if res, ok := singleinstance.Detect(context.Background(), singleinstance.DefaultProbeTimeout); ok {
		log.Printf("Pre-flight: resident answered on port %d", res.Port)
		return fmt.Errorf("one is already running on port %d", res.Port)
	}
	ports := singleinstance.Ports()
	listener, err := net.Listen("tcp", ports.Addr(ports.Start))
	if err != nil {
		log.Printf("Pre-flight: port %d busy", ports.Start)
		return fmt.Errorf("port %d is in use: %w", ports.Start, err)
	}
	// We claimed the port; release it so the event loop can re-bind.
	_ = listener.Close()
	log.Printf("Pre-flight: port %d free → we are the one true resident", ports.Start)

	cfg, err := runtimeinit.Bootstrap(runtimeinit.Options{SetupLogging: logutil.Setup})
	if err != nil {
		notification.ShowBlockingError("screen-snap", fmt.Sprintf("Startup failed: %v", err))
		return err
	}
	logMonitorConfiguration()
	log.Printf("screen-snap resident initialized, hotkey: %s", cfg.Hotkey)

	a := app.NewWithID(appID)
	a.SetIcon(tray.Icon)
	notification.Init(a)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var t *tray.Tray
	loop := eventloop.New(eventloop.Options{
		Config:    cfg,
		Annotator: newAnnotator(a, cfg),
		Busy:      func(b bool) { t.SetBusy(b) },
	})
	t = tray.New(a, tray.Config{
		Hotkey:    cfg.Hotkey,
		OnCapture: loop.Trigger,
		OnQuit:    cancel,
	})

	if err := loop.StartHotkey(cfg.Hotkey); err != nil {
		notification.ShowBlockingError("screen-snap", fmt.Sprintf("Hotkey %q unavailable: %v", cfg.Hotkey, err))
		return err
	}
	defer hotkey.Stop()

	// Handle SIGINT/SIGTERM
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
	}()

	go func() {
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("event loop stopped: %v", err)
		}
		fyne.Do(a.Quit)
	}()

	a.Run()
	return nil
}
