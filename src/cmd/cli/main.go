package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"runtime"
	"strings"
	"text/tabwriter"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"screen-snap/src/config"
	"screen-snap/src/editor"
	"screen-snap/src/export"
	"screen-snap/src/overlay"
	"screen-snap/src/runtimeinit"
	"screen-snap/src/screenshot"
	"screen-snap/src/session"
	"screen-snap/src/singleinstance"
	"screen-snap/src/winlist"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

type cliOptions struct {
	dir         string
	noFile      bool
	noClipboard bool
	stdout      bool
	jsonOutput  bool
	verbose     bool
}

func main() {
	runtime.LockOSThread()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"screen-snap"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "screen-snap",
		Short:         "Capture and annotate a screen region",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		// Configure logging BEFORE any other operations.
		if !opts.verbose {
			log.SetOutput(io.Discard)
		} else {
			log.SetOutput(os.Stderr)
		}
	}

	capture := &cobra.Command{
		Use:   "capture",
		Short: "Select, annotate and export a region",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapture(*opts, cmd.OutOrStdout())
		},
	}
	capture.Flags().StringVar(&opts.dir, "dir", "", "Output directory (default from config, else the temp screenshots dir)")
	capture.Flags().BoolVar(&opts.noFile, "no-file", false, "Do not save a PNG file")
	capture.Flags().BoolVar(&opts.noClipboard, "no-clipboard", false, "Do not copy the image to the clipboard")
	capture.Flags().BoolVar(&opts.stdout, "stdout", false, "Write the PNG to stdout")

	displays := &cobra.Command{
		Use:   "displays",
		Short: "List displays and their bounds",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := screenshot.Displays()
			if err != nil {
				return err
			}
			return writeDisplays(cmd.OutOrStdout(), list, opts.jsonOutput)
		},
	}

	windows := &cobra.Command{
		Use:   "windows",
		Short: "List windows eligible for click-to-select, topmost first",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := winlist.System().Windows()
			if err != nil {
				return err
			}
			return writeWindows(cmd.OutOrStdout(), list, opts.jsonOutput)
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Report whether a resident instance is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _ = config.Load()
			res, ok := singleinstance.Detect(context.Background(), singleinstance.DefaultProbeTimeout)
			return writeStatus(cmd.OutOrStdout(), res, ok, opts.jsonOutput)
		},
	}

	cmd.AddCommand(capture, displays, windows, status)
	return cmd
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	names := []string{"dir", "json", "verbose", "stdout", "no-file", "no-clipboard"}
	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range names {
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

func (o cliOptions) request() singleinstance.Request {
	return singleinstance.Request{
		Dir:             o.dir,
		SaveToFile:      !o.noFile,
		CopyToClipboard: !o.noClipboard,
	}
}

// canDelegate reports whether a resident can serve the request. A resident
// answers with a file path, so --stdout needs the file to be written.
func (o cliOptions) canDelegate() bool {
	return !o.stdout || !o.noFile
}

func runCapture(opts cliOptions, out io.Writer) error {
	if opts.noFile && opts.noClipboard && !opts.stdout {
		return errors.New("nothing to do: --no-file and --no-clipboard without --stdout")
	}
	// Load .env early so SINGLEINSTANCE_PORT_* are applied before delegation scan
	_, _ = config.LoadWithOptions(config.LoadOptions{OutputDirOverride: opts.dir})

	start := time.Now()
	if opts.canDelegate() {
		delegated, path, err := singleinstance.NewClient().TryCapture(context.Background(), opts.request())
		switch {
		case errors.Is(err, singleinstance.ErrCancelled):
			return session.ErrCancelled
		case err != nil:
			log.Printf("Delegation error: %v; falling back to standalone", err)
		case delegated:
			log.Printf("Delegated to resident")
			return finishDelegated(opts, out, path, time.Since(start))
		default:
			log.Printf("No resident detected (not delegated), running standalone")
		}
	}
	return runStandalone(opts, out, start)
}

func finishDelegated(opts cliOptions, out io.Writer, path string, elapsed time.Duration) error {
	if !opts.stdout {
		return outputResult(out, path, image.Point{}, elapsed, opts.jsonOutput)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := validatePNG(data); err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func runStandalone(opts cliOptions, out io.Writer, start time.Time) error {
	cfg, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:    config.LoadOptions{OutputDirOverride: opts.dir},
		RequireDisplay: true,
	})
	if err != nil {
		return err
	}

	dir := cfg.OutputDir
	if dir == "" {
		dir = export.DefaultDir()
	}
	sinks := export.Options{
		SaveToFile:      !opts.noFile,
		CopyToClipboard: !opts.noClipboard && cfg.CopyToClipboard,
	}
	var png bytes.Buffer
	if opts.stdout {
		sinks.Stdout = &png
	}

	a := app.NewWithID("io.github.screen-snap.cli")
	ann := &overlay.Annotator{App: a, Pen: cfg.Pen(), Tool: editor.ToolRectangle}
	if cfg.WindowDetection {
		ann.Windows = winlist.NewTracker(winlist.System(), winlist.DefaultRefresh)
	}
	res, err := overlay.RunOnce(context.Background(), a, session.Options{
		Provider:  screenshot.System{},
		Annotator: ann,
		Sink:      export.Sinks(sinks),
		Cursor:    screenshot.CursorPos,
		Dir:       dir,
	})
	if err != nil {
		return err
	}

	if opts.stdout {
		_, err := out.Write(png.Bytes())
		return err
	}
	path := res.Path
	if opts.noFile {
		path = ""
	}
	return outputResult(out, path, res.Image.Bounds().Size(), time.Since(start), opts.jsonOutput)
}

func validatePNG(data []byte) error {
	if len(data) < len(pngMagic) || !bytes.Equal(data[:len(pngMagic)], pngMagic) {
		return fmt.Errorf("input is not a valid PNG file (invalid magic number)")
	}
	return nil
}

type CaptureResult struct {
	Path      string  `json:"path,omitempty"`
	Width     int     `json:"width,omitempty"`
	Height    int     `json:"height,omitempty"`
	Timestamp string  `json:"timestamp"`
	Duration  float64 `json:"duration_seconds"`
}

func outputResult(out io.Writer, path string, size image.Point, elapsed time.Duration, jsonOutput bool) error {
	if jsonOutput {
		result := CaptureResult{
			Path:      path,
			Width:     size.X,
			Height:    size.Y,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Duration:  elapsed.Seconds(),
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
		return nil
	}
	if path != "" {
		fmt.Fprintln(out, path)
	}
	return nil
}

type statusJSON struct {
	Running bool   `json:"running"`
	Port    int    `json:"port,omitempty"`
	Addr    string `json:"addr,omitempty"`
}

func writeStatus(out io.Writer, res singleinstance.Resident, running bool, jsonOutput bool) error {
	if jsonOutput {
		return json.NewEncoder(out).Encode(statusJSON{Running: running, Port: res.Port, Addr: res.Addr})
	}
	if !running {
		fmt.Fprintln(out, "no resident running")
		return nil
	}
	fmt.Fprintf(out, "resident running on %s\n", res.Addr)
	return nil
}

type displayJSON struct {
	Index  int `json:"index"`
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func writeDisplays(out io.Writer, list []screenshot.Display, jsonOutput bool) error {
	if jsonOutput {
		rows := make([]displayJSON, 0, len(list))
		for _, d := range list {
			rows = append(rows, displayJSON{
				Index: d.Index, X: d.Bounds.Min.X, Y: d.Bounds.Min.Y,
				Width: d.Bounds.Dx(), Height: d.Bounds.Dy(),
			})
		}
		return json.NewEncoder(out).Encode(rows)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tX\tY\tWIDTH\tHEIGHT")
	for _, d := range list {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\n", d.Index, d.Bounds.Min.X, d.Bounds.Min.Y, d.Bounds.Dx(), d.Bounds.Dy())
	}
	return tw.Flush()
}

type windowJSON struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func writeWindows(out io.Writer, list []winlist.Window, jsonOutput bool) error {
	if jsonOutput {
		rows := make([]windowJSON, 0, len(list))
		for _, w := range list {
			rows = append(rows, windowJSON{
				ID: fmt.Sprintf("%#x", w.ID), Title: w.Title,
				X: w.Bounds.Min.X, Y: w.Bounds.Min.Y,
				Width: w.Bounds.Dx(), Height: w.Bounds.Dy(),
			})
		}
		return json.NewEncoder(out).Encode(rows)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tBOUNDS\tTITLE")
	for _, w := range list {
		fmt.Fprintf(tw, "%#x\t%v\t%s\n", w.ID, w.Bounds, w.Title)
	}
	return tw.Flush()
}
