// Package export delivers a finished capture: PNG file, clipboard, stdout.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/anthonynsimon/bild/imgio"

	"screen-snap/src/clipboard"
)

// Sink receives the composed image. path is the suggested file path; sinks
// that do not write files ignore it.
type Sink interface {
	Commit(img image.Image, path string) error
}

// DefaultDir is where captures go when no directory is configured.
func DefaultDir() string { return filepath.Join(os.TempDir(), "screenshots") }

// SuggestedPath names a capture taken at now.
func SuggestedPath(dir string, now time.Time) string {
	if dir == "" {
		dir = DefaultDir()
	}
	return filepath.Join(dir, "screenshot_"+now.Format("20060102_150405")+".png")
}

// FileSink writes a PNG file, creating the directory as needed.
type FileSink struct{}

func (FileSink) Commit(img image.Image, path string) error {
	if path == "" {
		return errors.New("export: empty file path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	log.Printf("export: saved %s", path)
	return nil
}

// ClipboardSink places the image on the system clipboard.
type ClipboardSink struct{}

func (ClipboardSink) Commit(img image.Image, _ string) error {
	if err := clipboard.WriteImage(img); err != nil {
		return fmt.Errorf("clipboard error: %w", err)
	}
	return nil
}

// WriterSink streams the PNG to W, os.Stdout when nil.
type WriterSink struct {
	W io.Writer
}

func (s WriterSink) Commit(img image.Image, _ string) error {
	w := s.W
	if w == nil {
		w = os.Stdout
	}
	return png.Encode(w, img)
}

// Multi commits to every sink in order and joins their errors.
type Multi []Sink

func (m Multi) Commit(img image.Image, path string) error {
	var errs []error
	for _, s := range m {
		if err := s.Commit(img, path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Options selects sinks.
type Options struct {
	SaveToFile      bool
	CopyToClipboard bool
	Stdout          io.Writer
}

// Sinks builds the sink list for opts. The file sink goes first so a
// clipboard failure never loses the file.
func Sinks(opts Options) Multi {
	var m Multi
	if opts.SaveToFile {
		m = append(m, FileSink{})
	}
	if opts.CopyToClipboard {
		m = append(m, ClipboardSink{})
	}
	if opts.Stdout != nil {
		m = append(m, WriterSink{W: opts.Stdout})
	}
	return m
}
