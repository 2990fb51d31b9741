package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"sync"

	"golang.design/x/clipboard"
)

var (
	writeMu sync.Mutex
	initMu  sync.Mutex
	ready   bool
)

// ErrUnavailable is returned when the system clipboard cannot be opened,
// for example on a headless machine.
var ErrUnavailable = errors.New("clipboard unavailable")

func Init() error {
	initMu.Lock()
	defer initMu.Unlock()
	if ready {
		return nil
	}
	if err := clipboard.Init(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	ready = true
	return nil
}

// Write performs a mutex-guarded clipboard write to prevent corruption under parallel writes.
func Write(text string) error {
	if err := Init(); err != nil {
		return err
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

// WriteImage places img on the clipboard as PNG. The clipboard holds one
// format at a time, so this replaces any text.
func WriteImage(img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return WritePNG(buf.Bytes())
}

// WritePNG places already encoded PNG bytes on the clipboard.
func WritePNG(data []byte) error {
	if err := Init(); err != nil {
		return err
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}
