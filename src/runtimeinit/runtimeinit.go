package runtimeinit

import (
	"fmt"
	"log"

	"screen-snap/src/clipboard"
	"screen-snap/src/config"
	"screen-snap/src/screenshot"
)

type Options struct {
	LoadOptions  config.LoadOptions
	SetupLogging func(bool)
	// RequireDisplay fails the bootstrap when no display can be captured.
	RequireDisplay bool
}

func Bootstrap(opts Options) (*config.Config, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging)
	}
	log.Printf("Configuration: hotkey=%s dir=%q file=%v clipboard=%v windows=%v",
		cfg.Hotkey, cfg.OutputDir, cfg.SaveToFile, cfg.CopyToClipboard, cfg.WindowDetection)

	displays, err := screenshot.Displays()
	if err != nil {
		if opts.RequireDisplay {
			return nil, fmt.Errorf("no display to capture: %w", err)
		}
		log.Printf("Display check failed: %v", err)
	}
	for _, d := range displays {
		log.Printf("Display %d: %v", d.Index, d.Bounds)
	}

	if cfg.CopyToClipboard {
		if err := clipboard.Init(); err != nil {
			// the file is still written; only the clipboard copy is lost
			log.Printf("Clipboard unavailable, copies disabled: %v", err)
			cfg.CopyToClipboard = false
		}
	}

	return cfg, nil
}
