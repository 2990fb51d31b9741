package config

import (
	"os"
	"testing"

	"screen-snap/src/shapes"
)

func TestLoad(t *testing.T) {
	// Set test environment variables
	os.Setenv("ENABLE_FILE_LOGGING", "true")
	os.Setenv("HOTKEY", "Ctrl+Shift+T")
	os.Setenv("OUTPUT_DIR", "/tmp/shots")
	os.Setenv("COPY_TO_CLIPBOARD", "false")
	os.Setenv("DEFAULT_COLOR", "Blue")
	os.Setenv("DEFAULT_WIDTH", "6")

	defer func() {
		// Clean up environment variables
		os.Unsetenv("ENABLE_FILE_LOGGING")
		os.Unsetenv("HOTKEY")
		os.Unsetenv("OUTPUT_DIR")
		os.Unsetenv("COPY_TO_CLIPBOARD")
		os.Unsetenv("DEFAULT_COLOR")
		os.Unsetenv("DEFAULT_WIDTH")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	if !cfg.EnableFileLogging {
		t.Errorf("Expected EnableFileLogging to be true, got %v", cfg.EnableFileLogging)
	}
	if cfg.Hotkey != "Ctrl+Shift+T" {
		t.Errorf("Expected Hotkey to be 'Ctrl+Shift+T', got '%s'", cfg.Hotkey)
	}
	if cfg.OutputDir != "/tmp/shots" {
		t.Errorf("Expected OutputDir to be '/tmp/shots', got '%s'", cfg.OutputDir)
	}
	if !cfg.SaveToFile || cfg.CopyToClipboard {
		t.Errorf("Expected file on and clipboard off, got %v/%v", cfg.SaveToFile, cfg.CopyToClipboard)
	}
	if got := cfg.Pen(); got != (shapes.Style{Color: shapes.Blue, Width: 6}) {
		t.Errorf("Expected blue width 6 pen, got %+v", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HOTKEY", "OUTPUT_DIR", "SAVE_TO_FILE", "COPY_TO_CLIPBOARD", "DEFAULT_COLOR", "DEFAULT_WIDTH", "WINDOW_DETECTION"} {
		t.Setenv(k, "")
	}
	cfg, err := LoadWithOptions(LoadOptions{OutputDirOverride: " ./out "})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Hotkey != DefaultHotkey {
		t.Errorf("Hotkey = %q", cfg.Hotkey)
	}
	if cfg.OutputDir != "./out" {
		t.Errorf("override must win, got %q", cfg.OutputDir)
	}
	if !cfg.SaveToFile || !cfg.CopyToClipboard || !cfg.WindowDetection {
		t.Errorf("boolean defaults must be true: %+v", cfg)
	}
	if cfg.Pen() != shapes.DefaultStyle() {
		t.Errorf("Pen = %+v", cfg.Pen())
	}
}

func TestResolveWidth(t *testing.T) {
	tests := map[string]float64{"2": 2, "4": 4, "6": 6, "5": 4, "": 4, "wide": 4}
	for in, want := range tests {
		if got := resolveWidth(in); got != want {
			t.Errorf("resolveWidth(%q) = %v, want %v", in, got, want)
		}
	}
}
