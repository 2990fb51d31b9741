package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"screen-snap/src/shapes"
)

const (
	DefaultHotkey = "Shift+Alt+B"
	ConfigEnvVar  = "SCREEN_SNAP_CONFIG"
	OutputDirVar  = "OUTPUT_DIR"
)

type LoadOptions struct {
	OutputDirOverride string
}

type Config struct {
	Hotkey            string
	OutputDir         string
	SaveToFile        bool
	CopyToClipboard   bool
	DefaultColor      string
	DefaultWidth      float64
	WindowDetection   bool
	EnableFileLogging bool
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use SCREEN_SNAP_CONFIG env var as a path to a config file
	envPath := resolveEnvPath()
	dotenvValues := readDotenvValues(envPath)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	cfg := &Config{
		Hotkey:            getEnvWithDefault("HOTKEY", DefaultHotkey),
		OutputDir:         resolveOutputDir(opts, dotenvValues),
		SaveToFile:        getBoolWithDefault("SAVE_TO_FILE", true),
		CopyToClipboard:   getBoolWithDefault("COPY_TO_CLIPBOARD", true),
		DefaultColor:      resolveColorName(os.Getenv("DEFAULT_COLOR")),
		DefaultWidth:      resolveWidth(os.Getenv("DEFAULT_WIDTH")),
		WindowDetection:   getBoolWithDefault("WINDOW_DETECTION", true),
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
	}

	return cfg, nil
}

// Pen returns the initial annotation style.
func (c *Config) Pen() shapes.Style {
	st := shapes.DefaultStyle()
	if col, ok := shapes.ColorByName(c.DefaultColor); ok {
		st.Color = col
	}
	if c.DefaultWidth > 0 {
		st.Width = c.DefaultWidth
	}
	return st
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	execDir := filepath.Dir(execPath)
	exeEnv := filepath.Join(execDir, ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv(ConfigEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func readDotenvValues(envPath string) map[string]string {
	if envPath == "" {
		return map[string]string{}
	}

	values, err := godotenv.Read(envPath)
	if err != nil {
		return map[string]string{}
	}

	return values
}

// resolveOutputDir prefers the CLI override, then the .env file, then the
// process environment. Empty means the export default.
func resolveOutputDir(opts LoadOptions, dotenvValues map[string]string) string {
	dir := strings.TrimSpace(os.Getenv(OutputDirVar))

	if dotenvDir := strings.TrimSpace(dotenvValues[OutputDirVar]); dotenvDir != "" {
		dir = dotenvDir
	}

	if override := strings.TrimSpace(opts.OutputDirOverride); override != "" {
		dir = override
	}

	return dir
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolWithDefault(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("config: invalid %s=%q, using %v", key, value, defaultValue)
		return defaultValue
	}
	return b
}

func resolveColorName(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if _, ok := shapes.ColorByName(value); ok {
		return value
	}
	return "red"
}

// resolveWidth accepts only the widths the toolbar offers.
func resolveWidth(value string) float64 {
	if n, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
		for _, w := range shapes.Widths {
			if w == n {
				return n
			}
		}
	}
	return shapes.DefaultWidth
}
