package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvPathEnvVar = "BAREREADER_ENV"

	DefaultZoom      = 1.5
	DefaultZoomStep  = 0.1
	DefaultMinZoom   = 0.2
	DefaultFramePath = "barereader_frame.png"

	CopyTargetClipboard = "clipboard"
	CopyTargetStdout    = "stdout"
)

type LoadOptions struct {
	EnvPathOverride    string
	ZoomOverride       float64
	CopyTargetOverride string
}

// KeyBindings holds the key combinations, e.g. "Ctrl+Up", for viewer commands.
type KeyBindings struct {
	PrevPage string
	NextPage string
	ZoomIn   string
	ZoomOut  string
	Cancel   string
	Quit     string
}

type Config struct {
	EnvPath           string
	EnableFileLogging bool
	Zoom              float64
	ZoomStep          float64
	MinZoom           float64
	ViewportWidth     int
	ViewportHeight    int
	ViewportOriginX   int
	ViewportOriginY   int
	FramePath         string
	CopyTarget        string
	Keys              KeyBindings
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) explicit override path
	// 2) .env in the application (executable) directory
	// 3) BAREREADER_ENV as a path to a config file
	// Variables already set in the process environment are never overwritten.
	envPath := resolveEnvPath(opts)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	zoom := getEnvFloat("ZOOM", DefaultZoom)
	if opts.ZoomOverride > 0 {
		zoom = opts.ZoomOverride
	}
	minZoom := getEnvFloat("MIN_ZOOM", DefaultMinZoom)
	zoom = max(zoom, minZoom)

	cfg := &Config{
		EnvPath:           envPath,
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		Zoom:              zoom,
		ZoomStep:          getEnvFloat("ZOOM_STEP", DefaultZoomStep),
		MinZoom:           minZoom,
		ViewportWidth:     getEnvInt("VIEWPORT_WIDTH", 0),
		ViewportHeight:    getEnvInt("VIEWPORT_HEIGHT", 0),
		ViewportOriginX:   getEnvInt("VIEWPORT_ORIGIN_X", 0),
		ViewportOriginY:   getEnvInt("VIEWPORT_ORIGIN_Y", 0),
		FramePath:         getEnvWithDefault("FRAME_PATH", DefaultFramePath),
		CopyTarget:        resolveCopyTargetValue(opts),
		Keys: KeyBindings{
			PrevPage: getEnvWithDefault("KEY_PREV_PAGE", "Up"),
			NextPage: getEnvWithDefault("KEY_NEXT_PAGE", "Down"),
			ZoomIn:   getEnvWithDefault("KEY_ZOOM_IN", "Ctrl+Up"),
			ZoomOut:  getEnvWithDefault("KEY_ZOOM_OUT", "Ctrl+Down"),
			Cancel:   getEnvWithDefault("KEY_CANCEL", "Esc"),
			Quit:     getEnvWithDefault("KEY_QUIT", "Ctrl+Q"),
		},
	}

	return cfg, nil
}

func resolveEnvPath(opts LoadOptions) string {
	if override := strings.TrimSpace(opts.EnvPathOverride); override != "" {
		if _, err := os.Stat(override); err == nil {
			return override
		}
	}

	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvFloat returns a positive float from key, or defaultValue.
func getEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return defaultValue
}

func resolveCopyTarget(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case CopyTargetStdout, "std":
		return CopyTargetStdout
	default:
		return CopyTargetClipboard
	}
}

func resolveCopyTargetValue(opts LoadOptions) string {
	if override := strings.TrimSpace(opts.CopyTargetOverride); override != "" {
		return resolveCopyTarget(override)
	}
	return resolveCopyTarget(os.Getenv("COPY_TARGET"))
}
