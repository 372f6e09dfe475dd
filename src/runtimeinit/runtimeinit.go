package runtimeinit

import (
	"fmt"
	"log"

	"github.com/BareTools/BareReader/src/clipboard"
	"github.com/BareTools/BareReader/src/config"
)

type Options struct {
	LoadOptions  config.LoadOptions
	SetupLogging func(bool)
	// InitClipboard defaults to clipboard.Init when nil.
	InitClipboard func() error
}

// Bootstrap loads configuration, sets up logging and, when selections go to
// the clipboard, initializes it.
func Bootstrap(opts Options) (*config.Config, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging)
	}
	log.Printf("Config: env=%q zoom=%.2f step=%.2f min=%.2f target=%s", cfg.EnvPath, cfg.Zoom, cfg.ZoomStep, cfg.MinZoom, cfg.CopyTarget)

	if cfg.CopyTarget == config.CopyTargetClipboard {
		initClipboard := opts.InitClipboard
		if initClipboard == nil {
			initClipboard = clipboard.Init
		}
		if err := initClipboard(); err != nil {
			return nil, fmt.Errorf("failed to initialize clipboard: %w", err)
		}
	}

	return cfg, nil
}
