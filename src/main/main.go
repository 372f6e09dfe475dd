package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/BareTools/BareReader/src/config"
	"github.com/BareTools/BareReader/src/display"
	"github.com/BareTools/BareReader/src/eventloop"
	"github.com/BareTools/BareReader/src/input"
	"github.com/BareTools/BareReader/src/logutil"
	"github.com/BareTools/BareReader/src/popup"
	"github.com/BareTools/BareReader/src/runtimeinit"
	"github.com/BareTools/BareReader/src/selection"
	"github.com/BareTools/BareReader/src/session"
	"github.com/BareTools/BareReader/src/viewer"
)

type mainOptions struct {
	page    int
	zoom    float64
	envPath string
	stdout  bool
	verbose bool
}

func main() {
	// Ensure DPI awareness before querying display metrics
	enableDPIAwareness()

	if err := runWithArgs(normalizeLegacyArgs(os.Args)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"barereader"}
	}
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "barereader [flags] FILE",
		Short:         "Read a PDF and copy the text under a dragged rectangle",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(*opts, args[0])
		},
	}

	cmd.Flags().IntVar(&opts.page, "page", 1, "Page to open (1-based)")
	cmd.Flags().Float64Var(&opts.zoom, "zoom", 0, "Initial zoom factor (overrides ZOOM)")
	cmd.Flags().StringVar(&opts.envPath, "env", "", "Path to .env file (highest precedence)")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "Print selected text instead of copying it")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr")

	return cmd
}

// normalizeLegacyArgs maps single-dash long flags (-page 3) to the double
// dash form cobra expects.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"page", "zoom", "env", "stdout", "verbose"} {
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

func run(opts mainOptions, path string) error {
	loadOptions := config.LoadOptions{
		EnvPathOverride: opts.envPath,
		ZoomOverride:    opts.zoom,
	}
	if opts.stdout {
		loadOptions.CopyTargetOverride = config.CopyTargetStdout
	}
	cfg, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions: loadOptions,
		SetupLogging: func(enableFileLogging bool) {
			setupLogging(enableFileLogging, opts.verbose)
		},
	})
	if err != nil {
		return err
	}
	popup.SetOutput(os.Stderr)
	logMonitorConfiguration()

	keymap, err := input.NewKeymap(cfg.Keys)
	if err != nil {
		return fmt.Errorf("invalid key binding: %w", err)
	}

	v := viewer.New(viewer.Options{
		Zoom:     cfg.Zoom,
		ZoomStep: cfg.ZoomStep,
		MinZoom:  cfg.MinZoom,
		Viewport: display.DefaultViewport(cfg.ViewportWidth, cfg.ViewportHeight),
	})
	defer v.Close()

	if err := v.Open(path); err != nil {
		_ = popup.ShowError("Error", "Failed to open PDF")
		return err
	}
	if opts.page > 1 {
		if changed, err := v.GoTo(strconv.Itoa(opts.page)); err != nil {
			log.Printf("Failed to show page %d: %v", opts.page, err)
		} else if !changed {
			log.Printf("Page %d is not in %s, staying on page 1", opts.page, path)
		}
	}

	log.Printf("BareReader initialized: %s, %d pages, frame %s", path, v.PageCount(), cfg.FramePath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	src := &input.HookSource{
		OriginX: cfg.ViewportOriginX,
		OriginY: cfg.ViewportOriginY,
		Keymap:  keymap,
	}
	loop := eventloop.New(eventloop.Options{
		Viewer: v,
		Session: session.Options{
			Mapper: selection.NewMapper(),
			Target: session.NewTarget(cfg.CopyTarget, os.Stdout),
		},
		WriteFrame: eventloop.FrameFile(cfg.FramePath),
	})

	if err := loop.Run(ctx, src.Start(ctx)); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("event loop stopped: %v", err)
		return err
	}
	return nil
}

func setupLogging(enableFileLogging, verbose bool) {
	if verbose {
		logutil.SetupVerbose(os.Stderr)
		return
	}
	logutil.Setup(enableFileLogging)
}

func logMonitorConfiguration() {
	primary, err := display.PrimaryBounds()
	if err != nil {
		log.Printf("MONITOR: %v", err)
		return
	}
	virtual, _ := display.VirtualBounds()
	log.Printf("MONITOR: Primary screen %v, virtual screen %v", primary, virtual)
}
