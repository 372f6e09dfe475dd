package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/BareTools/BareReader/src/config"
	"github.com/BareTools/BareReader/src/document"
	"github.com/BareTools/BareReader/src/frame"
	"github.com/BareTools/BareReader/src/logutil"
	"github.com/BareTools/BareReader/src/popup"
	"github.com/BareTools/BareReader/src/runtimeinit"
	"github.com/BareTools/BareReader/src/selection"
	"github.com/BareTools/BareReader/src/session"
	"github.com/BareTools/BareReader/src/viewer"
)

type cliOptions struct {
	jsonOutput bool
	verbose    bool
	envPath    string

	page     int
	zoom     float64
	out      string
	withView bool
	scale    float64
	viewport string
	scrollX  float64
	scrollY  float64
	rect     string
	toClip   bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args), os.Stdout)
}

func runWithArgs(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		args = []string{"barereader-cli"}
	}
	opts := &cliOptions{}
	cmd := newRootCmd(opts, stdout)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions, stdout io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "barereader-cli",
		Short:         "Inspect, render and select text from PDF files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Configure logging BEFORE any other operations.
			if opts.verbose {
				logutil.SetupVerbose(os.Stderr)
				popup.SetOutput(os.Stderr)
			} else {
				log.SetOutput(io.Discard)
			}
		},
	}
	root.SetOut(stdout)
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	root.PersistentFlags().StringVar(&opts.envPath, "env", "", "Path to .env file (highest precedence)")

	info := &cobra.Command{
		Use:   "info FILE",
		Short: "Print page count and page sizes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(*opts, args[0], cmd.OutOrStdout())
		},
	}

	render := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a page to PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(*opts, args[0], cmd.OutOrStdout())
		},
	}
	render.Flags().StringVar(&opts.out, "out", "", "Output PNG path")
	render.Flags().BoolVar(&opts.withView, "frame", false, "Compose the page into a viewport-sized frame")
	render.Flags().Float64Var(&opts.scale, "scale", 1, "Resample the rendered bitmap by this factor")
	_ = render.MarkFlagRequired("out")

	sel := &cobra.Command{
		Use:   "select FILE",
		Short: "Print or copy the text under a screen rectangle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(*opts, args[0], cmd.OutOrStdout())
		},
	}
	sel.Flags().StringVar(&opts.rect, "rect", "", "Screen rectangle x1,y1,x2,y2 in viewport pixels")
	sel.Flags().BoolVar(&opts.toClip, "clipboard", false, "Copy the text to the clipboard")
	sel.Flags().Float64Var(&opts.scrollX, "scroll-x", 0, "Horizontal scroll offset in pixels")
	sel.Flags().Float64Var(&opts.scrollY, "scroll-y", 0, "Vertical scroll offset in pixels")
	_ = sel.MarkFlagRequired("rect")

	for _, c := range []*cobra.Command{render, sel} {
		c.Flags().IntVar(&opts.page, "page", 1, "Page number (1-based)")
		c.Flags().Float64Var(&opts.zoom, "zoom", 0, "Zoom factor (defaults to ZOOM)")
		c.Flags().StringVar(&opts.viewport, "viewport", "", "Viewport size WxH in pixels (defaults to VIEWPORT_WIDTH/HEIGHT)")
	}

	root.AddCommand(info, render, sel)
	return root
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	normalized := make([]string, len(args))
	copy(normalized, args)

	legacy := []string{"json", "verbose", "env", "page", "zoom", "out", "frame", "scale", "viewport", "scroll-x", "scroll-y", "rect", "clipboard"}
	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range legacy {
			switch {
			case arg == "-"+name:
				normalized[i] = "--" + name
			case strings.HasPrefix(arg, "-"+name+"="):
				normalized[i] = "--" + name + "=" + arg[len("-"+name+"="):]
			}
		}
	}
	return normalized
}

func loadConfig(opts cliOptions, target string) (*config.Config, error) {
	return runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions: config.LoadOptions{
			EnvPathOverride:    opts.envPath,
			ZoomOverride:       opts.zoom,
			CopyTargetOverride: target,
		},
	})
}

type PageInfo struct {
	Page   int     `json:"page"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type InfoResult struct {
	Source string     `json:"source"`
	Pages  int        `json:"pages"`
	Sizes  []PageInfo `json:"page_sizes"`
}

func runInfo(opts cliOptions, path string, w io.Writer) error {
	doc, err := document.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	result := InfoResult{Source: path, Pages: doc.NumPage()}
	for i := 0; i < doc.NumPage(); i++ {
		pw, ph, err := doc.PageSize(i)
		if err != nil {
			return fmt.Errorf("page %d: %w", i+1, err)
		}
		result.Sizes = append(result.Sizes, PageInfo{Page: i + 1, Width: pw, Height: ph})
	}

	if opts.jsonOutput {
		return writeJSON(w, result)
	}
	fmt.Fprintf(w, "%s: %d pages\n", path, result.Pages)
	for _, p := range result.Sizes {
		fmt.Fprintf(w, "  page %d: %.2f x %.2f pt\n", p.Page, p.Width, p.Height)
	}
	return nil
}

// openViewer opens path in a viewer positioned on the requested page.
func openViewer(opts cliOptions, cfg *config.Config, path string) (*viewer.Viewer, error) {
	vp := selection.Viewport{Width: float64(cfg.ViewportWidth), Height: float64(cfg.ViewportHeight)}
	if opts.viewport != "" {
		vw, vh, err := parseSize(opts.viewport)
		if err != nil {
			return nil, err
		}
		vp.Width, vp.Height = vw, vh
	}

	v := viewer.New(viewer.Options{Zoom: cfg.Zoom, ZoomStep: cfg.ZoomStep, MinZoom: cfg.MinZoom, Viewport: vp})
	if err := v.Open(path); err != nil {
		return nil, err
	}
	if opts.page != 1 {
		changed, err := v.GoTo(strconv.Itoa(opts.page))
		if err != nil {
			v.Close()
			return nil, err
		}
		if !changed {
			v.Close()
			return nil, fmt.Errorf("page %d out of range (1-%d)", opts.page, v.PageCount())
		}
	}
	v.ScrollTo(opts.scrollX, opts.scrollY)
	return v, nil
}

type RenderResult struct {
	Source string  `json:"source"`
	Page   int     `json:"page"`
	Zoom   float64 `json:"zoom"`
	Output string  `json:"output"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
}

func runRender(opts cliOptions, path string, w io.Writer) error {
	cfg, err := loadConfig(opts, config.CopyTargetStdout)
	if err != nil {
		return err
	}
	v, err := openViewer(opts, cfg, path)
	if err != nil {
		return err
	}
	defer v.Close()

	var img = v.Image()
	if opts.withView {
		st := v.State()
		img = frame.Compose(img, st.Page, st.Viewport, nil)
	}
	if opts.scale != 1 {
		if img, err = frame.Scale(img, opts.scale); err != nil {
			return err
		}
	}
	if err := frame.WritePNG(opts.out, img); err != nil {
		return err
	}

	result := RenderResult{
		Source: path,
		Page:   v.Page() + 1,
		Zoom:   v.Zoom(),
		Output: opts.out,
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}
	if opts.jsonOutput {
		return writeJSON(w, result)
	}
	fmt.Fprintf(w, "wrote %s (%dx%d, page %d, zoom %.2f)\n", result.Output, result.Width, result.Height, result.Page, result.Zoom)
	return nil
}

type SelectResult struct {
	Text      string                 `json:"text"`
	Source    string                 `json:"source"`
	Page      int                    `json:"page"`
	Zoom      float64                `json:"zoom"`
	Outcome   string                 `json:"outcome"`
	Screen    selection.ScreenRect   `json:"screen_rect"`
	Document  selection.DocumentRect `json:"document_rect"`
	CharCount int                    `json:"character_count"`
	Copied    bool                   `json:"copied"`
}

// collectTarget keeps the text for JSON output instead of delivering it.
type collectTarget struct{ text string }

func (c *collectTarget) OnSuccess(text string) error {
	c.text = text
	return nil
}

func (c *collectTarget) OnFailure(err error) error { return nil }

func runSelect(opts cliOptions, path string, w io.Writer) error {
	rect, err := parseRect(opts.rect)
	if err != nil {
		return err
	}
	copyTarget := config.CopyTargetStdout
	if opts.toClip {
		copyTarget = config.CopyTargetClipboard
	}
	cfg, err := loadConfig(opts, copyTarget)
	if err != nil {
		return err
	}
	v, err := openViewer(opts, cfg, path)
	if err != nil {
		return err
	}
	defer v.Close()

	var target session.ResultTarget
	switch {
	case opts.toClip:
		target = session.ClipboardTarget{}
	case opts.jsonOutput:
		target = &collectTarget{}
	default:
		target = session.StdoutTarget{Writer: w}
	}

	res := session.Copy(v.State(), rect, session.Options{Mapper: selection.NewMapper(), Target: target})
	if !opts.jsonOutput {
		return nil
	}
	return writeJSON(w, SelectResult{
		Text:      res.Selection.Text,
		Source:    path,
		Page:      v.Page() + 1,
		Zoom:      v.Zoom(),
		Outcome:   res.Outcome.String(),
		Screen:    res.Selection.Screen,
		Document:  res.Selection.Document,
		CharCount: utf8.RuneCountInString(res.Selection.Text),
		Copied:    res.Copied(),
	})
}

func parseRect(s string) (selection.ScreenRect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return selection.ScreenRect{}, fmt.Errorf("invalid rect %q, expected x1,y1,x2,y2", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return selection.ScreenRect{}, fmt.Errorf("invalid rect %q: %w", s, err)
		}
		v[i] = f
	}
	return selection.RectFromPoints(selection.Point{X: v[0], Y: v[1]}, selection.Point{X: v[2], Y: v[3]}), nil
}

func parseSize(s string) (float64, float64, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q, expected WxH", s)
	}
	w, err1 := strconv.Atoi(strings.TrimSpace(ws))
	h, err2 := strconv.Atoi(strings.TrimSpace(hs))
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid size %q, expected WxH", s)
	}
	return float64(w), float64(h), nil
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}
