// Package viewer keeps the state of a single open document: current page,
// zoom factor, viewport and the bitmap of the page as it is drawn.
package viewer

import (
	"fmt"
	"image"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/BareTools/BareReader/src/document"
	"github.com/BareTools/BareReader/src/selection"
)

// Document is the document layer as the viewer uses it.
type Document interface {
	selection.TextSource
	NumPage() int
	Render(page int, zoom float64) (*image.RGBA, error)
	Close() error
}

// Opener opens a document by path.
type Opener func(path string) (Document, error)

// OpenPDF opens path with the MuPDF-backed document layer.
func OpenPDF(path string) (Document, error) {
	d, err := document.Open(path)
	if err != nil {
		return nil, err
	}
	return d, nil
}

type Options struct {
	Zoom     float64
	ZoomStep float64
	MinZoom  float64
	Viewport selection.Viewport
	Open     Opener
}

// Viewer is not safe for concurrent use; it is driven from the event loop.
type Viewer struct {
	open     Opener
	zoomStep float64
	minZoom  float64

	doc      Document
	path     string
	page     int
	zoom     float64
	viewport selection.Viewport
	rendered selection.RenderedPage
	img      *image.RGBA
}

func New(opts Options) *Viewer {
	v := &Viewer{
		open:     opts.Open,
		zoomStep: opts.ZoomStep,
		minZoom:  opts.MinZoom,
		zoom:     opts.Zoom,
		viewport: opts.Viewport,
	}
	if v.open == nil {
		v.open = OpenPDF
	}
	if v.zoomStep <= 0 {
		v.zoomStep = 0.1
	}
	if v.minZoom <= 0 {
		v.minZoom = 0.2
	}
	if v.zoom <= 0 {
		v.zoom = 1.5
	}
	v.zoom = max(roundZoom(v.zoom), v.minZoom)
	return v
}

// Open loads path and shows its first page. On failure the previously open
// document stays open.
func (v *Viewer) Open(path string) error {
	doc, err := v.open(path)
	if err != nil {
		log.Printf("Viewer: failed to open %s: %v", path, err)
		return fmt.Errorf("failed to open PDF: %w", err)
	}
	if doc.NumPage() == 0 {
		_ = doc.Close()
		return fmt.Errorf("failed to open PDF: %s has no pages", path)
	}

	if err := v.closeDocument(); err != nil {
		log.Printf("Viewer: error closing previous document: %v", err)
	}
	v.doc = doc
	v.path = path
	v.page = 0
	v.viewport.ScrollX, v.viewport.ScrollY = 0, 0
	log.Printf("Viewer: opened %s with %d pages", path, doc.NumPage())
	return v.render()
}

// Close closes the open document, if any.
func (v *Viewer) Close() error {
	return v.closeDocument()
}

func (v *Viewer) closeDocument() error {
	if v.doc == nil {
		return nil
	}
	err := v.doc.Close()
	v.doc = nil
	v.path = ""
	v.img = nil
	v.rendered = selection.RenderedPage{}
	return err
}

// Next moves to the following page. It reports whether the page changed.
func (v *Viewer) Next() (bool, error) {
	if v.doc == nil || v.page >= v.doc.NumPage()-1 {
		return false, nil
	}
	return v.showPage(v.page+1, v.zoom)
}

// Prev moves to the preceding page. It reports whether the page changed.
func (v *Viewer) Prev() (bool, error) {
	if v.doc == nil || v.page <= 0 {
		return false, nil
	}
	return v.showPage(v.page-1, v.zoom)
}

// GoTo jumps to a 1-based page number given as text. Input that is not a
// page number of the open document is ignored.
func (v *Viewer) GoTo(label string) (bool, error) {
	if v.doc == nil {
		return false, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(label))
	if err != nil {
		return false, nil
	}
	page := n - 1
	if page < 0 || page >= v.doc.NumPage() || page == v.page {
		return false, nil
	}
	return v.showPage(page, v.zoom)
}

// ZoomIn increases the zoom factor by one step.
func (v *Viewer) ZoomIn() (bool, error) {
	if v.doc == nil {
		return false, nil
	}
	return v.showPage(v.page, roundZoom(v.zoom+v.zoomStep))
}

// ZoomOut decreases the zoom factor by one step while it is above the
// minimum.
func (v *Viewer) ZoomOut() (bool, error) {
	if v.doc == nil || v.zoom <= v.minZoom {
		return false, nil
	}
	return v.showPage(v.page, max(roundZoom(v.zoom-v.zoomStep), v.minZoom))
}

func (v *Viewer) showPage(page int, zoom float64) (bool, error) {
	prevPage, prevZoom := v.page, v.zoom
	v.page, v.zoom = page, zoom
	if err := v.render(); err != nil {
		v.page, v.zoom = prevPage, prevZoom
		return false, err
	}
	return true, nil
}

func (v *Viewer) render() error {
	img, err := v.doc.Render(v.page, v.zoom)
	if err != nil {
		log.Printf("Viewer: error loading page %d: %v", v.page+1, err)
		return fmt.Errorf("error loading page %d: %w", v.page+1, err)
	}
	v.img = img
	log.Printf("Viewer: page %d/%d at zoom %.2f (%dx%d)", v.page+1, v.doc.NumPage(), v.zoom, img.Bounds().Dx(), img.Bounds().Dy())
	v.place()
	return nil
}

// place clamps the scroll offsets and recomputes where the bitmap sits in
// the viewport.
func (v *Viewer) place() {
	if v.img == nil {
		return
	}
	w := float64(v.img.Bounds().Dx())
	h := float64(v.img.Bounds().Dy())

	spareX := max(w-v.viewport.Width, 0) / 2
	v.viewport.ScrollX = clamp(v.viewport.ScrollX, -spareX, spareX)
	v.viewport.ScrollY = clamp(v.viewport.ScrollY, 0, max(h-v.viewport.Height, 0))

	centre := v.viewport.Width / 2
	if v.viewport.Width <= 0 {
		centre = w / 2
	}
	v.rendered = selection.RenderedPage{
		Index:  v.page,
		Width:  w,
		Height: h,
		Zoom:   v.zoom,
		ImageX: centre - v.viewport.ScrollX,
		ImageY: -v.viewport.ScrollY,
	}
}

// Resize sets the viewport size in pixels.
func (v *Viewer) Resize(width, height float64) {
	v.viewport.Width = max(width, 0)
	v.viewport.Height = max(height, 0)
	v.place()
}

// ScrollTo sets the scroll offsets in pixels; they are clamped to the page.
func (v *Viewer) ScrollTo(x, y float64) {
	v.viewport.ScrollX = x
	v.viewport.ScrollY = y
	v.place()
}

// ScrollBy moves the scroll offsets by the given number of pixels.
func (v *Viewer) ScrollBy(dx, dy float64) {
	v.ScrollTo(v.viewport.ScrollX+dx, v.viewport.ScrollY+dy)
}

// State returns a snapshot for resolving selections. Document is nil when
// nothing is open.
func (v *Viewer) State() selection.ViewerState {
	s := selection.ViewerState{Page: v.rendered, Viewport: v.viewport}
	if v.doc != nil {
		s.Document = v.doc
	}
	return s
}

func (v *Viewer) Loaded() bool                     { return v.doc != nil }
func (v *Viewer) Path() string                     { return v.path }
func (v *Viewer) Page() int                        { return v.page }
func (v *Viewer) Zoom() float64                    { return v.zoom }
func (v *Viewer) Viewport() selection.Viewport     { return v.viewport }
func (v *Viewer) Rendered() selection.RenderedPage { return v.rendered }

// Image returns the bitmap of the current page, or nil.
func (v *Viewer) Image() *image.RGBA { return v.img }

// PageCount returns the number of pages of the open document.
func (v *Viewer) PageCount() int {
	if v.doc == nil {
		return 0
	}
	return v.doc.NumPage()
}

// PageLabel returns the 1-based page number shown in the page box.
func (v *Viewer) PageLabel() string {
	if v.doc == nil {
		return ""
	}
	return strconv.Itoa(v.page + 1)
}

func roundZoom(z float64) float64 {
	return math.Round(z*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
