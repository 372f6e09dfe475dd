// Package frame composites what the reader shows: the page bitmap placed in
// the viewport and the outline of the selection being dragged.
package frame

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	xdraw "golang.org/x/image/draw"

	"github.com/BareTools/BareReader/src/selection"
)

var (
	Background    = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	SelectionFill = color.NRGBA{R: 0x33, G: 0x66, B: 0xcc, A: 0x40}
	SelectionEdge = color.RGBA{R: 0x33, G: 0x66, B: 0xcc, A: 0xff}
)

const edgeWidth = 2

// Compose draws page on a viewport-sized canvas. The bitmap is centred
// horizontally on placed.ImageX with its top edge at placed.ImageY. A
// non-nil highlight is drawn as a translucent box with a solid edge.
func Compose(page *image.RGBA, placed selection.RenderedPage, vp selection.Viewport, highlight *selection.ScreenRect) *image.RGBA {
	w, h := int(math.Round(vp.Width)), int(math.Round(vp.Height))
	if w <= 0 || h <= 0 {
		// No viewport yet: the canvas is the page itself.
		w, h = 1, 1
		if page != nil {
			w, h = max(page.Bounds().Dx(), 1), max(page.Bounds().Dy(), 1)
		}
	}
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(canvas, canvas.Bounds(), image.NewUniform(Background), image.Point{}, xdraw.Src)

	if page != nil {
		left := int(math.Round(placed.ImageX - placed.Width/2))
		top := int(math.Round(placed.ImageY))
		b := page.Bounds()
		dst := image.Rect(left, top, left+b.Dx(), top+b.Dy())
		xdraw.Draw(canvas, dst, page, b.Min, xdraw.Src)
	}

	if highlight != nil {
		outline(canvas, selection.NormalizeScreen(*highlight))
	}
	return canvas
}

func outline(canvas *image.RGBA, r selection.ScreenRect) {
	box := image.Rect(
		int(math.Floor(r.X0)), int(math.Floor(r.Y0)),
		int(math.Ceil(r.X1)), int(math.Ceil(r.Y1)),
	).Intersect(canvas.Bounds())
	if box.Empty() {
		return
	}
	xdraw.Draw(canvas, box, image.NewUniform(SelectionFill), image.Point{}, xdraw.Over)

	edge := image.NewUniform(SelectionEdge)
	ew := min(edgeWidth, box.Dx(), box.Dy())
	for _, e := range []image.Rectangle{
		image.Rect(box.Min.X, box.Min.Y, box.Max.X, box.Min.Y+ew),
		image.Rect(box.Min.X, box.Max.Y-ew, box.Max.X, box.Max.Y),
		image.Rect(box.Min.X, box.Min.Y, box.Min.X+ew, box.Max.Y),
		image.Rect(box.Max.X-ew, box.Min.Y, box.Max.X, box.Max.Y),
	} {
		xdraw.Draw(canvas, e, edge, image.Point{}, xdraw.Src)
	}
}

// Scale returns img resized by factor with Catmull-Rom resampling. It is
// used for thumbnails where re-rendering the page would be wasteful.
func Scale(img image.Image, factor float64) (*image.RGBA, error) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return nil, fmt.Errorf("invalid scale factor %v", factor)
	}
	b := img.Bounds()
	w := max(int(math.Round(float64(b.Dx())*factor)), 1)
	h := max(int(math.Round(float64(b.Dy())*factor)), 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst, nil
}

// WritePNG encodes img to path, replacing any existing file.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return f.Close()
}
