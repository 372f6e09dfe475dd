package selection

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidGeometry is returned when the rendered page has a non-positive
// size or zoom factor.
var ErrInvalidGeometry = errors.New("invalid page geometry")

// Point is a position in viewport pixels.
type Point struct {
	X float64
	Y float64
}

// Viewport is the visible drawing surface. Scroll offsets are in pixels.
type Viewport struct {
	Width   float64
	Height  float64
	ScrollX float64
	ScrollY float64
}

// RenderedPage describes one rasterised page as it is drawn in the viewport.
// ImageX is the horizontal centre of the bitmap and ImageY its top edge, both
// in viewport pixels. A RenderedPage is replaced, never modified, when the
// page index or zoom changes.
type RenderedPage struct {
	Index  int
	Width  float64
	Height float64
	Zoom   float64
	ImageX float64
	ImageY float64
}

// ScreenRect is a rectangle in viewport pixels given by two corners.
type ScreenRect struct {
	X0, Y0 float64
	X1, Y1 float64
}

// DocumentRect is a rectangle in page units (points, top-left origin).
type DocumentRect struct {
	X0, Y0 float64
	X1, Y1 float64
}

// RectFromPoints builds a normalised ScreenRect from drag start and end.
func RectFromPoints(a, b Point) ScreenRect {
	return NormalizeScreen(ScreenRect{X0: a.X, Y0: a.Y, X1: b.X, Y1: b.Y})
}

// NormalizeScreen orders the corners so (X0,Y0) is top-left.
func NormalizeScreen(r ScreenRect) ScreenRect {
	return ScreenRect{
		X0: min(r.X0, r.X1),
		Y0: min(r.Y0, r.Y1),
		X1: max(r.X0, r.X1),
		Y1: max(r.Y0, r.Y1),
	}
}

// NormalizeDocument orders the corners so (X0,Y0) is top-left.
func NormalizeDocument(r DocumentRect) DocumentRect {
	return DocumentRect{
		X0: min(r.X0, r.X1),
		Y0: min(r.Y0, r.Y1),
		X1: max(r.X0, r.X1),
		Y1: max(r.Y0, r.Y1),
	}
}

func (r ScreenRect) Width() float64  { return r.X1 - r.X0 }
func (r ScreenRect) Height() float64 { return r.Y1 - r.Y0 }

// Empty reports whether the normalised rectangle has zero area.
func (r ScreenRect) Empty() bool {
	n := NormalizeScreen(r)
	return n.X0 == n.X1 || n.Y0 == n.Y1
}

func (r DocumentRect) Width() float64  { return r.X1 - r.X0 }
func (r DocumentRect) Height() float64 { return r.Y1 - r.Y0 }

// Area of the normalised rectangle.
func (r DocumentRect) Area() float64 {
	n := NormalizeDocument(r)
	return n.Width() * n.Height()
}

// Empty reports whether the normalised rectangle has zero area.
func (r DocumentRect) Empty() bool {
	n := NormalizeDocument(r)
	return n.X0 == n.X1 || n.Y0 == n.Y1
}

func (r DocumentRect) String() string {
	return fmt.Sprintf("[%.2f,%.2f - %.2f,%.2f]", r.X0, r.Y0, r.X1, r.Y1)
}

// Validate checks the preconditions of the screen/document transform.
func (p RenderedPage) Validate() error {
	for _, v := range []float64{p.Width, p.Height, p.Zoom} {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: width=%v height=%v zoom=%v", ErrInvalidGeometry, p.Width, p.Height, p.Zoom)
		}
	}
	if math.IsNaN(p.ImageX) || math.IsNaN(p.ImageY) {
		return fmt.Errorf("%w: image offset (%v,%v)", ErrInvalidGeometry, p.ImageX, p.ImageY)
	}
	return nil
}

// ToDocument maps a screen rectangle onto page units for the page as it is
// currently drawn. Points outside the bitmap are not clamped.
func ToDocument(r ScreenRect, p RenderedPage) (DocumentRect, error) {
	if err := p.Validate(); err != nil {
		return DocumentRect{}, err
	}
	n := NormalizeScreen(r)
	x0, y0 := p.toDocument(n.X0, n.Y0)
	x1, y1 := p.toDocument(n.X1, n.Y1)
	return NormalizeDocument(DocumentRect{X0: x0, Y0: y0, X1: x1, Y1: y1}), nil
}

// ToScreen is the inverse of ToDocument.
func ToScreen(r DocumentRect, p RenderedPage) ScreenRect {
	n := NormalizeDocument(r)
	x0, y0 := p.toScreen(n.X0, n.Y0)
	x1, y1 := p.toScreen(n.X1, n.Y1)
	return NormalizeScreen(ScreenRect{X0: x0, Y0: y0, X1: x1, Y1: y1})
}

func (p RenderedPage) toDocument(x, y float64) (float64, float64) {
	// ImageX is the bitmap centre, so shift by half the width to get the
	// offset from its left edge.
	relX := (x - p.ImageX + p.Width/2) / p.Width
	relY := (y - p.ImageY) / p.Height
	return relX * p.Width / p.Zoom, relY * p.Height / p.Zoom
}

func (p RenderedPage) toScreen(x, y float64) (float64, float64) {
	relX := x * p.Zoom / p.Width
	relY := y * p.Zoom / p.Height
	return relX*p.Width + p.ImageX - p.Width/2, relY*p.Height + p.ImageY
}
