package display

import (
	"fmt"
	"image"
	"log"

	"github.com/kbinani/screenshot"

	"github.com/BareTools/BareReader/src/selection"
)

const (
	FallbackWidth  = 850
	FallbackHeight = 1100
)

// PrimaryBounds returns the bounds of the primary display (display 0).
func PrimaryBounds() (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, fmt.Errorf("no active displays found")
	}
	return screenshot.GetDisplayBounds(0), nil
}

// VirtualBounds returns the union of all active displays.
func VirtualBounds() (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, fmt.Errorf("no active displays found")
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	return union, nil
}

// DefaultViewport sizes the viewport. Positive width and height are used
// as given; otherwise the primary display size, else 850x1100.
func DefaultViewport(width, height int) selection.Viewport {
	return viewportFrom(width, height, PrimaryBounds)
}

func viewportFrom(width, height int, bounds func() (image.Rectangle, error)) selection.Viewport {
	if width > 0 && height > 0 {
		return selection.Viewport{Width: float64(width), Height: float64(height)}
	}
	b, err := bounds()
	if err != nil || b.Empty() {
		log.Printf("Display: %v, using %dx%d viewport", err, FallbackWidth, FallbackHeight)
		b = image.Rect(0, 0, FallbackWidth, FallbackHeight)
	}
	w, h := b.Dx(), b.Dy()
	if width > 0 {
		w = width
	}
	if height > 0 {
		h = height
	}
	return selection.Viewport{Width: float64(w), Height: float64(h)}
}
