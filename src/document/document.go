// Package document is the document layer: it rasterises pages with MuPDF and
// answers rectangle text queries from the PDF text layer.
package document

import (
	"errors"
	"fmt"
	"image"
	"log"
	"os"

	fitz "github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"

	"github.com/BareTools/BareReader/src/selection"
)

// NativeDPI is the resolution at which one page unit is one pixel.
const NativeDPI = 72.0

var (
	ErrPageOutOfRange = errors.New("page out of range")
	ErrClosed         = errors.New("document closed")
)

// PDF is an open document. It is not safe for concurrent use.
type PDF struct {
	path   string
	raster *fitz.Document
	file   *os.File
	text   *pdf.Reader
	pages  int
}

// Open opens path for rendering and text queries.
func Open(path string) (*PDF, error) {
	raster, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		_ = raster.Close()
		return nil, fmt.Errorf("read text layer of %s: %w", path, err)
	}

	d := &PDF{
		path:   path,
		raster: raster,
		file:   f,
		text:   reader,
		pages:  raster.NumPage(),
	}
	log.Printf("Document: opened %s (%d pages)", path, d.pages)
	return d, nil
}

// Path returns the file the document was opened from.
func (d *PDF) Path() string { return d.path }

// NumPage returns the number of pages.
func (d *PDF) NumPage() int { return d.pages }

func (d *PDF) checkPage(page int) error {
	if d.raster == nil {
		return ErrClosed
	}
	if page < 0 || page >= d.pages {
		return fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, page, d.pages)
	}
	return nil
}

// PageSize returns the page size in points.
func (d *PDF) PageSize(page int) (float64, float64, error) {
	if err := d.checkPage(page); err != nil {
		return 0, 0, err
	}
	if b, err := pageBox(d.text.Page(page + 1).V); err == nil {
		return b.width(), b.height(), nil
	}
	r, err := d.raster.Bound(page)
	if err != nil {
		return 0, 0, fmt.Errorf("page %d bounds: %w", page, err)
	}
	return float64(r.Dx()), float64(r.Dy()), nil
}

// Render rasterises page at the given zoom factor; zoom 1.0 is native page
// resolution.
func (d *PDF) Render(page int, zoom float64) (*image.RGBA, error) {
	if err := d.checkPage(page); err != nil {
		return nil, err
	}
	if !(zoom > 0) {
		return nil, fmt.Errorf("invalid zoom %v", zoom)
	}
	img, err := d.raster.ImageDPI(page, NativeDPI*zoom)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", page, err)
	}
	return img, nil
}

// TextInRect returns the text whose glyphs are centred inside r on page.
func (d *PDF) TextInRect(page int, r selection.DocumentRect) (string, error) {
	if err := d.checkPage(page); err != nil {
		return "", err
	}
	glyphs, err := pageGlyphs(d.text.Page(page + 1))
	if err != nil {
		return "", fmt.Errorf("page %d: %w", page, err)
	}
	return assembleText(selectGlyphs(glyphs, r)), nil
}

// Close releases the document. It is safe to call more than once.
func (d *PDF) Close() error {
	if d.raster == nil {
		return nil
	}
	errRaster := d.raster.Close()
	errFile := d.file.Close()
	d.raster = nil
	d.file = nil
	d.text = nil
	return errors.Join(errRaster, errFile)
}
