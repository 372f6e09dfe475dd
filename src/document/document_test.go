package document

import (
	"errors"
	"os"
	"testing"

	"github.com/BareTools/BareReader/src/selection"
)

// fixture returns the PDF named by BAREREADER_TEST_PDF; it needs MuPDF at
// runtime, so the tests skip without it.
func fixture(t *testing.T) *PDF {
	t.Helper()
	path := os.Getenv("BAREREADER_TEST_PDF")
	if path == "" {
		t.Skip("set BAREREADER_TEST_PDF to a PDF file to run document tests")
	}
	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open(%s) failed: %v", path, err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open("does-not-exist.pdf"); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestRenderScalesWithZoom(t *testing.T) {
	d := fixture(t)
	if d.NumPage() == 0 {
		t.Fatal("fixture has no pages")
	}
	w, h, err := d.PageSize(0)
	if err != nil {
		t.Fatalf("PageSize failed: %v", err)
	}

	for _, zoom := range []float64{1, 1.5} {
		img, err := d.Render(0, zoom)
		if err != nil {
			t.Fatalf("Render(zoom=%v) failed: %v", zoom, err)
		}
		gotW, gotH := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
		if abs(gotW-w*zoom) > 2 || abs(gotH-h*zoom) > 2 {
			t.Errorf("zoom %v: bitmap %vx%v, expected about %vx%v", zoom, gotW, gotH, w*zoom, h*zoom)
		}
	}
}

func TestPageRange(t *testing.T) {
	d := fixture(t)
	if _, err := d.Render(d.NumPage(), 1); !errors.Is(err, ErrPageOutOfRange) {
		t.Errorf("Render past the end: expected ErrPageOutOfRange, got %v", err)
	}
	if _, err := d.TextInRect(-1, selection.DocumentRect{X1: 10, Y1: 10}); !errors.Is(err, ErrPageOutOfRange) {
		t.Errorf("TextInRect(-1): expected ErrPageOutOfRange, got %v", err)
	}
}

func TestTextInRectZeroArea(t *testing.T) {
	d := fixture(t)
	text, err := d.TextInRect(0, selection.DocumentRect{X0: 100, Y0: 0, X1: 100, Y1: 800})
	if err != nil {
		t.Fatalf("TextInRect failed: %v", err)
	}
	if text != "" {
		t.Errorf("expected no text for a zero-area rectangle, got %q", text)
	}
}

func TestClosedDocument(t *testing.T) {
	d := fixture(t)
	if err := d.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
	if _, err := d.Render(0, 1); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
