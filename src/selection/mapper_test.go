package selection

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeSource struct {
	text  string
	err   error
	panic any
	calls []DocumentRect
	pages []int
}

func (f *fakeSource) TextInRect(page int, r DocumentRect) (string, error) {
	f.calls = append(f.calls, r)
	f.pages = append(f.pages, page)
	if f.panic != nil {
		panic(f.panic)
	}
	return f.text, f.err
}

func quietMapper(logged *[]string) *Mapper {
	return &Mapper{Logf: func(format string, args ...any) {
		*logged = append(*logged, fmt.Sprintf(format, args...))
	}}
}

func TestResolveReturnsText(t *testing.T) {
	src := &fakeSource{text: "Hello world"}
	page := scenarioPage()
	page.Index = 3
	state := ViewerState{Document: src, Page: page}

	var logged []string
	sel, err := quietMapper(&logged).Resolve(state, ScreenRect{X0: 450, Y0: 150, X1: 400, Y1: 100})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if sel.Text != "Hello world" {
		t.Errorf("expected text %q, got %q", "Hello world", sel.Text)
	}
	if len(src.calls) != 1 {
		t.Fatalf("expected one query, got %d", len(src.calls))
	}
	if src.pages[0] != 3 {
		t.Errorf("expected query on page 3, got %d", src.pages[0])
	}
	want := DocumentRect{X0: 400.0 / 1.5, Y0: 100.0 / 1.5, X1: 300, Y1: 100}
	if diff := cmp.Diff(want, src.calls[0], approx); diff != "" {
		t.Errorf("queried rectangle mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(ScreenRect{X0: 400, Y0: 100, X1: 450, Y1: 150}, sel.Screen); diff != "" {
		t.Errorf("screen rectangle mismatch (-want +got):\n%s", diff)
	}
	if len(logged) != 0 {
		t.Errorf("expected nothing logged, got %v", logged)
	}
}

func TestResolveNoDocument(t *testing.T) {
	var logged []string
	_, err := quietMapper(&logged).Resolve(ViewerState{Page: scenarioPage()}, ScreenRect{X1: 10, Y1: 10})
	if !errors.Is(err, ErrNoDocumentLoaded) {
		t.Fatalf("expected ErrNoDocumentLoaded, got %v", err)
	}

	_, err = quietMapper(&logged).Extract(ViewerState{}, DocumentRect{X1: 1, Y1: 1})
	if !errors.Is(err, ErrNoDocumentLoaded) {
		t.Fatalf("expected ErrNoDocumentLoaded from Extract, got %v", err)
	}
}

func TestResolveNoDocumentSkipsGeometry(t *testing.T) {
	// Even with unusable geometry the missing document is reported first.
	_, err := NewMapper().Resolve(ViewerState{}, ScreenRect{})
	if !errors.Is(err, ErrNoDocumentLoaded) {
		t.Fatalf("expected ErrNoDocumentLoaded, got %v", err)
	}
}

func TestResolveInvalidGeometryDoesNotQuery(t *testing.T) {
	src := &fakeSource{text: "x"}
	_, err := NewMapper().Resolve(ViewerState{Document: src}, ScreenRect{X1: 10, Y1: 10})
	if !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("expected ErrInvalidGeometry, got %v", err)
	}
	if len(src.calls) != 0 {
		t.Errorf("expected no query, got %d", len(src.calls))
	}
}

func TestResolveEmptyResult(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t "} {
		t.Run(fmt.Sprintf("%q", text), func(t *testing.T) {
			src := &fakeSource{text: text}
			sel, err := NewMapper().Resolve(ViewerState{Document: src, Page: scenarioPage()}, ScreenRect{X0: 1, Y0: 1, X1: 20, Y1: 20})
			if !errors.Is(err, ErrEmptyResult) {
				t.Fatalf("expected ErrEmptyResult, got %v", err)
			}
			if errors.Is(err, ErrExtractionFailed) {
				t.Errorf("empty result must not look like an extraction failure")
			}
			if sel.Document.Empty() {
				t.Errorf("expected the selection rectangle to be reported, got %v", sel.Document)
			}
		})
	}
}

func TestResolveDegenerateRectangle(t *testing.T) {
	src := &fakeSource{}
	sel, err := NewMapper().Resolve(ViewerState{Document: src, Page: scenarioPage()}, ScreenRect{X0: 400, Y0: 100, X1: 400, Y1: 300})
	if !errors.Is(err, ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}
	if len(src.calls) != 1 || !src.calls[0].Empty() {
		t.Errorf("expected a single zero-area query, got %v", src.calls)
	}
	if sel.Document.Area() != 0 {
		t.Errorf("expected zero area, got %v", sel.Document.Area())
	}
}

func TestResolveExtractionFailed(t *testing.T) {
	cause := errors.New("corrupt content stream")
	src := &fakeSource{err: cause}

	var logged []string
	_, err := quietMapper(&logged).Resolve(ViewerState{Document: src, Page: scenarioPage()}, ScreenRect{X1: 10, Y1: 10})
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected the cause to be wrapped, got %v", err)
	}
	if len(logged) != 1 || !strings.Contains(logged[0], "corrupt content stream") {
		t.Errorf("expected the failure to be logged once, got %v", logged)
	}
}

func TestResolveRecoversPanic(t *testing.T) {
	src := &fakeSource{panic: "malformed page"}

	var logged []string
	_, err := quietMapper(&logged).Resolve(ViewerState{Document: src, Page: scenarioPage()}, ScreenRect{X1: 10, Y1: 10})
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
	if len(logged) != 1 {
		t.Errorf("expected the panic to be logged, got %v", logged)
	}
}

func TestResolveDoesNotMutateState(t *testing.T) {
	src := &fakeSource{text: "abc"}
	state := ViewerState{
		Document: src,
		Page:     scenarioPage(),
		Viewport: Viewport{Width: 850, Height: 600, ScrollY: 40},
	}
	before := state
	_, _ = NewMapper().Resolve(state, ScreenRect{X0: 5, Y0: 5, X1: 50, Y1: 50})
	if state.Page != before.Page || state.Viewport != before.Viewport {
		t.Errorf("state changed: before %+v after %+v", before, state)
	}
}
