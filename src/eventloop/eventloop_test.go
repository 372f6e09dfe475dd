package eventloop

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/BareTools/BareReader/src/input"
	"github.com/BareTools/BareReader/src/selection"
	"github.com/BareTools/BareReader/src/session"
)

type fakeSource struct {
	text  string
	rects []selection.DocumentRect
}

func (f *fakeSource) TextInRect(page int, r selection.DocumentRect) (string, error) {
	f.rects = append(f.rects, r)
	return f.text, nil
}

type fakeViewer struct {
	src      *fakeSource
	page     int
	pages    int
	zoom     float64
	scrollY  float64
	failNext bool
}

func (v *fakeViewer) Next() (bool, error) {
	if v.failNext {
		return false, errors.New("broken page")
	}
	if v.page >= v.pages-1 {
		return false, nil
	}
	v.page++
	return true, nil
}

func (v *fakeViewer) Prev() (bool, error) {
	if v.page == 0 {
		return false, nil
	}
	v.page--
	return true, nil
}

func (v *fakeViewer) ZoomIn() (bool, error)   { v.zoom += 0.1; return true, nil }
func (v *fakeViewer) ZoomOut() (bool, error)  { v.zoom -= 0.1; return true, nil }
func (v *fakeViewer) ScrollBy(dx, dy float64) { v.scrollY += dy }

func (v *fakeViewer) State() selection.ViewerState {
	s := selection.ViewerState{
		Page: selection.RenderedPage{
			Index: v.page, Width: 600 * v.zoom, Height: 800 * v.zoom, Zoom: v.zoom,
			ImageX: 300 * v.zoom, ImageY: -v.scrollY,
		},
		Viewport: selection.Viewport{Width: 600 * v.zoom, Height: 800, ScrollY: v.scrollY},
	}
	if v.src != nil {
		s.Document = v.src
	}
	return s
}

func (v *fakeViewer) Image() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, int(600*v.zoom), int(800*v.zoom)))
}

type target struct{ delivered []string }

func (t *target) OnSuccess(text string) error {
	t.delivered = append(t.delivered, text)
	return nil
}
func (t *target) OnFailure(error) error { return nil }

type notices struct{ shown []string }

func (n *notices) Show(text string) error {
	n.shown = append(n.shown, text)
	return nil
}

var approx = cmpopts.EquateApprox(0, 1e-9)

func newTestLoop(v *fakeViewer) (*Loop, *target, *notices, *int) {
	tg, n := &target{}, &notices{}
	frames := 0
	m := selection.NewMapper()
	m.Logf = func(string, ...any) {}
	l := New(Options{
		Viewer:  v,
		Session: session.Options{Mapper: m, Target: tg, Notify: n},
		WriteFrame: func(*image.RGBA) error {
			frames++
			return nil
		},
	})
	return l, tg, n, &frames
}

func drag(l *Loop, x0, y0, x1, y1 float64) {
	l.Handle(input.Event{Kind: input.PointerDown, Point: selection.Point{X: x0, Y: y0}})
	l.Handle(input.Event{Kind: input.PointerMove, Point: selection.Point{X: (x0 + x1) / 2, Y: (y0 + y1) / 2}})
	l.Handle(input.Event{Kind: input.PointerUp, Point: selection.Point{X: x1, Y: y1}})
}

func TestSelectionCopiesText(t *testing.T) {
	src := &fakeSource{text: "Hello"}
	v := &fakeViewer{src: src, pages: 3, zoom: 1}
	l, tg, n, frames := newTestLoop(v)

	drag(l, 150, 10, 50, 110)

	if len(tg.delivered) != 1 || tg.delivered[0] != "Hello" {
		t.Fatalf("delivered %q", tg.delivered)
	}
	want := selection.DocumentRect{X0: 50, Y0: 10, X1: 150, Y1: 110}
	if diff := cmp.Diff([]selection.DocumentRect{want}, src.rects, approx); diff != "" {
		t.Errorf("queried rectangles mismatch (-want +got):\n%s", diff)
	}
	if len(n.shown) != 1 || n.shown[0] != "Copied 5 characters" {
		t.Errorf("notices %q", n.shown)
	}
	if *frames != 1 {
		t.Errorf("expected one frame after the selection, got %d", *frames)
	}
	res, ok := l.LastResult()
	if !ok || !res.Copied() {
		t.Errorf("LastResult = %+v/%v", res, ok)
	}
}

func TestSelectionWithoutDocumentIsSilent(t *testing.T) {
	v := &fakeViewer{pages: 0, zoom: 1}
	l, tg, n, _ := newTestLoop(v)

	drag(l, 10, 10, 100, 100)

	if len(tg.delivered) != 0 || len(n.shown) != 0 {
		t.Errorf("nothing should happen without a document: delivered=%q notices=%q", tg.delivered, n.shown)
	}
	if _, ok := l.LastResult(); ok {
		t.Error("no result should be recorded")
	}
}

func TestPointerUpWithoutDownIsIgnored(t *testing.T) {
	src := &fakeSource{text: "x"}
	l, tg, _, _ := newTestLoop(&fakeViewer{src: src, pages: 1, zoom: 1})

	l.Handle(input.Event{Kind: input.PointerUp, Point: selection.Point{X: 5, Y: 5}})
	if len(src.rects) != 0 || len(tg.delivered) != 0 {
		t.Error("a release without a press should not query text")
	}
}

func TestCommands(t *testing.T) {
	v := &fakeViewer{src: &fakeSource{}, pages: 2, zoom: 1}
	l, _, _, frames := newTestLoop(v)

	steps := []struct {
		cmd    input.Command
		page   int
		frames int
	}{
		{input.PrevPage, 0, 0},
		{input.NextPage, 1, 1},
		{input.NextPage, 1, 1},
		{input.PrevPage, 0, 2},
		{input.ZoomIn, 0, 3},
	}
	for _, s := range steps {
		if l.Handle(input.Event{Kind: input.Key, Command: s.cmd}) {
			t.Fatalf("%s should not stop the loop", s.cmd)
		}
		if v.page != s.page || *frames != s.frames {
			t.Errorf("after %s: page=%d frames=%d, want page=%d frames=%d", s.cmd, v.page, *frames, s.page, s.frames)
		}
	}
	if !l.Handle(input.Event{Kind: input.Key, Command: input.Quit}) {
		t.Error("quit should stop the loop")
	}
}

func TestPageChangeCancelsDrag(t *testing.T) {
	src := &fakeSource{text: "x"}
	v := &fakeViewer{src: src, pages: 2, zoom: 1}
	l, _, _, _ := newTestLoop(v)

	l.Handle(input.Event{Kind: input.PointerDown, Point: selection.Point{X: 10, Y: 10}})
	l.Handle(input.Event{Kind: input.Key, Command: input.NextPage})
	l.Handle(input.Event{Kind: input.PointerUp, Point: selection.Point{X: 100, Y: 100}})
	if len(src.rects) != 0 {
		t.Error("a drag started on another page should be dropped")
	}
}

func TestCancelSelection(t *testing.T) {
	src := &fakeSource{text: "x"}
	l, _, _, _ := newTestLoop(&fakeViewer{src: src, pages: 1, zoom: 1})

	l.Handle(input.Event{Kind: input.PointerDown, Point: selection.Point{X: 10, Y: 10}})
	l.Handle(input.Event{Kind: input.Key, Command: input.CancelSelection})
	l.Handle(input.Event{Kind: input.PointerUp, Point: selection.Point{X: 100, Y: 100}})
	if len(src.rects) != 0 {
		t.Error("cancelled drag should not query text")
	}
}

func TestCommandErrorIsNotified(t *testing.T) {
	v := &fakeViewer{src: &fakeSource{}, pages: 3, zoom: 1, failNext: true}
	l, _, n, _ := newTestLoop(v)

	l.Handle(input.Event{Kind: input.Key, Command: input.NextPage})
	if len(n.shown) != 1 || v.page != 0 {
		t.Errorf("notices=%q page=%d", n.shown, v.page)
	}
}

func TestScrollMovesSelection(t *testing.T) {
	src := &fakeSource{text: "x"}
	v := &fakeViewer{src: src, pages: 1, zoom: 1}
	l, _, _, _ := newTestLoop(v)

	l.Handle(input.Event{Kind: input.Scroll, Delta: 100})
	drag(l, 0, 0, 100, 50)

	want := selection.DocumentRect{X0: 0, Y0: 100, X1: 100, Y1: 150}
	if diff := cmp.Diff([]selection.DocumentRect{want}, src.rects, approx); diff != "" {
		t.Errorf("queried rectangles mismatch (-want +got):\n%s", diff)
	}
}

func TestRunStopsOnClosedChannel(t *testing.T) {
	l, _, _, _ := newTestLoop(&fakeViewer{src: &fakeSource{}, pages: 1, zoom: 1})
	events := make(chan input.Event, 1)
	events <- input.Event{Kind: input.Key, Command: input.NextPage}
	close(events)

	if err := l.Run(context.Background(), events); err != nil {
		t.Errorf("Run returned %v", err)
	}
}

func TestRunStopsOnQuit(t *testing.T) {
	l, _, _, _ := newTestLoop(&fakeViewer{src: &fakeSource{}, pages: 1, zoom: 1})
	events := make(chan input.Event, 1)
	events <- input.Event{Kind: input.Key, Command: input.Quit}

	if err := l.Run(context.Background(), events); err != nil {
		t.Errorf("Run returned %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	l, _, _, _ := newTestLoop(&fakeViewer{src: &fakeSource{}, pages: 1, zoom: 1})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx, make(chan input.Event)) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
