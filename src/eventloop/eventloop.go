package eventloop

import (
	"context"
	"fmt"
	"image"
	"log"

	"github.com/BareTools/BareReader/src/frame"
	"github.com/BareTools/BareReader/src/input"
	"github.com/BareTools/BareReader/src/selection"
	"github.com/BareTools/BareReader/src/session"
)

// Viewer is the part of viewer.Viewer the loop drives.
type Viewer interface {
	Next() (bool, error)
	Prev() (bool, error)
	ZoomIn() (bool, error)
	ZoomOut() (bool, error)
	ScrollBy(dx, dy float64)
	State() selection.ViewerState
	Image() *image.RGBA
}

type Options struct {
	Viewer  Viewer
	Session session.Options
	// WriteFrame receives each composited frame. Nil disables frames.
	WriteFrame func(img *image.RGBA) error
}

// FrameFile returns a WriteFrame that stores frames as PNG at path.
func FrameFile(path string) func(img *image.RGBA) error {
	return func(img *image.RGBA) error { return frame.WritePNG(path, img) }
}

// Loop is the single-threaded coordinator: every event, including the copy
// that ends a selection, is handled to completion before the next one.
type Loop struct {
	viewer     Viewer
	session    session.Options
	writeFrame func(img *image.RGBA) error
	tracker    selection.Tracker

	last    session.Result
	hasLast bool
}

func New(opts Options) *Loop {
	return &Loop{
		viewer:     opts.Viewer,
		session:    opts.Session,
		writeFrame: opts.WriteFrame,
	}
}

// Run processes events until ctx is cancelled, the channel is closed or a
// quit command arrives. Only cancellation is reported as an error.
func (l *Loop) Run(ctx context.Context, events <-chan input.Event) error {
	l.drawFrame(nil)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-events:
			if !ok {
				log.Printf("Loop: event channel closed")
				return nil
			}
			if l.Handle(e) {
				log.Printf("Loop: quit requested")
				return nil
			}
		}
	}
}

// Handle processes one event and reports whether the loop should stop.
func (l *Loop) Handle(e input.Event) bool {
	switch e.Kind {
	case input.PointerDown:
		l.tracker.Begin(e.Point)
	case input.PointerMove:
		l.tracker.Update(e.Point)
	case input.PointerUp:
		l.finishSelection(e.Point)
	case input.Scroll:
		l.viewer.ScrollBy(0, e.Delta)
		l.drawFrame(nil)
	case input.Key:
		return l.handleCommand(e.Command)
	}
	return false
}

func (l *Loop) finishSelection(p selection.Point) {
	if !l.tracker.Active() {
		return
	}
	state := l.viewer.State()
	if !state.Loaded() {
		l.tracker.Cancel()
		return
	}
	r, ok := l.tracker.End(p, state.Page)
	if !ok {
		log.Printf("Loop: selection ignored, page geometry %+v is not usable", state.Page)
		return
	}

	res := session.CopyDocument(state, r, l.session)
	l.last, l.hasLast = res, true
	log.Printf("Loop: selection %s on page %d: %s", r, state.Page.Index+1, res.Outcome)

	hl := selection.ToScreen(r, state.Page)
	l.drawFrame(&hl)
}

func (l *Loop) handleCommand(cmd input.Command) bool {
	var step func() (bool, error)
	switch cmd {
	case input.Quit:
		return true
	case input.CancelSelection:
		if l.tracker.Active() {
			l.tracker.Cancel()
			l.drawFrame(nil)
		}
		return false
	case input.PrevPage:
		step = l.viewer.Prev
	case input.NextPage:
		step = l.viewer.Next
	case input.ZoomIn:
		step = l.viewer.ZoomIn
	case input.ZoomOut:
		step = l.viewer.ZoomOut
	default:
		return false
	}

	changed, err := step()
	if err != nil {
		log.Printf("Loop: %s failed: %v", cmd, err)
		l.notify(fmt.Sprintf("Error: %v", err))
		return false
	}
	if changed {
		// The page moved under the pointer; a drag in progress no longer
		// refers to it.
		l.tracker.Cancel()
		l.drawFrame(nil)
	}
	return false
}

func (l *Loop) notify(text string) {
	if l.session.Notify != nil {
		_ = l.session.Notify.Show(text)
		return
	}
	log.Printf("Loop: %s", text)
}

func (l *Loop) drawFrame(highlight *selection.ScreenRect) {
	if l.writeFrame == nil {
		return
	}
	img := l.viewer.Image()
	if img == nil {
		return
	}
	state := l.viewer.State()
	if err := l.writeFrame(frame.Compose(img, state.Page, state.Viewport, highlight)); err != nil {
		log.Printf("Loop: failed to write frame: %v", err)
	}
}

// LastResult returns the outcome of the most recent selection.
func (l *Loop) LastResult() (session.Result, bool) {
	return l.last, l.hasLast
}
