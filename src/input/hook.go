package input

import (
	"context"
	"log"

	gohook "github.com/robotn/gohook"

	"github.com/BareTools/BareReader/src/selection"
)

// scrollStep is the number of pixels one wheel notch scrolls.
const scrollStep = 40

// HookSource reads the global keyboard and mouse hook. Screen coordinates
// are shifted by Origin so that the top-left of the viewport is (0, 0).
type HookSource struct {
	OriginX, OriginY int
	Keymap           *Keymap

	dragging bool
}

// Start installs the hook and returns the translated events. The channel is
// closed when ctx is cancelled or the hook stops.
func (h *HookSource) Start(ctx context.Context) <-chan Event {
	out := make(chan Event, 64)

	go func() {
		defer close(out)
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in input hook goroutine: %v", r)
			}
		}()

		evChan := gohook.Start()
		if evChan == nil {
			log.Printf("ERROR: gohook.Start() returned nil channel")
			return
		}
		defer gohook.End()
		log.Printf("Input: hook started, viewport origin (%d,%d)", h.OriginX, h.OriginY)

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-evChan:
				if !ok {
					log.Printf("Input: hook channel closed")
					return
				}
				e, ok := h.translate(ev)
				if !ok {
					continue
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

// translate maps one hook event. Only the left button selects; moves are
// forwarded while it is held.
func (h *HookSource) translate(ev gohook.Event) (Event, bool) {
	switch ev.Kind {
	case gohook.MouseHold:
		if ev.Button != gohook.MouseMap["left"] {
			return Event{}, false
		}
		h.dragging = true
		return Event{Kind: PointerDown, Point: h.point(ev)}, true
	case gohook.MouseDrag, gohook.MouseMove:
		if !h.dragging {
			return Event{}, false
		}
		return Event{Kind: PointerMove, Point: h.point(ev)}, true
	case gohook.MouseDown:
		if ev.Button != gohook.MouseMap["left"] || !h.dragging {
			return Event{}, false
		}
		h.dragging = false
		return Event{Kind: PointerUp, Point: h.point(ev)}, true
	case gohook.MouseWheel:
		return Event{Kind: Scroll, Delta: float64(ev.Rotation) * scrollStep}, true
	case gohook.KeyDown:
		if h.Keymap == nil {
			return Event{}, false
		}
		cmd, ok := h.Keymap.Press(ev.Rawcode)
		if !ok {
			return Event{}, false
		}
		return Event{Kind: Key, Command: cmd}, true
	case gohook.KeyUp:
		if h.Keymap != nil {
			h.Keymap.Release(ev.Rawcode)
		}
	}
	return Event{}, false
}

func (h *HookSource) point(ev gohook.Event) selection.Point {
	return selection.Point{
		X: float64(int(ev.X) - h.OriginX),
		Y: float64(int(ev.Y) - h.OriginY),
	}
}
