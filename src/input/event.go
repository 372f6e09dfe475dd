// Package input turns raw keyboard and mouse activity into the explicit
// events the event loop consumes.
package input

import "github.com/BareTools/BareReader/src/selection"

type Kind int

const (
	PointerDown Kind = iota + 1
	PointerMove
	PointerUp
	Key
	Scroll
)

func (k Kind) String() string {
	switch k {
	case PointerDown:
		return "pointer-down"
	case PointerMove:
		return "pointer-move"
	case PointerUp:
		return "pointer-up"
	case Key:
		return "key"
	case Scroll:
		return "scroll"
	default:
		return "unknown"
	}
}

type Command int

const (
	NoCommand Command = iota
	PrevPage
	NextPage
	ZoomIn
	ZoomOut
	CancelSelection
	Quit
)

var commandNames = map[Command]string{
	PrevPage:        "prev-page",
	NextPage:        "next-page",
	ZoomIn:          "zoom-in",
	ZoomOut:         "zoom-out",
	CancelSelection: "cancel-selection",
	Quit:            "quit",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "none"
}

// Event is one input occurrence. Point is in viewport coordinates and is set
// for pointer events; Command is set for Key events; Delta is the vertical
// scroll distance in pixels for Scroll events.
type Event struct {
	Kind    Kind
	Point   selection.Point
	Command Command
	Delta   float64
}
