package input

import (
	"fmt"
	"log"
	"slices"

	"github.com/BareTools/BareReader/src/config"
)

type boundCommand struct {
	binding Binding
	command Command
}

// Keymap tracks which keys are held and reports the command a key press
// completes. Combinations with more keys are tried first, so Ctrl+Up wins
// over Up while Ctrl is held.
type Keymap struct {
	bindings []boundCommand
	pressed  map[uint16]bool
}

// NewKeymap parses the configured bindings. Empty bindings are skipped.
func NewKeymap(keys config.KeyBindings) (*Keymap, error) {
	k := &Keymap{pressed: make(map[uint16]bool)}
	for _, c := range []struct {
		spec    string
		command Command
	}{
		{keys.PrevPage, PrevPage},
		{keys.NextPage, NextPage},
		{keys.ZoomIn, ZoomIn},
		{keys.ZoomOut, ZoomOut},
		{keys.Cancel, CancelSelection},
		{keys.Quit, Quit},
	} {
		if c.spec == "" {
			continue
		}
		b, err := ParseBinding(c.spec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.command, err)
		}
		k.bindings = append(k.bindings, boundCommand{binding: b, command: c.command})
		log.Printf("Input: %s bound to %s %v", c.command, c.spec, b.Keys)
	}
	slices.SortStableFunc(k.bindings, func(a, b boundCommand) int {
		return len(b.binding.Keys) - len(a.binding.Keys)
	})
	return k, nil
}

// Press records code as held and returns the command it completes, if any.
func (k *Keymap) Press(code uint16) (Command, bool) {
	k.pressed[code] = true
	for _, bc := range k.bindings {
		if k.completes(bc.binding, code) {
			return bc.command, true
		}
	}
	return NoCommand, false
}

// Release records code as no longer held.
func (k *Keymap) Release(code uint16) {
	delete(k.pressed, code)
}

// Reset forgets all held keys.
func (k *Keymap) Reset() {
	clear(k.pressed)
}

// completes reports whether every key of b is held and code is one of them.
func (k *Keymap) completes(b Binding, code uint16) bool {
	triggered := false
	for _, codes := range b.codes {
		held := false
		for _, c := range codes {
			if k.pressed[c] {
				held = true
			}
			if c == code {
				triggered = true
			}
		}
		if !held {
			return false
		}
	}
	return triggered
}
