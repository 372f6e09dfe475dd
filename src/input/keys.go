package input

import (
	"fmt"
	"log"
	"strconv"
	"strings"
)

// Binding is a parsed key combination such as "Ctrl+Up".
type Binding struct {
	Spec  string
	Keys  []string
	codes [][]uint16
}

// ParseBinding converts a combination like "Ctrl+Alt+Q" to normalized key
// names and resolves each to its rawcodes.
func ParseBinding(spec string) (Binding, error) {
	b := Binding{Spec: spec}
	for _, part := range strings.Split(strings.ToLower(spec), "+") {
		name := normalizeKeyName(part)
		if name == "" {
			return Binding{}, fmt.Errorf("empty key in binding %q", spec)
		}
		codes := keyNameToRawcodes(name)
		if len(codes) == 0 {
			return Binding{}, fmt.Errorf("unknown key %q in binding %q", name, spec)
		}
		b.Keys = append(b.Keys, name)
		b.codes = append(b.codes, codes)
	}
	return b, nil
}

func normalizeKeyName(part string) string {
	part = strings.TrimSpace(part)
	switch part {
	case "control":
		return "ctrl"
	case "win", "cmd", "super":
		return "cmd"
	case "escape":
		return "esc"
	case "return":
		return "enter"
	}
	return part
}

// Windows virtual key codes. Modifiers map to their left and right variants.
var namedKeys = map[string][]uint16{
	"ctrl":  {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":   {164, 165}, // VK_LMENU, VK_RMENU
	"shift": {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":   {91, 92},   // VK_LWIN, VK_RWIN

	"space":     {32},
	"enter":     {13},
	"esc":       {27},
	"tab":       {9},
	"backspace": {8},
	"delete":    {46},
	"del":       {46},
	"insert":    {45},
	"ins":       {45},
	"home":      {36},
	"end":       {35},
	"pageup":    {33}, // VK_PRIOR
	"pgup":      {33},
	"pagedown":  {34}, // VK_NEXT
	"pgdn":      {34},

	"left":  {37},
	"up":    {38},
	"right": {39},
	"down":  {40},

	"plus":  {187}, // VK_OEM_PLUS
	"minus": {189}, // VK_OEM_MINUS
}

// keyNameToRawcodes maps a normalized key name to its rawcodes, or nil.
func keyNameToRawcodes(name string) []uint16 {
	name = normalizeKeyName(strings.ToLower(name))
	if codes, ok := namedKeys[name]; ok {
		return codes
	}
	if len(name) == 1 {
		switch c := name[0]; {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16(c-'a') + 65}
		case c >= '0' && c <= '9':
			return []uint16{uint16(c-'0') + 48}
		}
	}
	if n, err := strconv.Atoi(strings.TrimPrefix(name, "f")); err == nil && strings.HasPrefix(name, "f") && n >= 1 && n <= 24 {
		return []uint16{uint16(111 + n)} // VK_F1 is 112
	}
	log.Printf("WARNING: Unknown key name '%s', cannot map to rawcode", name)
	return nil
}
