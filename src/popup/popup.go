package popup

import (
	"fmt"
	"io"
	"log"
	"runtime"
	"sync"
)

const maxDisplayLen = 200

var (
	mu  sync.Mutex
	out io.Writer
)

// SetOutput sets where user-facing notices are printed. Nil keeps them in
// the log only.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// Show displays a short notice such as "Copied 42 characters".
func Show(text string) error {
	// Get caller information for debugging
	if _, file, line, ok := runtime.Caller(1); ok {
		log.Printf("Popup.Show called from %s:%d with %d characters: %q", file, line, len(text), truncate(text, 50))
	} else {
		log.Printf("Popup.Show called with %d characters: %q", len(text), truncate(text, 50))
	}
	return write(truncate(text, maxDisplayLen))
}

// ShowError displays an error notice, e.g. "Failed to open PDF".
func ShowError(title, message string) error {
	log.Printf("Popup.ShowError: %s: %s", title, message)
	return write(fmt.Sprintf("%s: %s", title, message))
}

func write(text string) error {
	mu.Lock()
	defer mu.Unlock()
	if out == nil {
		return nil
	}
	_, err := fmt.Fprintln(out, text)
	return err
}

func truncate(s string, maxLen int) string {
	if r := []rune(s); len(r) > maxLen {
		return string(r[:maxLen]) + "..."
	}
	return s
}
