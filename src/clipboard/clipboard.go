package clipboard

import (
	"errors"
	"sync"

	"golang.design/x/clipboard"
)

var ErrNotInitialized = errors.New("clipboard not initialized")

var (
	writeMu sync.Mutex
	ready   bool
)

func Init() error {
	writeMu.Lock()
	defer writeMu.Unlock()
	if err := clipboard.Init(); err != nil {
		return err
	}
	ready = true
	return nil
}

// Write performs a mutex-guarded clipboard write to prevent corruption under parallel writes.
func Write(text string) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	if !ready {
		return ErrNotInitialized
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

// Read returns the current text content of the clipboard.
func Read() (string, error) {
	writeMu.Lock()
	defer writeMu.Unlock()
	if !ready {
		return "", ErrNotInitialized
	}
	return string(clipboard.Read(clipboard.FmtText)), nil
}
