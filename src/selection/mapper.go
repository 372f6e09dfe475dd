package selection

import (
	"errors"
	"fmt"
	"log"
	"strings"
)

var (
	// ErrNoDocumentLoaded means a selection was made with no open document.
	ErrNoDocumentLoaded = errors.New("no document loaded")
	// ErrExtractionFailed wraps an error raised by the document layer.
	ErrExtractionFailed = errors.New("text extraction failed")
	// ErrEmptyResult means the query succeeded but found no text.
	ErrEmptyResult = errors.New("no text in selection")
)

// TextSource is the part of the document layer the mapper needs.
type TextSource interface {
	TextInRect(page int, r DocumentRect) (string, error)
}

// ViewerState is the snapshot of viewer state a selection is resolved against.
// A nil Document means nothing is open.
type ViewerState struct {
	Document TextSource
	Page     RenderedPage
	Viewport Viewport
}

// Loaded reports whether a document is open.
func (s ViewerState) Loaded() bool { return s.Document != nil }

// Selection is a resolved selection.
type Selection struct {
	Screen   ScreenRect
	Document DocumentRect
	Text     string
}

// Mapper resolves screen selections to document text.
type Mapper struct {
	// Logf receives extraction failures. Defaults to log.Printf.
	Logf func(format string, args ...any)
}

// NewMapper returns a Mapper logging through the standard logger.
func NewMapper() *Mapper {
	return &Mapper{Logf: log.Printf}
}

// Resolve converts r to page units and queries the text it encloses.
//
// Failures are returned as ErrNoDocumentLoaded, ErrInvalidGeometry,
// ErrExtractionFailed or ErrEmptyResult; nothing else escapes. For
// ErrEmptyResult the returned Selection is still filled in.
func (m *Mapper) Resolve(state ViewerState, r ScreenRect) (Selection, error) {
	if !state.Loaded() {
		return Selection{}, ErrNoDocumentLoaded
	}
	docRect, err := ToDocument(r, state.Page)
	if err != nil {
		return Selection{}, err
	}
	sel, err := m.Extract(state, docRect)
	sel.Screen = NormalizeScreen(r)
	return sel, err
}

// Extract queries the text inside an already mapped rectangle.
func (m *Mapper) Extract(state ViewerState, r DocumentRect) (sel Selection, err error) {
	if !state.Loaded() {
		return Selection{}, ErrNoDocumentLoaded
	}
	r = NormalizeDocument(r)
	sel = Selection{Screen: ToScreen(r, state.Page), Document: r}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: page %d: %v", ErrExtractionFailed, state.Page.Index, p)
			m.logf("Selection: text query panicked on page %d %s: %v", state.Page.Index, r, p)
		}
	}()

	text, qerr := state.Document.TextInRect(state.Page.Index, r)
	if qerr != nil {
		m.logf("Selection: text query failed on page %d %s: %v", state.Page.Index, r, qerr)
		return sel, fmt.Errorf("%w: %w", ErrExtractionFailed, qerr)
	}
	sel.Text = text
	if strings.TrimSpace(text) == "" {
		return sel, ErrEmptyResult
	}
	return sel, nil
}

func (m *Mapper) logf(format string, args ...any) {
	if m == nil || m.Logf == nil {
		log.Printf(format, args...)
		return
	}
	m.Logf(format, args...)
}
