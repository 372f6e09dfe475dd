package session

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"unicode/utf8"

	"github.com/BareTools/BareReader/src/clipboard"
	"github.com/BareTools/BareReader/src/config"
	"github.com/BareTools/BareReader/src/logutil"
	"github.com/BareTools/BareReader/src/popup"
	"github.com/BareTools/BareReader/src/selection"
)

type ResultTarget interface {
	OnSuccess(text string) error
	OnFailure(err error) error
}

// Notifier shows short user-facing notices.
type Notifier interface {
	Show(text string) error
}

type Options struct {
	Mapper *selection.Mapper
	Target ResultTarget
	Notify Notifier
}

type Outcome int

const (
	OutcomeCopied Outcome = iota
	OutcomeNothingToCopy
	OutcomeExtractionFailed
	OutcomeNoDocument
	OutcomeDeliveryFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCopied:
		return "copied"
	case OutcomeNothingToCopy:
		return "nothing-to-copy"
	case OutcomeExtractionFailed:
		return "extraction-failed"
	case OutcomeNoDocument:
		return "no-document"
	case OutcomeDeliveryFailed:
		return "delivery-failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

type Result struct {
	Outcome   Outcome
	Selection selection.Selection
	Err       error
}

// Copied reports whether the text reached the target.
func (r Result) Copied() bool { return r.Outcome == OutcomeCopied }

// Notice is the message shown to the user, empty when nothing is shown.
func (r Result) Notice() string {
	switch r.Outcome {
	case OutcomeCopied:
		return fmt.Sprintf("Copied %d characters", utf8.RuneCountInString(r.Selection.Text))
	case OutcomeNothingToCopy:
		return "Nothing to copy"
	case OutcomeExtractionFailed:
		return "No text found"
	default:
		return ""
	}
}

// Copy resolves a screen selection and hands the text to the target.
func Copy(state selection.ViewerState, r selection.ScreenRect, opts Options) Result {
	sel, err := mapper(opts).Resolve(state, r)
	return deliver(sel, err, opts)
}

// CopyDocument is Copy for a rectangle already in page units.
func CopyDocument(state selection.ViewerState, r selection.DocumentRect, opts Options) Result {
	sel, err := mapper(opts).Extract(state, r)
	return deliver(sel, err, opts)
}

func mapper(opts Options) *selection.Mapper {
	if opts.Mapper != nil {
		return opts.Mapper
	}
	return selection.NewMapper()
}

func deliver(sel selection.Selection, err error, opts Options) Result {
	res := Result{Selection: sel, Err: err}
	target := opts.Target
	if target == nil {
		target = ClipboardTarget{}
	}

	switch {
	case err == nil:
		if werr := target.OnSuccess(sel.Text); werr != nil {
			log.Printf("Session: failed to deliver %d characters: %v", len(sel.Text), werr)
			res.Outcome = OutcomeDeliveryFailed
			res.Err = werr
			_ = target.OnFailure(werr)
			return res
		}
		res.Outcome = OutcomeCopied
		log.Printf("Session: copied %q", logutil.SanitizeForLogging(sel.Text))
	case errors.Is(err, selection.ErrNoDocumentLoaded):
		res.Outcome = OutcomeNoDocument
		return res
	case errors.Is(err, selection.ErrEmptyResult):
		res.Outcome = OutcomeNothingToCopy
		_ = target.OnFailure(err)
	default:
		// ErrExtractionFailed and ErrInvalidGeometry.
		res.Outcome = OutcomeExtractionFailed
		log.Printf("Session: selection failed: %v", err)
		_ = target.OnFailure(err)
	}

	if notice := res.Notice(); notice != "" {
		n := opts.Notify
		if n == nil {
			n = popupNotifier{}
		}
		_ = n.Show(notice)
	}
	return res
}

type popupNotifier struct{}

func (popupNotifier) Show(text string) error { return popup.Show(text) }

// NewTarget returns the target for a config.CopyTarget* value.
func NewTarget(kind string, w io.Writer) ResultTarget {
	if kind == config.CopyTargetStdout {
		return StdoutTarget{Writer: w}
	}
	return ClipboardTarget{}
}

type ClipboardTarget struct{}

func (ClipboardTarget) OnSuccess(text string) error {
	return clipboard.Write(text)
}

func (ClipboardTarget) OnFailure(err error) error {
	return nil
}

type StdoutTarget struct {
	Writer io.Writer
}

func (t StdoutTarget) OnSuccess(text string) error {
	w := t.Writer
	if w == nil {
		w = os.Stdout
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

func (t StdoutTarget) OnFailure(err error) error {
	return nil
}
