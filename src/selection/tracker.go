package selection

// Tracker follows one pointer drag: Begin on pointer-down, Update on move,
// End on release. It is not safe for concurrent use; it belongs to the
// goroutine that processes input.
type Tracker struct {
	active     bool
	start, end Point
}

// Begin starts a new drag, discarding any drag in progress.
func (t *Tracker) Begin(p Point) {
	t.active = true
	t.start = p
	t.end = p
}

// Update moves the free corner. It is ignored when no drag is active.
func (t *Tracker) Update(p Point) {
	if !t.active {
		return
	}
	t.end = p
}

// End finishes the drag at p and maps it onto the page. It returns false
// when no drag was active or the page geometry is unusable. The tracker is
// idle afterwards either way.
func (t *Tracker) End(p Point, page RenderedPage) (DocumentRect, bool) {
	if !t.active {
		return DocumentRect{}, false
	}
	t.end = p
	r := RectFromPoints(t.start, t.end)
	t.Cancel()

	docRect, err := ToDocument(r, page)
	if err != nil {
		return DocumentRect{}, false
	}
	return docRect, true
}

// Cancel drops the current drag.
func (t *Tracker) Cancel() {
	t.active = false
	t.start = Point{}
	t.end = Point{}
}

// Active reports whether a drag is in progress.
func (t *Tracker) Active() bool { return t.active }

// Rect returns the normalised rectangle of the drag in progress, for
// highlighting.
func (t *Tracker) Rect() (ScreenRect, bool) {
	if !t.active {
		return ScreenRect{}, false
	}
	return RectFromPoints(t.start, t.end), true
}
