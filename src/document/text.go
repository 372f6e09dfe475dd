package document

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/BareTools/BareReader/src/selection"
)

// Glyph is one positioned text run in page units with a top-left origin.
// X is the left edge and Baseline the baseline, measured from the top.
type Glyph struct {
	Text     string
	X        float64
	Baseline float64
	Width    float64
	Size     float64
}

// Center returns the point used to decide whether a glyph is selected.
// The visual centre of a glyph sits roughly 0.3em above its baseline.
func (g Glyph) Center() (float64, float64) {
	return g.X + g.Width/2, g.Baseline - 0.3*g.Size
}

// box is a page box in PDF user space (bottom-left origin).
type box struct {
	llx, lly, urx, ury float64
}

func (b box) width() float64  { return b.urx - b.llx }
func (b box) height() float64 { return b.ury - b.lly }

// pageBox returns the visible area of a page: the CropBox when present,
// otherwise the MediaBox, following the Parent chain for inherited values.
func pageBox(v pdf.Value) (box, error) {
	for _, key := range []string{"CropBox", "MediaBox"} {
		for node, depth := v, 0; !node.IsNull() && depth < 32; node, depth = node.Key("Parent"), depth+1 {
			b := node.Key(key)
			if b.Len() != 4 {
				continue
			}
			r := box{
				llx: min(b.Index(0).Float64(), b.Index(2).Float64()),
				lly: min(b.Index(1).Float64(), b.Index(3).Float64()),
				urx: max(b.Index(0).Float64(), b.Index(2).Float64()),
				ury: max(b.Index(1).Float64(), b.Index(3).Float64()),
			}
			if r.width() > 0 && r.height() > 0 {
				return r, nil
			}
		}
	}
	return box{}, fmt.Errorf("page has no usable MediaBox")
}

// pageGlyphs reads the positioned text of a page and converts it to a
// top-left origin.
func pageGlyphs(p pdf.Page) (glyphs []Glyph, err error) {
	if p.V.IsNull() {
		return nil, ErrPageOutOfRange
	}
	b, err := pageBox(p.V)
	if err != nil {
		return nil, err
	}

	// The content interpreter panics on malformed streams.
	defer func() {
		if r := recover(); r != nil {
			glyphs = nil
			err = fmt.Errorf("read page content: %v", r)
		}
	}()

	content := p.Content()
	glyphs = make([]Glyph, 0, len(content.Text))
	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		glyphs = append(glyphs, Glyph{
			Text:     t.S,
			X:        t.X - b.llx,
			Baseline: b.ury - t.Y,
			Width:    t.W,
			Size:     t.FontSize,
		})
	}
	return glyphs, nil
}

// selectGlyphs keeps glyphs whose centre lies in the half-open rectangle
// [X0,X1) x [Y0,Y1). A zero-area rectangle selects nothing.
func selectGlyphs(glyphs []Glyph, r selection.DocumentRect) []Glyph {
	r = selection.NormalizeDocument(r)
	var out []Glyph
	for _, g := range glyphs {
		cx, cy := g.Center()
		if cx >= r.X0 && cx < r.X1 && cy >= r.Y0 && cy < r.Y1 {
			out = append(out, g)
		}
	}
	return out
}

type textLine struct {
	y      float64
	size   float64
	glyphs []Glyph
}

// assembleText orders glyphs into lines top to bottom and left to right,
// inserting a space where the horizontal gap is wider than 0.2em.
func assembleText(glyphs []Glyph) string {
	if len(glyphs) == 0 {
		return ""
	}
	sorted := make([]Glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Baseline != sorted[j].Baseline {
			return sorted[i].Baseline < sorted[j].Baseline
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []*textLine
	for _, g := range sorted {
		var cur *textLine
		if n := len(lines); n > 0 {
			cur = lines[n-1]
			tol := max(0.5*max(cur.size, g.Size), 1.0)
			if g.Baseline-cur.y > tol {
				cur = nil
			}
		}
		if cur == nil {
			cur = &textLine{y: g.Baseline, size: g.Size}
			lines = append(lines, cur)
		}
		cur.glyphs = append(cur.glyphs, g)
		cur.size = max(cur.size, g.Size)
	}

	var out []string
	for _, ln := range lines {
		sort.SliceStable(ln.glyphs, func(i, j int) bool { return ln.glyphs[i].X < ln.glyphs[j].X })

		var sb strings.Builder
		for i, g := range ln.glyphs {
			if i > 0 {
				prev := ln.glyphs[i-1]
				gap := g.X - (prev.X + prev.Width)
				threshold := max(0.2*g.Size, 1.0)
				if gap > threshold && !strings.HasSuffix(prev.Text, " ") && !strings.HasPrefix(g.Text, " ") {
					sb.WriteByte(' ')
				}
			}
			sb.WriteString(g.Text)
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			out = append(out, text)
		}
	}
	return strings.Join(out, "\n")
}
