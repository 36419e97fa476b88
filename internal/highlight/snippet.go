package highlight

import (
	"html"
	"strings"
)

// Highlight markers inserted verbatim around matched spans.
const (
	markPrefix  = "<b>"
	markPostfix = "</b>"
)

// HighlightSection is a half-open byte interval [Start, Stop) marking a
// matched term occurrence. Offsets are relative to whatever text buffer
// the section currently indexes: the source text while candidates are
// being built, the snippet's own text once selected.
type HighlightSection struct {
	Start int
	Stop  int
}

// Bounds returns the interval of the HighlightSection.
func (h HighlightSection) Bounds() (start, stop int) {
	return h.Start, h.Stop
}

// Snippet is the selected excerpt of a document, with the matched spans
// inside it. It owns a copy of its fragment text; all highlight offsets
// are relative to that text, never to the original document.
type Snippet struct {
	text       string
	highlights []HighlightSection
}

// Empty returns a Snippet with no text and no highlights. Callers should
// treat it as "no excerpt available", not as an error.
func Empty() Snippet {
	return Snippet{}
}

// Text returns the snippet's fragment text without any markup.
func (s *Snippet) Text() string {
	return s.text
}

// Highlights returns the matched spans in left-to-right order, with
// offsets local to Text().
func (s *Snippet) Highlights() []HighlightSection {
	return s.highlights
}

// IsEmpty reports whether the snippet carries no excerpt.
func (s *Snippet) IsEmpty() bool {
	return s.text == "" && len(s.highlights) == 0
}

// EscapedMarkup renders the snippet with matched spans wrapped in
// <b>...</b>. Every text segment is HTML-escaped; the markers themselves
// are emitted verbatim.
func (s *Snippet) EscapedMarkup() string {
	return s.render(html.EscapeString)
}

// RawMarkup renders the snippet with matched spans wrapped in <b>...</b>
// and no escaping applied to any segment.
func (s *Snippet) RawMarkup() string {
	return s.render(func(seg string) string { return seg })
}

// render walks the highlight list in order, emitting the unmarked text
// between the cursor and each section, then the marked section itself.
// Sections are non-overlapping and in non-decreasing offset order.
func (s *Snippet) render(escape func(string) string) string {
	var b strings.Builder
	cursor := 0

	for _, section := range s.highlights {
		b.WriteString(escape(s.text[cursor:section.Start]))
		b.WriteString(markPrefix)
		b.WriteString(escape(s.text[section.Start:section.Stop]))
		b.WriteString(markPostfix)
		cursor = section.Stop
	}
	b.WriteString(escape(s.text[cursor:]))

	return b.String()
}
