package highlight

import (
	"strings"

	"GoSnippet/internal/analysis"
)

// fragmentCandidate is a scored excerpt window over the source text.
// Invariant: start <= every highlight.Start and every highlight.Stop <= stop;
// highlight intervals appear in non-decreasing offset order because tokens
// are consumed in stream order.
type fragmentCandidate struct {
	score       float32
	start, stop int
	highlighted []HighlightSection
}

// newFragmentCandidate opens an empty candidate at the given offset:
// score 0, stop = start, no highlights.
func newFragmentCandidate(start int) fragmentCandidate {
	return fragmentCandidate{start: start, stop: start}
}

// addToken extends the candidate to cover the token. If the token's
// lowercased term carries a weight, the weight is added to the score and
// the token's span is recorded as a highlight. Always succeeds.
func (f *fragmentCandidate) addToken(tok analysis.Token, weights map[string]float32) {
	f.stop = tok.EndByte

	if w, ok := weights[strings.ToLower(tok.Term)]; ok {
		f.score += w
		f.highlighted = append(f.highlighted, HighlightSection{Start: tok.StartByte, Stop: tok.EndByte})
	}
}

// searchFragments partitions the token stream into candidate windows of at
// most maxLength bytes and keeps only windows containing a weighted term.
//
// The greedy policy is: grow the current window token by token; when the
// next token would push the window past maxLength, flush the window (if it
// scored) and open a new one at that token. Windows never split a token,
// so fragment bounds always fall on rune boundaries.
//
// The bound is measured as a byte-offset difference, not a rune count.
// The two agree on ASCII text; for multi-byte text the byte measure is
// kept because fragment offsets are byte offsets throughout.
func searchFragments(tokens []analysis.Token, weights map[string]float32, maxLength int) []fragmentCandidate {
	var fragments []fragmentCandidate
	fragment := newFragmentCandidate(0)

	for _, tok := range tokens {
		if tok.EndByte-fragment.start > maxLength {
			if fragment.score > 0 {
				fragments = append(fragments, fragment)
			}
			fragment = newFragmentCandidate(tok.StartByte)
		}
		fragment.addToken(tok, weights)
	}
	if fragment.score > 0 {
		fragments = append(fragments, fragment)
	}

	return fragments
}

// selectBestFragment picks the single candidate to present: highest score,
// ties broken by smallest start offset then smallest stop offset, so the
// earliest window in the text wins. The winner's text is copied into the
// Snippet and its highlights are re-based to be local to that copy. An
// empty candidate list yields an empty Snippet.
func selectBestFragment(fragments []fragmentCandidate, text string) Snippet {
	best := -1
	for i := range fragments {
		if best < 0 {
			best = i
			continue
		}
		b, c := &fragments[best], &fragments[i]
		if c.score > b.score {
			best = i
			continue
		}
		if c.score == b.score {
			if c.start < b.start || (c.start == b.start && c.stop < b.stop) {
				best = i
			}
		}
	}
	if best < 0 {
		return Empty()
	}

	winner := &fragments[best]
	highlights := make([]HighlightSection, len(winner.highlighted))
	for i, h := range winner.highlighted {
		highlights[i] = HighlightSection{
			Start: h.Start - winner.start,
			Stop:  h.Stop - winner.start,
		}
	}

	// Clone detaches the snippet from the source text's backing array.
	return Snippet{
		text:       strings.Clone(text[winner.start:winner.stop]),
		highlights: highlights,
	}
}
