package analysis

// Token is a single lexical unit produced by an analyzer.
//
// StartByte/EndByte are byte offsets into the analyzed text, so
// text[StartByte:EndByte] is the original spelling of the token.
// Offsets always land on rune boundaries; downstream consumers slice
// the source text with them when building excerpts.
type Token struct {
	Term      string // normalized term (lowercased by the standard analyzer)
	Position  int
	StartByte int
	EndByte   int
}

// Analyzer turns text into a finite sequence of tokens in source order.
// The returned slice is independent per call, so one Analyzer may be
// shared by concurrent callers.
type Analyzer interface {
	// Analyze tokenizes the input text and returns tokens with positions
	// and byte offsets.
	Analyze(field string, text string) []Token
}
