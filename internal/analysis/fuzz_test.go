package analysis

import (
	"testing"
	"unicode/utf8"
)

func FuzzStandardAnalyzer(f *testing.F) {
	f.Add("Hello World")
	f.Add("")
	f.Add("  spaces  everywhere  ")
	f.Add("café résumé naïve")
	f.Add("hello-world foo_bar")
	f.Add("123 456 789")

	f.Fuzz(func(t *testing.T, input string) {
		a := NewStandardAnalyzer()
		tokens := a.Analyze("field", input)

		for i, tok := range tokens {
			if tok.Position != i {
				t.Errorf("token %d position = %d, want %d", i, tok.Position, i)
			}
			if tok.StartByte < 0 || tok.EndByte > len(input) || tok.StartByte > tok.EndByte {
				t.Errorf("invalid byte offsets: start=%d end=%d input_len=%d", tok.StartByte, tok.EndByte, len(input))
				continue
			}
			// Offsets must cut the input at rune boundaries.
			if !utf8.ValidString(input[tok.StartByte:tok.EndByte]) {
				t.Errorf("offsets (%d, %d) split a multi-byte rune", tok.StartByte, tok.EndByte)
			}
			if tok.Term == "" {
				t.Error("empty term produced")
			}
		}
	})
}

func FuzzWhitespaceAnalyzer(f *testing.F) {
	f.Add("Hello World")
	f.Add("")
	f.Add("\t\n\r mixed whitespace")

	f.Fuzz(func(t *testing.T, input string) {
		a := NewWhitespaceAnalyzer()
		tokens := a.Analyze("field", input)

		for i, tok := range tokens {
			if tok.Position != i {
				t.Errorf("token %d position = %d, want %d", i, tok.Position, i)
			}
			if tok.Term == "" {
				t.Error("empty term produced")
			}
			if input[tok.StartByte:tok.EndByte] != tok.Term {
				t.Errorf("offsets (%d, %d) do not slice to %q", tok.StartByte, tok.EndByte, tok.Term)
			}
		}
	})
}
