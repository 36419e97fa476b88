package highlight

import (
	"errors"
	"fmt"
	"strings"

	"GoSnippet/internal/analysis"
)

// DefaultMaxLength is the default excerpt length bound in bytes.
const DefaultMaxLength = 150

// ErrIndexAccess wraps failures to read index state (term frequencies,
// analyzer resolution) while constructing a Generator. It is the only
// failure mode of this package: snippet generation itself never fails.
var ErrIndexAccess = errors.New("index access failed")

// IndexReader is the index-side capability the generator needs: corpus
// statistics and per-field analyzer resolution.
type IndexReader interface {
	// DocFreq returns the number of documents containing the term in the
	// given field.
	DocFreq(field, term string) (uint64, error)

	// AnalyzerFor returns the analyzer configured for the field.
	AnalyzerFor(field string) (analysis.Analyzer, error)
}

// TermSource enumerates the distinct terms a query references, restricted
// to one field.
type TermSource interface {
	FieldTerms(field string) []string
}

// Document exposes the textual values of a stored field.
type Document interface {
	FieldValues(field string) []string
}

// Generator produces snippets for one (query, field) pair. The term
// weight table and analyzer are fixed at construction; a Generator may be
// shared by concurrent callers as long as its analyzer is.
type Generator struct {
	weights   map[string]float32
	analyzer  analysis.Analyzer
	field     string
	maxLength int
}

// NewGenerator builds a Generator for the query's terms in the given
// field. Each term's weight is 1/(1+df) where df is its document
// frequency, so rarer terms weigh more; terms that occur in no document
// are dropped. Fails only when reading the index fails, wrapped in
// ErrIndexAccess.
func NewGenerator(reader IndexReader, query TermSource, field string) (*Generator, error) {
	weights := make(map[string]float32)
	for _, term := range query.FieldTerms(field) {
		df, err := reader.DocFreq(field, term)
		if err != nil {
			return nil, fmt.Errorf("%w: doc freq of %q in field %q: %v", ErrIndexAccess, term, field, err)
		}
		if df == 0 {
			continue
		}
		weights[term] = 1.0 / (1.0 + float32(df))
	}

	analyzer, err := reader.AnalyzerFor(field)
	if err != nil {
		return nil, fmt.Errorf("%w: analyzer for field %q: %v", ErrIndexAccess, field, err)
	}

	return &Generator{
		weights:   weights,
		analyzer:  analyzer,
		field:     field,
		maxLength: DefaultMaxLength,
	}, nil
}

// SetMaxLength reconfigures the excerpt length bound, in bytes, for
// subsequent Snippet calls.
func (g *Generator) SetMaxLength(n int) {
	g.maxLength = n
}

// TermWeights returns the generator's term weight table. The returned map
// must not be modified.
func (g *Generator) TermWeights() map[string]float32 {
	return g.weights
}

// Snippet generates the best-scoring excerpt of the given text. It is a
// pure function of the text and the generator's configuration; when no
// weighted term occurs in the text it returns an empty Snippet.
func (g *Generator) Snippet(text string) Snippet {
	tokens := g.analyzer.Analyze(g.field, text)
	fragments := searchFragments(tokens, g.weights, g.maxLength)
	return selectBestFragment(fragments, text)
}

// SnippetFromDocument generates a snippet over all values of the
// generator's field in the document, joined by a single space.
func (g *Generator) SnippetFromDocument(doc Document) Snippet {
	return g.Snippet(strings.Join(doc.FieldValues(g.field), " "))
}
