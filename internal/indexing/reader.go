package indexing

import (
	"GoSnippet/internal/analysis"
	"GoSnippet/internal/index"
)

// Reader is a point-in-time read view over a set of committed segments.
// It serves the index statistics and analyzer resolution that excerpt
// generation needs.
type Reader struct {
	segments []*Segment
	schema   *index.Schema
	registry *analysis.Registry
}

// NewReader creates a Reader over the given segments. The segment slice
// is captured as-is; callers pass a snapshot.
func NewReader(segments []*Segment, schema *index.Schema, registry *analysis.Registry) *Reader {
	return &Reader{
		segments: segments,
		schema:   schema,
		registry: registry,
	}
}

// Segments returns the segments in this view, oldest generation first.
func (r *Reader) Segments() []*Segment {
	return r.segments
}

// DocFreq returns the number of documents containing the term in the
// field, summed across all segments in the view.
func (r *Reader) DocFreq(field, term string) (uint64, error) {
	if _, err := r.schema.Field(field); err != nil {
		return 0, err
	}
	var total uint64
	for _, seg := range r.segments {
		total += seg.DocFreq(field, term)
	}
	return total, nil
}

// AnalyzerFor resolves the analyzer configured for the field.
func (r *Reader) AnalyzerFor(field string) (analysis.Analyzer, error) {
	name, err := r.schema.AnalyzerName(field)
	if err != nil {
		return nil, err
	}
	return r.registry.Get(name)
}

// TotalDocs returns the number of live documents across all segments.
func (r *Reader) TotalDocs() int {
	total := 0
	for _, seg := range r.segments {
		total += seg.AliveCount()
	}
	return total
}
