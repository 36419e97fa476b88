package testutil

import (
	"testing"
	"time"

	"GoSnippet/internal/analysis"
	"GoSnippet/internal/index"
	"GoSnippet/internal/indexing"
)

// BasicSchema returns a schema suitable for most tests.
func BasicSchema() *index.Schema {
	return &index.Schema{
		Version:         1,
		CreatedAt:       time.Now(),
		DefaultAnalyzer: "standard",
		Fields: []index.FieldDef{
			{Name: "id", Type: index.FieldTypeKeyword, Stored: true, Indexed: true},
			{Name: "title", Type: index.FieldTypeText, Analyzer: "standard", Stored: true, Indexed: true},
			{Name: "body", Type: index.FieldTypeText, Analyzer: "standard", Stored: true, Indexed: true},
			{Name: "tags", Type: index.FieldTypeKeyword, Stored: true, Indexed: true, MultiValued: true},
			{Name: "metadata", Type: index.FieldTypeStoredOnly, Stored: true, Indexed: false},
		},
	}
}

// SampleDocuments returns a small set of test documents.
func SampleDocuments() []indexing.Document {
	return []indexing.Document{
		{Fields: map[string]interface{}{
			"id":    "doc-1",
			"title": "Introduction to Search Excerpts",
			"body":  "the quick brown fox jumps over the lazy dog",
			"tags":  []interface{}{"animals", "tutorial"},
		}},
		{Fields: map[string]interface{}{
			"id":    "doc-2",
			"title": "Highlighting Query Matches",
			"body":  "a good excerpt shows the matched terms in their surrounding context",
			"tags":  []interface{}{"highlighting", "tutorial"},
		}},
		{Fields: map[string]interface{}{
			"id":    "doc-3",
			"title": "Building an Inverted Index",
			"body":  "an inverted index maps terms to the documents containing them",
			"tags":  []interface{}{"indexing", "tutorial"},
		}},
		{Fields: map[string]interface{}{
			"id":    "doc-4",
			"title": "Weighting Rare Terms",
			"body":  "rare terms carry more weight than common ones when picking a fragment",
			"tags":  []interface{}{"weighting", "algorithm"},
		}},
		{Fields: map[string]interface{}{
			"id":    "doc-5",
			"title": "Escaping Markup Output",
			"body":  `excerpts containing < or & must be escaped before rendering as "html"`,
			"tags":  []interface{}{"rendering", "escaping"},
		}},
	}
}

// IngestDocuments indexes a set of documents into a writer.
func IngestDocuments(t *testing.T, w *indexing.Writer, docs []indexing.Document) {
	t.Helper()
	for _, doc := range docs {
		if err := w.AddDocument(doc); err != nil {
			t.Fatalf("AddDocument(%v): %v", doc.Fields["id"], err)
		}
	}
}

// CreatePopulatedWriter creates a writer with sample documents already ingested.
func CreatePopulatedWriter(t *testing.T) *indexing.Writer {
	t.Helper()
	schema := BasicSchema()
	registry := analysis.NewRegistry()
	w := indexing.NewWriter(schema, registry)
	IngestDocuments(t, w, SampleDocuments())
	return w
}

// CreatePopulatedReader seals the sample documents into one segment and
// returns a reader over it.
func CreatePopulatedReader(t *testing.T) *indexing.Reader {
	t.Helper()
	w := CreatePopulatedWriter(t)
	seg := indexing.NewSegment(w.Buffer(), 1)
	return indexing.NewReader([]*indexing.Segment{seg}, BasicSchema(), analysis.NewRegistry())
}
