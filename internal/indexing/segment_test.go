package indexing

import (
	"errors"
	"testing"

	"GoSnippet/internal/analysis"
	"GoSnippet/internal/index"
)

func sealTestSegment(t *testing.T, generation uint64, docs ...Document) *Segment {
	t.Helper()
	w := newTestWriter(t)
	if err := w.AddDocuments(docs); err != nil {
		t.Fatal(err)
	}
	return NewSegment(w.Buffer(), generation)
}

func animalDocs() []Document {
	return []Document{
		{Fields: map[string]interface{}{"id": "1", "body": "the quick brown fox", "tags": []interface{}{"animals"}}},
		{Fields: map[string]interface{}{"id": "2", "body": "the lazy dog sleeps", "tags": []interface{}{"animals"}}},
		{Fields: map[string]interface{}{"id": "3", "body": "a fox and a dog", "tags": []interface{}{"pairs"}}},
	}
}

// --- Segment Tests ---

func TestSegment_Postings(t *testing.T) {
	seg := sealTestSegment(t, 1, animalDocs()...)

	tests := []struct {
		field, term string
		want        []uint32
	}{
		{"body", "fox", []uint32{0, 2}},
		{"body", "dog", []uint32{1, 2}},
		{"body", "quick", []uint32{0}},
		{"body", "wolf", nil},
		{"tags", "animals", []uint32{0, 1}},
		{"missing", "fox", nil},
	}

	for _, tt := range tests {
		got := seg.Postings(tt.field, tt.term)
		if len(got) != len(tt.want) {
			t.Errorf("Postings(%q, %q) = %v, want %v", tt.field, tt.term, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Postings(%q, %q) = %v, want %v", tt.field, tt.term, got, tt.want)
				break
			}
		}
	}
}

func TestSegment_IndependentOfBufferReset(t *testing.T) {
	w := newTestWriter(t)
	if err := w.AddDocuments(animalDocs()); err != nil {
		t.Fatal(err)
	}
	seg := NewSegment(w.Buffer(), 1)
	w.Buffer().Reset()

	if got := seg.DocFreq("body", "fox"); got != 2 {
		t.Errorf("DocFreq after buffer reset = %d, want 2", got)
	}
	if doc, ok := seg.Document(0); !ok || doc.FieldValues("body")[0] != "the quick brown fox" {
		t.Errorf("stored document lost after buffer reset: %v, %v", doc, ok)
	}
}

func TestSegment_PrefixTerms(t *testing.T) {
	seg := sealTestSegment(t, 1, animalDocs()...)

	got := seg.PrefixTerms("body", "s")
	if len(got) != 1 || got[0] != "sleeps" {
		t.Errorf("PrefixTerms(body, s) = %v, want [sleeps]", got)
	}
	if got := seg.PrefixTerms("body", "zz"); len(got) != 0 {
		t.Errorf("PrefixTerms(body, zz) = %v, want none", got)
	}
}

func TestSegment_DeleteByTerm(t *testing.T) {
	seg := sealTestSegment(t, 1, animalDocs()...)

	deleted := seg.DeleteByTerm("body", "fox")
	if deleted != 2 {
		t.Errorf("DeleteByTerm deleted %d, want 2", deleted)
	}
	if seg.DeleteByTerm("body", "fox") != 0 {
		t.Error("repeated delete must not count documents twice")
	}

	if !seg.IsDeleted(0) || !seg.IsDeleted(2) {
		t.Error("fox documents should be tombstoned")
	}
	if seg.IsDeleted(1) {
		t.Error("dog document should survive")
	}
	if got := seg.AliveCount(); got != 1 {
		t.Errorf("AliveCount = %d, want 1", got)
	}

	// Tombstoned documents are hidden from stored lookup but still counted
	// in doc frequency until a rebuild.
	if _, ok := seg.Document(0); ok {
		t.Error("tombstoned document must not be returned")
	}
	if got := seg.DocFreq("body", "fox"); got != 2 {
		t.Errorf("DocFreq = %d, tombstones must still count", got)
	}
}

func TestSegment_ExternalID(t *testing.T) {
	seg := sealTestSegment(t, 1, animalDocs()...)

	ext, ok := seg.ExternalID(2)
	if !ok || ext != "3" {
		t.Errorf("ExternalID(2) = %q, %v, want %q", ext, ok, "3")
	}
	if _, ok := seg.ExternalID(99); ok {
		t.Error("unknown doc ID must not resolve")
	}
}

// --- Reader Tests ---

func TestReader_DocFreqAcrossSegments(t *testing.T) {
	schema := testSchema(t)
	registry := analysis.NewRegistry()

	seg1 := sealTestSegment(t, 1, animalDocs()...)
	seg2 := sealTestSegment(t, 2,
		Document{Fields: map[string]interface{}{"id": "4", "body": "another fox appears"}},
	)

	r := NewReader([]*Segment{seg1, seg2}, schema, registry)

	df, err := r.DocFreq("body", "fox")
	if err != nil {
		t.Fatal(err)
	}
	if df != 3 {
		t.Errorf("DocFreq(body, fox) = %d, want 3", df)
	}

	if _, err := r.DocFreq("missing", "fox"); !errors.Is(err, index.ErrFieldNotFound) {
		t.Errorf("err = %v, want ErrFieldNotFound", err)
	}
}

func TestReader_AnalyzerFor(t *testing.T) {
	schema := testSchema(t)
	r := NewReader(nil, schema, analysis.NewRegistry())

	a, err := r.AnalyzerFor("body")
	if err != nil {
		t.Fatal(err)
	}
	toks := a.Analyze("body", "Hello World")
	if len(toks) != 2 || toks[0].Term != "hello" {
		t.Errorf("resolved analyzer produced %v", toks)
	}

	if _, err := r.AnalyzerFor("missing"); !errors.Is(err, index.ErrFieldNotFound) {
		t.Errorf("err = %v, want ErrFieldNotFound", err)
	}
}

func TestReader_TotalDocs(t *testing.T) {
	seg := sealTestSegment(t, 1, animalDocs()...)
	r := NewReader([]*Segment{seg}, testSchema(t), analysis.NewRegistry())

	if got := r.TotalDocs(); got != 3 {
		t.Errorf("TotalDocs = %d, want 3", got)
	}
	seg.DeleteByTerm("tags", "animals")
	if got := r.TotalDocs(); got != 1 {
		t.Errorf("TotalDocs after delete = %d, want 1", got)
	}
}
