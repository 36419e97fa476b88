package indexing

import (
	"sort"
	"strings"
	"sync"
)

// Segment is an immutable searchable unit sealed from a write buffer at
// commit time. Postings and stored fields never change after sealing;
// only the tombstone set grows, when later commits delete by term.
type Segment struct {
	Generation uint64

	// postings: field → term → docIDs sorted ascending.
	postings map[string]map[string][]uint32

	stored      map[uint32]StoredDocument
	externalIDs map[uint32]string
	docCount    int

	delMu   sync.RWMutex
	deleted map[uint32]bool
}

// NewSegment seals the buffer's documents into a Segment tagged with the
// given generation. The buffer can be reset afterwards; the segment keeps
// its own copies.
func NewSegment(buf *WriteBuffer, generation uint64) *Segment {
	postings := make(map[string]map[string][]uint32, len(buf.InvertedIndex))
	for field, terms := range buf.InvertedIndex {
		fieldMap := make(map[string][]uint32, len(terms))
		for term, pl := range terms {
			docIDs := make([]uint32, len(pl.Entries))
			for i, e := range pl.Entries {
				docIDs[i] = e.DocID
			}
			sort.Slice(docIDs, func(i, j int) bool { return docIDs[i] < docIDs[j] })
			fieldMap[term] = docIDs
		}
		postings[field] = fieldMap
	}

	stored := make(map[uint32]StoredDocument, len(buf.StoredFields))
	for docID, fields := range buf.StoredFields {
		doc := make(StoredDocument, len(fields))
		for field, values := range fields {
			doc[field] = append([]string(nil), values...)
		}
		stored[docID] = doc
	}

	externalIDs := make(map[uint32]string, len(buf.ExternalToInternal))
	for ext, docID := range buf.ExternalToInternal {
		externalIDs[docID] = ext
	}

	return &Segment{
		Generation:  generation,
		postings:    postings,
		stored:      stored,
		externalIDs: externalIDs,
		docCount:    buf.DocCount,
		deleted:     make(map[uint32]bool),
	}
}

// Postings returns the sorted doc IDs containing the term in the field.
// The returned slice must not be modified.
func (s *Segment) Postings(field, term string) []uint32 {
	fieldMap, ok := s.postings[field]
	if !ok {
		return nil
	}
	return fieldMap[term]
}

// MatchingTerms returns the field's terms accepted by the given predicate,
// sorted. Used for prefix matching.
func (s *Segment) MatchingTerms(field string, accept func(term string) bool) []string {
	fieldMap, ok := s.postings[field]
	if !ok {
		return nil
	}
	var terms []string
	for term := range fieldMap {
		if accept(term) {
			terms = append(terms, term)
		}
	}
	sort.Strings(terms)
	return terms
}

// PrefixTerms returns the field's terms starting with the prefix, sorted.
func (s *Segment) PrefixTerms(field, prefix string) []string {
	return s.MatchingTerms(field, func(term string) bool {
		return strings.HasPrefix(term, prefix)
	})
}

// DocFreq returns the number of documents in the segment containing the
// term. Tombstoned documents still count until the segment is rebuilt,
// matching the usual inverted-index statistic.
func (s *Segment) DocFreq(field, term string) uint64 {
	return uint64(len(s.Postings(field, term)))
}

// DeleteByTerm tombstones every document containing the term in the field
// and returns the number of newly deleted documents.
func (s *Segment) DeleteByTerm(field, term string) int {
	docIDs := s.Postings(field, term)
	if len(docIDs) == 0 {
		return 0
	}

	s.delMu.Lock()
	defer s.delMu.Unlock()
	deleted := 0
	for _, docID := range docIDs {
		if !s.deleted[docID] {
			s.deleted[docID] = true
			deleted++
		}
	}
	return deleted
}

// IsDeleted reports whether the document has been tombstoned.
func (s *Segment) IsDeleted(docID uint32) bool {
	s.delMu.RLock()
	defer s.delMu.RUnlock()
	return s.deleted[docID]
}

// Document returns the stored view of the document, if it exists and is
// not tombstoned.
func (s *Segment) Document(docID uint32) (StoredDocument, bool) {
	if s.IsDeleted(docID) {
		return nil, false
	}
	doc, ok := s.stored[docID]
	return doc, ok
}

// ExternalID returns the external ID of the document.
func (s *Segment) ExternalID(docID uint32) (string, bool) {
	ext, ok := s.externalIDs[docID]
	return ext, ok
}

// DocCount returns the number of documents sealed into the segment,
// including tombstoned ones.
func (s *Segment) DocCount() int {
	return s.docCount
}

// AliveCount returns the number of documents not tombstoned.
func (s *Segment) AliveCount() int {
	s.delMu.RLock()
	defer s.delMu.RUnlock()
	return s.docCount - len(s.deleted)
}
