package indexing

import (
	"errors"
	"sync/atomic"
)

// Buffer limits.
const (
	DefaultBufferMemoryLimit = 64 * 1024 * 1024 // 64MB
	DefaultMaxDocsPerBatch   = 100_000
)

var (
	ErrBufferFull      = errors.New("write buffer memory limit reached")
	ErrDuplicateDoc    = errors.New("duplicate document ID in buffer")
	ErrWriterNotActive = errors.New("writer is not active")
)

// PostingEntry is a single posting for a term in a field.
type PostingEntry struct {
	DocID uint32
	Freq  uint32
}

// PostingsList accumulates postings for a single term in a single field.
type PostingsList struct {
	Entries []PostingEntry
}

// TermDeletion identifies documents to delete: every document whose
// indexed field contains the term.
type TermDeletion struct {
	Field string
	Term  string
}

// WriteBuffer accumulates one batch of documents before commit: an
// in-memory inverted index, the stored field values, and any staged
// deletions.
type WriteBuffer struct {
	// InvertedIndex: field → term → postings list.
	InvertedIndex map[string]map[string]*PostingsList

	// StoredFields: docID → field → values, in insertion order.
	StoredFields map[uint32]map[string][]string

	// ExternalToInternal maps external doc IDs to batch-local doc IDs.
	ExternalToInternal map[string]uint32

	// Deletions are applied to previously committed segments at commit time.
	Deletions []TermDeletion

	NextDocID uint32
	DocCount  int
	TermCount int

	memoryUsed  atomic.Int64
	MemoryLimit int64
	MaxDocs     int
}

// NewWriteBuffer creates a new empty write buffer.
func NewWriteBuffer() *WriteBuffer {
	return &WriteBuffer{
		InvertedIndex:      make(map[string]map[string]*PostingsList),
		StoredFields:       make(map[uint32]map[string][]string),
		ExternalToInternal: make(map[string]uint32),
		MemoryLimit:        DefaultBufferMemoryLimit,
		MaxDocs:            DefaultMaxDocsPerBatch,
	}
}

// AddPosting adds a posting entry for the given field and term.
func (b *WriteBuffer) AddPosting(field, term string, docID uint32, freq uint32) {
	fieldMap, ok := b.InvertedIndex[field]
	if !ok {
		fieldMap = make(map[string]*PostingsList)
		b.InvertedIndex[field] = fieldMap
	}

	pl, ok := fieldMap[term]
	if !ok {
		pl = &PostingsList{}
		fieldMap[term] = pl
		b.TermCount++
	}

	pl.Entries = append(pl.Entries, PostingEntry{DocID: docID, Freq: freq})

	// Approximate memory tracking.
	b.memoryUsed.Add(int64(8 + len(term)))
}

// StoreField appends a stored value for a document field.
func (b *WriteBuffer) StoreField(docID uint32, field, value string) {
	fields, ok := b.StoredFields[docID]
	if !ok {
		fields = make(map[string][]string)
		b.StoredFields[docID] = fields
	}
	fields[field] = append(fields[field], value)
	b.memoryUsed.Add(int64(len(value) + len(field)))
}

// AllocateDocID assigns a batch-local doc ID for an external ID.
// Returns an error if the external ID is already in the buffer.
func (b *WriteBuffer) AllocateDocID(externalID string) (uint32, error) {
	if _, exists := b.ExternalToInternal[externalID]; exists {
		return 0, ErrDuplicateDoc
	}

	docID := b.NextDocID
	b.NextDocID++
	b.DocCount++
	b.ExternalToInternal[externalID] = docID
	return docID, nil
}

// StageDeletion records a term deletion to apply at commit time.
func (b *WriteBuffer) StageDeletion(field, term string) {
	b.Deletions = append(b.Deletions, TermDeletion{Field: field, Term: term})
}

// MemoryUsed returns the approximate memory used by the buffer.
func (b *WriteBuffer) MemoryUsed() int64 {
	return b.memoryUsed.Load()
}

// IsFull returns true if the buffer has reached its memory or document limit.
func (b *WriteBuffer) IsFull() bool {
	if b.DocCount >= b.MaxDocs {
		return true
	}
	return b.memoryUsed.Load() >= b.MemoryLimit
}

// IsEmpty returns true if the buffer holds no documents and no deletions.
func (b *WriteBuffer) IsEmpty() bool {
	return b.DocCount == 0 && len(b.Deletions) == 0
}

// Reset clears the buffer for reuse.
func (b *WriteBuffer) Reset() {
	b.InvertedIndex = make(map[string]map[string]*PostingsList)
	b.StoredFields = make(map[uint32]map[string][]string)
	b.ExternalToInternal = make(map[string]uint32)
	b.Deletions = nil
	b.NextDocID = 0
	b.DocCount = 0
	b.TermCount = 0
	b.memoryUsed.Store(0)
}
