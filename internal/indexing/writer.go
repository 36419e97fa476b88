package indexing

import (
	"errors"
	"fmt"
	"sync"

	"GoSnippet/internal/analysis"
	"GoSnippet/internal/index"
)

var (
	ErrWriterLocked = errors.New("writer is already held by another caller")
)

// Document is a JSON document to be indexed.
type Document struct {
	Fields map[string]interface{}
}

// StoredDocument is the stored view of a committed document: field name to
// the field's textual values in insertion order. It is what search hands
// to excerpt generation.
type StoredDocument map[string][]string

// FieldValues returns the stored values of the given field.
func (d StoredDocument) FieldValues(field string) []string {
	return d[field]
}

// Writer is the exclusive writer for a single index. It accumulates one
// batch of additions and deletions; commit seals the batch into a segment.
// Only one Writer may be active per index at any time.
type Writer struct {
	schema   *index.Schema
	registry *analysis.Registry
	buffer   *WriteBuffer

	mu     sync.Mutex
	active bool
}

// NewWriter creates a new Writer for the given schema and analyzer registry.
func NewWriter(schema *index.Schema, registry *analysis.Registry) *Writer {
	return &Writer{
		schema:   schema,
		registry: registry,
		buffer:   NewWriteBuffer(),
		active:   true,
	}
}

// AddDocument validates and indexes a single document into the write buffer.
func (w *Writer) AddDocument(doc Document) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.active {
		return ErrWriterNotActive
	}

	externalID, err := extractExternalID(doc)
	if err != nil {
		return err
	}

	docID, err := w.buffer.AllocateDocID(externalID)
	if err != nil {
		return err
	}

	for _, fieldDef := range w.schema.Fields {
		val, exists := doc.Fields[fieldDef.Name]
		if !exists {
			continue
		}

		switch fieldDef.Type {
		case index.FieldTypeText:
			if err := w.indexTextField(fieldDef, docID, val); err != nil {
				return err
			}
		case index.FieldTypeKeyword:
			if err := w.indexKeywordField(fieldDef, docID, val); err != nil {
				return err
			}
		case index.FieldTypeStoredOnly:
			// Store only, no indexing.
		}

		if fieldDef.Stored {
			if err := w.storeFieldValue(fieldDef, docID, val); err != nil {
				return err
			}
		}
	}

	return nil
}

// AddDocuments validates and indexes multiple documents into the write buffer.
func (w *Writer) AddDocuments(docs []Document) error {
	for i, doc := range docs {
		if err := w.AddDocument(doc); err != nil {
			return fmt.Errorf("document %d: %w", i, err)
		}
	}
	return nil
}

// DeleteByTerm stages the deletion of every document whose indexed field
// contains the given term. Deletions take effect at commit time against
// documents committed in earlier generations; they do not touch documents
// buffered in the current batch, so update-by-term (delete then re-add in
// one batch) replaces the old document with the new one.
func (w *Writer) DeleteByTerm(field, term string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.active {
		return ErrWriterNotActive
	}

	if _, err := w.schema.Field(field); err != nil {
		return err
	}

	w.buffer.StageDeletion(field, term)
	return nil
}

// DocCount returns the number of documents currently in the write buffer.
func (w *Writer) DocCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buffer.DocCount
}

// IsFull returns true if the write buffer has reached its memory or document limit.
func (w *Writer) IsFull() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buffer.IsFull()
}

// MemoryUsed returns the approximate memory held by the write buffer.
func (w *Writer) MemoryUsed() int64 {
	return w.buffer.MemoryUsed()
}

// Buffer returns the current write buffer (for segment building).
func (w *Writer) Buffer() *WriteBuffer {
	return w.buffer
}

// Abort discards all buffered changes.
func (w *Writer) Abort() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buffer.Reset()
}

// Release releases the writer lock.
func (w *Writer) Release() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = false
}

// Seal deactivates the writer and hands its buffer to the caller for
// exclusive use. A write racing with the seal either completes before it
// and lands in the returned buffer, or fails with ErrWriterNotActive
// after it; the buffer is never mutated once Seal returns. Returns nil
// if the writer was already sealed or released.
func (w *Writer) Seal() *WriteBuffer {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.active {
		return nil
	}
	w.active = false
	return w.buffer
}

func (w *Writer) indexTextField(fieldDef index.FieldDef, docID uint32, val interface{}) error {
	text, ok := val.(string)
	if !ok {
		return errors.New("text field value must be a string")
	}

	analyzerName, err := w.schema.AnalyzerName(fieldDef.Name)
	if err != nil {
		return err
	}
	analyzer, err := w.registry.Get(analyzerName)
	if err != nil {
		return err
	}

	termFreqs := make(map[string]uint32)
	for _, tok := range analyzer.Analyze(fieldDef.Name, text) {
		termFreqs[tok.Term]++
	}

	for term, freq := range termFreqs {
		w.buffer.AddPosting(fieldDef.Name, term, docID, freq)
	}

	return nil
}

func (w *Writer) indexKeywordField(fieldDef index.FieldDef, docID uint32, val interface{}) error {
	switch v := val.(type) {
	case string:
		w.buffer.AddPosting(fieldDef.Name, v, docID, 1)
	case []interface{}:
		if !fieldDef.MultiValued {
			return errors.New("field is not multi-valued but received array")
		}
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return errors.New("keyword array values must be strings")
			}
			w.buffer.AddPosting(fieldDef.Name, s, docID, 1)
		}
	default:
		return errors.New("keyword field value must be a string or string array")
	}
	return nil
}

func (w *Writer) storeFieldValue(fieldDef index.FieldDef, docID uint32, val interface{}) error {
	switch v := val.(type) {
	case string:
		w.buffer.StoreField(docID, fieldDef.Name, v)
	case []interface{}:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("field %q: stored array values must be strings", fieldDef.Name)
			}
			w.buffer.StoreField(docID, fieldDef.Name, s)
		}
	default:
		return fmt.Errorf("field %q: stored value must be a string or string array", fieldDef.Name)
	}
	return nil
}

func extractExternalID(doc Document) (string, error) {
	idVal, ok := doc.Fields["id"]
	if !ok {
		return "", errors.New("document missing 'id' field")
	}
	id, ok := idVal.(string)
	if !ok {
		return "", errors.New("document 'id' must be a string")
	}
	return id, nil
}
