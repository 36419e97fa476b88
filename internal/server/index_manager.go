package server

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"GoSnippet/internal/analysis"
	"GoSnippet/internal/index"
	"GoSnippet/internal/indexing"
)

var (
	ErrIndexNotFound = errors.New("index not found")
	ErrIndexExists   = errors.New("index already exists")
	ErrIndexEmpty    = errors.New("nothing to commit")
)

// IndexInstance holds all runtime state for a single index.
type IndexInstance struct {
	Name     string
	Schema   *index.Schema
	Registry *analysis.Registry

	// Writer state (single-writer model).
	writerMu sync.Mutex
	writer   *indexing.Writer

	// Committed segments, oldest generation first.
	segMu      sync.RWMutex
	segments   []*indexing.Segment
	generation uint64

	logger *slog.Logger
}

// CommitResult summarizes one commit.
type CommitResult struct {
	Generation  uint64
	SegmentDocs int
	DeletedDocs int
	Duration    time.Duration
}

// IndexManager manages multiple indexes within a single process.
type IndexManager struct {
	logger   *slog.Logger
	registry *analysis.Registry

	mu      sync.RWMutex
	indexes map[string]*IndexInstance
}

// NewIndexManager creates a new in-memory IndexManager.
func NewIndexManager(logger *slog.Logger) *IndexManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &IndexManager{
		logger:   logger,
		registry: analysis.NewRegistry(),
		indexes:  make(map[string]*IndexInstance),
	}
}

// CreateIndex creates a new index with the given schema.
func (m *IndexManager) CreateIndex(name string, schema *index.Schema) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.indexes[name]; exists {
		return ErrIndexExists
	}

	if err := schema.Validate(); err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}

	schema.CreatedAt = time.Now().UTC()
	if schema.Version == 0 {
		schema.Version = 1
	}

	m.indexes[name] = &IndexInstance{
		Name:     name,
		Schema:   schema,
		Registry: m.registry,
		logger:   m.logger.With("index", name),
	}
	m.logger.Info("index created", "name", name)
	return nil
}

// DeleteIndex removes an index and all its data.
func (m *IndexManager) DeleteIndex(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.indexes[name]; !exists {
		return ErrIndexNotFound
	}
	delete(m.indexes, name)
	m.logger.Info("index deleted", "name", name)
	return nil
}

// GetIndex returns the IndexInstance for the given name.
func (m *IndexManager) GetIndex(name string) (*IndexInstance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inst, exists := m.indexes[name]
	if !exists {
		return nil, ErrIndexNotFound
	}
	return inst, nil
}

// ListIndexes returns the names of all loaded indexes.
func (m *IndexManager) ListIndexes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.indexes))
	for name := range m.indexes {
		names = append(names, name)
	}
	return names
}

// ReleaseWriter releases the active writer, discarding its buffer.
func (inst *IndexInstance) ReleaseWriter() {
	inst.writerMu.Lock()
	defer inst.writerMu.Unlock()
	if inst.writer != nil {
		inst.writer.Release()
		inst.writer = nil
	}
}

// currentWriter returns the active writer, acquiring one if none is held.
func (inst *IndexInstance) currentWriter() *indexing.Writer {
	inst.writerMu.Lock()
	defer inst.writerMu.Unlock()
	if inst.writer == nil {
		inst.writer = indexing.NewWriter(inst.Schema, inst.Registry)
	}
	return inst.writer
}

// IngestDocuments adds documents to the writer's buffer, acquiring a
// writer if none is held.
func (inst *IndexInstance) IngestDocuments(docs []indexing.Document) error {
	return inst.currentWriter().AddDocuments(docs)
}

// StageDeletion stages a delete-by-term for the next commit.
func (inst *IndexInstance) StageDeletion(field, term string) error {
	return inst.currentWriter().DeleteByTerm(field, term)
}

// Commit applies staged deletions to earlier generations and seals the
// buffered documents into a new segment.
func (inst *IndexInstance) Commit() (*CommitResult, error) {
	start := time.Now()

	inst.writerMu.Lock()
	w := inst.writer
	inst.writer = nil
	inst.writerMu.Unlock()

	if w == nil {
		return nil, ErrIndexEmpty
	}

	// Sealing the writer stops concurrent writes; from here the buffer
	// belongs to this commit alone. A write racing with the seal either
	// lands in this batch or fails with ErrWriterNotActive.
	buf := w.Seal()
	if buf == nil || buf.IsEmpty() {
		return nil, ErrIndexEmpty
	}

	inst.segMu.Lock()

	// Deletions see only documents committed before this batch.
	deleted := 0
	for _, del := range buf.Deletions {
		for _, seg := range inst.segments {
			deleted += seg.DeleteByTerm(del.Field, del.Term)
		}
	}

	inst.generation++
	generation := inst.generation
	segmentDocs := buf.DocCount
	if segmentDocs > 0 {
		inst.segments = append(inst.segments, indexing.NewSegment(buf, generation))
	}
	inst.segMu.Unlock()

	result := &CommitResult{
		Generation:  generation,
		SegmentDocs: segmentDocs,
		DeletedDocs: deleted,
		Duration:    time.Since(start),
	}
	inst.logger.Info("commit complete",
		"generation", result.Generation,
		"segment_docs", result.SegmentDocs,
		"deleted_docs", result.DeletedDocs,
		"duration", result.Duration,
	)
	return result, nil
}

// Reader returns a point-in-time view over the committed segments.
func (inst *IndexInstance) Reader() *indexing.Reader {
	inst.segMu.RLock()
	segments := make([]*indexing.Segment, len(inst.segments))
	copy(segments, inst.segments)
	inst.segMu.RUnlock()
	return indexing.NewReader(segments, inst.Schema, inst.Registry)
}

// IndexInfo returns summary information about an index.
func (inst *IndexInstance) IndexInfo() map[string]interface{} {
	inst.segMu.RLock()
	generation := inst.generation
	segments := len(inst.segments)
	totalDocs := 0
	aliveDocs := 0
	for _, seg := range inst.segments {
		totalDocs += seg.DocCount()
		aliveDocs += seg.AliveCount()
	}
	inst.segMu.RUnlock()

	info := map[string]interface{}{
		"name":             inst.Name,
		"generation":       generation,
		"schema_version":   inst.Schema.Version,
		"fields":           len(inst.Schema.Fields),
		"segments":         segments,
		"total_docs":       totalDocs,
		"total_docs_alive": aliveDocs,
	}

	// Include buffer stats if writer is active.
	inst.writerMu.Lock()
	if w := inst.writer; w != nil {
		info["buffer_docs"] = w.DocCount()
		info["buffer_memory_bytes"] = w.MemoryUsed()
	}
	inst.writerMu.Unlock()

	return info
}
