package engine

// PostingsIterator iterates over a postings list in document ID order.
type PostingsIterator interface {
	// Next advances to the next document. Returns false when exhausted.
	Next() bool

	// DocID returns the current document ID. Valid only after Next() returns true.
	DocID() uint32

	// Advance moves to the first document >= target. Returns false if no such document.
	Advance(target uint32) bool

	// Cost returns an estimate of remaining documents.
	Cost() int64
}

// SlicePostingsIterator is a simple in-memory PostingsIterator backed by a
// sorted doc ID slice.
type SlicePostingsIterator struct {
	docIDs []uint32
	pos    int
}

// NewSlicePostingsIterator creates a PostingsIterator from a doc ID slice.
// The slice must be sorted ascending.
func NewSlicePostingsIterator(docIDs []uint32) *SlicePostingsIterator {
	return &SlicePostingsIterator{
		docIDs: docIDs,
		pos:    -1,
	}
}

func (it *SlicePostingsIterator) Next() bool {
	it.pos++
	return it.pos < len(it.docIDs)
}

func (it *SlicePostingsIterator) DocID() uint32 {
	return it.docIDs[it.pos]
}

func (it *SlicePostingsIterator) Advance(target uint32) bool {
	// If already positioned at or past target, return true.
	if it.pos >= 0 && it.pos < len(it.docIDs) && it.docIDs[it.pos] >= target {
		return true
	}
	for it.pos+1 < len(it.docIDs) {
		it.pos++
		if it.docIDs[it.pos] >= target {
			return true
		}
	}
	it.pos = len(it.docIDs)
	return false
}

func (it *SlicePostingsIterator) Cost() int64 {
	remaining := len(it.docIDs) - it.pos - 1
	if remaining < 0 {
		return 0
	}
	return int64(remaining)
}

// RangeIterator yields every doc ID in [0, count). Used for match-all.
type RangeIterator struct {
	count uint32
	pos   int64
}

// NewRangeIterator creates an iterator over doc IDs 0 through count-1.
func NewRangeIterator(count uint32) *RangeIterator {
	return &RangeIterator{count: count, pos: -1}
}

func (it *RangeIterator) Next() bool {
	it.pos++
	return it.pos < int64(it.count)
}

func (it *RangeIterator) DocID() uint32 {
	return uint32(it.pos)
}

func (it *RangeIterator) Advance(target uint32) bool {
	if it.pos < int64(target) {
		it.pos = int64(target)
	}
	return it.pos < int64(it.count)
}

func (it *RangeIterator) Cost() int64 {
	remaining := int64(it.count) - it.pos - 1
	if remaining < 0 {
		return 0
	}
	return remaining
}
