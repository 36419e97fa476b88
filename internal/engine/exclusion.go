package engine

// ExclusionIterator yields documents from the required iterator that do
// not appear in the excluded iterator. Implements AND NOT logic.
type ExclusionIterator struct {
	required PostingsIterator
	excluded PostingsIterator

	exclValid bool
	exclInit  bool
	current   uint32
}

// NewExclusionIterator creates an iterator over required minus excluded.
func NewExclusionIterator(required, excluded PostingsIterator) *ExclusionIterator {
	return &ExclusionIterator{
		required: required,
		excluded: excluded,
	}
}

func (e *ExclusionIterator) Next() bool {
	for e.required.Next() {
		if e.accept(e.required.DocID()) {
			e.current = e.required.DocID()
			return true
		}
	}
	return false
}

func (e *ExclusionIterator) DocID() uint32 {
	return e.current
}

func (e *ExclusionIterator) Advance(target uint32) bool {
	if !e.required.Advance(target) {
		return false
	}
	if e.accept(e.required.DocID()) {
		e.current = e.required.DocID()
		return true
	}
	return e.Next()
}

func (e *ExclusionIterator) Cost() int64 {
	return e.required.Cost()
}

// accept reports whether the doc ID is absent from the excluded iterator.
func (e *ExclusionIterator) accept(docID uint32) bool {
	if !e.exclInit {
		e.exclInit = true
		e.exclValid = e.excluded.Next()
	}
	if e.exclValid && e.excluded.DocID() < docID {
		e.exclValid = e.excluded.Advance(docID)
	}
	return !e.exclValid || e.excluded.DocID() != docID
}
