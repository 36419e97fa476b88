package engine

// DocCollector gathers matching documents in doc ID order, up to a limit.
type DocCollector struct {
	limit  int
	docIDs []uint32
}

// NewDocCollector creates a collector that keeps at most limit documents.
func NewDocCollector(limit int) *DocCollector {
	if limit <= 0 {
		limit = 10
	}
	return &DocCollector{
		limit:  limit,
		docIDs: make([]uint32, 0, limit),
	}
}

// Collect adds a document. Returns false once the limit is reached and
// further collection is pointless.
func (c *DocCollector) Collect(docID uint32) bool {
	if len(c.docIDs) >= c.limit {
		return false
	}
	c.docIDs = append(c.docIDs, docID)
	return len(c.docIDs) < c.limit
}

// Full reports whether the collector has reached its limit.
func (c *DocCollector) Full() bool {
	return len(c.docIDs) >= c.limit
}

// Len returns the number of documents collected so far.
func (c *DocCollector) Len() int {
	return len(c.docIDs)
}

// Results returns the collected doc IDs in the order they were collected.
func (c *DocCollector) Results() []uint32 {
	return c.docIDs
}
