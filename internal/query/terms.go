package query

// FieldTermSource adapts a query AST to the narrow capability consumed by
// excerpt generation: enumerating the distinct terms the query references,
// restricted to one field. It deliberately hides the node types behind a
// single method so downstream code needs no query polymorphism.
type FieldTermSource struct {
	Query Query
}

// FieldTerms returns the distinct terms the wrapped query references for
// the given field, in first-appearance order. Prefix queries contribute
// nothing: their matching terms are not enumerable without an index.
func (s FieldTermSource) FieldTerms(field string) []string {
	var terms []string
	seen := make(map[string]bool)
	collectTerms(s.Query, field, seen, &terms)
	return terms
}

func collectTerms(q Query, field string, seen map[string]bool, out *[]string) {
	if q == nil {
		return
	}
	switch n := q.(type) {
	case *TermQuery:
		if n.Field == field {
			add(n.Term, seen, out)
		}
	case *PhraseQuery:
		if n.Field == field {
			for _, t := range n.Terms {
				add(t, seen, out)
			}
		}
	case *BooleanQuery:
		for _, clause := range n.Clauses {
			collectTerms(clause.Query, field, seen, out)
		}
	}
}

func add(term string, seen map[string]bool, out *[]string) {
	if term == "" || seen[term] {
		return
	}
	seen[term] = true
	*out = append(*out, term)
}
