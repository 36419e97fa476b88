package engine

import (
	"errors"
	"fmt"

	"GoSnippet/internal/indexing"
	"GoSnippet/internal/query"
)

var (
	ErrTooManyClauses = errors.New("boolean query has too many clauses")
	ErrQueryTooDeep   = errors.New("boolean query nesting too deep")
	ErrPhraseTooLong  = errors.New("phrase query has too many terms")
)

// Execute runs the query against a single segment and collects matching
// live doc IDs in ascending order, up to the collector's limit.
func Execute(q query.Query, seg *indexing.Segment, ctx *ExecutionContext, collector *DocCollector) error {
	it, err := buildIterator(q, seg, ctx, 0)
	if err != nil {
		return err
	}
	if it == nil {
		return nil
	}

	for it.Next() {
		if err := ctx.CheckLimits(); err != nil {
			return err
		}
		if seg.IsDeleted(it.DocID()) {
			continue
		}
		if !collector.Collect(it.DocID()) {
			return nil
		}
	}
	return nil
}

// buildIterator translates a query node into a postings iterator over the
// segment. A nil iterator means the node matches nothing.
func buildIterator(q query.Query, seg *indexing.Segment, ctx *ExecutionContext, depth int) (PostingsIterator, error) {
	if depth > query.MaxBooleanDepth {
		return nil, ErrQueryTooDeep
	}

	switch node := q.(type) {
	case *query.TermQuery:
		return NewSlicePostingsIterator(seg.Postings(node.Field, node.Term)), nil

	case *query.PhraseQuery:
		// Positions are not indexed; a phrase degrades to requiring all
		// of its terms in the document.
		if len(node.Terms) > query.MaxPhraseLength {
			return nil, ErrPhraseTooLong
		}
		if len(node.Terms) == 0 {
			return nil, nil
		}
		children := make([]PostingsIterator, 0, len(node.Terms))
		for _, term := range node.Terms {
			children = append(children, NewSlicePostingsIterator(seg.Postings(node.Field, term)))
		}
		if len(children) == 1 {
			return children[0], nil
		}
		return NewConjunctionIterator(children), nil

	case *query.PrefixQuery:
		terms := seg.PrefixTerms(node.Field, node.Prefix)
		children := make([]PostingsIterator, 0, len(terms))
		for _, term := range terms {
			ctx.TermsMatched++
			if err := ctx.CheckLimits(); err != nil {
				return nil, err
			}
			children = append(children, NewSlicePostingsIterator(seg.Postings(node.Field, term)))
		}
		if len(children) == 0 {
			return nil, nil
		}
		if len(children) == 1 {
			return children[0], nil
		}
		return NewDisjunctionIterator(children), nil

	case *query.BooleanQuery:
		return buildBooleanIterator(node, seg, ctx, depth)

	case *query.MatchAllQuery:
		return NewRangeIterator(uint32(seg.DocCount())), nil

	case *query.MatchNoneQuery:
		return nil, nil

	default:
		return nil, fmt.Errorf("unsupported query type %d", q.Type())
	}
}

func buildBooleanIterator(node *query.BooleanQuery, seg *indexing.Segment, ctx *ExecutionContext, depth int) (PostingsIterator, error) {
	if len(node.Clauses) > query.MaxBooleanClauses {
		return nil, ErrTooManyClauses
	}

	var musts, shoulds, nots []PostingsIterator
	for _, clause := range node.Clauses {
		it, err := buildIterator(clause.Query, seg, ctx, depth+1)
		if err != nil {
			return nil, err
		}

		switch clause.Occur {
		case query.BooleanMust:
			if it == nil {
				// A required clause matching nothing empties the result.
				return nil, nil
			}
			musts = append(musts, it)
		case query.BooleanShould:
			if it != nil {
				shoulds = append(shoulds, it)
			}
		case query.BooleanMustNot:
			if it != nil {
				nots = append(nots, it)
			}
		}
	}

	var positive PostingsIterator
	switch {
	case len(musts) == 1:
		positive = musts[0]
	case len(musts) > 1:
		positive = NewConjunctionIterator(musts)
	case len(shoulds) == 1:
		positive = shoulds[0]
	case len(shoulds) > 1:
		positive = NewDisjunctionIterator(shoulds)
	case len(nots) > 0:
		// Pure negation matches everything except the excluded set.
		positive = NewRangeIterator(uint32(seg.DocCount()))
	default:
		return nil, nil
	}

	if len(nots) == 0 {
		return positive, nil
	}
	excluded := nots[0]
	if len(nots) > 1 {
		excluded = NewDisjunctionIterator(nots)
	}
	return NewExclusionIterator(positive, excluded), nil
}
