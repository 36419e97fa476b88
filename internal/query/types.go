package query

// TermQuery matches documents containing the exact analyzed term.
type TermQuery struct {
	Field string
	Term  string
}

func (q *TermQuery) Type() QueryType { return QueryTypeTerm }

// BooleanOp defines the boolean operator.
type BooleanOp int

const (
	BooleanMust    BooleanOp = iota // AND
	BooleanShould                   // OR
	BooleanMustNot                  // NOT
)

// BooleanClause is a single clause within a BooleanQuery.
type BooleanClause struct {
	Occur BooleanOp
	Query Query
}

// BooleanQuery combines sub-queries with boolean logic.
type BooleanQuery struct {
	Clauses []BooleanClause
}

func (q *BooleanQuery) Type() QueryType { return QueryTypeBoolean }

// PhraseQuery matches documents where terms appear in exact sequence.
type PhraseQuery struct {
	Field string
	Terms []string
}

func (q *PhraseQuery) Type() QueryType { return QueryTypePhrase }

// PrefixQuery matches terms starting with the given prefix.
type PrefixQuery struct {
	Field  string
	Prefix string
}

func (q *PrefixQuery) Type() QueryType { return QueryTypePrefix }

// MatchAllQuery matches all documents.
type MatchAllQuery struct{}

func (q *MatchAllQuery) Type() QueryType { return QueryTypeMatchAll }

// MatchNoneQuery matches no documents.
type MatchNoneQuery struct{}

func (q *MatchNoneQuery) Type() QueryType { return QueryTypeMatchNone }
