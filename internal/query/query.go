package query

// QueryType identifies the kind of query node.
type QueryType int

const (
	QueryTypeTerm QueryType = iota
	QueryTypeBoolean
	QueryTypePhrase
	QueryTypePrefix
	QueryTypeMatchAll
	QueryTypeMatchNone
)

// Query is the interface for all query AST nodes.
type Query interface {
	Type() QueryType
}

// Boolean operator limits.
const (
	MaxBooleanClauses = 1024
	MaxBooleanDepth   = 10
)

// Phrase limits.
const (
	MaxPhraseLength = 50
)
