package query

import (
	"reflect"
	"testing"
)

func TestFieldTerms_Term(t *testing.T) {
	src := FieldTermSource{Query: &TermQuery{Field: "body", Term: "fox"}}

	got := src.FieldTerms("body")
	if !reflect.DeepEqual(got, []string{"fox"}) {
		t.Errorf("FieldTerms(body) = %v, want [fox]", got)
	}
	if got := src.FieldTerms("title"); got != nil {
		t.Errorf("FieldTerms(title) = %v, want nil", got)
	}
}

func TestFieldTerms_Boolean(t *testing.T) {
	q := &BooleanQuery{
		Clauses: []BooleanClause{
			{Occur: BooleanMust, Query: &TermQuery{Field: "body", Term: "quick"}},
			{Occur: BooleanShould, Query: &TermQuery{Field: "body", Term: "fox"}},
			{Occur: BooleanShould, Query: &TermQuery{Field: "title", Term: "lazy"}},
			{Occur: BooleanMustNot, Query: &TermQuery{Field: "body", Term: "dog"}},
		},
	}
	src := FieldTermSource{Query: q}

	got := src.FieldTerms("body")
	want := []string{"quick", "fox", "dog"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FieldTerms(body) = %v, want %v", got, want)
	}

	got = src.FieldTerms("title")
	if !reflect.DeepEqual(got, []string{"lazy"}) {
		t.Errorf("FieldTerms(title) = %v, want [lazy]", got)
	}
}

func TestFieldTerms_Phrase(t *testing.T) {
	src := FieldTermSource{Query: &PhraseQuery{Field: "body", Terms: []string{"quick", "brown", "fox"}}}

	got := src.FieldTerms("body")
	want := []string{"quick", "brown", "fox"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FieldTerms = %v, want %v", got, want)
	}
}

func TestFieldTerms_Deduplicates(t *testing.T) {
	q := &BooleanQuery{
		Clauses: []BooleanClause{
			{Query: &TermQuery{Field: "body", Term: "fox"}},
			{Query: &PhraseQuery{Field: "body", Terms: []string{"fox", "den"}}},
			{Query: &TermQuery{Field: "body", Term: "fox"}},
		},
	}
	src := FieldTermSource{Query: q}

	got := src.FieldTerms("body")
	want := []string{"fox", "den"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FieldTerms = %v, want %v", got, want)
	}
}

func TestFieldTerms_Nested(t *testing.T) {
	inner := &BooleanQuery{
		Clauses: []BooleanClause{
			{Query: &TermQuery{Field: "body", Term: "deep"}},
		},
	}
	q := &BooleanQuery{
		Clauses: []BooleanClause{
			{Query: inner},
			{Query: &MatchAllQuery{}},
		},
	}
	src := FieldTermSource{Query: q}

	got := src.FieldTerms("body")
	if !reflect.DeepEqual(got, []string{"deep"}) {
		t.Errorf("FieldTerms = %v, want [deep]", got)
	}
}

func TestFieldTerms_NonTermQueries(t *testing.T) {
	for _, q := range []Query{
		&PrefixQuery{Field: "body", Prefix: "fo"},
		&MatchAllQuery{},
		&MatchNoneQuery{},
		nil,
	} {
		src := FieldTermSource{Query: q}
		if got := src.FieldTerms("body"); got != nil {
			t.Errorf("FieldTerms(%T) = %v, want nil", q, got)
		}
	}
}
