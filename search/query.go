package search

import (
	"strings"
	"unicode/utf8"

	"github.com/petflix/petflix/source"
	"github.com/samber/lo"
)

// Scope narrows a search.
type Scope struct {
	// Category, when set, is scanned page by page for keyword matches before the other strategies.
	Category string

	// Filter keeps only the records it accepts, for every strategy.
	Filter func(*source.Record) bool
}

// Query is the keyword with everything derived from it.
type Query struct {
	Keyword    string
	Tokens     []string
	Alternates []string
	Scope
}

// NewQuery derives tokens and alternates from keyword.
func NewQuery(keyword string, synonyms Synonyms, scope Scope) Query {
	keyword = strings.Join(strings.Fields(keyword), " ")
	return Query{
		Keyword:    keyword,
		Tokens:     Tokenize(keyword),
		Alternates: synonyms.Lookup(keyword),
		Scope:      scope,
	}
}

// Tokenize splits on whitespace and keeps words longer than two characters.
func Tokenize(keyword string) []string {
	return lo.Filter(strings.Fields(keyword), func(w string, _ int) bool {
		return utf8.RuneCountInString(w) > 2
	})
}

// Terms is every lowercased term a record may match locally.
func (q Query) Terms() []string {
	terms := make([]string, 0, 1+len(q.Tokens)+len(q.Alternates))
	terms = append(terms, strings.ToLower(q.Keyword))
	for _, t := range q.Tokens {
		terms = append(terms, strings.ToLower(t))
	}
	for _, a := range q.Alternates {
		terms = append(terms, strings.ToLower(a))
	}
	return lo.Uniq(lo.Compact(terms))
}

func (q Query) accept(r *source.Record) bool {
	return q.Filter == nil || q.Filter(r)
}

func (q Query) keep(records []*source.Record) []*source.Record {
	if q.Filter == nil {
		return records
	}
	return lo.Filter(records, func(r *source.Record, _ int) bool {
		return q.accept(r)
	})
}

// matches reports whether any term occurs in the record's titles or description.
func matches(r *source.Record, terms []string) bool {
	texts := append(titlesOf(r), strings.ToLower(r.Description))
	return lo.SomeBy(terms, func(t string) bool {
		return lo.SomeBy(texts, func(text string) bool { return strings.Contains(text, t) })
	})
}

// titlesOf is the lower-cased display and original titles. Each is matched on its own.
func titlesOf(r *source.Record) []string {
	return lo.Uniq(lo.Compact([]string{strings.ToLower(r.Title), strings.ToLower(r.OriginalTitle)}))
}
