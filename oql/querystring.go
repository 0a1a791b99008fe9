// Package oql derives the two statements of a two-phase paged query
// execution from a single OQL query statement: a keys query returning a
// stably ordered set of entry keys, and a values query re-fetching the
// projected fields for exactly the keys of one page.
//
// The package performs structural, lexical transformation only. It locates
// clause keywords by scanning text; it does not parse OQL into a syntax tree
// or validate the statement beyond the clause boundaries it needs.
package oql

import (
	"regexp"
	"strings"
)

const (
	singleSpace = " "
	singleQuote = "'"
	commaSpace  = ", "
	comma       = ","
)

// limitPattern matches a LIMIT clause together with its numeric operand.
var limitPattern = regexp.MustCompile(`LIMIT\s+\d+`)

// QueryString is an immutable OQL query statement. All derived forms are new
// strings; the original statement is never mutated.
type QueryString struct {
	query string
}

// NewQueryString creates a QueryString for the given OQL statement.
func NewQueryString(query string) (*QueryString, error) {
	if strings.TrimSpace(query) == "" {
		return nil, NewMalformedQueryError("query is required")
	}
	return &QueryString{query: query}, nil
}

// Query returns the original, unmodified OQL query statement.
func (qs *QueryString) Query() string {
	return qs.query
}

// asDistinct promotes the statement's SELECT clause to SELECT DISTINCT
// unless the statement already contains the DISTINCT keyword.
func asDistinct(query string) string {
	upper := strings.ToUpper(query)

	if strings.Contains(upper, string(KeywordDistinct)) {
		return query
	}

	selectIdx := strings.Index(upper, string(KeywordSelect))
	if selectIdx < 0 {
		return query
	}

	end := selectIdx + len(KeywordSelect)

	return query[:end] + singleSpace + string(KeywordDistinct) + query[end:]
}
