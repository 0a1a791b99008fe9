package oql

import (
	"strings"
)

// clauseSpans records the first case-insensitive occurrence of each clause
// keyword within a query statement. Optional clauses are -1 when absent.
// Computing the spans once up front centralizes the index arithmetic the
// fragment extractors depend on.
type clauseSpans struct {
	selectIdx  int
	fromIdx    int
	whereIdx   int
	orderByIdx int
	limitIdx   int
	distinct   bool
}

// scanClauses locates the clause keyword boundaries of a query statement.
// SELECT and FROM are mandatory; their absence is a malformed-query error
// naming the missing clause.
func scanClauses(query string) (clauseSpans, error) {
	upper := strings.ToUpper(query)

	spans := clauseSpans{
		selectIdx:  strings.Index(upper, string(KeywordSelect)),
		fromIdx:    strings.Index(upper, string(KeywordFrom)),
		whereIdx:   strings.Index(upper, string(KeywordWhere)),
		orderByIdx: strings.Index(upper, string(KeywordOrderBy)),
		limitIdx:   strings.Index(upper, string(KeywordLimit)),
		distinct:   strings.Contains(upper, string(KeywordDistinct)),
	}

	if spans.selectIdx < 0 {
		return spans, NewMalformedQueryError("query [%s] must have a SELECT [DISTINCT] clause", query)
	}
	if spans.fromIdx < 0 {
		return spans, NewMalformedQueryError("query [%s] must have a FROM clause", query)
	}

	return spans, nil
}

// hintsImportsTrace returns the <HINT>, IMPORT and <TRACE> metadata preceding
// the SELECT clause, trimmed, or "" when the statement has none.
func (s clauseSpans) hintsImportsTrace(query string) string {
	return strings.TrimSpace(query[:s.selectIdx])
}

// projection returns the substring strictly between SELECT [DISTINCT] and
// FROM. The DISTINCT keyword is detected by presence anywhere in the
// statement, matching the derivation's own DISTINCT promotion.
func (s clauseSpans) projection(query string) (string, error) {
	keywordLen := len(KeywordSelect)
	if s.distinct {
		keywordLen += len(singleSpace) + len(KeywordDistinct)
	}

	start := s.selectIdx + keywordLen
	if s.fromIdx <= start {
		return "", NewMalformedQueryError(
			"query [%s] must contain both SELECT and FROM clauses in the correct order", query)
	}

	return strings.TrimSpace(query[start:s.fromIdx]), nil
}

// orderByClause returns the ORDER BY clause up to a trailing LIMIT, or ""
// when the statement has no ORDER BY.
func (s clauseSpans) orderByClause(query string) string {
	if s.orderByIdx < 0 {
		return ""
	}

	end := len(query)
	if s.limitIdx > s.orderByIdx {
		end = s.limitIdx
	}

	return strings.TrimSpace(query[s.orderByIdx:end])
}

// limitClause returns the LIMIT clause with its numeric operand, or "" when
// the statement has no LIMIT keyword or the keyword lacks a numeric operand.
func (s clauseSpans) limitClause(query string) string {
	if s.limitIdx < 0 {
		return ""
	}
	return strings.TrimSpace(limitPattern.FindString(query))
}

// tailAfterRegion returns the remainder of the query statement after the
// 'FROM <regionPath>' clause: any additional iterator definitions plus the
// optional WHERE, ORDER BY and LIMIT clauses. A comma preceding WHERE means
// the FROM clause declares further iterators that must travel with the tail.
func tailAfterRegion(query, regionPath string) (string, error) {
	begin := strings.Index(query, regionPath)
	if begin < 0 {
		return "", NewMalformedQueryError("query [%s] must contain a '%s %s' clause",
			query, KeywordFrom, regionPath)
	}

	tail := query[begin+len(regionPath):]
	upper := strings.ToUpper(tail)

	commaIdx := strings.Index(tail, comma)
	whereIdx := strings.Index(upper, string(KeywordWhere))
	orderByIdx := strings.Index(upper, string(KeywordOrderBy))
	limitIdx := strings.Index(upper, string(KeywordLimit))

	if commaIdx > -1 && commaIdx < whereIdx {
		tail = tail[commaIdx:]
		commaIdx = 0
	}

	start := minNonNegative(commaIdx, whereIdx, orderByIdx, limitIdx, len(tail))

	return strings.TrimSpace(tail[start:]), nil
}

// minNonNegative returns the smallest index that is not -1, clamped to 0.
func minNonNegative(indexes ...int) int {
	resolved := -1

	for _, idx := range indexes {
		if idx > -1 && (resolved == -1 || idx < resolved) {
			resolved = idx
		}
	}

	if resolved < 0 {
		return 0
	}
	return resolved
}
