package oql

import "strings"

// Keyword is a reserved word of the OQL grammar.
type Keyword string

const (
	KeywordAnd         Keyword = "AND"
	KeywordAs          Keyword = "AS"
	KeywordAsc         Keyword = "ASC"
	KeywordCount       Keyword = "COUNT"
	KeywordDesc        Keyword = "DESC"
	KeywordDistinct    Keyword = "DISTINCT"
	KeywordElement     Keyword = "ELEMENT"
	KeywordFrom        Keyword = "FROM"
	KeywordHint        Keyword = "HINT"
	KeywordImport      Keyword = "IMPORT"
	KeywordIn          Keyword = "IN"
	KeywordIsDefined   Keyword = "IS_DEFINED"
	KeywordIsUndefined Keyword = "IS_UNDEFINED"
	KeywordLike        Keyword = "LIKE"
	KeywordLimit       Keyword = "LIMIT"
	KeywordNot         Keyword = "NOT"
	KeywordNvl         Keyword = "NVL"
	KeywordOr          Keyword = "OR"
	KeywordOrderBy     Keyword = "ORDER BY"
	KeywordSelect      Keyword = "SELECT"
	KeywordSet         Keyword = "SET"
	KeywordTrace       Keyword = "TRACE"
	KeywordType        Keyword = "TYPE"
	KeywordWhere       Keyword = "WHERE"
)

// String returns the keyword as it appears in a query statement.
func (k Keyword) String() string {
	return string(k)
}

var keywords = map[string]Keyword{
	"AND":          KeywordAnd,
	"AS":           KeywordAs,
	"ASC":          KeywordAsc,
	"COUNT":        KeywordCount,
	"DESC":         KeywordDesc,
	"DISTINCT":     KeywordDistinct,
	"ELEMENT":      KeywordElement,
	"FROM":         KeywordFrom,
	"HINT":         KeywordHint,
	"IMPORT":       KeywordImport,
	"IN":           KeywordIn,
	"IS_DEFINED":   KeywordIsDefined,
	"IS_UNDEFINED": KeywordIsUndefined,
	"LIKE":         KeywordLike,
	"LIMIT":        KeywordLimit,
	"NOT":          KeywordNot,
	"NVL":          KeywordNvl,
	"OR":           KeywordOr,
	"ORDER BY":     KeywordOrderBy,
	"SELECT":       KeywordSelect,
	"SET":          KeywordSet,
	"TRACE":        KeywordTrace,
	"TYPE":         KeywordType,
	"WHERE":        KeywordWhere,
}

// IsKeyword reports whether the token matches a reserved OQL keyword,
// ignoring case and surrounding whitespace.
func IsKeyword(token string) bool {
	_, ok := keywords[strings.ToUpper(strings.TrimSpace(token))]
	return ok
}
