package oql

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"
)

const (
	// Alias is the internal iterator alias bound to the region entry set in
	// every derived statement.
	Alias = "entry"

	aliasValue    = Alias + ".value"
	aliasValueDot = aliasValue + "."

	keysProjection       = Alias + ".key"
	selectDistinct       = "SELECT DISTINCT"
	whereKeysInClause    = "WHERE " + Alias + ".key IN SET $1"
	inSetParameter       = "IN SET $1"
	defaultOrderByClause = "ORDER BY " + Alias + ".key ASC"
)

// Region is the narrow view of a named data container required to derive
// paged queries: a canonical path for the FROM clause and a name used in
// error messages.
type Region interface {
	Name() string
	FullPath() string
}

// keysResult carries the derived keys query together with the statement
// metadata discovered while deriving it. The whole struct is stored before
// the resolved latch is set, so lock-free readers observing the latch also
// observe the stashed metadata.
type keysResult struct {
	query             string
	hintsImportsTrace string
	orderByClause     string
}

// PagedQuery derives the keys query and values query of a two-phase paged
// query execution from a single OQL query statement.
//
// The keys query is computed once and memoized; deriving it is a hard
// precondition of values query derivation, which reuses the hints and
// ORDER BY metadata discovered during keys query parsing. Distinct
// PagedQuery instances are independent and safe for concurrent use.
type PagedQuery struct {
	*QueryString

	region Region

	mu       sync.Mutex
	resolved atomic.Bool
	keys     keysResult
}

// PagedQueryConfig configures a PagedQuery.
type PagedQueryConfig struct {
	// Query is the original OQL query statement. Required.
	Query string

	// Region is the default target region of the paged query. Optional;
	// derivation methods given an explicit region ignore it.
	Region Region
}

// NewPagedQuery creates a PagedQuery from the given configuration.
func NewPagedQuery(config PagedQueryConfig) (*PagedQuery, error) {
	qs, err := NewQueryString(config.Query)
	if err != nil {
		return nil, err
	}

	return &PagedQuery{QueryString: qs, region: config.Region}, nil
}

// NewPagedQueryString creates a PagedQuery for the given statement without a
// default region.
func NewPagedQueryString(query string) (*PagedQuery, error) {
	return NewPagedQuery(PagedQueryConfig{Query: query})
}

// Region returns the configured default region, which may be nil.
func (pq *PagedQuery) Region() Region {
	return pq.region
}

// KeysQueryResolved reports whether the keys query has been derived.
func (pq *PagedQuery) KeysQueryResolved() bool {
	return pq.resolved.Load()
}

// KeysQuery returns the derived query for keys, computing and memoizing it on
// first use. The region may be nil when a default region was configured.
// Subsequent calls return the cached statement; a failed first computation
// leaves the instance unresolved and may be retried.
func (pq *PagedQuery) KeysQuery(region Region) (string, error) {
	target, err := pq.resolveRegion(region)
	if err != nil {
		return "", err
	}

	pq.mu.Lock()
	defer pq.mu.Unlock()

	if pq.resolved.Load() {
		return pq.keys.query, nil
	}

	result, err := deriveKeysQuery(pq.Query(), target)
	if err != nil {
		return "", err
	}

	pq.keys = result
	pq.resolved.Store(true)

	return result.query, nil
}

// ValuesQuery returns the derived query for values, fetching the projected
// fields of exactly the given keys. The keys query must have been derived
// first; values derivation reuses metadata stashed by that computation and
// fails with an illegal-state error otherwise. Keys are deduplicated with
// nil keys dropped; a key collection whose first key parses as an integer is
// rendered unquoted, otherwise every key is single-quoted.
func (pq *PagedQuery) ValuesQuery(region Region, keys ...interface{}) (string, error) {
	target, err := pq.resolveRegion(region)
	if err != nil {
		return "", err
	}

	if !pq.resolved.Load() {
		return "", NewIllegalStateError(
			"the keys query must be derived before the values query for query [%s]", pq.Query())
	}

	stashed := pq.keys
	query := pq.Query()

	alias, err := resolveAlias(query, target)
	if err != nil {
		return "", err
	}

	spans, err := scanClauses(query)
	if err != nil {
		return "", err
	}

	projection, err := spans.projection(query)
	if err != nil {
		return "", err
	}
	projection = substituteAlias(projection, alias)

	orderBy := substituteAlias(stashed.orderByClause, alias)
	if orderBy == "" {
		orderBy = defaultOrderByClause
	}

	path := regionPath(target)

	template := concatClauses(
		stashed.hintsImportsTrace,
		selectDistinct,
		projection,
		fromRegionEntries(path),
		whereKeysInClause,
		orderBy,
		spans.limitClause(query),
	)

	return bindInKeys(template, resolveKeys(keys)), nil
}

func (pq *PagedQuery) resolveRegion(region Region) (Region, error) {
	if region != nil {
		return region, nil
	}
	if pq.region != nil {
		return pq.region, nil
	}
	return nil, NewIllegalStateError("region was not configured")
}

// deriveKeysQuery computes the keys query and stashes the hints and ORDER BY
// metadata the values query derivation depends on.
func deriveKeysQuery(query string, region Region) (keysResult, error) {
	distinctQuery := asDistinct(query)

	spans, err := scanClauses(distinctQuery)
	if err != nil {
		return keysResult{}, err
	}

	result := keysResult{
		hintsImportsTrace: spans.hintsImportsTrace(distinctQuery),
		orderByClause:     spans.orderByClause(distinctQuery),
	}

	alias, err := resolveAlias(distinctQuery, region)
	if err != nil {
		return keysResult{}, err
	}

	path := regionPath(region)

	tail, err := tailAfterRegion(distinctQuery, path)
	if err != nil {
		return keysResult{}, err
	}
	tail = substituteAlias(tail, alias)

	// Pagination by offset over a non-deterministic order repeats or skips
	// rows across invocations, so a missing ORDER BY gets the entry key.
	imposedOrderBy := ""
	if spans.orderByIdx < 0 {
		imposedOrderBy = defaultOrderByClause
	}

	result.query = concatClauses(
		result.hintsImportsTrace,
		selectDistinct,
		keysProjection,
		fromRegionEntries(path),
		tail,
		imposedOrderBy,
	)

	return result, nil
}

// resolveAlias locates the iterator alias bound to the region in the FROM
// clause. Resolution fails when the alias is missing, collides with a
// reserved keyword, is non-alphabetic, or is never referenced while WHERE or
// ORDER BY clauses exist.
func resolveAlias(query string, region Region) (string, error) {
	path := regionPath(region)

	idx := strings.Index(query, path)
	if idx < 0 {
		return "", NewMalformedQueryError(
			"region [%s] must be present in the FROM clause of the query [%s]", path, query)
	}

	tokens := strings.Split(query[idx:], singleSpace)

	alias := ""
	if len(tokens) > 1 {
		alias = tokens[1]
		if strings.EqualFold(alias, string(KeywordAs)) && len(tokens) > 2 {
			alias = tokens[2]
		}
	}

	if strings.TrimSpace(alias) == "" || IsKeyword(alias) || !isAlphabetic(alias) || !isAliasUsed(query, alias) {
		return "", NewIllegalStateError(
			"query [%s] must contain an alias for region [%s]", query, region.Name())
	}

	return alias, nil
}

func isAlphabetic(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}

	for _, r := range value {
		if !unicode.IsLetter(r) {
			return false
		}
	}

	return true
}

// isAliasUsed reports whether the alias qualifies at least one property path
// when the statement carries WHERE or ORDER BY clauses. Statements without
// either clause have no property references to qualify.
func isAliasUsed(query, alias string) bool {
	upper := strings.ToUpper(query)

	hasWhereOrOrderBy := strings.Contains(upper, string(KeywordWhere)) ||
		strings.Contains(upper, string(KeywordOrderBy))

	return !hasWhereOrOrderBy || strings.Contains(query, alias+".")
}

// substituteAlias rewrites every whole-token '<alias>.' occurrence within the
// fragment to 'entry.value.'. The substitution is textual, not scope aware:
// a matching token inside a string literal is rewritten too.
func substituteAlias(fragment, alias string) string {
	if strings.TrimSpace(fragment) == "" {
		return fragment
	}

	pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(alias) + `\.`)

	return pattern.ReplaceAllString(fragment, aliasValueDot)
}

// regionPath normalizes the region's full path to a canonical leading-slash
// path for use in derived FROM clauses.
func regionPath(region Region) string {
	path := region.FullPath()
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

func fromRegionEntries(path string) string {
	return fmt.Sprintf("%s %s.entrySet %s", KeywordFrom, path, Alias)
}

// concatClauses joins the non-empty clause fragments with single spaces,
// dropping empty fragments silently.
func concatClauses(clauses ...string) string {
	var builder strings.Builder

	for _, clause := range clauses {
		clause = strings.TrimSpace(clause)
		if clause != "" {
			builder.WriteString(clause)
			builder.WriteString(singleSpace)
		}
	}

	return strings.TrimSpace(builder.String())
}

// resolveKeys deduplicates the key collection, dropping nil keys and
// preserving first-seen order. Keys are compared by their rendered string
// form, the same form bindInKeys emits, so non-comparable key values (slices,
// maps) are handled rather than panicking.
func resolveKeys(keys []interface{}) []interface{} {
	seen := make(map[string]struct{}, len(keys))
	resolved := make([]interface{}, 0, len(keys))

	for _, key := range keys {
		if key == nil {
			continue
		}
		rendered := fmt.Sprint(key)
		if _, ok := seen[rendered]; ok {
			continue
		}
		seen[rendered] = struct{}{}
		resolved = append(resolved, key)
	}

	return resolved
}

// bindInKeys renders the key list into the IN SET parameter of the values
// query template. Classification inspects only the first key: a first key
// parseable as an integer renders the whole list unquoted, anything else
// single-quotes every key. Mixed collections follow their first element.
func bindInKeys(template string, keys []interface{}) string {
	quote := singleQuote
	if isNumeric(keys) {
		quote = ""
	}

	rendered := make([]string, len(keys))
	for i, key := range keys {
		rendered[i] = quote + fmt.Sprint(key) + quote
	}

	inList := fmt.Sprintf("IN SET (%s)", strings.Join(rendered, commaSpace))

	return strings.Replace(template, inSetParameter, inList, 1)
}

func isNumeric(keys []interface{}) bool {
	if len(keys) == 0 {
		return false
	}

	_, err := strconv.ParseInt(strings.TrimSpace(fmt.Sprint(keys[0])), 10, 64)

	return err == nil
}
