// Package paging orchestrates the two-phase paged query execution flow:
// derive and run the keys query once for a stable key enumeration, then
// derive and run one values query per requested page. Statement evaluation
// against the cache cluster is supplied by the caller through the Executor
// interface.
package paging

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/guileen/oqlpager/logger"
	"github.com/guileen/oqlpager/oql"
)

// Executor runs derived OQL statements against the cache cluster.
type Executor interface {
	// QueryForKeys executes a keys query and returns every matching entry
	// key in statement order.
	QueryForKeys(ctx context.Context, query string) ([]interface{}, error)

	// QueryForValues executes a values query and returns the projected rows.
	QueryForValues(ctx context.Context, query string) ([]interface{}, error)
}

// PageRequest addresses one page of a paged query result. Pages are 1-based.
type PageRequest struct {
	Page int
	Size int
}

// Validate checks the request addresses a well-formed page.
func (pr PageRequest) Validate() error {
	if pr.Page < 1 {
		return fmt.Errorf("page must be >= 1, got %d", pr.Page)
	}
	if pr.Size < 1 {
		return fmt.Errorf("page size must be >= 1, got %d", pr.Size)
	}
	return nil
}

// SliceKeys returns the window of keys belonging to the requested page, or
// nil when the page starts beyond the key set.
func SliceKeys(keys []interface{}, request PageRequest) []interface{} {
	start := (request.Page - 1) * request.Size
	if start >= len(keys) {
		return nil
	}

	end := start + request.Size
	if end > len(keys) {
		end = len(keys)
	}

	return keys[start:end]
}

// Page is one materialized page of a two-phase paged query.
type Page struct {
	Request PageRequest
	Keys    []interface{}
	Values  []interface{}
	// Total is the number of keys across all pages of this run.
	Total int
}

// Runner executes the two-phase flow for one paged query against one region.
// The keys query is derived and memoized by the underlying PagedQuery, so
// fetching successive pages re-runs only the per-page values query
// derivation.
type Runner struct {
	executor Executor
	query    *oql.PagedQuery
	region   oql.Region
	runID    string
}

// NewRunner creates a Runner for the given query and region.
func NewRunner(executor Executor, target oql.Region, query *oql.PagedQuery) *Runner {
	return &Runner{
		executor: executor,
		query:    query,
		region:   target,
		runID:    uuid.NewString(),
	}
}

// RunID returns the correlation ID tagged onto this runner's log records.
func (r *Runner) RunID() string {
	return r.runID
}

// FetchPage runs both phases for one page: keys query, page window
// extraction, then the values query for exactly that window. A page beyond
// the key set returns an empty page without running the values query.
func (r *Runner) FetchPage(ctx context.Context, request PageRequest) (*Page, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	ctx = context.WithValue(ctx, logger.RunIDKey, r.runID)

	keysQuery, err := r.query.KeysQuery(r.region)
	if err != nil {
		return nil, err
	}

	logger.DebugContext(ctx, "running keys query",
		"region", r.region.FullPath(), "query", keysQuery)

	keys, err := r.executor.QueryForKeys(ctx, keysQuery)
	if err != nil {
		return nil, fmt.Errorf("keys query failed: %w", err)
	}

	page := &Page{
		Request: request,
		Keys:    SliceKeys(keys, request),
		Total:   len(keys),
	}

	if len(page.Keys) == 0 {
		return page, nil
	}

	valuesQuery, err := r.query.ValuesQuery(r.region, page.Keys...)
	if err != nil {
		return nil, err
	}

	logger.DebugContext(ctx, "running values query",
		"region", r.region.FullPath(), "query", valuesQuery)

	values, err := r.executor.QueryForValues(ctx, valuesQuery)
	if err != nil {
		return nil, fmt.Errorf("values query failed: %w", err)
	}

	page.Values = values

	return page, nil
}
