// Package api exposes query derivation over REST.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/guileen/oqlpager/cache"
	"github.com/guileen/oqlpager/logger"
	"github.com/guileen/oqlpager/oql"
	"github.com/guileen/oqlpager/region"
)

// Handler serves the query derivation API.
type Handler struct {
	queries *cache.DerivedQueries
}

// NewHandler creates a Handler backed by the given derivation cache.
func NewHandler(queries *cache.DerivedQueries) *Handler {
	return &Handler{queries: queries}
}

// NewRouter builds the service router with standard middleware.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts the API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/v1/derive", h.Derive)
	r.Get("/healthz", h.Health)
}

// DeriveRequest asks for the derived query pair of one query statement.
// Keys are optional; without them only the keys query is derived.
type DeriveRequest struct {
	Query  string        `json:"query"`
	Region string        `json:"region"`
	Keys   []interface{} `json:"keys,omitempty"`
}

// DeriveResponse carries the derived statements.
type DeriveResponse struct {
	ID          string `json:"id"`
	KeysQuery   string `json:"keys_query"`
	ValuesQuery string `json:"values_query,omitempty"`
}

// ErrorResponse carries a derivation or request failure.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Derive handles POST /api/v1/derive.
func (h *Handler) Derive(w http.ResponseWriter, r *http.Request) {
	var req DeriveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	if req.Query == "" {
		writeError(w, http.StatusBadRequest, errors.New("query is required"))
		return
	}
	if req.Region == "" {
		writeError(w, http.StatusBadRequest, errors.New("region is required"))
		return
	}

	target := region.FromPath(req.Region)

	pq, err := h.queries.GetOrCreate(target, req.Query)
	if err != nil {
		writeQueryError(w, err)
		return
	}

	keysQuery, err := pq.KeysQuery(target)
	if err != nil {
		writeQueryError(w, err)
		return
	}

	resp := DeriveResponse{
		ID:        uuid.NewString(),
		KeysQuery: keysQuery,
	}

	if len(req.Keys) > 0 {
		valuesQuery, err := pq.ValuesQuery(target, req.Keys...)
		if err != nil {
			writeQueryError(w, err)
			return
		}
		resp.ValuesQuery = valuesQuery
	}

	h.queries.Persist(r.Context(), &cache.DerivedEntry{
		RegionPath: target.FullPath(),
		Query:      req.Query,
		KeysQuery:  keysQuery,
	})

	logger.DebugContext(r.Context(), "derived paged query",
		"id", resp.ID, "region", target.FullPath())

	writeJSON(w, http.StatusOK, resp)
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeQueryError maps derivation errors onto HTTP statuses: malformed
// queries are bad requests, illegal derivation state is a conflict.
func writeQueryError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest

	var qerr *oql.QueryError
	if errors.As(err, &qerr) {
		if errors.Is(qerr, oql.ErrIllegalState) {
			status = http.StatusConflict
		}
		writeJSONError(w, status, ErrorResponse{Error: qerr.Error(), Code: qerr.Code()})
		return
	}

	writeError(w, status, err)
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, err error) {
	writeJSONError(w, statusCode, ErrorResponse{Error: err.Error()})
}

func writeJSONError(w http.ResponseWriter, statusCode int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}
