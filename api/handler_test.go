package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guileen/oqlpager/cache"
)

func newTestRouter() http.Handler {
	return NewRouter(NewHandler(cache.New(cache.Config{Capacity: 16})))
}

func postDerive(t *testing.T, router http.Handler, req DeriveRequest) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(req)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/derive", bytes.NewReader(body)))

	return rec
}

func TestDeriveKeysQuery(t *testing.T) {
	rec := postDerive(t, newTestRouter(), DeriveRequest{
		Query:  "SELECT * FROM /Example e",
		Region: "Example",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp DeriveResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t,
		"SELECT DISTINCT entry.key FROM /Example.entrySet entry ORDER BY entry.key ASC",
		resp.KeysQuery)
	assert.Empty(t, resp.ValuesQuery)
}

func TestDeriveWithKeys(t *testing.T) {
	rec := postDerive(t, newTestRouter(), DeriveRequest{
		Query:  "SELECT * FROM /Example e",
		Region: "/Example",
		Keys:   []interface{}{2, 4, 8},
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp DeriveResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.Equal(t,
		"SELECT DISTINCT * FROM /Example.entrySet entry"+
			" WHERE entry.key IN SET (2, 4, 8) ORDER BY entry.key ASC",
		resp.ValuesQuery)
}

func TestDeriveWithNonScalarKeys(t *testing.T) {
	rec := postDerive(t, newTestRouter(), DeriveRequest{
		Query:  "SELECT * FROM /Example e",
		Region: "Example",
		Keys:   []interface{}{[]interface{}{1, 2}},
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp DeriveResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.ValuesQuery, "IN SET ('[1 2]')")
}

func TestDeriveReusesCachedDerivation(t *testing.T) {
	router := newTestRouter()

	req := DeriveRequest{Query: "SELECT * FROM /Example e", Region: "Example"}

	first := postDerive(t, router, req)
	require.Equal(t, http.StatusOK, first.Code)

	req.Keys = []interface{}{1, 2}
	second := postDerive(t, router, req)
	require.Equal(t, http.StatusOK, second.Code)

	var resp DeriveResponse
	require.NoError(t, json.NewDecoder(second.Body).Decode(&resp))
	assert.Contains(t, resp.ValuesQuery, "IN SET (1, 2)")
}

func TestDeriveMalformedQuery(t *testing.T) {
	rec := postDerive(t, newTestRouter(), DeriveRequest{
		Query:  "FROM /Example e",
		Region: "Example",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "malformed_query", resp.Code)
	assert.Contains(t, resp.Error, "SELECT")
}

func TestDeriveUnresolvableAlias(t *testing.T) {
	rec := postDerive(t, newTestRouter(), DeriveRequest{
		Query:  "SELECT * FROM /Example WHERE id = $1",
		Region: "Example",
	})

	require.Equal(t, http.StatusConflict, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "illegal_state", resp.Code)
}

func TestDeriveValidatesRequest(t *testing.T) {
	tests := []struct {
		name string
		req  DeriveRequest
	}{
		{"missing query", DeriveRequest{Region: "Example"}},
		{"missing region", DeriveRequest{Query: "SELECT * FROM /Example e"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postDerive(t, newTestRouter(), tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestDeriveRejectsInvalidBody(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/api/v1/derive", strings.NewReader("{not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
