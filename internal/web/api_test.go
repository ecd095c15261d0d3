// internal/web/api_test.go
//
// Handler tests over httptest + sqlmock.
//
// Run: go test ./internal/web -v

package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serverplace/serverplace/internal/cache"
	"github.com/serverplace/serverplace/internal/lead"
	mw "github.com/serverplace/serverplace/internal/middleware"
)

func newTestAPI(t *testing.T) (*API, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })

	db := sqlx.NewDb(raw, "sqlmock")
	c := cache.New()
	t.Cleanup(c.Close)

	intake := lead.NewIntake(db, nil)
	limiter := mw.NewRateLimiter(3, 10*time.Minute)
	return NewAPI(db, c, intake, limiter), mock
}

func TestSearchEndpointShape(t *testing.T) {
	api, mock := newTestAPI(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM offers o`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT o\.id,`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "provider_id", "name", "promo_price_month",
			"regions", "pools", "disks_json",
			"provider_name", "provider_rating",
		}).AddRow("o1", "pv1", "VPS S", 290.0, `["msk"]`, "[]", "[]", "CloudRu", 4.6))

	req := httptest.NewRequest(http.MethodGet, "/offers/search?vcpu=2&sort=best", nil)
	rec := httptest.NewRecorder()
	api.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("ETag"))
	assert.Equal(t, "public, max-age=30, stale-while-revalidate=60",
		rec.Header().Get("Cache-Control"))

	var body struct {
		Offers        []map[string]any `json:"offers"`
		Total         int              `json:"total"`
		ProviderCount int              `json:"provider_count"`
		Page          int              `json:"page"`
		Pages         int              `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
	assert.Equal(t, 1, body.ProviderCount)
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, 1, body.Pages)
	require.Len(t, body.Offers, 1)
	// Best mode attaches the relevance score.
	assert.Contains(t, body.Offers[0], "_score")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestETagNotModified(t *testing.T) {
	api, mock := newTestAPI(t)

	mock.ExpectQuery(`FROM regions ORDER BY name`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "country", "city"}).
			AddRow("msk", "Москва", "RU", "Москва"))

	first := httptest.NewRecorder()
	api.Routes().ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/regions", nil))
	require.Equal(t, http.StatusOK, first.Code)
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	// Second request revalidates; the cached value also means no new
	// database query.
	req := httptest.NewRequest(http.MethodGet, "/regions", nil)
	req.Header.Set("If-None-Match", etag)
	second := httptest.NewRecorder()
	api.Routes().ServeHTTP(second, req)

	assert.Equal(t, http.StatusNotModified, second.Code)
	assert.Empty(t, second.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOfferNotFound(t *testing.T) {
	api, mock := newTestAPI(t)

	mock.ExpectQuery(`SELECT o\.id,`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec := httptest.NewRecorder()
	api.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/offers/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Оффер не найден"}`, rec.Body.String())
}

func TestCreateLeadHoneypot(t *testing.T) {
	api, mock := newTestAPI(t)

	body := `{"email":"bot@spam.ru","phone":"+70000000000","honeypot":"filled"}`
	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	api.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var res lead.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Zero(t, res.LeadID)

	// Nothing reached the database.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateLeadValidation(t *testing.T) {
	api, _ := newTestAPI(t)

	body := `{"email":"not-an-email","phone":"+79000000000"}`
	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(body))
	rec := httptest.NewRecorder()
	api.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Некорректный email"}`, rec.Body.String())
}

func TestCreateLeadRateLimited(t *testing.T) {
	api, mock := newTestAPI(t)

	for i := 0; i < 3; i++ {
		mock.ExpectExec(`INSERT INTO leads`).
			WillReturnResult(sqlmock.NewResult(int64(i+1), 1))
	}

	body := `{"email":"ivan@example.com","phone":"+79000000000"}`
	routes := api.Routes()
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(body))
		req.RemoteAddr = "203.0.113.9:1234"
		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(body))
	req.RemoteAddr = "203.0.113.9:1234"
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Слишком много запросов")
}

func TestBlogArticleNotFound(t *testing.T) {
	api, mock := newTestAPI(t)

	mock.ExpectQuery(`WHERE slug = \? AND type = \?`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec := httptest.NewRecorder()
	api.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blog/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Статья не найдена"}`, rec.Body.String())
}
