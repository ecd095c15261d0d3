// internal/web/admin_test.go

package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serverplace/serverplace/internal/auth"
)

const (
	testAdminEmail    = "admin@serverplace.su"
	testAdminPassword = "correct-horse"
	testJWTSecret     = "test-secret"
)

func newTestAdmin(t *testing.T) (*Admin, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })

	db := sqlx.NewDb(raw, "sqlmock")
	return NewAdmin(db, testAdminEmail, testAdminPassword, testJWTSecret), mock
}

func adminToken(t *testing.T) string {
	t.Helper()
	tok, err := auth.GenerateToken(testJWTSecret, testAdminEmail)
	require.NoError(t, err)
	return tok
}

func TestAdminLogin(t *testing.T) {
	admin, _ := newTestAdmin(t)
	routes := admin.Routes()

	t.Run("success sets cookie", func(t *testing.T) {
		body := `{"email":"admin@serverplace.su","password":"correct-horse"}`
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var res struct {
			Success bool   `json:"success"`
			Token   string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.True(t, res.Success)
		assert.NotEmpty(t, res.Token)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, auth.CookieName, cookies[0].Name)
		assert.Equal(t, res.Token, cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("wrong password", func(t *testing.T) {
		body := `{"email":"admin@serverplace.su","password":"nope"}`
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Неверный email или пароль"}`, rec.Body.String())
	})
}

func TestAdminGuard(t *testing.T) {
	admin, _ := newTestAdmin(t)
	routes := admin.Routes()

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminStats(t *testing.T) {
	admin, mock := newTestAdmin(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM providers`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM offers`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(340))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM reviews`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(77))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM leads$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM leads WHERE status = \?`).
		WithArgs("new").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM leads WHERE DATE\(created_at\) = CURDATE\(\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec := httptest.NewRecorder()
	admin.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"providers": 12, "offers": 340, "reviews": 77,
		"leads_total": 25, "leads_new": 4, "leads_today": 2
	}`, rec.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminLeadStatus(t *testing.T) {
	admin, mock := newTestAdmin(t)
	routes := admin.Routes()
	token := adminToken(t)

	t.Run("invalid status rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/leads/5",
			strings.NewReader(`{"status":"archived"}`))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Статус должен быть")
	})

	t.Run("valid status applied", func(t *testing.T) {
		mock.ExpectExec(`UPDATE leads SET status = \? WHERE id = \?`).
			WithArgs("in_work", int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		req := httptest.NewRequest(http.MethodPatch, "/leads/5",
			strings.NewReader(`{"status":"in_work"}`))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing lead is 404", func(t *testing.T) {
		mock.ExpectExec(`UPDATE leads SET status = \? WHERE id = \?`).
			WithArgs("closed", int64(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		req := httptest.NewRequest(http.MethodPatch, "/leads/99",
			strings.NewReader(`{"status":"closed"}`))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAdminLeadsExportHeaders(t *testing.T) {
	admin, mock := newTestAdmin(t)

	mock.ExpectQuery(`FROM leads l LEFT JOIN providers p`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "phone", "status"}))

	req := httptest.NewRequest(http.MethodGet, "/leads/export", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec := httptest.NewRecorder()
	admin.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=leads.csv", rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\ufeffID,Provider,Offer"))
}
