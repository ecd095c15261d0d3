// internal/web/admin.go
//
// Admin JSON API.

package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/serverplace/serverplace/internal/auth"
	"github.com/serverplace/serverplace/internal/catalog"
	"github.com/serverplace/serverplace/internal/lead"
	"github.com/serverplace/serverplace/internal/review"
)

// Admin serves the authenticated panel surface.
type Admin struct {
	db        *sqlx.DB
	email     string
	password  string
	jwtSecret string
}

// NewAdmin wires the admin handlers with the configured account.
func NewAdmin(db *sqlx.DB, email, password, jwtSecret string) *Admin {
	return &Admin{db: db, email: email, password: password, jwtSecret: jwtSecret}
}

// Routes mounts login/logout openly and everything else behind the
// token guard.
func (a *Admin) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", a.handleLogin)
	r.Post("/logout", a.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(a.jwtSecret))
		r.Get("/stats", a.handleStats)
		r.Get("/leads", a.handleLeads)
		r.Patch("/leads/{id}", a.handleLeadStatus)
		r.Get("/leads/export", a.handleLeadsExport)
		r.Get("/providers", a.handleProviders)
		r.Put("/providers/{id}", a.handleUpdateProvider)
		r.Get("/offers", a.handleOffers)
		r.Get("/reviews", a.handleReviews)
	})
	return r
}

/*──────────────────────────── session ──────────────────────────────────────*/

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *Admin) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}

	if !auth.CheckCredentials(a.email, a.password, req.Email, req.Password) {
		zap.S().Warnw("admin login rejected", "email", req.Email)
		writeError(w, http.StatusUnauthorized, "Неверный email или пароль")
		return
	}

	token, err := auth.GenerateToken(a.jwtSecret, req.Email)
	if err != nil {
		serverError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.TokenTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": token})
}

func (a *Admin) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

/*──────────────────────────── dashboard ────────────────────────────────────*/

func (a *Admin) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := catalog.CountStats(ctx, a.db)
	if err != nil {
		serverError(w, err)
		return
	}
	total, err := lead.CountAll(ctx, a.db)
	if err != nil {
		serverError(w, err)
		return
	}
	fresh, err := lead.CountByStatus(ctx, a.db, lead.StatusNew)
	if err != nil {
		serverError(w, err)
		return
	}
	today, err := lead.CountToday(ctx, a.db)
	if err != nil {
		serverError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"providers":   stats.Providers,
		"offers":      stats.Offers,
		"reviews":     stats.Reviews,
		"leads_total": total,
		"leads_new":   fresh,
		"leads_today": today,
	})
}

/*──────────────────────────── leads ────────────────────────────────────────*/

func (a *Admin) handleLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := lead.ListParams{
		Status: q.Get("status"),
		Page:   pageQuery(q, "page"),
		Limit:  limitQuery(q, "limit", 30, 100),
	}
	if t, err := time.Parse("2006-01-02", q.Get("date_from")); err == nil {
		p.DateFrom = &t
	}
	if t, err := time.Parse("2006-01-02", q.Get("date_to")); err == nil {
		p.DateTo = &t
	}

	page, err := lead.List(r.Context(), a.db, p)
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type leadStatusRequest struct {
	Status string `json:"status"`
}

func (a *Admin) handleLeadStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный id")
		return
	}

	var req leadStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	if !lead.ValidStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "Статус должен быть: new, sent, in_work, closed")
		return
	}

	err = lead.UpdateStatus(r.Context(), a.db, id, req.Status)
	if errors.Is(err, lead.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Лид не найден")
		return
	}
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (a *Admin) handleLeadsExport(w http.ResponseWriter, r *http.Request) {
	leads, err := lead.All(r.Context(), a.db)
	if err != nil {
		serverError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=leads.csv")
	if err := lead.WriteCSV(w, leads); err != nil {
		zap.S().Errorw("lead export failed", "err", err)
	}
}

/*──────────────────────────── catalog management ───────────────────────────*/

func (a *Admin) handleProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := catalog.AllProviders(r.Context(), a.db)
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, providers)
}

func (a *Admin) handleUpdateProvider(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var p catalog.Provider
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}

	err := catalog.UpdateProvider(r.Context(), a.db, id, &p)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Провайдер не найден")
		return
	}
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (a *Admin) handleOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := catalog.AllOffers(r.Context(), a.db, r.URL.Query().Get("provider_id"), 200)
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, offers)
}

func (a *Admin) handleReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := review.Recent(r.Context(), a.db, 100)
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}
