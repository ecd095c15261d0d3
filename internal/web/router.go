// internal/web/router.go
//
// Top-level router assembly.

package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/serverplace/serverplace/internal/cache"
	"github.com/serverplace/serverplace/internal/config"
	"github.com/serverplace/serverplace/internal/lead"
	mw "github.com/serverplace/serverplace/internal/middleware"
	"github.com/serverplace/serverplace/internal/notify"
	"github.com/serverplace/serverplace/internal/requestinfo"
)

// Lead intake limiter: 3 submissions per 10 minutes per IP.
const (
	leadRateMax    = 3
	leadRateWindow = 10 * time.Minute
)

// New assembles the full HTTP surface: public API, admin API, and the
// Prometheus scrape endpoint.
func New(db *sqlx.DB, cfg *config.Config, c *cache.TTL, notifier notify.Notifier) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(mw.Security)
	r.Use(requestinfo.Enrich)

	intake := lead.NewIntake(db, notifier)
	limiter := mw.NewRateLimiter(leadRateMax, leadRateWindow)

	api := NewAPI(db, c, intake, limiter)
	admin := NewAdmin(db, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.JWTSecret)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/admin", admin.Routes())
		r.Mount("/", api.Routes())
	})
	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusNotFound, "Не найдено")
	})
	return r
}
