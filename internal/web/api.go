// internal/web/api.go
//
// Public JSON API.
//
/*
Context
--------
Everything the marketplace front-end talks to lives under /api.  The
search endpoint is the configurator's workhorse; the rest are catalog
reads plus the rate-limited lead intake.  Low-cardinality reads
(regions, FAQ, homepage stats) come out of the in-process TTL cache.
*/
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/serverplace/serverplace/internal/cache"
	"github.com/serverplace/serverplace/internal/catalog"
	"github.com/serverplace/serverplace/internal/content"
	"github.com/serverplace/serverplace/internal/lead"
	mw "github.com/serverplace/serverplace/internal/middleware"
	"github.com/serverplace/serverplace/internal/requestinfo"
	"github.com/serverplace/serverplace/internal/review"
)

// Cache TTLs for the low-cardinality reads.
const (
	regionsTTL = 5 * time.Minute
	faqTTL     = 5 * time.Minute
	statsTTL   = time.Minute
)

// API serves the public surface.
type API struct {
	db      *sqlx.DB
	cache   *cache.TTL
	intake  *lead.Intake
	limiter *mw.RateLimiter
}

// NewAPI wires the public API handlers.
func NewAPI(db *sqlx.DB, c *cache.TTL, intake *lead.Intake, limiter *mw.RateLimiter) *API {
	return &API{db: db, cache: c, intake: intake, limiter: limiter}
}

// Routes mounts the public API under one subrouter.
func (a *API) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/offers/search", a.handleSearch)
	r.Get("/offers/{id}", a.handleOffer)
	r.Get("/regions", a.handleRegions)
	r.Get("/providers", a.handleProviders)
	r.Get("/providers/{slug}", a.handleProvider)
	r.Get("/reviews", a.handleReviews)
	r.Get("/blog", a.handleBlog)
	r.Get("/blog/{slug}", a.handleArticle)
	r.Get("/faq", a.handleFAQ)
	r.Get("/stats", a.handleStats)
	r.With(a.limiter.Handler).Post("/leads", a.handleCreateLead)
	return r
}

/*──────────────────────────── search ───────────────────────────────────────*/

func (a *API) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := catalog.ParseSearchParams(r.URL.Query())
	res, err := catalog.Search(r.Context(), a.db, params)
	if err != nil {
		serverError(w, err)
		return
	}
	respondETag(w, r, res)
}

func (a *API) handleOffer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	offer, err := catalog.OfferByID(r.Context(), a.db, id)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Оффер не найден")
		return
	}
	if err != nil {
		serverError(w, err)
		return
	}

	reviews, err := review.ByProvider(r.Context(), a.db, offer.ProviderID, 5)
	if err != nil {
		serverError(w, err)
		return
	}

	respondETag(w, r, map[string]any{"offer": offer, "reviews": reviews})
}

/*──────────────────────────── catalog reads ────────────────────────────────*/

func (a *API) handleRegions(w http.ResponseWriter, r *http.Request) {
	v, err := a.cache.GetOrLoad("regions", regionsTTL, func() (any, error) {
		return catalog.Regions(r.Context(), a.db)
	})
	if err != nil {
		serverError(w, err)
		return
	}
	respondETag(w, r, v)
}

func (a *API) handleProviders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := catalog.ProviderListParams{
		Query:  q.Get("query"),
		Region: q.Get("region"),
		Trial:  boolQuery(q, "trial"),
		Page:   pageQuery(q, "page"),
		Limit:  limitQuery(q, "limit", 50, 100),
	}
	if f, err := strconv.ParseFloat(q.Get("min_rating"), 64); err == nil {
		p.MinRating = &f
	}

	providers, total, err := catalog.ListProviders(r.Context(), a.db, p)
	if err != nil {
		serverError(w, err)
		return
	}

	pages := (total + p.Limit - 1) / p.Limit
	respondETag(w, r, map[string]any{
		"providers": providers,
		"total":     total,
		"page":      p.Page,
		"pages":     pages,
	})
}

func (a *API) handleProvider(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	provider, err := catalog.ProviderBySlug(r.Context(), a.db, slug)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Провайдер не найден")
		return
	}
	if err != nil {
		serverError(w, err)
		return
	}

	offers, err := catalog.OffersByProvider(r.Context(), a.db, provider.ID, 20)
	if err != nil {
		serverError(w, err)
		return
	}
	reviews, err := review.ByProvider(r.Context(), a.db, provider.ID, 10)
	if err != nil {
		serverError(w, err)
		return
	}

	respondETag(w, r, map[string]any{
		"provider": provider,
		"offers":   offers,
		"reviews":  reviews,
	})
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	v, err := a.cache.GetOrLoad("stats", statsTTL, func() (any, error) {
		stats, err := catalog.CountStats(r.Context(), a.db)
		if err != nil {
			return nil, err
		}
		top, err := catalog.TopProviders(r.Context(), a.db, 8)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"providers":     stats.Providers,
			"offers":        stats.Offers,
			"reviews":       stats.Reviews,
			"top_providers": top,
		}, nil
	})
	if err != nil {
		serverError(w, err)
		return
	}
	respondETag(w, r, v)
}

/*──────────────────────────── reviews & content ────────────────────────────*/

func (a *API) handleReviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := review.ListParams{
		ProviderID: q.Get("provider_id"),
		Verified:   boolQuery(q, "verified"),
		Sort:       q.Get("sort"),
		Page:       pageQuery(q, "page"),
		Limit:      limitQuery(q, "limit", 20, 100),
	}

	page, err := review.List(r.Context(), a.db, p)
	if err != nil {
		serverError(w, err)
		return
	}
	respondETag(w, r, page)
}

func (a *API) handleBlog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	res, err := content.Articles(r.Context(), a.db, page, limit)
	if err != nil {
		serverError(w, err)
		return
	}
	respondETag(w, r, res)
}

func (a *API) handleArticle(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	article, err := content.ArticleBySlug(r.Context(), a.db, slug)
	if errors.Is(err, content.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Статья не найдена")
		return
	}
	if err != nil {
		serverError(w, err)
		return
	}
	respondETag(w, r, article)
}

func (a *API) handleFAQ(w http.ResponseWriter, r *http.Request) {
	v, err := a.cache.GetOrLoad("faq", faqTTL, func() (any, error) {
		return content.FAQ(r.Context(), a.db)
	})
	if err != nil {
		serverError(w, err)
		return
	}
	respondETag(w, r, v)
}

/*──────────────────────────── lead intake ──────────────────────────────────*/

func (a *API) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var req lead.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	if req.Referrer == "" {
		req.Referrer = r.Referer()
	}

	res, err := a.intake.Submit(r.Context(), &req, requestinfo.FromContext(r.Context()))
	var verr *lead.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, verr.Msg)
		return
	}
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

/*──────────────────────────── query helpers ────────────────────────────────*/

func serverError(w http.ResponseWriter, err error) {
	zap.S().Errorw("request failed", "err", err)
	writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
}

func boolQuery(q url.Values, key string) bool {
	v := q.Get(key)
	return v == "true" || v == "1"
}

func pageQuery(q url.Values, key string) int {
	n, err := strconv.Atoi(q.Get(key))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func limitQuery(q url.Values, key string, def, max int) int {
	n, err := strconv.Atoi(q.Get(key))
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
