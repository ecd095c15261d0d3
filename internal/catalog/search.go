// internal/catalog/search.go
//
// Search orchestration: count, page fetch, best-match re-rank, and the
// page aggregates the configurator renders.
package catalog

import (
	"context"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/serverplace/serverplace/internal/metrics"
)

// SearchResult is the search endpoint payload.
//
// ProviderCount counts distinct provider ids within the returned page
// only, not across the full matching set.  The frontend uses it for the
// "N providers on this page" hint; a catalog-wide distinct count would
// need its own aggregate query and has never been required.
type SearchResult struct {
	Offers        []SearchRow `json:"offers"`
	Total         int         `json:"total"`
	ProviderCount int         `json:"provider_count"`
	Page          int         `json:"page"`
	Pages         int         `json:"pages"`
}

// Search runs one filtered catalog query.
//
// In best-match mode the store still orders by ascending promo price;
// the fetched page is then re-ranked in memory by descending score.
// Scoring is normalised against the page's own maximum price, so the
// ranking is page-local: rows near a page boundary may order
// differently than a whole-catalog normalisation would place them.
// That trade keeps the scorer's cost capped at page size and matches
// the behaviour the frontend was built against.
func Search(ctx context.Context, db *sqlx.DB, p SearchParams) (*SearchResult, error) {
	started := time.Now()
	defer func() {
		metrics.SearchTotal.Inc()
		metrics.SearchDuration.Observe(time.Since(started).Seconds())
	}()

	total, err := CountOffers(ctx, db, p)
	if err != nil {
		return nil, err
	}

	rows, err := SearchOffers(ctx, db, p)
	if err != nil {
		return nil, err
	}

	if _, best := p.OrderBy(); best {
		rankBest(rows, p)
		metrics.SearchBestRanked.Inc()
	}

	return &SearchResult{
		Offers:        rows,
		Total:         total,
		ProviderCount: distinctProviders(rows),
		Page:          p.Page,
		Pages:         pageCount(total, p.Limit),
	}, nil
}

// rankBest scores every row against the page's maximum promo price and
// stable-sorts by descending score, so ties keep the store's ascending
// price order.
func rankBest(rows []SearchRow, p SearchParams) {
	maxPrice := FallbackMaxPrice
	if len(rows) > 0 {
		maxPrice = rows[0].PromoPriceMonth
		for _, r := range rows[1:] {
			if r.PromoPriceMonth > maxPrice {
				maxPrice = r.PromoPriceMonth
			}
		}
	}

	for i := range rows {
		rows[i].Score = Score(&rows[i].Offer, rows[i].ProviderRating, p, maxPrice)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Score > rows[j].Score
	})
}

// distinctProviders counts unique provider ids in one page.
func distinctProviders(rows []SearchRow) int {
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		seen[r.ProviderID] = struct{}{}
	}
	return len(seen)
}

// pageCount is ceil(total/limit); zero totals yield zero pages.
func pageCount(total, limit int) int {
	if limit < 1 {
		return 0
	}
	return (total + limit - 1) / limit
}
