// internal/review/repository.go
//
// Review queries.
//
/*
Context
--------
Reviews hang off providers and are read-mostly: the marketplace shows a
short tail on provider and offer pages, a filterable paginated feed on
the reviews page, and a recent-first list in the admin panel.  All
queries go through go-sqlbuilder with bound parameters, same as the
catalog store.
*/
package review

import (
	"context"
	"fmt"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
)

// Sort tokens accepted by the public listing.  Anything else falls
// back to newest-first.
const (
	SortNew     = "new"
	SortHelpful = "helpful"
	SortRating  = "rating"
)

var listColumns = []string{
	"r.id", "r.provider_id", "r.user_display_name", "r.user_role",
	"r.rating", "r.title", "r.pros", "r.cons", "r.use_case", "r.text",
	"r.created_at", "r.verified", "r.likes",
	"p.name AS provider_name", "p.slug AS provider_slug",
}

// ListParams filters the public review listing.
type ListParams struct {
	ProviderID string
	Verified   bool
	Sort       string
	Page       int
	Limit      int
}

func orderClause(sort string) string {
	switch sort {
	case SortHelpful:
		return "r.likes DESC"
	case SortRating:
		return "r.rating DESC"
	default:
		return "r.created_at DESC"
	}
}

func listBase(cols ...string) *sqlbuilder.SelectBuilder {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(cols...)
	sb.From("reviews r")
	sb.Join("providers p", "r.provider_id = p.id")
	return sb
}

func applyFilter(sb *sqlbuilder.SelectBuilder, p ListParams) {
	if p.ProviderID != "" {
		sb.Where(sb.Equal("r.provider_id", p.ProviderID))
	}
	if p.Verified {
		sb.Where(sb.Equal("r.verified", 1))
	}
}

// List returns one page of reviews with provider identity joined in,
// plus pagination totals computed from the same predicate.
func List(ctx context.Context, db *sqlx.DB, p ListParams) (*Page, error) {
	cb := listBase("COUNT(*)")
	applyFilter(cb, p)
	cq, cargs := cb.Build()

	var total int
	if err := db.GetContext(ctx, &total, cq, cargs...); err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}

	sb := listBase(listColumns...)
	applyFilter(sb, p)
	sb.OrderBy(orderClause(p.Sort))
	sb.Limit(p.Limit).Offset((p.Page - 1) * p.Limit)

	q, args := sb.Build()
	rows := make([]ListedReview, 0, p.Limit)
	if err := db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return &Page{Reviews: rows, Total: total, Page: p.Page, Pages: pages}, nil
}

// ByProvider returns a provider's newest reviews, capped at limit.
// Used for the short tails on provider and offer pages.
func ByProvider(ctx context.Context, db *sqlx.DB, providerID string, limit int) ([]Review, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id", "provider_id", "user_display_name", "user_role",
		"rating", "title", "pros", "cons", "use_case", "text",
		"created_at", "verified", "likes")
	sb.From("reviews")
	sb.Where(sb.Equal("provider_id", providerID))
	sb.OrderBy("created_at DESC")
	sb.Limit(limit)

	q, args := sb.Build()
	var rows []Review
	if err := db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("reviews by provider: %w", err)
	}
	return rows, nil
}

// Recent returns the newest reviews across all providers for the admin
// panel, capped at limit.
func Recent(ctx context.Context, db *sqlx.DB, limit int) ([]ListedReview, error) {
	sb := listBase(listColumns...)
	sb.OrderBy("r.created_at DESC")
	sb.Limit(limit)

	q, args := sb.Build()
	var rows []ListedReview
	if err := db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("recent reviews: %w", err)
	}
	return rows, nil
}
