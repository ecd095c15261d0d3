// internal/content/repository.go
//
// Editorial page queries.

package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no page matches the slug.
var ErrNotFound = errors.New("content: not found")

// Blog listing caps.
const (
	DefaultArticleLimit = 12
	MaxArticleLimit     = 50
)

const pageColumns = `id, type, slug, title, excerpt, content_md, tags, reading_time_min, published_at`

// Articles returns one page of blog articles, newest first.
func Articles(ctx context.Context, db *sqlx.DB, page, limit int) (*ArticlePage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultArticleLimit
	}
	if limit > MaxArticleLimit {
		limit = MaxArticleLimit
	}

	var total int
	if err := db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM content_pages WHERE type = ?`, TypeArticle); err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}

	q := `SELECT ` + pageColumns + `
	        FROM content_pages
	       WHERE type = ?
	    ORDER BY published_at DESC
	       LIMIT ? OFFSET ?`
	rows := make([]Page, 0, limit)
	if err := db.SelectContext(ctx, &rows, q, TypeArticle, limit, (page-1)*limit); err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	return &ArticlePage{
		Articles: rows,
		Total:    total,
		Page:     page,
		Pages:    (total + limit - 1) / limit,
	}, nil
}

// ArticleBySlug fetches one published article.
func ArticleBySlug(ctx context.Context, db *sqlx.DB, slug string) (*Page, error) {
	q := `SELECT ` + pageColumns + ` FROM content_pages WHERE slug = ? AND type = ?`
	var p Page
	if err := db.GetContext(ctx, &p, q, slug, TypeArticle); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("article by slug: %w", err)
	}
	return &p, nil
}

// FAQ returns all FAQ entries in insertion order.
func FAQ(ctx context.Context, db *sqlx.DB) ([]Page, error) {
	q := `SELECT ` + pageColumns + ` FROM content_pages WHERE type = ? ORDER BY id`
	var rows []Page
	if err := db.SelectContext(ctx, &rows, q, TypeFAQ); err != nil {
		return nil, fmt.Errorf("faq: %w", err)
	}
	return rows, nil
}
