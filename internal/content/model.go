// internal/content/model.go
//
// Editorial pages: blog articles and FAQ entries.

package content

import (
	"time"

	"github.com/serverplace/serverplace/internal/catalog"
)

// Page types stored in content_pages.type.
const (
	TypeArticle = "article"
	TypeFAQ     = "faq"
)

// Page is one editorial page.  Articles carry tags and reading time;
// FAQ entries use Title as the question and ContentMD as the answer.
type Page struct {
	ID             int64              `db:"id"               json:"id"`
	Type           string             `db:"type"             json:"type"`
	Slug           string             `db:"slug"             json:"slug"`
	Title          string             `db:"title"            json:"title"`
	Excerpt        string             `db:"excerpt"          json:"excerpt,omitempty"`
	ContentMD      string             `db:"content_md"       json:"content_md"`
	Tags           catalog.StringList `db:"tags"             json:"tags"`
	ReadingTimeMin int                `db:"reading_time_min" json:"reading_time_min,omitempty"`
	PublishedAt    time.Time          `db:"published_at"     json:"published_at"`
}

// ArticlePage is one page of the blog listing.
type ArticlePage struct {
	Articles []Page `json:"articles"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	Pages    int    `json:"pages"`
}
