// internal/review/model.go
//
// Provider review records.

package review

import (
	"time"

	"github.com/serverplace/serverplace/internal/catalog"
)

// Review is one customer review of a provider.  Pros and cons are
// stored as JSON text arrays and decode to empty lists on corrupt data.
type Review struct {
	ID              string             `db:"id"                json:"id"`
	ProviderID      string             `db:"provider_id"       json:"provider_id"`
	UserDisplayName string             `db:"user_display_name" json:"user_display_name"`
	UserRole        string             `db:"user_role"         json:"user_role,omitempty"`
	Rating          int                `db:"rating"            json:"rating"`
	Title           string             `db:"title"             json:"title"`
	Pros            catalog.StringList `db:"pros"              json:"pros"`
	Cons            catalog.StringList `db:"cons"              json:"cons"`
	UseCase         string             `db:"use_case"          json:"use_case,omitempty"`
	Text            string             `db:"text"              json:"text"`
	CreatedAt       time.Time          `db:"created_at"        json:"created_at"`
	Verified        bool               `db:"verified"          json:"verified"`
	Likes           int                `db:"likes"             json:"likes"`
}

// ListedReview joins in the provider identity for listings.
type ListedReview struct {
	Review
	ProviderName string `db:"provider_name" json:"provider_name"`
	ProviderSlug string `db:"provider_slug" json:"provider_slug,omitempty"`
}

// Page is one page of reviews with pagination totals.
type Page struct {
	Reviews []ListedReview `json:"reviews"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	Pages   int            `json:"pages"`
}
