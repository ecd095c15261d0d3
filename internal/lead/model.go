// internal/lead/model.go
//
// Customer lead records.

package lead

import "time"

// Lead statuses.  Leads are never deleted; they move through this
// workflow instead.
const (
	StatusNew    = "new"
	StatusSent   = "sent"
	StatusInWork = "in_work"
	StatusClosed = "closed"
)

// ValidStatus reports whether s is a known workflow status.
func ValidStatus(s string) bool {
	switch s {
	case StatusNew, StatusSent, StatusInWork, StatusClosed:
		return true
	}
	return false
}

// Lead is one submitted request.  ConfigSnapshot and UTM hold the raw
// JSON text captured at submit time.
type Lead struct {
	ID             int64     `db:"id"              json:"id"`
	Token          string    `db:"token"           json:"token"`
	ProviderID     *string   `db:"provider_id"     json:"provider_id,omitempty"`
	OfferID        *string   `db:"offer_id"        json:"offer_id,omitempty"`
	ConfigSnapshot string    `db:"config_snapshot" json:"config_snapshot"`
	Email          string    `db:"email"           json:"email"`
	Phone          string    `db:"phone"           json:"phone"`
	UTM            string    `db:"utm"             json:"utm"`
	PageURL        string    `db:"page_url"        json:"page_url"`
	Referrer       string    `db:"referrer"        json:"referrer"`
	UserAgent      string    `db:"user_agent"      json:"user_agent"`
	UABrowser      string    `db:"ua_browser"      json:"ua_browser,omitempty"`
	UAOS           string    `db:"ua_os"           json:"ua_os,omitempty"`
	UADevice       string    `db:"ua_device"       json:"ua_device,omitempty"`
	UABot          bool      `db:"ua_bot"          json:"ua_bot,omitempty"`
	IPAddress      string    `db:"ip_address"      json:"ip_address"`
	CountryISO     string    `db:"country_iso"     json:"country_iso,omitempty"`
	City           string    `db:"city"            json:"city,omitempty"`
	Status         string    `db:"status"          json:"status"`
	CreatedAt      time.Time `db:"created_at"      json:"created_at"`
}

// ListedLead joins in provider and offer names for the admin panel.
type ListedLead struct {
	Lead
	ProviderName *string `db:"provider_name" json:"provider_name,omitempty"`
	OfferName    *string `db:"offer_name"    json:"offer_name,omitempty"`
}

// Page is one page of the admin lead listing.
type Page struct {
	Leads []ListedLead `json:"leads"`
	Total int          `json:"total"`
	Page  int          `json:"page"`
	Pages int          `json:"pages"`
}
