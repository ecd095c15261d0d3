// internal/catalog/model.go
//
// Row structs for the catalog tables.
//
// Context
// -------
// Offers and providers live in MySQL; array-valued attributes (regions,
// pools, disks, cpu_brands, aliases) are persisted as JSON text inside
// TEXT columns and decoded at scan time by the list types in
// jsontext.go.  A corrupt payload decodes to an empty list, never an
// error, so one bad row cannot take down a listing.
//
// JSON tags mirror the public API field names, which in turn mirror the
// column names; the frontend consumes rows as-is.
package catalog

// Offer is one purchasable hosting plan.  Offers are created by catalog
// ingestion, mutated by admin edits or batch migrations, and only ever
// bulk-replaced, never deleted.
type Offer struct {
	ID         string `db:"id"          json:"id"`
	ProviderID string `db:"provider_id" json:"provider_id"`
	Name       string `db:"name"        json:"name"`
	Billing    string `db:"billing"     json:"billing"`
	Currency   string `db:"currency"    json:"currency"`

	MarketPriceMonth float64 `db:"market_price_month" json:"market_price_month"`
	PromoPriceMonth  float64 `db:"promo_price_month"  json:"promo_price_month"`
	PromoLabel       string  `db:"promo_label"        json:"promo_label"`

	VCPU     int    `db:"vcpu"      json:"vcpu"`
	RAMGB    int    `db:"ram_gb"    json:"ram_gb"`
	CPUType  string `db:"cpu_type"  json:"cpu_type"`
	CPUBrand string `db:"cpu_brand" json:"cpu_brand"`
	CPULine  string `db:"cpu_line"  json:"cpu_line"`
	CPUModel string `db:"cpu_model" json:"cpu_model"`

	DiskSystemType   string   `db:"disk_system_type"    json:"disk_system_type"`
	DiskSystemSizeGB int      `db:"disk_system_size_gb" json:"disk_system_size_gb"`
	Disks            DiskList `db:"disks_json"          json:"disks_json"`

	BandwidthMbps  int     `db:"bandwidth_mbps"   json:"bandwidth_mbps"`
	TrafficLimitTB float64 `db:"traffic_limit_tb" json:"traffic_limit_tb"`

	IPv4Included   bool    `db:"ipv4_included"   json:"ipv4_included"`
	IPv6Included   bool    `db:"ipv6_included"   json:"ipv6_included"`
	DDoSProtection bool    `db:"ddos_protection" json:"ddos_protection"`
	SLAPercent     float64 `db:"sla_percent"     json:"sla_percent"`
	Virtualization string  `db:"virtualization"  json:"virtualization"`
	ServiceType    string  `db:"service_type"    json:"service_type"`

	Regions StringList `db:"regions" json:"regions"`
	Pools   StringList `db:"pools"   json:"pools"`

	FreeTrialAvailable  bool   `db:"free_trial_available"  json:"free_trial_available"`
	FreeTrialDays       int    `db:"free_trial_days"       json:"free_trial_days"`
	FreeTrialConditions string `db:"free_trial_conditions" json:"free_trial_conditions"`

	OrderURL  string `db:"order_url"  json:"order_url"`
	DocsURL   string `db:"docs_url"   json:"docs_url"`
	UpdatedAt string `db:"updated_at" json:"updated_at"`
}

// SearchRow is an Offer enriched with the provider columns the search
// join pulls in, plus the best-match score when the search ran in best
// mode.
type SearchRow struct {
	Offer

	ProviderName        string  `db:"provider_name"         json:"provider_name"`
	ProviderSlug        string  `db:"provider_slug"         json:"provider_slug"`
	ProviderRating      float64 `db:"provider_rating"       json:"provider_rating"`
	ProviderRatingCount int     `db:"provider_rating_count" json:"provider_rating_count"`
	LogoHintText        string  `db:"logo_hint_text"        json:"logo_hint_text"`
	LogoHintSeed        string  `db:"logo_hint_seed"        json:"logo_hint_seed"`
	ProviderTrial       bool    `db:"provider_trial"        json:"provider_trial"`
	ProviderTrialDays   int     `db:"provider_trial_days"   json:"provider_trial_days"`

	// Score is filled only by best-match ranking; zero otherwise.
	Score float64 `db:"-" json:"_score,omitempty"`
}

// Provider is a hosting vendor owning offers and reviews.
type Provider struct {
	ID   string `db:"id"   json:"id"`
	Name string `db:"name" json:"name"`
	Slug string `db:"slug" json:"slug"`
	URL  string `db:"url"  json:"url"`

	LogoHintType string `db:"logo_hint_type" json:"logo_hint_type"`
	LogoHintText string `db:"logo_hint_text" json:"logo_hint_text"`
	LogoHintSeed string `db:"logo_hint_seed" json:"logo_hint_seed"`

	Rating      float64 `db:"rating"       json:"rating"`
	RatingCount int     `db:"rating_count" json:"rating_count"`

	HasFreeTrial bool `db:"has_free_trial" json:"has_free_trial"`
	TrialDays    int  `db:"trial_days"     json:"trial_days"`

	Regions   StringList `db:"regions"    json:"regions"`
	CPUBrands StringList `db:"cpu_brands" json:"cpu_brands"`
	Aliases   StringList `db:"aliases"    json:"aliases"`

	SupportEmail string `db:"support_email" json:"support_email"`
	SupportPhone string `db:"support_phone" json:"support_phone"`

	PromoLabel           string  `db:"promo_label"            json:"promo_label"`
	PromoDiscountPercent float64 `db:"promo_discount_percent" json:"promo_discount_percent"`
	PromoUntil           string  `db:"promo_until"            json:"promo_until"`

	AboutShort string `db:"about_short" json:"about_short"`

	// MinPrice is the cheapest offer, filled by listing queries.
	MinPrice *float64 `db:"-" json:"min_price,omitempty"`
}

// Region is pure reference data, looked up by id.  An offer region id
// that does not resolve here is shown as the raw id, not an error.
type Region struct {
	ID      string `db:"id"      json:"id"`
	Name    string `db:"name"    json:"name"`
	Country string `db:"country" json:"country"`
	City    string `db:"city"    json:"city"`
}

// Stats are the admin dashboard counters.
type Stats struct {
	Providers int `db:"-" json:"providers"`
	Offers    int `db:"-" json:"offers"`
	Reviews   int `db:"-" json:"reviews"`
}
