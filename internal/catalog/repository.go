// internal/catalog/repository.go
//
// Catalog Store queries.
//
/*
Context
--------
All reads go through sqlx against MySQL.  Dynamic WHERE construction
uses huandu/go-sqlbuilder so every filter stays a bound parameter; the
builder output is plain "?" placeholder SQL.

The search filter is strictly conjunctive: each supplied parameter adds
one AND predicate.  The region filter is the only OR inside, matching
any of the requested region ids against the JSON-text `regions` column
with a `%"id"%` LIKE pattern (ids never contain quotes, so the pattern
cannot match across elements).

The count query mirrors the page query's predicate exactly, which is
what keeps `total` stable while page/limit vary.
*/
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a lookup by id or slug matches no row.
var ErrNotFound = errors.New("catalog: not found")

// searchColumns is the joined projection every offer listing returns.
// Kept explicit (not o.*) so scans survive schema additions.
var searchColumns = []string{
	"o.id", "o.provider_id", "o.name", "o.billing", "o.currency",
	"o.market_price_month", "o.promo_price_month", "o.promo_label",
	"o.vcpu", "o.ram_gb", "o.cpu_type", "o.cpu_brand", "o.cpu_line", "o.cpu_model",
	"o.disk_system_type", "o.disk_system_size_gb", "o.disks_json",
	"o.bandwidth_mbps", "o.traffic_limit_tb",
	"o.ipv4_included", "o.ipv6_included", "o.ddos_protection",
	"o.sla_percent", "o.virtualization", "o.service_type",
	"o.regions", "o.pools",
	"o.free_trial_available", "o.free_trial_days", "o.free_trial_conditions",
	"o.order_url", "o.docs_url", "o.updated_at",
	"p.name AS provider_name", "p.slug AS provider_slug",
	"p.rating AS provider_rating", "p.rating_count AS provider_rating_count",
	"p.logo_hint_text", "p.logo_hint_seed",
	"p.has_free_trial AS provider_trial", "p.trial_days AS provider_trial_days",
}

/*──────────────────────────── filter builder ───────────────────────────────*/

// applyOfferFilter adds one AND predicate per supplied parameter.
func applyOfferFilter(sb *sqlbuilder.SelectBuilder, p SearchParams) {
	if p.VCPU != nil {
		sb.Where(sb.GreaterEqualThan("o.vcpu", *p.VCPU))
	}
	if p.RAMGB != nil {
		sb.Where(sb.GreaterEqualThan("o.ram_gb", *p.RAMGB))
	}
	if p.DiskSizeGB != nil {
		sb.Where(sb.GreaterEqualThan("o.disk_system_size_gb", *p.DiskSizeGB))
	}
	if p.DiskType != "" {
		sb.Where(sb.Equal("o.disk_system_type", p.DiskType))
	}
	if p.CPUType != "" {
		sb.Where(sb.Equal("o.cpu_type", p.CPUType))
	}
	if p.CPUBrand != "" {
		sb.Where(sb.Equal("o.cpu_brand", p.CPUBrand))
	}
	if p.BandwidthMbps != nil {
		sb.Where(sb.GreaterEqualThan("o.bandwidth_mbps", *p.BandwidthMbps))
	}
	if p.TrafficLimitTB != nil {
		sb.Where(sb.GreaterEqualThan("o.traffic_limit_tb", *p.TrafficLimitTB))
	}
	if len(p.Regions) > 0 {
		conds := make([]string, 0, len(p.Regions))
		for _, id := range p.Regions {
			conds = append(conds, sb.Like("o.regions", `%"`+id+`"%`))
		}
		sb.Where(sb.Or(conds...))
	}
	if p.Virtualization != "" {
		sb.Where(sb.Equal("o.virtualization", p.Virtualization))
	}
	if p.ServiceType != "" {
		sb.Where(sb.Equal("o.service_type", p.ServiceType))
	}
	if p.Trial {
		sb.Where(sb.Equal("o.free_trial_available", 1))
	}
	if p.DDoS {
		sb.Where(sb.Equal("o.ddos_protection", 1))
	}
	if p.IPv4 {
		sb.Where(sb.Equal("o.ipv4_included", 1))
	}
}

func searchBase(cols ...string) *sqlbuilder.SelectBuilder {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(cols...)
	sb.From("offers o")
	sb.Join("providers p", "o.provider_id = p.id")
	return sb
}

/*──────────────────────────── search queries ───────────────────────────────*/

// CountOffers returns the number of offers matching the filter,
// independent of pagination.
func CountOffers(ctx context.Context, db *sqlx.DB, p SearchParams) (int, error) {
	sb := searchBase("COUNT(*)")
	applyOfferFilter(sb, p)

	q, args := sb.Build()
	var total int
	if err := db.GetContext(ctx, &total, q, args...); err != nil {
		return 0, fmt.Errorf("count offers: %w", err)
	}
	return total, nil
}

// SearchOffers fetches one page of matching offers joined with their
// provider columns, ordered per the resolved sort token.
func SearchOffers(ctx context.Context, db *sqlx.DB, p SearchParams) ([]SearchRow, error) {
	sb := searchBase(searchColumns...)
	applyOfferFilter(sb, p)

	clause, _ := p.OrderBy()
	sb.OrderBy(clause)
	sb.Limit(p.Limit).Offset(p.Offset())

	q, args := sb.Build()
	rows := make([]SearchRow, 0, p.Limit)
	if err := db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("search offers: %w", err)
	}
	return rows, nil
}

// OfferByID fetches one offer with its provider columns joined in.
func OfferByID(ctx context.Context, db *sqlx.DB, id string) (*SearchRow, error) {
	sb := searchBase(searchColumns...)
	sb.Where(sb.Equal("o.id", id))

	q, args := sb.Build()
	var row SearchRow
	if err := db.GetContext(ctx, &row, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("offer by id: %w", err)
	}
	return &row, nil
}

/*──────────────────────────── reference data ───────────────────────────────*/

// Regions returns the full region catalog ordered by name.
func Regions(ctx context.Context, db *sqlx.DB) ([]Region, error) {
	const q = `SELECT id, name, country, city FROM regions ORDER BY name`
	var rows []Region
	if err := db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("regions: %w", err)
	}
	return rows, nil
}

/*──────────────────────────── providers ────────────────────────────────────*/

// providerColumns is the marketplace projection of one provider row.
var providerColumns = []string{
	"id", "name", "slug", "url",
	"logo_hint_type", "logo_hint_text", "logo_hint_seed",
	"rating", "rating_count", "has_free_trial", "trial_days",
	"regions", "cpu_brands", "aliases",
	"support_email", "support_phone",
	"promo_label", "promo_discount_percent", "promo_until",
	"about_short",
}

// TopProviders returns the n best-rated providers.
func TopProviders(ctx context.Context, db *sqlx.DB, n int) ([]Provider, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(providerColumns...)
	sb.From("providers")
	sb.OrderBy("rating DESC")
	sb.Limit(n)

	q, args := sb.Build()
	var rows []Provider
	if err := db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("top providers: %w", err)
	}
	return rows, nil
}

// ProviderBySlug fetches one provider by its URL-safe slug.
func ProviderBySlug(ctx context.Context, db *sqlx.DB, slug string) (*Provider, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(providerColumns...)
	sb.From("providers")
	sb.Where(sb.Equal("slug", slug))
	sb.Limit(1)

	q, args := sb.Build()
	var row Provider
	if err := db.GetContext(ctx, &row, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("provider by slug: %w", err)
	}
	return &row, nil
}

// ProviderByID fetches one provider by id.
func ProviderByID(ctx context.Context, db *sqlx.DB, id string) (*Provider, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(providerColumns...)
	sb.From("providers")
	sb.Where(sb.Equal("id", id))
	sb.Limit(1)

	q, args := sb.Build()
	var row Provider
	if err := db.GetContext(ctx, &row, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("provider by id: %w", err)
	}
	return &row, nil
}

// OffersByProvider lists a provider's offers, cheapest first.
func OffersByProvider(ctx context.Context, db *sqlx.DB, providerID string, limit int) ([]Offer, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(offerOnlyColumns()...)
	sb.From("offers o")
	sb.Where(sb.Equal("o.provider_id", providerID))
	sb.OrderBy("o.promo_price_month ASC")
	sb.Limit(limit)

	q, args := sb.Build()
	var rows []Offer
	if err := db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("offers by provider: %w", err)
	}
	return rows, nil
}

// AllOffers lists offers with provider names for the admin panel,
// cheapest first, optionally narrowed to one provider.
func AllOffers(ctx context.Context, db *sqlx.DB, providerID string, limit int) ([]SearchRow, error) {
	sb := searchBase(searchColumns...)
	if providerID != "" {
		sb.Where(sb.Equal("o.provider_id", providerID))
	}
	sb.OrderBy("o.promo_price_month ASC")
	sb.Limit(limit)

	q, args := sb.Build()
	var rows []SearchRow
	if err := db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("all offers: %w", err)
	}
	return rows, nil
}

// AllProviders lists every provider alphabetically for the admin panel.
func AllProviders(ctx context.Context, db *sqlx.DB) ([]Provider, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(providerColumns...)
	sb.From("providers")
	sb.OrderBy("name")

	q, args := sb.Build()
	var rows []Provider
	if err := db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("all providers: %w", err)
	}
	return rows, nil
}

// MinPriceByProvider returns the cheapest promo price, or nil when the
// provider has no offers.
func MinPriceByProvider(ctx context.Context, db *sqlx.DB, providerID string) (*float64, error) {
	const q = `SELECT MIN(promo_price_month) FROM offers WHERE provider_id = ?`
	var min sql.NullFloat64
	if err := db.GetContext(ctx, &min, q, providerID); err != nil {
		return nil, fmt.Errorf("min price: %w", err)
	}
	if !min.Valid {
		return nil, nil
	}
	return &min.Float64, nil
}

// ProviderListParams filters the public provider listing.
type ProviderListParams struct {
	Query     string
	Region    string
	Trial     bool
	MinRating *float64
	Page      int
	Limit     int
}

// ListProviders returns one page of providers ordered by rating, plus
// the total match count.
func ListProviders(ctx context.Context, db *sqlx.DB, p ProviderListParams) ([]Provider, int, error) {
	build := func(cols ...string) *sqlbuilder.SelectBuilder {
		sb := sqlbuilder.NewSelectBuilder()
		sb.Select(cols...)
		sb.From("providers")
		if p.Query != "" {
			pat := "%" + p.Query + "%"
			sb.Where(sb.Or(sb.Like("name", pat), sb.Like("slug", pat)))
		}
		if p.Region != "" {
			sb.Where(sb.Like("regions", `%"`+p.Region+`"%`))
		}
		if p.Trial {
			sb.Where(sb.Equal("has_free_trial", 1))
		}
		if p.MinRating != nil {
			sb.Where(sb.GreaterEqualThan("rating", *p.MinRating))
		}
		return sb
	}

	cq, cargs := build("COUNT(*)").Build()
	var total int
	if err := db.GetContext(ctx, &total, cq, cargs...); err != nil {
		return nil, 0, fmt.Errorf("count providers: %w", err)
	}

	sb := build(providerColumns...)
	sb.OrderBy("rating DESC")
	sb.Limit(p.Limit).Offset((p.Page - 1) * p.Limit)

	q, args := sb.Build()
	var rows []Provider
	if err := db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, 0, fmt.Errorf("list providers: %w", err)
	}

	for i := range rows {
		min, err := MinPriceByProvider(ctx, db, rows[i].ID)
		if err != nil {
			return nil, 0, err
		}
		rows[i].MinPrice = min
	}
	return rows, total, nil
}

// UpdateProvider applies the admin-editable subset of provider fields.
func UpdateProvider(ctx context.Context, db *sqlx.DB, id string, pr *Provider) error {
	const q = `
	    UPDATE providers
	       SET name = ?, url = ?, rating = ?, has_free_trial = ?, trial_days = ?,
	           about_short = ?, promo_label = ?, promo_discount_percent = ?, promo_until = ?,
	           updated_at = NOW()
	     WHERE id = ?`
	res, err := db.ExecContext(ctx, q,
		pr.Name, pr.URL, pr.Rating, pr.HasFreeTrial, pr.TrialDays,
		pr.AboutShort, pr.PromoLabel, pr.PromoDiscountPercent, pr.PromoUntil,
		id)
	if err != nil {
		return fmt.Errorf("update provider: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

/*──────────────────────────── admin stats ──────────────────────────────────*/

// CountStats fills the admin dashboard counters.
func CountStats(ctx context.Context, db *sqlx.DB) (Stats, error) {
	var s Stats
	if err := db.GetContext(ctx, &s.Providers, `SELECT COUNT(*) FROM providers`); err != nil {
		return s, fmt.Errorf("stats providers: %w", err)
	}
	if err := db.GetContext(ctx, &s.Offers, `SELECT COUNT(*) FROM offers`); err != nil {
		return s, fmt.Errorf("stats offers: %w", err)
	}
	if err := db.GetContext(ctx, &s.Reviews, `SELECT COUNT(*) FROM reviews`); err != nil {
		return s, fmt.Errorf("stats reviews: %w", err)
	}
	return s, nil
}

/*──────────────────────────── helpers ──────────────────────────────────────*/

// offerOnlyColumns strips the provider join columns from searchColumns.
func offerOnlyColumns() []string {
	out := make([]string, 0, len(searchColumns))
	for _, c := range searchColumns {
		if len(c) > 2 && c[:2] == "o." {
			out = append(out, c)
		}
	}
	return out
}
