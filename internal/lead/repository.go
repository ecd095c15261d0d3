// internal/lead/repository.go
//
// Lead queries.

package lead

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a status update matches no lead.
var ErrNotFound = errors.New("lead: not found")

var listColumns = []string{
	"l.id", "l.token", "l.provider_id", "l.offer_id", "l.config_snapshot",
	"l.email", "l.phone", "l.utm", "l.page_url", "l.referrer",
	"l.user_agent", "l.ua_browser", "l.ua_os", "l.ua_device", "l.ua_bot",
	"l.ip_address", "l.country_iso", "l.city",
	"l.status", "l.created_at",
	"p.name AS provider_name", "o.name AS offer_name",
}

// Insert stores a new lead and fills in its generated id.
func Insert(ctx context.Context, db *sqlx.DB, l *Lead) error {
	const q = `
	    INSERT INTO leads (token, provider_id, offer_id, config_snapshot,
	                       email, phone, utm, page_url, referrer,
	                       user_agent, ua_browser, ua_os, ua_device, ua_bot,
	                       ip_address, country_iso, city, status)
	    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := db.ExecContext(ctx, q,
		l.Token, l.ProviderID, l.OfferID, l.ConfigSnapshot,
		l.Email, l.Phone, l.UTM, l.PageURL, l.Referrer,
		l.UserAgent, l.UABrowser, l.UAOS, l.UADevice, l.UABot,
		l.IPAddress, l.CountryISO, l.City, l.Status)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	l.ID, _ = res.LastInsertId()
	return nil
}

// ListParams filters the admin lead listing.
type ListParams struct {
	Status   string
	DateFrom *time.Time
	DateTo   *time.Time // inclusive day; extended to end of day
	Page     int
	Limit    int
}

func listBase(cols ...string) *sqlbuilder.SelectBuilder {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(cols...)
	sb.From("leads l")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "providers p", "l.provider_id = p.id")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "offers o", "l.offer_id = o.id")
	return sb
}

func applyFilter(sb *sqlbuilder.SelectBuilder, p ListParams) {
	if p.Status != "" {
		sb.Where(sb.Equal("l.status", p.Status))
	}
	if p.DateFrom != nil {
		sb.Where(sb.GreaterEqualThan("l.created_at", *p.DateFrom))
	}
	if p.DateTo != nil {
		end := p.DateTo.Add(24*time.Hour - time.Second)
		sb.Where(sb.LessEqualThan("l.created_at", end))
	}
}

// List returns one page of leads, newest first, with provider and
// offer names joined in where set.
func List(ctx context.Context, db *sqlx.DB, p ListParams) (*Page, error) {
	cb := listBase("COUNT(*)")
	applyFilter(cb, p)
	cq, cargs := cb.Build()

	var total int
	if err := db.GetContext(ctx, &total, cq, cargs...); err != nil {
		return nil, fmt.Errorf("count leads: %w", err)
	}

	sb := listBase(listColumns...)
	applyFilter(sb, p)
	sb.OrderBy("l.created_at DESC")
	sb.Limit(p.Limit).Offset((p.Page - 1) * p.Limit)

	q, args := sb.Build()
	rows := make([]ListedLead, 0, p.Limit)
	if err := db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}

	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return &Page{Leads: rows, Total: total, Page: p.Page, Pages: pages}, nil
}

// UpdateStatus moves a lead to a new workflow status.
func UpdateStatus(ctx context.Context, db *sqlx.DB, id int64, status string) error {
	if !ValidStatus(status) {
		return fmt.Errorf("lead: invalid status %q", status)
	}
	res, err := db.ExecContext(ctx, `UPDATE leads SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// All returns every lead newest first, for CSV export.
func All(ctx context.Context, db *sqlx.DB) ([]ListedLead, error) {
	sb := listBase(listColumns...)
	sb.OrderBy("l.created_at DESC")

	q, args := sb.Build()
	var rows []ListedLead
	if err := db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("export leads: %w", err)
	}
	return rows, nil
}

// CountByStatus returns the number of leads in one status.
func CountByStatus(ctx context.Context, db *sqlx.DB, status string) (int, error) {
	var n int
	if err := db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM leads WHERE status = ?`, status); err != nil {
		return 0, fmt.Errorf("count leads by status: %w", err)
	}
	return n, nil
}

// CountToday returns the number of leads created today.
func CountToday(ctx context.Context, db *sqlx.DB) (int, error) {
	var n int
	if err := db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM leads WHERE DATE(created_at) = CURDATE()`); err != nil {
		return 0, fmt.Errorf("count leads today: %w", err)
	}
	return n, nil
}

// CountAll returns the total number of leads.
func CountAll(ctx context.Context, db *sqlx.DB) (int, error) {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM leads`); err != nil {
		return 0, fmt.Errorf("count leads: %w", err)
	}
	return n, nil
}
