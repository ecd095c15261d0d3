// internal/catalog/params.go
//
// Typed search parameters.
//
/*
Context
--------
The configurator sends its filters as loose query-string values with
string sentinels: `any` means "no constraint" on enum filters, `true`
or `1` switch boolean filters on, and numbers arrive as text.  All of
that is collapsed here, at the parse boundary, into typed optionals so
the predicate builder and the scorer never see raw sentinels.

Lenient by design:

  • a numeric value that fails to parse is treated as absent,
  • `any` (and absence) clears an enum filter,
  • an unknown enum literal is kept verbatim — the equality predicate
    then simply matches nothing, which beats surfacing a client error
    for a stale frontend value.
*/
package catalog

import (
	"net/url"
	"strconv"
	"strings"
)

// Pagination bounds.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Sort tokens recognised by the resolver.  Anything else falls back to
// best-match ranking.
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
	SortTraffic   = "traffic"
	SortBandwidth = "bandwidth"
	SortTrial     = "trial"
	SortBest      = "best"
)

// SearchParams carries every recognised filter.  A nil pointer or empty
// string/slice means "no constraint on that dimension".
type SearchParams struct {
	VCPU           *int
	RAMGB          *int
	DiskSizeGB     *int
	DiskType       string
	CPUType        string
	CPUBrand       string
	BandwidthMbps  *int
	TrafficLimitTB *float64
	Regions        []string // OR-matched against the offer region set
	Virtualization string
	ServiceType    string
	Trial          bool
	DDoS           bool
	IPv4           bool

	Sort  string
	Page  int
	Limit int
}

// ParseSearchParams builds SearchParams from a request query string.
func ParseSearchParams(q url.Values) SearchParams {
	p := SearchParams{
		VCPU:           intParam(q.Get("vcpu")),
		RAMGB:          intParam(q.Get("ram_gb")),
		DiskSizeGB:     intParam(q.Get("disk_size_gb")),
		DiskType:       enumParam(q.Get("disk_type")),
		CPUType:        enumParam(q.Get("cpu_type")),
		CPUBrand:       enumParam(q.Get("cpu_brand")),
		BandwidthMbps:  intParam(q.Get("bandwidth_mbps")),
		TrafficLimitTB: floatParam(q.Get("traffic_limit_tb")),
		Regions:        splitList(q.Get("region")),
		Virtualization: enumParam(q.Get("virtualization")),
		ServiceType:    enumParam(q.Get("service_type")),
		Trial:          boolParam(q.Get("trial")),
		DDoS:           boolParam(q.Get("ddos")),
		IPv4:           boolParam(q.Get("ipv4")),
		Sort:           q.Get("sort"),
		Page:           1,
		Limit:          DefaultLimit,
	}

	if n := intParam(q.Get("page")); n != nil && *n >= 1 {
		p.Page = *n
	}
	if n := intParam(q.Get("limit")); n != nil {
		p.Limit = clamp(*n, 1, MaxLimit)
	}
	return p
}

// Offset converts page/limit into a store offset.
func (p SearchParams) Offset() int { return (p.Page - 1) * p.Limit }

// OrderBy resolves the sort token into a store ORDER BY clause and
// reports whether the page must be re-ranked by the relevance scorer.
// Best-match scoring needs the page's maximum price, so it cannot be
// pushed into the store query; the store orders by ascending promo
// price and the fetched page is re-ordered in memory.
func (p SearchParams) OrderBy() (clause string, best bool) {
	switch p.Sort {
	case SortPriceAsc:
		return "o.promo_price_month ASC", false
	case SortPriceDesc:
		return "o.promo_price_month DESC", false
	case SortRating:
		return "p.rating DESC", false
	case SortTraffic:
		return "o.traffic_limit_tb DESC", false
	case SortBandwidth:
		return "o.bandwidth_mbps DESC", false
	case SortTrial:
		return "o.free_trial_available DESC, o.free_trial_days DESC", false
	default:
		// Absent, "best", and unrecognised tokens all mean best-match.
		return "o.promo_price_month ASC", true
	}
}

/*──────────────────────────── parse helpers ────────────────────────────────*/

func intParam(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil // malformed → no constraint
	}
	return &n
}

func floatParam(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &f
}

func boolParam(s string) bool {
	return s == "true" || s == "1"
}

func enumParam(s string) string {
	if s == "any" {
		return ""
	}
	return s
}

// splitList turns a comma-joined id list into a slice, dropping blanks.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
