// internal/catalog/params_test.go
//
// Run: go test ./internal/catalog -v

package catalog

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSearchParams(t *testing.T) {
	q := url.Values{}
	q.Set("vcpu", "4")
	q.Set("ram_gb", "8")
	q.Set("disk_type", "nvme")
	q.Set("cpu_type", "any")
	q.Set("traffic_limit_tb", "2.5")
	q.Set("region", "ams, fra")
	q.Set("trial", "1")
	q.Set("ddos", "false")
	q.Set("page", "3")
	q.Set("limit", "250")

	p := ParseSearchParams(q)

	if assert.NotNil(t, p.VCPU) {
		assert.Equal(t, 4, *p.VCPU)
	}
	if assert.NotNil(t, p.RAMGB) {
		assert.Equal(t, 8, *p.RAMGB)
	}
	assert.Nil(t, p.DiskSizeGB, "absent numeric stays unconstrained")
	assert.Equal(t, "nvme", p.DiskType)
	assert.Equal(t, "", p.CPUType, "the any sentinel clears the filter")
	if assert.NotNil(t, p.TrafficLimitTB) {
		assert.Equal(t, 2.5, *p.TrafficLimitTB)
	}
	assert.Equal(t, []string{"ams", "fra"}, p.Regions)
	assert.True(t, p.Trial)
	assert.False(t, p.DDoS, "only true/1 switch boolean filters on")
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, MaxLimit, p.Limit, "limit is clamped to 100")
	assert.Equal(t, 200, p.Offset())
}

func TestParseSearchParamsMalformedNumbers(t *testing.T) {
	q := url.Values{}
	q.Set("vcpu", "lots")
	q.Set("bandwidth_mbps", "1e")
	q.Set("page", "zero")
	q.Set("limit", "-5")

	p := ParseSearchParams(q)

	assert.Nil(t, p.VCPU, "malformed numeric is treated as absent")
	assert.Nil(t, p.BandwidthMbps)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 1, p.Limit)
}

func TestParseSearchParamsDefaults(t *testing.T) {
	p := ParseSearchParams(url.Values{})
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Empty(t, p.Regions)
}

func TestOrderByResolution(t *testing.T) {
	cases := []struct {
		sort   string
		clause string
		best   bool
	}{
		{SortPriceAsc, "o.promo_price_month ASC", false},
		{SortPriceDesc, "o.promo_price_month DESC", false},
		{SortRating, "p.rating DESC", false},
		{SortTraffic, "o.traffic_limit_tb DESC", false},
		{SortBandwidth, "o.bandwidth_mbps DESC", false},
		{SortTrial, "o.free_trial_available DESC, o.free_trial_days DESC", false},
		{"", "o.promo_price_month ASC", true},
		{SortBest, "o.promo_price_month ASC", true},
		{"popularity", "o.promo_price_month ASC", true}, // unrecognised → best
	}

	for _, tc := range cases {
		clause, best := SearchParams{Sort: tc.sort}.OrderBy()
		assert.Equal(t, tc.clause, clause, "sort=%q", tc.sort)
		assert.Equal(t, tc.best, best, "sort=%q", tc.sort)
	}
}
