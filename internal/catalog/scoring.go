// internal/catalog/scoring.go
//
// Best-match relevance scoring.
//
/*
Context
--------
When a search arrives without an explicit sort order the fetched page is
re-ranked by a weighted multi-criteria score.  The function is pure:
identical inputs always produce the identical rounded result, and there
is no shared state, so it is safely callable from concurrent searches.

Components (weights sum to 100):

  price    40  – (1 - min(promo/maxPriceInPage, 1)) * 40
  rating   20  – providerRating / 5 * 20, ratings expected in [0,5]
  trial    10  – flat bonus when a free trial is available
  region   10  – match against a requested region, or +5 neutral bonus
                 when no region was requested
  network  10  – bandwidth normalised against a 3000 Mbps ceiling
  cpu      10  – exact cpu_type match, or +5 neutral bonus when no
                 cpu_type was requested

maxPriceInPage is deliberately page-local: the caller computes the
maximum promo price across the current result page before scoring.
Scores are therefore comparable within a page but not across pages,
which is accepted (see the search service).  An empty page falls back
to a 50000 ceiling so the division is always defined.
*/
package catalog

import "math"

const (
	priceWeight  = 40.0
	ratingWeight = 20.0
	trialBonus   = 10.0

	regionMatchBonus   = 10.0
	regionNeutralBonus = 5.0

	networkWeight      = 10.0
	networkCeilingMbps = 3000.0

	cpuMatchBonus   = 10.0
	cpuNeutralBonus = 5.0

	// FallbackMaxPrice guards the price normalisation when a page has
	// no rows to take a maximum over.
	FallbackMaxPrice = 50000.0
)

// Score computes the best-match relevance of one offer, rounded to two
// decimal places.  providerRating is the owning provider's 0–5 rating;
// maxPriceInPage the maximum promo price on the current page (≤0 uses
// the fallback ceiling).
func Score(o *Offer, providerRating float64, p SearchParams, maxPriceInPage float64) float64 {
	if maxPriceInPage <= 0 {
		maxPriceInPage = FallbackMaxPrice
	}

	score := (1 - math.Min(o.PromoPriceMonth/maxPriceInPage, 1)) * priceWeight

	score += providerRating / 5 * ratingWeight

	if o.FreeTrialAvailable {
		score += trialBonus
	}

	if len(p.Regions) > 0 {
		if matchesAnyRegion(o.Regions, p.Regions) {
			score += regionMatchBonus
		}
	} else {
		score += regionNeutralBonus
	}

	score += math.Min(float64(o.BandwidthMbps)/networkCeilingMbps, 1) * networkWeight

	switch {
	case p.CPUType == "":
		score += cpuNeutralBonus
	case o.CPUType == p.CPUType:
		score += cpuMatchBonus
	}

	return math.Round(score*100) / 100
}

// matchesAnyRegion reports whether any requested region id appears in
// the offer's region set.
func matchesAnyRegion(offerRegions StringList, requested []string) bool {
	for _, want := range requested {
		for _, have := range offerRegions {
			if have == want {
				return true
			}
		}
	}
	return false
}
