package rates

import (
	"sort"
	"time"
)

// DefaultTopN bounds how many offers get persisted per source per run.
const DefaultTopN = 3

// TopN sorts offers ascending by price and returns the first n. The sort is
// stable, so ties keep their original order.
func TopN(offers []Offer, n int) []Offer {
	if n <= 0 {
		n = DefaultTopN
	}

	sorted := make([]Offer, len(offers))
	copy(sorted, offers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Price < sorted[j].Price
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// FindBest returns the lowest-price, non-expired offer. Ties go to the first
// offer encountered in iteration order. ok is false when the candidate set is
// empty after excluding expired offers.
func FindBest(offers []Offer, now time.Time) (Offer, bool) {
	var best Offer
	found := false

	for _, offer := range offers {
		if offer.Expired(now) {
			continue
		}
		if !found || offer.Price < best.Price {
			best = offer
			found = true
		}
	}

	return best, found
}
