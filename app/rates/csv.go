package rates

import (
	"log/slog"
	"math"
	"net/url"
	"sort"
	"strings"
)

// CSVExtractor yields candidate offers from tabular rate data. The
// price-bearing column is located heuristically per row, since the rate
// portals name it inconsistently across distributors.
type CSVExtractor struct {
	filter *Filter
}

func NewCSVExtractor(filter *Filter) *CSVExtractor {
	return &CSVExtractor{filter: filter}
}

// Run converts rows to offers for the given utility type. Rows with no
// price-bearing column are dropped; rows failing the filter rules are
// dropped. An empty input yields zero offers, not an error.
func (e *CSVExtractor) Run(rows []Row, utilityType UtilityType) []Offer {
	offers := make([]Offer, 0, len(rows))
	rejected := 0

	for _, row := range rows {
		key := findPriceKey(row)
		if key == "" {
			continue
		}

		price := ParsePrice(row[key])

		keep, reason := e.filter.KeepRow(row, price)
		if !keep {
			slog.Debug("Row rejected", "supplier", row["Supplier"], "reason", reason)
			rejected++
			continue
		}

		offers = append(offers, Offer{
			Provider:   row["Supplier"],
			Type:       utilityType,
			Price:      price,
			TermMonths: termMonths(row["Term Length"]),
			URL:        searchURL(row),
		})
	}

	slog.Debug("CSV extraction complete", "type", string(utilityType), "offers", len(offers), "rejected", rejected)

	return offers
}

// findPriceKey locates the price-bearing column by case-insensitive substring
// match: "price" first, "rate" as fallback. Matching columns are scanned in
// sorted order so the pick is stable across runs, and a column whose value
// actually parses wins over one that does not ("Price" over "Price Structure").
func findPriceKey(row Row) string {
	for _, needle := range []string{"price", "rate"} {
		var matches []string
		for key := range row {
			if strings.Contains(strings.ToLower(key), needle) {
				matches = append(matches, key)
			}
		}
		if len(matches) == 0 {
			continue
		}
		sort.Strings(matches)

		for _, key := range matches {
			if !math.IsInf(ParsePrice(row[key]), 1) {
				return key
			}
		}
		return matches[0]
	}
	return ""
}

// termMonths normalizes the "Term Length" column. Empty defaults to 1, and a
// 0-length term denotes a variable-rate plan priced as effectively 1 month.
func termMonths(raw string) int {
	months := parseIntDefault(strings.TrimSpace(raw), 1)
	if months < 1 {
		return 1
	}
	return months
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return def
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// searchURL builds a Google-search link for the offer, preferring the contact
// phone number over the supplier name since it pinpoints the provider.
func searchURL(row Row) string {
	term := row["Supplier"]
	if phone := row["Contact Phone Number"]; phone != "" {
		term = phone
	}
	return "https://www.google.com/search?q=" + url.QueryEscape(term)
}
