package rates

import (
	"math"
	"strconv"
	"strings"
)

// Filter rejects rows carrying undesirable offers before they are turned
// into Offers. The fee rules only exist for the CSV path; the rate-result
// websites do not expose fee columns reliably, so HTML offers are only
// price-filtered.
type Filter struct{}

func NewFilter() *Filter {
	return &Filter{}
}

// KeepPrice reports whether a parsed price is acceptable. Non-positive and
// unparseable (non-finite) prices are always rejected.
func (f *Filter) KeepPrice(price float64) bool {
	return !math.IsInf(price, 0) && !math.IsNaN(price) && price > 0
}

// KeepRow applies the CSV rejection rule set to a raw row. Any single
// violated rule rejects the row.
func (f *Filter) KeepRow(row Row, price float64) (bool, string) {
	if !f.KeepPrice(price) {
		return false, "non-positive or unparseable price"
	}

	if fee, ok := row["Monthly Fee"]; ok {
		if fee == "Yes" {
			return false, "monthly fee"
		}
		if n, err := strconv.ParseFloat(strings.TrimSpace(fee), 64); err == nil && n > 0 {
			return false, "monthly fee"
		}
	}

	for _, column := range []string{"Cancellation Fee", "Monthly service fee amount"} {
		if !feeFree(row, column) {
			return false, "disqualifying " + strings.ToLower(column)
		}
	}

	return true, ""
}

// feeFree accepts only "0", empty, absent, or the literal "No".
func feeFree(row Row, column string) bool {
	value, ok := row[column]
	if !ok {
		return true
	}
	switch strings.TrimSpace(value) {
	case "", "0", "No":
		return true
	}
	return false
}
