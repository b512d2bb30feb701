package rates

import (
	"math"
	"strconv"
	"strings"
)

// ParsePrice turns a raw price token into a numeric value. Every character
// except digits and the decimal point is stripped before parsing, so inputs
// like "$1,234.56" or "$ 12.99 " parse cleanly. Unparseable or empty input
// returns +Inf, a sentinel meaning "exclude, never select as best". The
// function is total: it never returns an error.
func ParsePrice(raw string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, raw)

	if cleaned == "" {
		return math.Inf(1)
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return math.Inf(1)
	}

	return price
}
