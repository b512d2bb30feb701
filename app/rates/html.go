package rates

import (
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	priceRe = regexp.MustCompile(`\$\d+\.\d+`)
	termRe  = regexp.MustCompile(`(?i)(\d+)\s+months?|month\s+to\s+month`)
)

// pecoURL is a literal special case: the PECO distributor card carries no
// usable link, so its offers point at the provider's home page.
const pecoURL = "https://www.peco.com/"

// HTMLExtractor locates rate cards in a rendered results page and extracts
// one offer per card. Two independent card-selection strategies are merged:
// the generic supplier-card marker, capped at a configurable number of
// candidates, and the distributor-card marker used by PECO whose markup lacks
// the generic class and is always fully scanned.
type HTMLExtractor struct {
	rules  ExtractionRules
	filter *Filter
}

func NewHTMLExtractor(rules ExtractionRules, filter *Filter) *HTMLExtractor {
	return &HTMLExtractor{rules: rules, filter: filter}
}

// Run extracts offers from the document, deduplicating on (provider, price)
// within the pass. Candidates with no confirmed card boundary, an "Unknown"
// provider, or an unacceptable price are discarded.
func (e *HTMLExtractor) Run(doc *goquery.Document, utilityType UtilityType) []Offer {
	var offers []Offer
	seen := make(map[string]bool)

	doc.Find(e.rules.SupplierCardSelector).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if len(offers) >= e.rules.SupplierCardLimit {
			return false
		}
		e.extractCard(sel, utilityType, seen, &offers)
		return true
	})

	doc.Find(e.rules.DistributorCardSelector).Each(func(i int, sel *goquery.Selection) {
		e.extractCard(sel, utilityType, seen, &offers)
	})

	slog.Debug("HTML extraction complete", "type", string(utilityType), "offers", len(offers))

	return offers
}

func (e *HTMLExtractor) extractCard(sel *goquery.Selection, utilityType UtilityType, seen map[string]bool, offers *[]Offer) {
	card := e.findCard(sel)
	if card == nil {
		// no ancestor mentions the card phrase, not a valid rate card
		return
	}

	provider := strings.TrimSpace(card.Find(e.rules.NameSelector).First().Text())
	if provider == "" {
		provider = "Unknown"
	}

	text := card.Text()

	price := ""
	if m := priceRe.FindString(text); m != "" {
		price = strings.TrimPrefix(m, "$")
	}

	key := provider + "|" + price
	if provider == "Unknown" || seen[key] {
		return
	}

	parsed := ParsePrice(price)
	if !e.filter.KeepPrice(parsed) {
		return
	}

	seen[key] = true
	*offers = append(*offers, Offer{
		Provider:   provider,
		Type:       utilityType,
		Price:      parsed,
		TermMonths: parseTerm(text),
		URL:        e.cardURL(card, provider),
	})
}

// findCard walks upward from the candidate element to the nearest ancestor
// whose text contains the card phrase, which confirms the card boundary.
func (e *HTMLExtractor) findCard(sel *goquery.Selection) *goquery.Selection {
	for s := sel; s.Length() > 0; s = s.Parent() {
		if strings.Contains(s.Text(), e.rules.CardPhrase) {
			return s
		}
	}
	return nil
}

// parseTerm finds "<n> month(s)" or the literal "month to month" (which
// normalizes to 1) anywhere in the card text. Default is 1.
func parseTerm(text string) int {
	m := termRe.FindStringSubmatch(text)
	if m == nil || m[1] == "" {
		return 1
	}
	months, err := strconv.Atoi(m[1])
	if err != nil || months < 1 {
		return 1
	}
	return months
}

func (e *HTMLExtractor) cardURL(card *goquery.Selection, provider string) string {
	// known site quirk, see pecoURL
	if strings.Contains(provider, "PECO") {
		return pecoURL
	}
	if href, ok := card.Find(e.rules.LinkSelector).First().Attr("href"); ok && href != "" {
		return href
	}
	return "https://www.google.com/search?q=" + url.QueryEscape(provider)
}
