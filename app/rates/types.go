package rates

import (
	"time"
)

// Utility types supported by the pipeline.
type UtilityType string

const (
	Gas      UtilityType = "gas"
	Electric UtilityType = "electric"
)

// Types returns all supported utility types in processing order.
func Types() []UtilityType {
	return []UtilityType{Gas, Electric}
}

// Offer is a single discovered rate candidate, pre-persistence.
type Offer struct {
	Provider   string
	Type       UtilityType
	Price      float64
	TermMonths int
	URL        string
	CreatedAt  time.Time // set by the store; zero for freshly extracted offers
}

// Expired reports whether the offer's validity window has passed.
// The window is CreatedAt plus TermMonths at month granularity.
func (o Offer) Expired(now time.Time) bool {
	return !o.CreatedAt.AddDate(0, o.TermMonths, 0).After(now)
}

// Row is a single CSV record keyed by column name, case as supplied.
type Row map[string]string

// Extraction rules for the HTML path. All structural heuristics live here so
// a site markup change means editing configuration, not code.
type ExtractionRules struct {
	SupplierCardSelector    string `yaml:"supplier_card"`
	DistributorCardSelector string `yaml:"distributor_card"`
	NameSelector            string `yaml:"name"`
	LinkSelector            string `yaml:"link"`
	CardPhrase              string `yaml:"card_phrase"`
	SupplierCardLimit       int    `yaml:"supplier_card_limit"`
}

// DefaultExtractionRules match the papowerswitch/pagasswitch result markup.
func DefaultExtractionRules() ExtractionRules {
	return ExtractionRules{
		SupplierCardSelector:    ".supplier-card",
		DistributorCardSelector: "div.dist-card",
		NameSelector:            ".name",
		LinkSelector:            "div.second > a",
		CardPhrase:              "Term Length",
		SupplierCardLimit:       3,
	}
}

// Configuration types for rate sources

type SourceConfig struct {
	Name       string           // Derived from filename (without .yml extension)
	Type       UtilityType      `yaml:"type"`
	Mode       string           `yaml:"mode"` // "csv" or "web"
	URL        string           `yaml:"url"`
	Settings   SourceSettings   `yaml:"settings"`
	Extraction *ExtractionRules `yaml:"extraction"`
}

type SourceSettings struct {
	Enabled bool `yaml:"enabled"`
	Timeout int  `yaml:"timeout"` // seconds
	TopN    int  `yaml:"top_n"`   // offers persisted per run
}

const (
	ModeCSV = "csv"
	ModeWeb = "web"
)

// Rules returns the source's extraction rules, falling back to the defaults
// for unset fields.
func (c *SourceConfig) Rules() ExtractionRules {
	rules := DefaultExtractionRules()
	if c.Extraction == nil {
		return rules
	}
	if c.Extraction.SupplierCardSelector != "" {
		rules.SupplierCardSelector = c.Extraction.SupplierCardSelector
	}
	if c.Extraction.DistributorCardSelector != "" {
		rules.DistributorCardSelector = c.Extraction.DistributorCardSelector
	}
	if c.Extraction.NameSelector != "" {
		rules.NameSelector = c.Extraction.NameSelector
	}
	if c.Extraction.LinkSelector != "" {
		rules.LinkSelector = c.Extraction.LinkSelector
	}
	if c.Extraction.CardPhrase != "" {
		rules.CardPhrase = c.Extraction.CardPhrase
	}
	if c.Extraction.SupplierCardLimit > 0 {
		rules.SupplierCardLimit = c.Extraction.SupplierCardLimit
	}
	return rules
}
