package rates

import (
	"testing"
)

func TestCSVExtractor_Run_EmptyInput(t *testing.T) {
	extractor := NewCSVExtractor(NewFilter())

	offers := extractor.Run(nil, Gas)
	if len(offers) != 0 {
		t.Errorf("Expected 0 offers from empty input, got %d", len(offers))
	}

	offers = extractor.Run([]Row{}, Gas)
	if len(offers) != 0 {
		t.Errorf("Expected 0 offers from empty slice, got %d", len(offers))
	}
}

func TestCSVExtractor_Run_PriceColumnHeuristic(t *testing.T) {
	extractor := NewCSVExtractor(NewFilter())

	// "Price" column preferred over "Rate"
	offers := extractor.Run([]Row{
		{"Supplier": "A", "Price to Compare": "$0.15", "Term Length": "12"},
	}, Electric)
	if len(offers) != 1 || offers[0].Price != 0.15 {
		t.Fatalf("Expected one offer at 0.15, got %+v", offers)
	}

	// falls back to a column containing "rate"
	offers = extractor.Run([]Row{
		{"Supplier": "B", "Current Rate": "$0.09", "Term Length": "6"},
	}, Electric)
	if len(offers) != 1 || offers[0].Price != 0.09 {
		t.Fatalf("Expected one offer at 0.09, got %+v", offers)
	}

	// neither column: row dropped
	offers = extractor.Run([]Row{
		{"Supplier": "C", "Cost": "$0.07"},
	}, Electric)
	if len(offers) != 0 {
		t.Errorf("Expected row without price column to be dropped, got %+v", offers)
	}
}

func TestCSVExtractor_Run_PriceColumnPickIsStable(t *testing.T) {
	extractor := NewCSVExtractor(NewFilter())

	// two columns match "price"; the numeric one must win every time,
	// regardless of map iteration order
	row := Row{"Supplier": "A", "Price": "$0.10", "Price Structure": "Fixed", "Term Length": "12"}
	for i := 0; i < 100; i++ {
		offers := extractor.Run([]Row{row}, Gas)
		if len(offers) != 1 {
			t.Fatalf("iteration %d: row dropped, expected 1 offer", i)
		}
		if offers[0].Price != 0.10 {
			t.Fatalf("iteration %d: price = %v, want 0.10", i, offers[0].Price)
		}
	}

	// the non-numeric column sorts first here; the parseable one still wins
	offers := extractor.Run([]Row{
		{"Supplier": "B", "Intro Price": "Varies", "Price": "$0.09", "Term Length": "6"},
	}, Gas)
	if len(offers) != 1 || offers[0].Price != 0.09 {
		t.Fatalf("Expected one offer at 0.09, got %+v", offers)
	}
}

func TestCSVExtractor_Run_TermLengthNormalization(t *testing.T) {
	extractor := NewCSVExtractor(NewFilter())

	offers := extractor.Run([]Row{
		{"Supplier": "A", "Price": "$0.15", "Term Length": "12"},
		{"Supplier": "B", "Price": "$0.15", "Term Length": "0"}, // variable rate plan
		{"Supplier": "C", "Price": "$0.15"},                     // missing
		{"Supplier": "D", "Price": "$0.15", "Term Length": "n/a"},
	}, Gas)

	if len(offers) != 4 {
		t.Fatalf("Expected 4 offers, got %d", len(offers))
	}

	wantTerms := []int{12, 1, 1, 1}
	for i, offer := range offers {
		if offer.TermMonths != wantTerms[i] {
			t.Errorf("Offer %s: termMonths = %d, want %d", offer.Provider, offer.TermMonths, wantTerms[i])
		}
	}
}

func TestCSVExtractor_Run_SourceURL(t *testing.T) {
	extractor := NewCSVExtractor(NewFilter())

	offers := extractor.Run([]Row{
		{"Supplier": "Acme Energy", "Price": "$0.15", "Contact Phone Number": "800-555-0100"},
		{"Supplier": "Bulk Power", "Price": "$0.15"},
	}, Gas)

	if len(offers) != 2 {
		t.Fatalf("Expected 2 offers, got %d", len(offers))
	}
	if offers[0].URL != "https://www.google.com/search?q=800-555-0100" {
		t.Errorf("Expected phone-based search URL, got %s", offers[0].URL)
	}
	if offers[1].URL != "https://www.google.com/search?q=Bulk+Power" {
		t.Errorf("Expected supplier-based search URL, got %s", offers[1].URL)
	}
}

func TestCSVExtractor_Run_EndToEndScenario(t *testing.T) {
	extractor := NewCSVExtractor(NewFilter())

	offers := extractor.Run([]Row{
		{"Supplier": "A", "Price": "$0.15", "Term Length": "12"},
		{"Supplier": "B", "Price": "$0.00", "Term Length": "6"},
		{"Supplier": "C", "Price": "$0.12", "Term Length": "0"},
	}, Gas)

	// B excluded for non-positive price
	if len(offers) != 2 {
		t.Fatalf("Expected 2 offers, got %d", len(offers))
	}
	for _, offer := range offers {
		if offer.Provider == "B" {
			t.Errorf("Offer B should have been rejected for non-positive price")
		}
		if offer.Type != Gas {
			t.Errorf("Offer %s: type = %s, want gas", offer.Provider, offer.Type)
		}
	}

	top := TopN(offers, 3)
	if top[0].Provider != "C" || top[0].Price != 0.12 {
		t.Errorf("Expected C at 0.12 as best, got %s at %v", top[0].Provider, top[0].Price)
	}
	if top[0].TermMonths != 1 {
		t.Errorf("C termMonths = %d, want 1 (0-length term denotes a variable-rate plan)", top[0].TermMonths)
	}
}
