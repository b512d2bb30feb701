package fetch

import (
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/ratewatch/rate-watch/app/rates"
)

// Fetcher retrieves raw rate data from external sources. Both portals sit
// behind ordinary HTTP endpoints: a CSV export and a server-rendered results
// page. The client timeout bounds every request so a stalled source cannot
// hang a pipeline run; callers add per-source deadlines via ctx.
type Fetcher struct {
	client *resty.Client
}

func NewFetcher(userAgent string, timeout time.Duration) *Fetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "text/html,text/csv,application/xhtml+xml,*/*")

	return &Fetcher{client: client}
}

// CSV downloads and parses a CSV export into per-row column maps. The first
// record is treated as the header. An empty body yields zero rows.
func (f *Fetcher) CSV(ctx context.Context, url string) ([]rates.Row, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch CSV: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode(), resp.Status())
	}

	return parseCSV(resp.String())
}

// Page fetches a rendered results page and parses it into a document.
func (f *Fetcher) Page(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode(), resp.Status())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return doc, nil
}

func parseCSV(data string) ([]rates.Row, error) {
	reader := csv.NewReader(strings.NewReader(data))
	reader.FieldsPerRecord = -1 // the portals pad rows inconsistently

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	header := records[0]
	rows := make([]rates.Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(rates.Row, len(header))
		for i, column := range header {
			if i < len(record) {
				row[strings.TrimSpace(column)] = record[i]
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
