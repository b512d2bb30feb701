package database

import (
	"fmt"
	"time"

	"github.com/ratewatch/rate-watch/app/rates"
)

var _ OfferRepository = (*SQLOfferRepository)(nil)

// SQLOfferRepository handles database operations for discovered offers
type SQLOfferRepository struct {
	db *DB
}

func NewOfferRepository(db *DB) *SQLOfferRepository {
	return &SQLOfferRepository{db: db}
}

// Add inserts a discovered offer and returns the stored record.
func (r *SQLOfferRepository) Add(offer rates.Offer) (*Offer, error) {
	var stored Offer
	err := r.db.QueryRow(`
		INSERT INTO offers (provider, type, rate, rate_length, url)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, provider, type, rate, rate_length, url, created_at
	`, offer.Provider, string(offer.Type), offer.Price, offer.TermMonths, offer.URL).Scan(
		&stored.ID, &stored.Provider, &stored.Type, &stored.Rate,
		&stored.RateLength, &stored.URL, &stored.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add offer: %w", err)
	}

	return &stored, nil
}

// GetAll returns every stored offer, newest first.
func (r *SQLOfferRepository) GetAll() ([]Offer, error) {
	return r.query(`
		SELECT id, provider, type, rate, rate_length, url, created_at
		FROM offers
		ORDER BY created_at DESC, id DESC
	`)
}

// GetByType returns stored offers of one utility type in insertion order.
func (r *SQLOfferRepository) GetByType(utilityType string) ([]Offer, error) {
	return r.query(`
		SELECT id, provider, type, rate, rate_length, url, created_at
		FROM offers
		WHERE type = ?
		ORDER BY id
	`, utilityType)
}

// FindBest returns the lowest-price, non-expired offer for a type, or nil
// when the type has no live offers. Zero records is not an error.
func (r *SQLOfferRepository) FindBest(utilityType string, now time.Time) (*Offer, error) {
	offers, err := r.GetByType(utilityType)
	if err != nil {
		return nil, err
	}

	candidates := make([]rates.Offer, len(offers))
	for i, o := range offers {
		candidates[i] = rates.Offer{
			Provider:   o.Provider,
			Type:       rates.UtilityType(o.Type),
			Price:      o.Rate,
			TermMonths: o.RateLength,
			URL:        o.URL,
			CreatedAt:  o.CreatedAt,
		}
	}

	best, ok := rates.FindBest(candidates, now)
	if !ok {
		return nil, nil
	}

	// map the winner back to its stored row
	for i := range offers {
		if offers[i].Provider == best.Provider && offers[i].Rate == best.Price && offers[i].CreatedAt.Equal(best.CreatedAt) {
			return &offers[i], nil
		}
	}
	return nil, nil
}

func (r *SQLOfferRepository) Remove(id int64) error {
	if _, err := r.db.Exec(`DELETE FROM offers WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to remove offer: %w", err)
	}
	return nil
}

func (r *SQLOfferRepository) GetCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM offers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get offer count: %w", err)
	}
	return count, nil
}

func (r *SQLOfferRepository) query(q string, args ...interface{}) ([]Offer, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}
	defer rows.Close()

	var offers []Offer
	for rows.Next() {
		var offer Offer
		err := rows.Scan(&offer.ID, &offer.Provider, &offer.Type, &offer.Rate,
			&offer.RateLength, &offer.URL, &offer.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer row: %w", err)
		}
		offers = append(offers, offer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating offer rows: %w", err)
	}

	return offers, nil
}
