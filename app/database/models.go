package database

import (
	"time"
)

// Offer is a persisted rate offer record. Rows are append-only: newer
// discoveries supersede older ones for the same provider and type, nothing is
// updated in place.
type Offer struct {
	ID         int64
	Provider   string
	Type       string
	Rate       float64
	RateLength int // contract validity in months from CreatedAt
	URL        string
	CreatedAt  time.Time
}

// CurrentConfig is the user's actively contracted rate for one utility type.
// The latest row by insertion order for a type is the active one.
type CurrentConfig struct {
	ID         int64
	Name       string
	Type       string
	Rate       float64
	ValidUntil *time.Time
	Fields     map[string]interface{} // provider-specific metadata, schema-free
	CreatedAt  time.Time
}
