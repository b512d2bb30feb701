package api

import (
	"time"

	"github.com/ratewatch/rate-watch/app/database"
	"github.com/ratewatch/rate-watch/app/rates"
	"github.com/ratewatch/rate-watch/app/tasks"
)

type Handler struct {
	offerRepo   database.OfferRepository
	configRepo  database.ConfigRepository
	sourceCache *rates.SourceCache
	scheduler   tasks.TaskSchedulerInterface
}

// CreateOfferRequest is the payload for manually recording an offer.
type CreateOfferRequest struct {
	Provider   string  `json:"provider" binding:"required"`
	Type       string  `json:"type" binding:"required"`
	Rate       float64 `json:"rate" binding:"min=0"`
	RateLength int     `json:"rate_length"`
	URL        string  `json:"url"`
}

// CreateConfigRequest is the payload for recording the user's current rate.
type CreateConfigRequest struct {
	Name       string                 `json:"name" binding:"required"`
	Type       string                 `json:"type" binding:"required"`
	Rate       float64                `json:"rate" binding:"min=0"`
	ValidUntil *time.Time             `json:"valid_until"`
	Fields     map[string]interface{} `json:"fields"`
}
