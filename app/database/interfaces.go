package database

import (
	"time"

	"github.com/ratewatch/rate-watch/app/rates"
)

type OfferRepository interface {
	Add(offer rates.Offer) (*Offer, error)
	GetAll() ([]Offer, error)
	GetByType(utilityType string) ([]Offer, error)
	FindBest(utilityType string, now time.Time) (*Offer, error)
	Remove(id int64) error
	GetCount() (int, error)
}

type ConfigRepository interface {
	Add(config CurrentConfig) (*CurrentConfig, error)
	GetAll() ([]CurrentConfig, error)
	FindCurrent(utilityType string) (*CurrentConfig, error)
	Remove(id int64) error
}
