package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type Currency string

func (c Currency) String() string {
	return string(c)
}

// Coordinates is a resolved geographic position
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RateRow is the durable unit of exchange rate data.
// There is at most one row per (bureau, currency) pair
type RateRow struct {
	Bureau      string          `json:"bureau"`
	Currency    Currency        `json:"currency"`
	Buy         decimal.Decimal `json:"buy"`
	Sell        decimal.Decimal `json:"sell"`
	Address     string          `json:"address"`
	Comment     string          `json:"comment"`
	Location    *Coordinates    `json:"location,omitempty"`
	RefreshedAt time.Time       `json:"refreshed_at"`
}

// BureauPoint is a bureau with a known geographic position,
// used for proximity searches
type BureauPoint struct {
	Bureau  string `json:"bureau"`
	Address string `json:"address"`
	Coordinates
}
