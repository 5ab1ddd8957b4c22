package server

import (
	"github.com/kantor-lab/kantorfx/scrape"
	"github.com/kantor-lab/kantorfx/storage/types"
)

type CurrenciesResponse struct {
	Results []types.Currency `json:"results"`
}

type RatesResponse struct {
	Results []*types.RateRow `json:"results"`
}

// RefreshResponse is the on-demand refresh result: the fresh bureau
// snapshot plus its rendered plain-text summary
type RefreshResponse struct {
	Card    *scrape.Card  `json:"card"`
	Quotes  []scrape.Quote `json:"quotes"`
	Summary string        `json:"summary"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
