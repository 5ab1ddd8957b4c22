package storage

import (
	"context"

	"github.com/kantor-lab/kantorfx/storage/types"
)

// Storage is an abstraction over bureau exchange rate data
type Storage interface {
	// UpsertRate inserts or fully replaces the row for the
	// (bureau, currency) pair of the given rate row.
	// The refreshed-at timestamp is assigned by the store at upsert time
	UpsertRate(context.Context, *types.RateRow) error

	// BestBuy fetches the row with the maximum buy price for the currency.
	// Ties resolve to the first-inserted row. Returns nil when no rows match
	BestBuy(context.Context, types.Currency) (*types.RateRow, error)

	// BestSell fetches the row with the minimum sell price for the currency.
	// Ties resolve to the first-inserted row. Returns nil when no rows match
	BestSell(context.Context, types.Currency) (*types.RateRow, error)

	// RatesForCurrency fetches all rows quoting the given currency
	RatesForCurrency(context.Context, types.Currency) ([]*types.RateRow, error)

	// RatesForBureau fetches all currency rows for one bureau name
	RatesForBureau(context.Context, string) ([]*types.RateRow, error)

	// ListCurrencies lists all distinct currency codes present
	ListCurrencies(context.Context) ([]types.Currency, error)

	// ListCoordinates lists every bureau that has resolved coordinates.
	// Bureaux without coordinates are absent from the result
	ListCoordinates(context.Context) ([]*types.BureauPoint, error)
}
