package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/kantor-lab/kantorfx/storage"
	"github.com/kantor-lab/kantorfx/storage/types"
)

var (
	// ErrNoRates indicates there is no complete buy/sell data
	// for the requested currency
	ErrNoRates = errors.New("no rates for currency")

	// ErrNoBureaus indicates no bureau with resolved coordinates exists
	ErrNoBureaus = errors.New("no bureau with known coordinates")
)

// BestRates combines the best buy and best sell rows for one currency
type BestRates struct {
	Currency types.Currency `json:"currency"`
	BestBuy  *types.RateRow `json:"best_buy"`
	BestSell *types.RateRow `json:"best_sell"`
}

// NearestBureau is the closest bureau to a queried position
type NearestBureau struct {
	Bureau     string  `json:"bureau"`
	Address    string  `json:"address"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	DistanceKM float64 `json:"distance_km"`
}

// Service answers rate and proximity queries against the rate store
type Service struct {
	storage storage.Storage
}

// New creates a new query service
func New(storage storage.Storage) *Service {
	return &Service{
		storage: storage,
	}
}

// BestRates fetches the best buy and best sell rows for the currency.
// If either side is missing, the whole result is ErrNoRates --
// partial output is never reported
func (s *Service) BestRates(ctx context.Context, currency types.Currency) (*BestRates, error) {
	bestBuy, err := s.storage.BestBuy(ctx, currency)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch best buy: %w", err)
	}

	bestSell, err := s.storage.BestSell(ctx, currency)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch best sell: %w", err)
	}

	if bestBuy == nil || bestSell == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoRates, currency)
	}

	return &BestRates{
		Currency: currency,
		BestBuy:  bestBuy,
		BestSell: bestSell,
	}, nil
}

// Nearest finds the bureau closest to the given position, by
// great-circle distance. Bureaux without resolved coordinates never
// appear in the ranking. Distance ties resolve to the
// first-encountered bureau
func (s *Service) Nearest(ctx context.Context, lat, lon float64) (*NearestBureau, error) {
	points, err := s.storage.ListCoordinates(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch coordinates: %w", err)
	}

	if len(points) == 0 {
		return nil, ErrNoBureaus
	}

	var nearest *NearestBureau

	for _, p := range points {
		d := Distance(lat, lon, p.Latitude, p.Longitude)

		if nearest != nil && d >= nearest.DistanceKM {
			continue
		}

		nearest = &NearestBureau{
			Bureau:     p.Bureau,
			Address:    p.Address,
			Latitude:   p.Latitude,
			Longitude:  p.Longitude,
			DistanceKM: d,
		}
	}

	return nearest, nil
}

// Currencies lists all distinct currency codes present in the store
func (s *Service) Currencies(ctx context.Context) ([]types.Currency, error) {
	return s.storage.ListCurrencies(ctx)
}

// Rates fetches all rows quoting the given currency
func (s *Service) Rates(ctx context.Context, currency types.Currency) ([]*types.RateRow, error) {
	return s.storage.RatesForCurrency(ctx, currency)
}

// BureauRates fetches all currency rows for one bureau name
func (s *Service) BureauRates(ctx context.Context, bureau string) ([]*types.RateRow, error) {
	return s.storage.RatesForBureau(ctx, bureau)
}
