package mock

import (
	"context"

	"github.com/kantor-lab/kantorfx/storage/types"
)

type (
	UpsertRateDelegate       func(context.Context, *types.RateRow) error
	BestRateDelegate         func(context.Context, types.Currency) (*types.RateRow, error)
	RatesForCurrencyDelegate func(context.Context, types.Currency) ([]*types.RateRow, error)
	RatesForBureauDelegate   func(context.Context, string) ([]*types.RateRow, error)
	ListCurrenciesDelegate   func(context.Context) ([]types.Currency, error)
	ListCoordinatesDelegate  func(context.Context) ([]*types.BureauPoint, error)
)

type Storage struct {
	UpsertRateFn       UpsertRateDelegate
	BestBuyFn          BestRateDelegate
	BestSellFn         BestRateDelegate
	RatesForCurrencyFn RatesForCurrencyDelegate
	RatesForBureauFn   RatesForBureauDelegate
	ListCurrenciesFn   ListCurrenciesDelegate
	ListCoordinatesFn  ListCoordinatesDelegate
}

func (m *Storage) UpsertRate(ctx context.Context, row *types.RateRow) error {
	if m.UpsertRateFn != nil {
		return m.UpsertRateFn(ctx, row)
	}

	return nil
}

func (m *Storage) BestBuy(ctx context.Context, currency types.Currency) (*types.RateRow, error) {
	if m.BestBuyFn != nil {
		return m.BestBuyFn(ctx, currency)
	}

	return nil, nil
}

func (m *Storage) BestSell(ctx context.Context, currency types.Currency) (*types.RateRow, error) {
	if m.BestSellFn != nil {
		return m.BestSellFn(ctx, currency)
	}

	return nil, nil
}

func (m *Storage) RatesForCurrency(ctx context.Context, currency types.Currency) ([]*types.RateRow, error) {
	if m.RatesForCurrencyFn != nil {
		return m.RatesForCurrencyFn(ctx, currency)
	}

	return nil, nil
}

func (m *Storage) RatesForBureau(ctx context.Context, bureau string) ([]*types.RateRow, error) {
	if m.RatesForBureauFn != nil {
		return m.RatesForBureauFn(ctx, bureau)
	}

	return nil, nil
}

func (m *Storage) ListCurrencies(ctx context.Context) ([]types.Currency, error) {
	if m.ListCurrenciesFn != nil {
		return m.ListCurrenciesFn(ctx)
	}

	return nil, nil
}

func (m *Storage) ListCoordinates(ctx context.Context) ([]*types.BureauPoint, error) {
	if m.ListCoordinatesFn != nil {
		return m.ListCoordinatesFn(ctx)
	}

	return nil, nil
}
