package query

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kantor-lab/kantorfx/storage/mock"
	"github.com/kantor-lab/kantorfx/storage/types"
)

func TestService_BestRates(t *testing.T) {
	t.Parallel()

	t.Run("both sides present", func(t *testing.T) {
		t.Parallel()

		var (
			bestBuy = &types.RateRow{
				Bureau:   "Kantor A",
				Currency: "USD",
				Buy:      decimal.RequireFromString("4.20"),
				Sell:     decimal.RequireFromString("4.30"),
			}
			bestSell = &types.RateRow{
				Bureau:   "Kantor B",
				Currency: "USD",
				Buy:      decimal.RequireFromString("4.00"),
				Sell:     decimal.RequireFromString("4.10"),
			}

			storage = &mock.Storage{
				BestBuyFn: func(_ context.Context, _ types.Currency) (*types.RateRow, error) {
					return bestBuy, nil
				},
				BestSellFn: func(_ context.Context, _ types.Currency) (*types.RateRow, error) {
					return bestSell, nil
				},
			}
		)

		best, err := New(storage).BestRates(context.Background(), "USD")
		require.NoError(t, err)
		require.NotNil(t, best)

		assert.Equal(t, types.Currency("USD"), best.Currency)
		assert.Equal(t, "Kantor A", best.BestBuy.Bureau)
		assert.Equal(t, "Kantor B", best.BestSell.Bureau)
	})

	t.Run("missing buy side", func(t *testing.T) {
		t.Parallel()

		storage := &mock.Storage{
			BestBuyFn: func(_ context.Context, _ types.Currency) (*types.RateRow, error) {
				return nil, nil
			},
			BestSellFn: func(_ context.Context, _ types.Currency) (*types.RateRow, error) {
				return &types.RateRow{Bureau: "Kantor B"}, nil
			},
		}

		// No partial results
		best, err := New(storage).BestRates(context.Background(), "USD")

		assert.Nil(t, best)
		assert.ErrorIs(t, err, ErrNoRates)
	})

	t.Run("missing sell side", func(t *testing.T) {
		t.Parallel()

		storage := &mock.Storage{
			BestBuyFn: func(_ context.Context, _ types.Currency) (*types.RateRow, error) {
				return &types.RateRow{Bureau: "Kantor A"}, nil
			},
			BestSellFn: func(_ context.Context, _ types.Currency) (*types.RateRow, error) {
				return nil, nil
			},
		}

		best, err := New(storage).BestRates(context.Background(), "USD")

		assert.Nil(t, best)
		assert.ErrorIs(t, err, ErrNoRates)
	})

	t.Run("storage error", func(t *testing.T) {
		t.Parallel()

		var (
			storageErr = errors.New("storage error")

			storage = &mock.Storage{
				BestBuyFn: func(_ context.Context, _ types.Currency) (*types.RateRow, error) {
					return nil, storageErr
				},
			}
		)

		best, err := New(storage).BestRates(context.Background(), "USD")

		assert.Nil(t, best)
		assert.ErrorIs(t, err, storageErr)
	})
}

func TestService_Nearest(t *testing.T) {
	t.Parallel()

	t.Run("closest bureau wins", func(t *testing.T) {
		t.Parallel()

		storage := &mock.Storage{
			ListCoordinatesFn: func(_ context.Context) ([]*types.BureauPoint, error) {
				return []*types.BureauPoint{
					{
						Bureau:  "Kantor A",
						Address: "ul. A",
						Coordinates: types.Coordinates{
							Latitude:  0,
							Longitude: 0,
						},
					},
					{
						Bureau:  "Kantor B",
						Address: "ul. B",
						Coordinates: types.Coordinates{
							Latitude:  0,
							Longitude: 1,
						},
					},
				}, nil
			},
		}

		// User sits at (0, 0.4): closer to A than to B
		nearest, err := New(storage).Nearest(context.Background(), 0, 0.4)
		require.NoError(t, err)
		require.NotNil(t, nearest)

		assert.Equal(t, "Kantor A", nearest.Bureau)
		assert.Equal(t, "ul. A", nearest.Address)
		assert.InDelta(t, 44.478, nearest.DistanceKM, 0.01)
	})

	t.Run("distance tie resolves to first bureau", func(t *testing.T) {
		t.Parallel()

		storage := &mock.Storage{
			ListCoordinatesFn: func(_ context.Context) ([]*types.BureauPoint, error) {
				return []*types.BureauPoint{
					{
						Bureau: "Kantor A",
						Coordinates: types.Coordinates{
							Latitude:  0,
							Longitude: 0,
						},
					},
					{
						Bureau: "Kantor B",
						Coordinates: types.Coordinates{
							Latitude:  0,
							Longitude: 1,
						},
					},
				}, nil
			},
		}

		// Exactly halfway between the two
		nearest, err := New(storage).Nearest(context.Background(), 0, 0.5)
		require.NoError(t, err)
		require.NotNil(t, nearest)

		assert.Equal(t, "Kantor A", nearest.Bureau)
	})

	t.Run("no bureaux with coordinates", func(t *testing.T) {
		t.Parallel()

		storage := &mock.Storage{
			ListCoordinatesFn: func(_ context.Context) ([]*types.BureauPoint, error) {
				return nil, nil
			},
		}

		nearest, err := New(storage).Nearest(context.Background(), 51.2465, 22.5684)

		assert.Nil(t, nearest)
		assert.ErrorIs(t, err, ErrNoBureaus)
	})

	t.Run("storage error", func(t *testing.T) {
		t.Parallel()

		var (
			storageErr = errors.New("storage error")

			storage = &mock.Storage{
				ListCoordinatesFn: func(_ context.Context) ([]*types.BureauPoint, error) {
					return nil, storageErr
				},
			}
		)

		nearest, err := New(storage).Nearest(context.Background(), 51.2465, 22.5684)

		assert.Nil(t, nearest)
		assert.ErrorIs(t, err, storageErr)
	})
}

func TestService_Passthroughs(t *testing.T) {
	t.Parallel()

	t.Run("currencies", func(t *testing.T) {
		t.Parallel()

		storage := &mock.Storage{
			ListCurrenciesFn: func(_ context.Context) ([]types.Currency, error) {
				return []types.Currency{"EUR", "USD"}, nil
			},
		}

		currencies, err := New(storage).Currencies(context.Background())
		require.NoError(t, err)

		assert.Equal(t, []types.Currency{"EUR", "USD"}, currencies)
	})

	t.Run("rates for currency", func(t *testing.T) {
		t.Parallel()

		var capturedCurrency types.Currency

		storage := &mock.Storage{
			RatesForCurrencyFn: func(_ context.Context, currency types.Currency) ([]*types.RateRow, error) {
				capturedCurrency = currency

				return []*types.RateRow{{Bureau: "Kantor A"}}, nil
			},
		}

		rows, err := New(storage).Rates(context.Background(), "USD")
		require.NoError(t, err)

		assert.Equal(t, types.Currency("USD"), capturedCurrency)
		assert.Len(t, rows, 1)
	})

	t.Run("rates for bureau", func(t *testing.T) {
		t.Parallel()

		var capturedBureau string

		storage := &mock.Storage{
			RatesForBureauFn: func(_ context.Context, bureau string) ([]*types.RateRow, error) {
				capturedBureau = bureau

				return []*types.RateRow{{Bureau: bureau}}, nil
			},
		}

		rows, err := New(storage).BureauRates(context.Background(), "Kantor A")
		require.NoError(t, err)

		assert.Equal(t, "Kantor A", capturedBureau)
		assert.Len(t, rows, 1)
	})
}
