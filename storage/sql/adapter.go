package sql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/kantor-lab/kantorfx/storage/types"
)

// DB is the subset of the pgx connection surface the adapter needs
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Storage is a Postgres-backed rate store
type Storage struct {
	db DB
}

func NewStorage(db DB) *Storage {
	return &Storage{
		db: db,
	}
}

func (s *Storage) UpsertRate(ctx context.Context, row *types.RateRow) error {
	var lat, lon *float64

	if row.Location != nil {
		lat = &row.Location.Latitude
		lon = &row.Location.Longitude
	}

	_, err := s.db.Exec(
		ctx,
		`INSERT INTO exchange_rates
			(name, currency, buy_price, sell_price, address, latitude, longitude, comment, refreshed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (name, currency) DO UPDATE SET
			buy_price = EXCLUDED.buy_price,
			sell_price = EXCLUDED.sell_price,
			address = EXCLUDED.address,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			comment = EXCLUDED.comment,
			refreshed_at = EXCLUDED.refreshed_at`,
		row.Bureau,
		row.Currency.String(),
		row.Buy.InexactFloat64(),
		row.Sell.InexactFloat64(),
		row.Address,
		lat,
		lon,
		row.Comment,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("unable to upsert rate: %w", err)
	}

	return nil
}

const rateColumns = `name, currency, buy_price, sell_price, address, latitude, longitude, comment, refreshed_at`

func (s *Storage) BestBuy(ctx context.Context, currency types.Currency) (*types.RateRow, error) {
	row := s.db.QueryRow(
		ctx,
		`SELECT `+rateColumns+`
		FROM exchange_rates
		WHERE currency = $1
		ORDER BY buy_price DESC, id ASC
		LIMIT 1`,
		currency.String(),
	)

	return scanRow(row)
}

func (s *Storage) BestSell(ctx context.Context, currency types.Currency) (*types.RateRow, error) {
	row := s.db.QueryRow(
		ctx,
		`SELECT `+rateColumns+`
		FROM exchange_rates
		WHERE currency = $1
		ORDER BY sell_price ASC, id ASC
		LIMIT 1`,
		currency.String(),
	)

	return scanRow(row)
}

func (s *Storage) RatesForCurrency(ctx context.Context, currency types.Currency) ([]*types.RateRow, error) {
	rows, err := s.db.Query(
		ctx,
		`SELECT `+rateColumns+`
		FROM exchange_rates
		WHERE currency = $1
		ORDER BY id ASC`,
		currency.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch rates: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

func (s *Storage) RatesForBureau(ctx context.Context, bureau string) ([]*types.RateRow, error) {
	rows, err := s.db.Query(
		ctx,
		`SELECT `+rateColumns+`
		FROM exchange_rates
		WHERE name = $1
		ORDER BY id ASC`,
		bureau,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch bureau rates: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

func (s *Storage) ListCurrencies(ctx context.Context) ([]types.Currency, error) {
	rows, err := s.db.Query(
		ctx,
		`SELECT DISTINCT currency FROM exchange_rates ORDER BY currency`,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch currencies: %w", err)
	}
	defer rows.Close()

	var out []types.Currency

	for rows.Next() {
		var code string

		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("unable to scan currency: %w", err)
		}

		out = append(out, types.Currency(code))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to iterate currencies: %w", err)
	}

	return out, nil
}

func (s *Storage) ListCoordinates(ctx context.Context) ([]*types.BureauPoint, error) {
	rows, err := s.db.Query(
		ctx,
		`SELECT DISTINCT ON (name) name, address, latitude, longitude
		FROM exchange_rates
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
		ORDER BY name, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch coordinates: %w", err)
	}
	defer rows.Close()

	var out []*types.BureauPoint

	for rows.Next() {
		p := &types.BureauPoint{}

		if err := rows.Scan(&p.Bureau, &p.Address, &p.Latitude, &p.Longitude); err != nil {
			return nil, fmt.Errorf("unable to scan coordinates: %w", err)
		}

		out = append(out, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to iterate coordinates: %w", err)
	}

	return out, nil
}

func scanRow(row pgx.Row) (*types.RateRow, error) {
	r, err := scanInto(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil //nolint:nilnil // valid case
		}

		return nil, err
	}

	return r, nil
}

func scanRows(rows pgx.Rows) ([]*types.RateRow, error) {
	var out []*types.RateRow

	for rows.Next() {
		r, err := scanInto(rows.Scan)
		if err != nil {
			return nil, err
		}

		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to iterate rates: %w", err)
	}

	return out, nil
}

func scanInto(scan func(dest ...any) error) (*types.RateRow, error) {
	var (
		r types.RateRow

		buy, sell   float64
		lat, lon    *float64
		refreshedAt time.Time
	)

	err := scan(
		&r.Bureau,
		&r.Currency,
		&buy,
		&sell,
		&r.Address,
		&lat,
		&lon,
		&r.Comment,
		&refreshedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Buy = decimal.NewFromFloat(buy)
	r.Sell = decimal.NewFromFloat(sell)
	r.RefreshedAt = refreshedAt

	if lat != nil && lon != nil {
		r.Location = &types.Coordinates{
			Latitude:  *lat,
			Longitude: *lon,
		}
	}

	return &r, nil
}
