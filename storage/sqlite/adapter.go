package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/kantor-lab/kantorfx/storage/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS exchange_rates (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	currency TEXT NOT NULL,
	buy_price REAL NOT NULL,
	sell_price REAL NOT NULL,
	address TEXT NOT NULL DEFAULT '',
	latitude REAL,
	longitude REAL,
	comment TEXT NOT NULL DEFAULT '',
	refreshed_at TEXT NOT NULL,
	UNIQUE(name, currency)
);`

// Storage is a single-file SQLite rate store
type Storage struct {
	db *sql.DB
}

// NewStorage opens (or creates) the SQLite database at the given path,
// making sure the rate table exists
func NewStorage(ctx context.Context, path string) (*Storage, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite DB: %w", err)
	}

	// The sqlite driver supports a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("unable to init schema: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close releases the underlying database handle
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) UpsertRate(ctx context.Context, row *types.RateRow) error {
	var lat, lon sql.NullFloat64

	if row.Location != nil {
		lat = sql.NullFloat64{Float64: row.Location.Latitude, Valid: true}
		lon = sql.NullFloat64{Float64: row.Location.Longitude, Valid: true}
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO exchange_rates
			(name, currency, buy_price, sell_price, address, latitude, longitude, comment, refreshed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name, currency) DO UPDATE SET
			buy_price = excluded.buy_price,
			sell_price = excluded.sell_price,
			address = excluded.address,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			comment = excluded.comment,
			refreshed_at = excluded.refreshed_at;`,
		row.Bureau,
		row.Currency.String(),
		row.Buy.InexactFloat64(),
		row.Sell.InexactFloat64(),
		row.Address,
		lat,
		lon,
		row.Comment,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("unable to upsert rate: %w", err)
	}

	return nil
}

const rateColumns = `name, currency, buy_price, sell_price, address, latitude, longitude, comment, refreshed_at`

func (s *Storage) BestBuy(ctx context.Context, currency types.Currency) (*types.RateRow, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+rateColumns+`
		FROM exchange_rates
		WHERE currency = ?
		ORDER BY buy_price DESC, id ASC
		LIMIT 1;`,
		currency.String(),
	)

	return scanRow(row)
}

func (s *Storage) BestSell(ctx context.Context, currency types.Currency) (*types.RateRow, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+rateColumns+`
		FROM exchange_rates
		WHERE currency = ?
		ORDER BY sell_price ASC, id ASC
		LIMIT 1;`,
		currency.String(),
	)

	return scanRow(row)
}

func (s *Storage) RatesForCurrency(ctx context.Context, currency types.Currency) ([]*types.RateRow, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+rateColumns+`
		FROM exchange_rates
		WHERE currency = ?
		ORDER BY id ASC;`,
		currency.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch rates: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

func (s *Storage) RatesForBureau(ctx context.Context, bureau string) ([]*types.RateRow, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+rateColumns+`
		FROM exchange_rates
		WHERE name = ?
		ORDER BY id ASC;`,
		bureau,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch bureau rates: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

func (s *Storage) ListCurrencies(ctx context.Context) ([]types.Currency, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT DISTINCT currency FROM exchange_rates ORDER BY currency;`,
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
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT name, address, latitude, longitude
		FROM exchange_rates
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
		GROUP BY name
		ORDER BY MIN(id) ASC;`,
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

// scanRow scans a single rate row, mapping "no rows" to a nil result
func scanRow(row *sql.Row) (*types.RateRow, error) {
	r, err := scanInto(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil //nolint:nilnil // valid case
		}

		return nil, err
	}

	return r, nil
}

func scanRows(rows *sql.Rows) ([]*types.RateRow, error) {
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
		lat, lon    sql.NullFloat64
		refreshedAt string
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

	if lat.Valid && lon.Valid {
		r.Location = &types.Coordinates{
			Latitude:  lat.Float64,
			Longitude: lon.Float64,
		}
	}

	if t, err := time.Parse(time.RFC3339Nano, refreshedAt); err == nil {
		r.RefreshedAt = t
	}

	return &r, nil
}
