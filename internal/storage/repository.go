package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/guttosm/pricereturns/internal/domain/models"
	pq "github.com/lib/pq"
)

// PricesRepository defines read access to the daily_prices table.
type PricesRepository interface {
	GetDailyPrices(ctx context.Context, ticker string) ([]models.DailyPrice, error)
	ListTickers(ctx context.Context) ([]string, error)
	CountPrices(ctx context.Context, tickers []string) (map[string]int, error)
}

type pricesRepository struct {
	db *sql.DB
}

func NewPricesRepository(db *sql.DB) PricesRepository {
	return &pricesRepository{db: db}
}

// GetDailyPrices returns the full history of one ticker, ascending by date.
// An unknown ticker yields an empty slice.
func (r *pricesRepository) GetDailyPrices(ctx context.Context, ticker string) ([]models.DailyPrice, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT trade_date, open, high, low, close, adj_close, volume
		FROM daily_prices
		WHERE ticker = $1
		ORDER BY trade_date
	`, ticker)
	if err != nil {
		return nil, fmt.Errorf("query daily prices for %s: %w", ticker, err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.DailyPrice
	for rows.Next() {
		var (
			p                    models.DailyPrice
			open, high, low, cls sql.NullFloat64
			volume               sql.NullInt64
		)
		if err := rows.Scan(&p.Date, &open, &high, &low, &cls, &p.AdjClose, &volume); err != nil {
			return nil, fmt.Errorf("scan daily price for %s: %w", ticker, err)
		}
		// only adj_close is NOT NULL in the schema
		p.Open = open.Float64
		p.High = high.Float64
		p.Low = low.Float64
		p.Close = cls.Float64
		p.Volume = volume.Int64
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily prices for %s: %w", ticker, err)
	}
	return out, nil
}

// ListTickers returns every ticker with at least one row.
func (r *pricesRepository) ListTickers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT ticker FROM daily_prices ORDER BY ticker`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CountPrices returns the number of stored rows per requested ticker.
// Tickers without rows are absent from the map.
func (r *pricesRepository) CountPrices(ctx context.Context, tickers []string) (map[string]int, error) {
	out := make(map[string]int, len(tickers))
	if len(tickers) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT ticker, COUNT(*)
		FROM daily_prices
		WHERE ticker = ANY($1)
		GROUP BY ticker
	`, pq.Array(tickers))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			t string
			n int
		)
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		out[t] = n
	}
	return out, rows.Err()
}
