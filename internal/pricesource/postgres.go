package pricesource

import (
	"context"
	"fmt"

	"github.com/guttosm/pricereturns/internal/domain/models"
	"github.com/guttosm/pricereturns/internal/storage"
)

// Postgres serves histories from the daily_prices table.
type Postgres struct {
	repo storage.PricesRepository
}

func NewPostgres(repo storage.PricesRepository) *Postgres {
	return &Postgres{repo: repo}
}

// History returns the stored rows for ticker. A ticker without rows is
// reported as ErrUnknownTicker, like the other sources.
func (p *Postgres) History(ctx context.Context, ticker string) ([]models.DailyPrice, error) {
	symbol := normalizeTicker(ticker)
	rows, err := p.repo.GetDailyPrices(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrUnknownTicker)
	}
	return rows, nil
}
