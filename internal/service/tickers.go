package service

import (
	"context"
	"fmt"

	"github.com/guttosm/pricereturns/internal/domain/models"
	"github.com/guttosm/pricereturns/internal/storage"
)

// TickersService lists the tickers available in the price database.
type TickersService interface {
	ListTickers(ctx context.Context) ([]models.TickerSummary, error)
}

type tickersService struct {
	repo storage.PricesRepository
}

func NewTickersService(repo storage.PricesRepository) TickersService {
	return &tickersService{repo: repo}
}

func (s *tickersService) ListTickers(ctx context.Context) ([]models.TickerSummary, error) {
	tickers, err := s.repo.ListTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickers: %w", err)
	}
	if len(tickers) == 0 {
		return []models.TickerSummary{}, nil
	}

	counts, err := s.repo.CountPrices(ctx, tickers)
	if err != nil {
		return nil, fmt.Errorf("count prices: %w", err)
	}

	out := make([]models.TickerSummary, 0, len(tickers))
	for _, t := range tickers {
		out = append(out, models.TickerSummary{Ticker: t, Rows: counts[t]})
	}
	return out, nil
}
