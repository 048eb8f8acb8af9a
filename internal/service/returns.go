package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/guttosm/pricereturns/internal/domain/models"
	"github.com/guttosm/pricereturns/internal/logger"
	"github.com/guttosm/pricereturns/internal/returns"
)

// Validation errors returned before any price is fetched.
var (
	ErrNoTickers        = errors.New("at least one ticker is required")
	ErrInvalidStartYear = errors.New("start year must be a positive integer")
	ErrUnknownMetric    = errors.New("unknown metric")
)

// ReturnsService computes the period tables exposed by the API and the report mode.
// This decouples HTTP handlers and the CLI from the aggregation functions.
type ReturnsService interface {
	YearlyReturn(ctx context.Context, tickers []string, startYear int) (*models.Table, error)
	MonthlyReturn(ctx context.Context, tickers []string, startYear int) (*models.Table, error)
	MonthlyRebasedPrice(ctx context.Context, tickers []string, startYear int) (*models.Table, error)
	YearlyNormalizedPrice(ctx context.Context, tickers []string, startYear int) (*models.Table, error)
	Compute(ctx context.Context, metric models.Metric, tickers []string, startYear int) (*models.Table, error)
}

type aggregator func(ctx context.Context, src returns.PriceSource, tickers []string, startYear int) *models.Table

type returnsService struct {
	src returns.PriceSource
}

func NewReturnsService(src returns.PriceSource) ReturnsService {
	return &returnsService{src: src}
}

func (s *returnsService) YearlyReturn(ctx context.Context, tickers []string, startYear int) (*models.Table, error) {
	return s.run(ctx, returns.YearlyReturn, tickers, startYear)
}

func (s *returnsService) MonthlyReturn(ctx context.Context, tickers []string, startYear int) (*models.Table, error) {
	return s.run(ctx, returns.MonthlyReturn, tickers, startYear)
}

func (s *returnsService) MonthlyRebasedPrice(ctx context.Context, tickers []string, startYear int) (*models.Table, error) {
	return s.run(ctx, returns.MonthlyRebasedPrice, tickers, startYear)
}

func (s *returnsService) YearlyNormalizedPrice(ctx context.Context, tickers []string, startYear int) (*models.Table, error) {
	return s.run(ctx, returns.YearlyNormalizedPrice, tickers, startYear)
}

// Compute dispatches to the aggregation matching metric.
func (s *returnsService) Compute(ctx context.Context, metric models.Metric, tickers []string, startYear int) (*models.Table, error) {
	switch metric {
	case models.MetricYearlyReturn:
		return s.YearlyReturn(ctx, tickers, startYear)
	case models.MetricMonthlyReturn:
		return s.MonthlyReturn(ctx, tickers, startYear)
	case models.MetricMonthlyRebased:
		return s.MonthlyRebasedPrice(ctx, tickers, startYear)
	case models.MetricYearlyNormalized:
		return s.YearlyNormalizedPrice(ctx, tickers, startYear)
	}
	return nil, fmt.Errorf("compute %q: %w", metric, ErrUnknownMetric)
}

func (s *returnsService) run(ctx context.Context, fn aggregator, tickers []string, startYear int) (*models.Table, error) {
	cleaned := cleanTickers(tickers)
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("validate tickers: %w", ErrNoTickers)
	}
	if startYear < 1 {
		return nil, fmt.Errorf("validate start year %d: %w", startYear, ErrInvalidStartYear)
	}

	table := fn(ctx, s.src, cleaned, startYear)
	logSkips(table)
	return table, nil
}

// cleanTickers trims symbols and drops empty ones. Order and case are kept.
func cleanTickers(tickers []string) []string {
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// logSkips reports absent tickers and missing entries at debug level.
func logSkips(t *models.Table) {
	log := logger.With("service")
	for ticker, reason := range t.Skipped {
		log.Debug().
			Str("metric", string(t.Metric)).
			Str("ticker", ticker).
			Str("reason", reason.String()).
			Msg("ticker skipped")
	}
	for _, ticker := range t.Tickers {
		for _, p := range t.Periods {
			e, ok := t.Entry(ticker, p)
			if !ok || e.OK() {
				continue
			}
			log.Debug().
				Str("metric", string(t.Metric)).
				Str("ticker", ticker).
				Str("period", p.String()).
				Str("reason", e.Reason.String()).
				Msg("period skipped")
		}
	}
}
