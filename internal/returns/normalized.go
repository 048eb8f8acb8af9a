package returns

import (
	"context"

	"github.com/montanaflynn/stats"

	"github.com/guttosm/pricereturns/internal/domain/models"
)

// YearlyNormalizedPrice divides each year-end adjusted close by the ticker's
// price range (max - min over the whole filtered history).
//
// A ticker whose history cannot be fetched has no column. A year that cannot
// be computed keeps its row with a missing entry, so "ticker unavailable" and
// "year unavailable" stay distinguishable.
func YearlyNormalizedPrice(ctx context.Context, src PriceSource, tickers []string, startYear int) *models.Table {
	table := models.NewTable(models.MetricYearlyNormalized, startYear)
	for _, ticker := range uniqueTickers(tickers) {
		rows, reason := fetch(ctx, src, ticker, startYear)
		if reason != models.SkipNone {
			table.Skip(ticker, reason)
			continue
		}

		factor, err := priceRange(rows)
		if err != nil {
			table.Skip(ticker, models.SkipNoData)
			continue
		}

		entries := map[models.PeriodKey]models.Entry{}
		for _, p := range groupBy(rows, yearOf) {
			end, reason := priceOn(rows, p.last())
			if reason != models.SkipNone {
				entries[p.key] = models.Missing(reason)
				continue
			}
			v, reason := divide(end, factor)
			if reason != models.SkipNone {
				entries[p.key] = models.Missing(reason)
				continue
			}
			entries[p.key] = models.Entry{Value: v}
		}
		table.SetColumn(ticker, entries)
	}
	return table
}

// priceRange returns max - min of the adjusted closes.
func priceRange(rows []models.DailyPrice) (float64, error) {
	closes := make(stats.Float64Data, len(rows))
	for i, r := range rows {
		closes[i] = r.AdjClose
	}
	lo, err := stats.Min(closes)
	if err != nil {
		return 0, err
	}
	hi, err := stats.Max(closes)
	if err != nil {
		return 0, err
	}
	return hi - lo, nil
}
