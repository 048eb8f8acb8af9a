package returns

import (
	"context"
	"time"

	"github.com/guttosm/pricereturns/internal/domain/models"
)

// YearlyReturn computes (last - first) / first adjusted close for every
// calendar year of each ticker, from startYear on.
func YearlyReturn(ctx context.Context, src PriceSource, tickers []string, startYear int) *models.Table {
	return periodReturn(ctx, src, tickers, startYear, models.MetricYearlyReturn, yearOf)
}

// MonthlyReturn computes the same ratio for every year-month present in each
// ticker's history.
func MonthlyReturn(ctx context.Context, src PriceSource, tickers []string, startYear int) *models.Table {
	return periodReturn(ctx, src, tickers, startYear, models.MetricMonthlyReturn, monthOf)
}

func periodReturn(
	ctx context.Context,
	src PriceSource,
	tickers []string,
	startYear int,
	metric models.Metric,
	keyOf func(time.Time) models.PeriodKey,
) *models.Table {
	table := models.NewTable(metric, startYear)
	for _, ticker := range uniqueTickers(tickers) {
		rows, reason := fetch(ctx, src, ticker, startYear)
		if reason != models.SkipNone {
			table.Skip(ticker, reason)
			continue
		}

		entries := map[models.PeriodKey]models.Entry{}
		for _, p := range groupBy(rows, keyOf) {
			entries[p.key] = returnOf(rows, p)
		}
		table.SetColumn(ticker, entries)
	}
	return table
}

// returnOf prices both boundaries of p against the full filtered history.
func returnOf(rows []models.DailyPrice, p period) models.Entry {
	start, reason := priceOn(rows, p.first())
	if reason != models.SkipNone {
		return models.Missing(reason)
	}
	end, reason := priceOn(rows, p.last())
	if reason != models.SkipNone {
		return models.Missing(reason)
	}
	v, reason := divide(end-start, start)
	if reason != models.SkipNone {
		return models.Missing(reason)
	}
	return models.Entry{Value: v}
}
