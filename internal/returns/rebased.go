package returns

import (
	"context"

	"github.com/guttosm/pricereturns/internal/domain/models"
)

// labelled is one rebased value keyed by its "year-month" label.
type labelled struct {
	label string
	value float64
}

// MonthlyRebasedPrice expresses each month-end adjusted close relative to the
// first month-end on or after startYear, so the first month is always 1.0.
//
// Months are walked in chronological order. Any failure discards the
// ticker's accumulated values; nothing partial reaches the table.
func MonthlyRebasedPrice(ctx context.Context, src PriceSource, tickers []string, startYear int) *models.Table {
	table := models.NewTable(models.MetricMonthlyRebased, startYear)
	for _, ticker := range uniqueTickers(tickers) {
		rows, reason := fetch(ctx, src, ticker, startYear)
		if reason != models.SkipNone {
			table.Skip(ticker, reason)
			continue
		}

		values, reason := rebase(rows)
		if reason != models.SkipNone {
			table.Skip(ticker, reason)
			continue
		}

		entries, reason := reindex(values)
		if reason != models.SkipNone {
			table.Skip(ticker, reason)
			continue
		}
		table.SetColumn(ticker, entries)
	}
	return table
}

func rebase(rows []models.DailyPrice) ([]labelled, models.SkipReason) {
	periods := groupBy(rows, monthOf)
	sortChronologically(periods)

	var (
		base    float64
		hasBase bool
	)
	out := make([]labelled, 0, len(periods))
	for _, p := range periods {
		end, reason := priceOn(rows, p.last())
		if reason != models.SkipNone {
			return nil, reason
		}
		if !hasBase {
			base, hasBase = end, true
		}
		v, reason := divide(end, base)
		if reason != models.SkipNone {
			return nil, reason
		}
		out = append(out, labelled{label: p.key.String(), value: v})
	}
	return out, models.SkipNone
}

// reindex turns "year-month" labels back into composite (year, month) keys.
func reindex(values []labelled) (map[models.PeriodKey]models.Entry, models.SkipReason) {
	entries := make(map[models.PeriodKey]models.Entry, len(values))
	for _, v := range values {
		key, err := models.ParsePeriodKey(v.label)
		if err != nil || !key.IsMonthly() {
			return nil, models.SkipBoundaryLookup
		}
		entries[key] = models.Entry{Value: v.value}
	}
	return entries, models.SkipNone
}
