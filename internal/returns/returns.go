// Package returns derives period-level metrics (returns, rebased and
// normalized prices) from daily adjusted-close histories.
//
// Every function processes tickers sequentially, one fetch per ticker, and
// never fails as a whole: a ticker that cannot be fetched is recorded in
// Table.Skipped and a period that cannot be computed carries an explicit
// models.SkipReason.
package returns

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/guttosm/pricereturns/internal/domain/models"
)

// PriceSource returns the complete daily history of a ticker, ascending by
// date with one row per trading day.
type PriceSource interface {
	History(ctx context.Context, ticker string) ([]models.DailyPrice, error)
}

// PriceSourceFunc adapts a function to PriceSource.
type PriceSourceFunc func(ctx context.Context, ticker string) ([]models.DailyPrice, error)

func (f PriceSourceFunc) History(ctx context.Context, ticker string) ([]models.DailyPrice, error) {
	return f(ctx, ticker)
}

// period groups the rows of one calendar bucket.
type period struct {
	key  models.PeriodKey
	rows []models.DailyPrice
}

// first and last return the earliest and latest trading dates of the period.
func (p period) first() time.Time {
	earliest := p.rows[0].Date
	for _, r := range p.rows[1:] {
		if r.Date.Before(earliest) {
			earliest = r.Date
		}
	}
	return earliest
}

func (p period) last() time.Time {
	latest := p.rows[0].Date
	for _, r := range p.rows[1:] {
		if r.Date.After(latest) {
			latest = r.Date
		}
	}
	return latest
}

func yearOf(t time.Time) models.PeriodKey  { return models.YearKey(t.Year()) }
func monthOf(t time.Time) models.PeriodKey { return models.MonthKey(t.Year(), t.Month()) }

// fetch loads a ticker's history and keeps rows dated in startYear or later.
func fetch(ctx context.Context, src PriceSource, ticker string, startYear int) ([]models.DailyPrice, models.SkipReason) {
	history, err := src.History(ctx, ticker)
	if err != nil {
		return nil, models.SkipFetchFailed
	}
	rows := make([]models.DailyPrice, 0, len(history))
	for _, r := range history {
		if r.Date.Year() >= startYear {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return nil, models.SkipNoData
	}
	return rows, models.SkipNone
}

// groupBy buckets rows by keyOf, in the order each key is first seen.
func groupBy(rows []models.DailyPrice, keyOf func(time.Time) models.PeriodKey) []period {
	idx := map[models.PeriodKey]int{}
	var out []period
	for _, r := range rows {
		k := keyOf(r.Date)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, period{key: k})
		}
		out[i].rows = append(out[i].rows, r)
	}
	return out
}

func sortChronologically(periods []period) {
	sort.SliceStable(periods, func(i, j int) bool { return periods[i].key.Less(periods[j].key) })
}

// priceOn re-derives the adjusted close for a boundary date. Exactly one row
// must match the calendar day.
func priceOn(rows []models.DailyPrice, date time.Time) (float64, models.SkipReason) {
	var (
		price   float64
		matches int
	)
	y, m, d := date.Date()
	for _, r := range rows {
		ry, rm, rd := r.Date.Date()
		if ry == y && rm == m && rd == d {
			price = r.AdjClose
			matches++
		}
	}
	if matches != 1 {
		return 0, models.SkipBoundaryLookup
	}
	return price, models.SkipNone
}

// divide fails on a zero divisor or a non-finite quotient.
func divide(num, den float64) (float64, models.SkipReason) {
	if den == 0 {
		return 0, models.SkipArithmetic
	}
	v := num / den
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, models.SkipArithmetic
	}
	return v, models.SkipNone
}

// uniqueTickers trims blanks and drops repeated symbols, keeping first position.
func uniqueTickers(tickers []string) []string {
	seen := make(map[string]struct{}, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
