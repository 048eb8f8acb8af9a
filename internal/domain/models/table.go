package models

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Metric names the quantity stored in a Table.
type Metric string

const (
	MetricYearlyReturn     Metric = "yearly_return"
	MetricMonthlyReturn    Metric = "monthly_return"
	MetricMonthlyRebased   Metric = "monthly_rebased_price"
	MetricYearlyNormalized Metric = "yearly_normalized_price"
)

// ParseMetric accepts a metric name in either its canonical form
// ("yearly_return") or the dashed CLI form ("yearly-return", "monthly-rebased").
func ParseMetric(s string) (Metric, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "yearly_return":
		return MetricYearlyReturn, nil
	case "monthly_return":
		return MetricMonthlyReturn, nil
	case "monthly_rebased", "monthly_rebased_price":
		return MetricMonthlyRebased, nil
	case "yearly_normalized", "yearly_normalized_price":
		return MetricYearlyNormalized, nil
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// SkipReason explains why a ticker or a ticker/period entry has no value.
type SkipReason int

const (
	SkipNone SkipReason = iota
	// SkipFetchFailed: the price source returned an error for the ticker.
	SkipFetchFailed
	// SkipNoData: no rows left after the start-year filter.
	SkipNoData
	// SkipBoundaryLookup: a boundary date matched zero or several rows.
	SkipBoundaryLookup
	// SkipArithmetic: zero divisor or a non-finite result.
	SkipArithmetic
)

func (r SkipReason) String() string {
	switch r {
	case SkipNone:
		return "none"
	case SkipFetchFailed:
		return "fetch_failed"
	case SkipNoData:
		return "no_data"
	case SkipBoundaryLookup:
		return "boundary_lookup"
	case SkipArithmetic:
		return "arithmetic"
	default:
		return "unknown"
	}
}

// Entry is the explicit result for one ticker/period pair.
type Entry struct {
	Value  float64
	Reason SkipReason
}

// OK reports whether the entry holds a valid value.
func (e Entry) OK() bool { return e.Reason == SkipNone }

// Missing builds an entry carrying only a skip reason.
func Missing(r SkipReason) Entry { return Entry{Value: math.NaN(), Reason: r} }

// Table is the two-dimensional result of an aggregation: rows are periods,
// columns are tickers. Tickers absent from the table are listed in Skipped.
//
// Tables are built by the returns package one ticker at a time; a ticker's
// column is committed in a single SetColumn call.
type Table struct {
	Metric    Metric
	StartYear int
	Tickers   []string
	Periods   []PeriodKey
	Skipped   map[string]SkipReason

	columns map[string]map[PeriodKey]Entry
}

// NewTable returns an empty table for the given metric.
func NewTable(metric Metric, startYear int) *Table {
	return &Table{
		Metric:    metric,
		StartYear: startYear,
		Tickers:   []string{},
		Periods:   []PeriodKey{},
		Skipped:   map[string]SkipReason{},
		columns:   map[string]map[PeriodKey]Entry{},
	}
}

// SetColumn commits all entries of one ticker. Period rows are merged and
// kept sorted. Committing a column clears any previous skip for the ticker.
func (t *Table) SetColumn(ticker string, entries map[PeriodKey]Entry) {
	if _, ok := t.columns[ticker]; !ok {
		t.Tickers = append(t.Tickers, ticker)
	}
	col := make(map[PeriodKey]Entry, len(entries))
	for k, e := range entries {
		col[k] = e
	}
	t.columns[ticker] = col
	delete(t.Skipped, ticker)

	seen := make(map[PeriodKey]struct{}, len(t.Periods))
	for _, p := range t.Periods {
		seen[p] = struct{}{}
	}
	for k := range entries {
		if _, ok := seen[k]; !ok {
			t.Periods = append(t.Periods, k)
			seen[k] = struct{}{}
		}
	}
	sort.Slice(t.Periods, func(i, j int) bool { return t.Periods[i].Less(t.Periods[j]) })
}

// Skip records that ticker is absent from the table and why.
func (t *Table) Skip(ticker string, reason SkipReason) {
	if _, ok := t.columns[ticker]; ok {
		return
	}
	t.Skipped[ticker] = reason
}

// HasTicker reports whether ticker has a column.
func (t *Table) HasTicker(ticker string) bool {
	_, ok := t.columns[ticker]
	return ok
}

// Entry returns the explicit entry for ticker/period. The boolean is false
// when no entry exists at all (the cell is unset).
func (t *Table) Entry(ticker string, period PeriodKey) (Entry, bool) {
	col, ok := t.columns[ticker]
	if !ok {
		return Entry{}, false
	}
	e, ok := col[period]
	return e, ok
}

// Get returns the value for ticker/period and whether it is valid.
func (t *Table) Get(ticker string, period PeriodKey) (float64, bool) {
	e, ok := t.Entry(ticker, period)
	if !ok || !e.OK() {
		return math.NaN(), false
	}
	return e.Value, true
}

// Column returns a copy of the entries of one ticker.
func (t *Table) Column(ticker string) map[PeriodKey]Entry {
	col := t.columns[ticker]
	out := make(map[PeriodKey]Entry, len(col))
	for k, e := range col {
		out[k] = e
	}
	return out
}
