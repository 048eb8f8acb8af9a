package pricesource

import (
	"context"
	"errors"
	"fmt"
	"time"
	_ "time/tzdata" // exchange zones on hosts without a zoneinfo database

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"

	"github.com/guttosm/pricereturns/internal/domain/models"
)

// ErrNoHistory is returned when Yahoo answers without any daily bar.
var ErrNoHistory = errors.New("no price history")

// barIterator is the subset of *chart.Iter used here.
type barIterator interface {
	Next() bool
	Bar() *finance.ChartBar
	Err() error
	Meta() finance.ChartMeta
}

// chartGet is an indirection for unit testing; defaults to chart.Get.
var chartGet = func(p *chart.Params) barIterator {
	return chart.Get(p)
}

// Yahoo fetches daily bars from the Yahoo Finance chart API.
type Yahoo struct {
	from time.Time
	now  func() time.Time
}

// NewYahoo returns a source requesting bars from `from` up to today.
func NewYahoo(from time.Time) *Yahoo {
	return &Yahoo{from: from, now: time.Now}
}

// History downloads the full daily history of ticker. The call blocks until
// Yahoo answers; ctx is only checked before the request starts.
func (y *Yahoo) History(ctx context.Context, ticker string) ([]models.DailyPrice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := y.from
	end := y.now()
	params := &chart.Params{
		Symbol:   ticker,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}
	iter := chartGet(params)

	var bars []*finance.ChartBar
	for iter.Next() {
		bars = append(bars, iter.Bar())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to get prices for %s: %w", ticker, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: %w", ticker, ErrNoHistory)
	}

	loc := exchangeLocation(iter.Meta())
	rows := make([]models.DailyPrice, 0, len(bars))
	for _, b := range bars {
		rows = append(rows, barToPrice(b, loc))
	}
	return rows, nil
}

// exchangeLocation resolves the trading venue's zone from the chart metadata:
// the IANA name when it loads, else the reported GMT offset.
func exchangeLocation(meta finance.ChartMeta) *time.Location {
	if meta.ExchangeTimezoneName != "" {
		if loc, err := time.LoadLocation(meta.ExchangeTimezoneName); err == nil {
			return loc
		}
	}
	if meta.Gmtoffset != 0 {
		name := meta.Timezone
		if name == "" {
			name = fmt.Sprintf("GMT%+d", meta.Gmtoffset/3600)
		}
		return time.FixedZone(name, meta.Gmtoffset)
	}
	return time.UTC
}

// barToPrice dates a bar by its session day in the exchange's zone.
func barToPrice(b *finance.ChartBar, loc *time.Location) models.DailyPrice {
	ts := time.Unix(int64(b.Timestamp), 0).In(loc)
	return models.DailyPrice{
		Date:     time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC),
		Open:     b.Open.InexactFloat64(),
		High:     b.High.InexactFloat64(),
		Low:      b.Low.InexactFloat64(),
		Close:    b.Close.InexactFloat64(),
		AdjClose: b.AdjClose.InexactFloat64(),
		Volume:   int64(b.Volume),
	}
}
