package returns

import (
	"context"
	"errors"
	"time"

	"github.com/guttosm/pricereturns/internal/domain/models"
)

var errUnavailable = errors.New("provider unavailable")

// fakeSource serves fixed histories; unknown tickers fail like an invalid symbol.
type fakeSource struct {
	histories map[string][]models.DailyPrice
	calls     map[string]int
}

func newFakeSource(h map[string][]models.DailyPrice) *fakeSource {
	return &fakeSource{histories: h, calls: map[string]int{}}
}

func (f *fakeSource) History(_ context.Context, ticker string) ([]models.DailyPrice, error) {
	f.calls[ticker]++
	h, ok := f.histories[ticker]
	if !ok {
		return nil, errUnavailable
	}
	return h, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func px(t time.Time, adj float64) models.DailyPrice {
	return models.DailyPrice{Date: t, Open: adj, High: adj, Low: adj, Close: adj, AdjClose: adj, Volume: 1000}
}

// fixtures mirrors the documented scenarios.
func fixtures() map[string][]models.DailyPrice {
	return map[string][]models.DailyPrice{
		"AAA": {
			px(day(2019, time.December, 31), 9.0),
			px(day(2020, time.January, 2), 10.0),
			px(day(2020, time.June, 15), 12.0),
			px(day(2020, time.December, 31), 15.0),
		},
		"BBB": {
			px(day(2021, time.January, 4), 20.0),
			px(day(2021, time.February, 1), 25.0),
		},
		"EMPTY": {},
	}
}
