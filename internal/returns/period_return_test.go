package returns

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/guttosm/pricereturns/internal/domain/models"
)

func TestYearlyReturn_Scenario(t *testing.T) {
	src := newFakeSource(fixtures())
	tb := YearlyReturn(context.Background(), src, []string{"AAA", "ZZZ"}, 2020)

	v, ok := tb.Get("AAA", models.YearKey(2020))
	if !ok || math.Abs(v-0.5) > 1e-12 {
		t.Fatalf("AAA 2020 = %v ok=%v, want 0.5", v, ok)
	}
	if _, ok := tb.Entry("AAA", models.YearKey(2019)); ok {
		t.Fatal("2019 must be filtered out by start year")
	}
	if tb.HasTicker("ZZZ") || tb.Skipped["ZZZ"] != models.SkipFetchFailed {
		t.Fatalf("ZZZ should be absent with fetch_failed, skipped=%v", tb.Skipped)
	}
	if diff := cmp.Diff([]string{"AAA"}, tb.Tickers); diff != "" {
		t.Fatalf("tickers mismatch (-want +got):\n%s", diff)
	}
}

func TestYearlyReturn_TableDriven(t *testing.T) {
	cases := []struct {
		name       string
		history    []models.DailyPrice
		startYear  int
		period     models.PeriodKey
		want       float64
		wantReason models.SkipReason
	}{
		{
			name:      "single trading day is zero",
			history:   []models.DailyPrice{px(day(2020, time.March, 2), 42.0)},
			startYear: 2020,
			period:    models.YearKey(2020),
			want:      0,
		},
		{
			name: "first and last of year",
			history: []models.DailyPrice{
				px(day(2021, time.January, 4), 100),
				px(day(2021, time.July, 1), 50),
				px(day(2021, time.December, 30), 80),
			},
			startYear: 2000,
			period:    models.YearKey(2021),
			want:      -0.2,
		},
		{
			name: "unordered history still uses earliest and latest",
			history: []models.DailyPrice{
				px(day(2021, time.December, 30), 80),
				px(day(2021, time.January, 4), 100),
			},
			startYear: 2021,
			period:    models.YearKey(2021),
			want:      -0.2,
		},
		{
			name: "duplicate boundary date",
			history: []models.DailyPrice{
				px(day(2022, time.January, 3), 10),
				px(day(2022, time.January, 3), 11),
				px(day(2022, time.May, 3), 12),
			},
			startYear:  2022,
			period:     models.YearKey(2022),
			wantReason: models.SkipBoundaryLookup,
		},
		{
			name: "zero start price",
			history: []models.DailyPrice{
				px(day(2022, time.January, 3), 0),
				px(day(2022, time.May, 3), 12),
			},
			startYear:  2022,
			period:     models.YearKey(2022),
			wantReason: models.SkipArithmetic,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := newFakeSource(map[string][]models.DailyPrice{"T": tc.history})
			tb := YearlyReturn(context.Background(), src, []string{"T"}, tc.startYear)
			e, ok := tb.Entry("T", tc.period)
			if !ok {
				t.Fatalf("no entry for %s", tc.period)
			}
			if e.Reason != tc.wantReason {
				t.Fatalf("reason=%s want %s", e.Reason, tc.wantReason)
			}
			if tc.wantReason == models.SkipNone && math.Abs(e.Value-tc.want) > 1e-12 {
				t.Fatalf("value=%v want %v", e.Value, tc.want)
			}
		})
	}
}

func TestMonthlyReturn_PerMonth(t *testing.T) {
	history := []models.DailyPrice{
		px(day(2020, time.November, 30), 1),
		px(day(2021, time.January, 4), 10),
		px(day(2021, time.January, 29), 11),
		px(day(2021, time.March, 1), 20),
		px(day(2021, time.March, 15), 15),
		px(day(2021, time.March, 31), 25),
	}
	src := newFakeSource(map[string][]models.DailyPrice{"MMM": history})
	tb := MonthlyReturn(context.Background(), src, []string{"MMM"}, 2021)

	want := map[models.PeriodKey]models.Entry{
		models.MonthKey(2021, time.January): {Value: 0.1},
		models.MonthKey(2021, time.March):   {Value: 0.25},
	}
	if diff := cmp.Diff(want, tb.Column("MMM"), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Fatalf("monthly returns mismatch (-want +got):\n%s", diff)
	}
	for _, p := range tb.Periods {
		if p.Year < 2021 {
			t.Fatalf("period %s is before start year", p)
		}
		if p.Month == int(time.February) {
			t.Fatal("months without trading days must not appear")
		}
	}
}

func TestPeriodReturn_EmptyAfterFilter(t *testing.T) {
	src := newFakeSource(fixtures())
	tb := MonthlyReturn(context.Background(), src, []string{"AAA", "EMPTY"}, 2030)
	if len(tb.Tickers) != 0 {
		t.Fatalf("expected no columns, got %v", tb.Tickers)
	}
	if tb.Skipped["AAA"] != models.SkipNoData || tb.Skipped["EMPTY"] != models.SkipNoData {
		t.Fatalf("unexpected skip reasons: %v", tb.Skipped)
	}
}

func TestPeriodReturn_DuplicateTickersFetchedOnce(t *testing.T) {
	src := newFakeSource(fixtures())
	tb := YearlyReturn(context.Background(), src, []string{"AAA", " AAA ", "", "BBB"}, 2020)
	if diff := cmp.Diff([]string{"AAA", "BBB"}, tb.Tickers); diff != "" {
		t.Fatalf("tickers mismatch (-want +got):\n%s", diff)
	}
	if src.calls["AAA"] != 1 {
		t.Fatalf("AAA fetched %d times", src.calls["AAA"])
	}
}

func TestFunctions_Idempotent(t *testing.T) {
	fns := map[string]func(context.Context, PriceSource, []string, int) *models.Table{
		"yearly":     YearlyReturn,
		"monthly":    MonthlyReturn,
		"rebased":    MonthlyRebasedPrice,
		"normalized": YearlyNormalizedPrice,
	}
	tickers := []string{"AAA", "BBB", "ZZZ"}
	for name, fn := range fns {
		t.Run(name, func(t *testing.T) {
			src := newFakeSource(fixtures())
			a := fn(context.Background(), src, tickers, 2020)
			b := fn(context.Background(), src, tickers, 2020)
			opts := cmp.Options{cmp.AllowUnexported(models.Table{}), cmpopts.EquateNaNs()}
			if diff := cmp.Diff(a, b, opts); diff != "" {
				t.Fatalf("second run differs (-first +second):\n%s", diff)
			}
		})
	}
}
