package storage

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

type dummyErr struct{}

func (dummyErr) Error() string { return "dummy" }

func newMockRepo(t *testing.T) (*pricesRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	repo := &pricesRepository{db: db}
	cleanup := func() { _ = db.Close() }
	return repo, mock, cleanup
}

var selectPricesRegex = regexp.MustCompile(`SELECT trade_date, open, high, low, close, adj_close, volume\s+FROM daily_prices\s+WHERE ticker = \$1\s+ORDER BY trade_date`)

func TestGetDailyPrices_SQLMock(t *testing.T) {
	d1 := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		rows     *sqlmock.Rows
		queryErr error
		wantErr  bool
		wantLen  int
	}{
		{
			name: "two rows with nullable columns",
			rows: sqlmock.NewRows([]string{"trade_date", "open", "high", "low", "close", "adj_close", "volume"}).
				AddRow(d1, 9.5, 10.5, 9.0, 10.0, 10.0, int64(100)).
				AddRow(d2, nil, nil, nil, nil, 15.0, nil),
			wantLen: 2,
		},
		{
			name:    "unknown ticker",
			rows:    sqlmock.NewRows([]string{"trade_date", "open", "high", "low", "close", "adj_close", "volume"}),
			wantLen: 0,
		},
		{
			name:     "query error",
			queryErr: dummyErr{},
			wantErr:  true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock, done := newMockRepo(t)
			defer done()

			exp := mock.ExpectQuery(selectPricesRegex.String()).WithArgs("AAA")
			if tc.queryErr != nil {
				exp.WillReturnError(tc.queryErr)
			} else {
				exp.WillReturnRows(tc.rows)
			}

			out, err := repo.GetDailyPrices(context.Background(), "AAA")
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected err: %v", err)
				}
				if len(out) != tc.wantLen {
					t.Fatalf("len=%d want %d", len(out), tc.wantLen)
				}
				if tc.wantLen == 2 {
					if out[0].Volume != 100 || out[0].AdjClose != 10.0 {
						t.Fatalf("unexpected first row: %+v", out[0])
					}
					if out[1].Open != 0 || out[1].Volume != 0 || out[1].AdjClose != 15.0 {
						t.Fatalf("NULL columns should map to zero values: %+v", out[1])
					}
				}
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestListTickers_SQLMock(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT ticker FROM daily_prices ORDER BY ticker")).
		WillReturnRows(sqlmock.NewRows([]string{"ticker"}).AddRow("AAA").AddRow("BBB"))

	out, err := repo.ListTickers(context.Background())
	if err != nil || len(out) != 2 || out[0] != "AAA" || out[1] != "BBB" {
		t.Fatalf("ListTickers: out=%v err=%v", out, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCountPrices_SQLMock(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	tickers := []string{"AAA", "ZZZ"}
	mock.ExpectQuery(`SELECT ticker, COUNT\(\*\)\s+FROM daily_prices\s+WHERE ticker = ANY\(\$1\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"ticker", "count"}).AddRow("AAA", 3))

	out, err := repo.CountPrices(context.Background(), tickers)
	if err != nil {
		t.Fatalf("CountPrices: %v", err)
	}
	if out["AAA"] != 3 {
		t.Fatalf("AAA=%d want 3", out["AAA"])
	}
	if _, ok := out["ZZZ"]; ok {
		t.Fatal("ZZZ has no rows and must be absent")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCountPrices_NoTickersSkipsQuery(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	out, err := repo.CountPrices(context.Background(), nil)
	if err != nil || len(out) != 0 {
		t.Fatalf("unexpected out=%v err=%v", out, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNewPricesRepository_Construct(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func() { _ = db.Close() }()
	if r := NewPricesRepository(db); r == nil {
		t.Fatalf("expected non-nil repository")
	}
}
