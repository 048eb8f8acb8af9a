//go:build integration
// +build integration

package api_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	goose "github.com/pressly/goose/v3"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/guttosm/pricereturns/config"
	"github.com/guttosm/pricereturns/internal/app"
	"github.com/guttosm/pricereturns/internal/domain/dto"
)

func startPG(t *testing.T) (dsn string, host string, port nat.Port, terminate func()) {
	t.Helper()
	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "pricereturns",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
		},
		WaitingFor: wait.ForSQL("5432/tcp", "postgres", func(h string, p nat.Port) string {
			return fmt.Sprintf("host=%s port=%s user=postgres password=postgres dbname=pricereturns sslmode=disable", h, p.Port())
		}).WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("container: %v", err)
	}
	h, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", "postgres", "postgres", h, mp.Port(), "pricereturns")
	terminate = func() { _ = c.Terminate(context.Background()) }
	return dsn, h, mp, terminate
}

func openAndMigrate(t *testing.T, dsn string) *sql.DB {
	t.Helper()
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		t.Fatalf("dialect: %v", err)
	}
	path := filepath.Join("..", "..", "db", "migrations")
	if err := goose.Up(db, path); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedForE2E(t *testing.T, db *sql.DB) {
	t.Helper()
	rows := []struct {
		ticker string
		date   time.Time
		adj    float64
	}{
		{"AAA", time.Date(2019, 12, 31, 0, 0, 0, 0, time.UTC), 99},
		{"AAA", time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), 10},
		{"AAA", time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC), 15},
		{"BBB", time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC), 20},
		{"BBB", time.Date(2021, 1, 29, 0, 0, 0, 0, time.UTC), 20},
		{"BBB", time.Date(2021, 2, 26, 0, 0, 0, 0, time.UTC), 25},
	}
	for _, r := range rows {
		_, err := db.Exec(`INSERT INTO daily_prices (ticker, trade_date, open, high, low, close, adj_close, volume)
			VALUES ($1, $2, $3, $3, $3, $3, $3, 1000)`, r.ticker, r.date, r.adj)
		if err != nil {
			t.Fatalf("seed %s %s: %v", r.ticker, r.date.Format("2006-01-02"), err)
		}
	}
}

func get(t *testing.T, h http.Handler, path string, out any) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("%s: unexpected status %d body=%s", path, w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("%s: json: %v", path, err)
	}
}

func TestAPI_E2E_Postgres(t *testing.T) {
	dsn, host, port, term := startPG(t)
	defer term()
	db := openAndMigrate(t, dsn)
	defer db.Close()
	seedForE2E(t, db)

	// Point application config to containerized DB
	old := config.AppConfig
	t.Cleanup(func() { config.AppConfig = old })
	config.AppConfig.Source.Kind = config.SourcePostgres
	config.AppConfig.Postgres.Host = host
	p, _ := nat.ParsePort(port.Port())
	config.AppConfig.Postgres.Port = int(p)
	config.AppConfig.Postgres.User = "postgres"
	config.AppConfig.Postgres.Password = "postgres"
	config.AppConfig.Postgres.DBName = "pricereturns"
	config.AppConfig.Postgres.SSLMode = "disable"

	router, cleanup, err := app.InitializeApp()
	if err != nil {
		t.Fatalf("init app: %v", err)
	}
	defer cleanup()

	var yearly dto.TableResponse
	get(t, router, "/api/v1/returns/yearly?tickers=AAA,ZZZ&start_year=2020", &yearly)
	if len(yearly.Rows) != 1 || yearly.Rows[0].Period != "2020" {
		t.Fatalf("unexpected rows: %+v", yearly.Rows)
	}
	if v := yearly.Rows[0].Values["AAA"]; v == nil || *v != 0.5 {
		t.Fatalf("AAA 2020 = %v, want 0.5", v)
	}
	if yearly.Skipped["ZZZ"] != "fetch_failed" {
		t.Fatalf("ZZZ should be skipped with fetch_failed, got %v", yearly.Skipped)
	}

	var rebased dto.TableResponse
	get(t, router, "/api/v1/prices/rebased/monthly?tickers=BBB&start_year=2021", &rebased)
	if len(rebased.Rows) != 2 || *rebased.Rows[0].Values["BBB"] != 1.0 || *rebased.Rows[1].Values["BBB"] != 1.25 {
		t.Fatalf("unexpected rebased rows: %+v", rebased.Rows)
	}

	var tickers []dto.TickerResponse
	get(t, router, "/api/v1/tickers", &tickers)
	if len(tickers) != 2 || tickers[0].Ticker != "AAA" || tickers[0].Rows != 3 || tickers[1].Rows != 3 {
		t.Fatalf("unexpected tickers: %+v", tickers)
	}
}
