package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/pricereturns/config"
	"github.com/guttosm/pricereturns/internal/api"
	"github.com/guttosm/pricereturns/internal/logger"
	"github.com/guttosm/pricereturns/internal/pricesource"
	"github.com/guttosm/pricereturns/internal/returns"
	"github.com/guttosm/pricereturns/internal/service"
	"github.com/guttosm/pricereturns/internal/storage"
)

// Sources bundles the price source selected by PRICE_SOURCE with the
// optional capabilities only some sources have.
type Sources struct {
	Kind    string
	Prices  returns.PriceSource
	Tickers service.TickersService          // nil unless PRICE_SOURCE=postgres
	Ping    func(ctx context.Context) error // nil when there is nothing to probe
	Close   func()
}

// OpenSources builds the configured price source.
//
// Behavior:
//   - yahoo:    remote daily bars starting at YAHOO_HISTORY_START.
//   - postgres: read-only daily_prices table; enables ticker listing and DB readiness.
//   - csv:      every <TICKER>.csv under CSV_DIR loaded into memory up front.
//
// Returns:
//   - *Sources: the source bundle; Close must be called on shutdown.
//   - error: unknown source kind or a failure opening the source.
func OpenSources(ctx context.Context, cfg config.Config) (*Sources, error) {
	log := logger.With("app")

	switch cfg.Source.Kind {
	case config.SourceYahoo:
		log.Info().Time("history_start", cfg.Source.YahooHistoryStart).Msg("using yahoo price source")
		return &Sources{
			Kind:   cfg.Source.Kind,
			Prices: pricesource.NewYahoo(cfg.Source.YahooHistoryStart),
			Close:  func() {},
		}, nil

	case config.SourcePostgres:
		// indirection for unit testing
		db, err := postgresOpener(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		repo := storage.NewPricesRepository(db)
		log.Info().Str("host", cfg.Postgres.Host).Str("db", cfg.Postgres.DBName).Msg("using postgres price source")
		return &Sources{
			Kind:    cfg.Source.Kind,
			Prices:  pricesource.NewPostgres(repo),
			Tickers: service.NewTickersService(repo),
			Ping:    db.PingContext,
			Close:   closer(db),
		}, nil

	case config.SourceCSV:
		mem, err := pricesource.LoadDirectory(ctx, cfg.Source.CSVDir, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to load csv directory %s: %w", cfg.Source.CSVDir, err)
		}
		log.Info().Str("dir", cfg.Source.CSVDir).Int("tickers", len(mem.Tickers())).Msg("using csv price source")
		return &Sources{
			Kind:   cfg.Source.Kind,
			Prices: mem,
			Close:  func() {},
		}, nil
	}

	return nil, fmt.Errorf("unknown price source %q", cfg.Source.Kind)
}

func closer(db *sql.DB) func() {
	return func() { _ = db.Close() }
}

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Opens the price source selected by PRICE_SOURCE.
//   - Creates the service and HTTP handler layers.
//   - Configures the Gin router with all API routes.
//   - Registers health and readiness probes.
//   - Provides a cleanup function to close resources (e.g., DB connection).
//
// Returns:
//   - *gin.Engine: the configured Gin HTTP router.
//   - func(): cleanup function to be executed on shutdown.
//   - error: any initialization error that occurred.
func InitializeApp() (*gin.Engine, func(), error) {
	// Load global configuration
	cfg := config.AppConfig

	src, err := OpenSources(context.Background(), cfg)
	if err != nil {
		return nil, nil, err
	}

	// Initialize service layer (business logic)
	svc := service.NewReturnsService(src.Prices)

	// Initialize HTTP handler layer (business logic to HTTP mapping)
	handler := api.NewHandler(svc, src.Tickers)

	// Setup Gin router with routes
	router := api.NewRouter(handler)

	// Register health and readiness probes
	healthHandler := api.NewHealthHandler(src.Kind, src.Ping)
	healthHandler.Register(router)

	return router, src.Close, nil
}
