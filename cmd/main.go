package main

//go:generate swag init --dir .. --generalInfo cmd/main.go --output ../docs --outputTypes go

//
//  @title           pricereturns API
//  @version         1.0
//  @description     Historical yearly/monthly returns and rebased/normalized price series per ticker.
//  @termsOfService  https://github.com/guttosm/pricereturns
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/pricereturns
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        returns
//  @tag.description Period returns per ticker
//
//  @tag.name        prices
//  @tag.description Rebased and normalized price series
//
//  @tag.name        tickers
//  @tag.description Tickers stored in the price database
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guttosm/pricereturns/config"
	_ "github.com/guttosm/pricereturns/docs" // swagger docs
	"github.com/guttosm/pricereturns/internal/app"
	"github.com/guttosm/pricereturns/internal/logger"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
//
// Parameters:
//   - ctx (context.Context): A context with timeout for graceful shutdown.
//   - server (*http.Server): The HTTP server instance to shut down.
//   - cleanup (func()): Cleanup callback to release resources (e.g., DB connections).
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// main is the entry point of the pricereturns application.
//
// Modes (selected via --mode flag):
//   - api:    Starts the REST API exposing the return and price tables.
//   - report: Computes one table and writes it to stdout.
//
// Flags:
//   - --mode:       Execution mode ("api" or "report"). Default: "api".
//   - --port:       Port for the API server. Defaults to value from config (SERVER_PORT).
//   - --metric:     yearly-return, monthly-return, monthly-rebased or yearly-normalized (report).
//   - --tickers:    Comma separated tickers (report).
//   - --start-year: First calendar year kept (report).
//   - --format:     csv or json (report). Default: "csv".
func main() {
	ctx := context.Background()

	// Load configuration from environment or .env file
	config.LoadConfig()

	// Parse CLI flags (override config defaults if provided)
	mode := flag.String("mode", "api", "Mode: api or report")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for API mode")
	metric := flag.String("metric", "yearly-return", "Report metric: yearly-return, monthly-return, monthly-rebased, yearly-normalized")
	tickers := flag.String("tickers", "", "Comma separated tickers for report mode")
	startYear := flag.Int("start-year", 0, "First calendar year kept in report mode")
	format := flag.String("format", "csv", "Report output format: csv or json")
	flag.Parse()

	switch *mode {
	case "api":
		// Initialize JSON logger
		logger.Init()

		// API mode: start the HTTP server
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	case "report":
		// stdout carries the report, logs go to stderr
		logger.InitWithWriter(os.Stderr)

		opts := reportOptions{Metric: *metric, Tickers: *tickers, StartYear: *startYear, Format: *format}
		if err := reportMode(ctx, config.AppConfig, opts, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, "report failed:", err)
			os.Exit(1)
		}

	default:
		logger.Init()
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
