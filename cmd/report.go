package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/guttosm/pricereturns/config"
	"github.com/guttosm/pricereturns/internal/app"
	"github.com/guttosm/pricereturns/internal/domain/dto"
	"github.com/guttosm/pricereturns/internal/domain/models"
	"github.com/guttosm/pricereturns/internal/service"
)

// reportOptions are the flags of --mode report.
type reportOptions struct {
	Metric    string
	Tickers   string
	StartYear int
	Format    string
}

// reportMode opens the configured price source, writes one report to w and
// releases the source.
func reportMode(ctx context.Context, cfg config.Config, opts reportOptions, w io.Writer) error {
	src, err := app.OpenSources(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open price source: %w", err)
	}
	defer src.Close()

	return runReport(ctx, service.NewReturnsService(src.Prices), opts, w)
}

// runReport computes one table and writes it to w.
//
// Formats:
//   - csv:  header "period,<ticker>...", one row per period, empty cell when missing.
//   - json: the same body the HTTP API returns.
func runReport(ctx context.Context, svc service.ReturnsService, opts reportOptions, w io.Writer) error {
	metric, err := models.ParseMetric(opts.Metric)
	if err != nil {
		return err
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format != "csv" && format != "json" {
		return fmt.Errorf("unknown format %q, expected csv or json", opts.Format)
	}

	table, err := svc.Compute(ctx, metric, strings.Split(opts.Tickers, ","), opts.StartYear)
	if err != nil {
		return fmt.Errorf("compute %s: %w", metric, err)
	}

	if format == "json" {
		return writeJSON(w, table)
	}
	return writeCSV(w, table)
}

func writeCSV(w io.Writer, t *models.Table) error {
	cw := csv.NewWriter(w)

	header := append([]string{"period"}, t.Tickers...)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, p := range t.Periods {
		rec := make([]string, 0, len(header))
		rec = append(rec, p.String())
		for _, ticker := range t.Tickers {
			v, ok := t.Get(ticker, p)
			if !ok {
				rec = append(rec, "")
				continue
			}
			rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, t *models.Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(dto.NewTableResponse(t))
}
