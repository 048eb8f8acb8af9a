package pricesource

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/guttosm/pricereturns/internal/domain/models"
)

// expectedHeaders enforces the column layout of Yahoo Finance CSV exports.
// If the header doesn't match EXACTLY (order + count), the file is rejected.
var expectedHeaders = []string{
	"Date",
	"Open",
	"High",
	"Low",
	"Close",
	"Adj Close",
	"Volume",
}

// parseFile opens, validates and parses one CSV export.
// It fails on:
//   - header not matching expected order/length
//   - a row with the wrong column count or an unparsable value
//
// It tolerates:
//   - rows whose Adj Close is empty or "null" (non-trading placeholders); they are dropped
//   - empty or "null" open/high/low/close/volume cells (they become zero values)
func parseFile(ctx context.Context, path string) ([]models.DailyPrice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // checked explicitly below
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(expectedHeaders) {
		return nil, fmt.Errorf("invalid header length: expected %d, got %d", len(expectedHeaders), len(header))
	}
	for i, h := range header {
		if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) != expectedHeaders[i] {
			return nil, fmt.Errorf("invalid header at col %d: expected %q, got %q", i+1, expectedHeaders[i], h)
		}
	}

	var out []models.DailyPrice
	lineNumber := 1 // header already read
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rec, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read line after %d: %w", lineNumber, err)
		}
		lineNumber++

		if len(rec) != len(expectedHeaders) {
			return nil, fmt.Errorf("invalid column count on line %d: expected %d got %d", lineNumber, len(expectedHeaders), len(rec))
		}

		p, ok, err := recordToPrice(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}
		if ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// recordToPrice converts one CSV record (length already validated). The
// boolean is false for rows without an adjusted close.
//
//	0 Date      → Date (DATE, "2006-01-02", required)
//	1 Open      → Open (float, empty/null → 0)
//	2 High      → High
//	3 Low       → Low
//	4 Close     → Close
//	5 Adj Close → AdjClose (float, empty/null → row dropped)
//	6 Volume    → Volume (int64, empty/null → 0)
func recordToPrice(rec []string) (models.DailyPrice, bool, error) {
	var p models.DailyPrice

	d, err := time.Parse("2006-01-02", strings.TrimSpace(rec[0]))
	if err != nil {
		return p, false, fmt.Errorf("invalid Date: %v", err)
	}
	p.Date = d

	if isNull(rec[5]) {
		return p, false, nil
	}

	fields := []struct {
		name string
		dst  *float64
		raw  string
	}{
		{"Open", &p.Open, rec[1]},
		{"High", &p.High, rec[2]},
		{"Low", &p.Low, rec[3]},
		{"Close", &p.Close, rec[4]},
		{"Adj Close", &p.AdjClose, rec[5]},
	}
	for _, f := range fields {
		if isNull(f.raw) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(f.raw), 64)
		if err != nil {
			return p, false, fmt.Errorf("invalid %s: %v", f.name, err)
		}
		*f.dst = v
	}

	if s := strings.TrimSpace(rec[6]); !isNull(s) {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return p, false, fmt.Errorf("invalid Volume: %v", err)
		}
		p.Volume = v
	}

	return p, true, nil
}

func isNull(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "null")
}
