package dto

import (
	"math"

	"github.com/guttosm/pricereturns/internal/domain/models"
)

// TableResponse represents the JSON structure returned by the
// /api/v1/returns/* and /api/v1/prices/* endpoints.
//
// Rows are periods in chronological order; each row carries one value per
// ticker column. A missing value is null and its reason is listed in Reasons.
// Tickers that produced no column at all are listed in Skipped.
type TableResponse struct {
	Metric    string            `json:"metric" example:"yearly_return"`
	StartYear int               `json:"start_year" example:"2020"`
	Tickers   []string          `json:"tickers" example:"AAPL,MSFT"`
	Rows      []RowResponse     `json:"rows"`
	Skipped   map[string]string `json:"skipped" example:"ZZZ:fetch_failed"`
}

// RowResponse is one period row of a TableResponse.
type RowResponse struct {
	Period  string              `json:"period" example:"2021-2"`
	Year    int                 `json:"year" example:"2021"`
	Month   int                 `json:"month,omitempty" example:"2"`
	Values  map[string]*float64 `json:"values"`
	Reasons map[string]string   `json:"reasons,omitempty"`
}

// NewTableResponse maps a computed table to its API representation.
func NewTableResponse(t *models.Table) TableResponse {
	resp := TableResponse{
		Metric:    string(t.Metric),
		StartYear: t.StartYear,
		Tickers:   append([]string{}, t.Tickers...),
		Rows:      make([]RowResponse, 0, len(t.Periods)),
		Skipped:   make(map[string]string, len(t.Skipped)),
	}

	for ticker, reason := range t.Skipped {
		resp.Skipped[ticker] = reason.String()
	}

	for _, p := range t.Periods {
		row := RowResponse{
			Period: p.String(),
			Year:   p.Year,
			Month:  p.Month,
			Values: make(map[string]*float64, len(t.Tickers)),
		}
		for _, ticker := range t.Tickers {
			e, ok := t.Entry(ticker, p)
			switch {
			case !ok:
				row.Values[ticker] = nil
			case !e.OK() || math.IsNaN(e.Value) || math.IsInf(e.Value, 0):
				row.Values[ticker] = nil
				if row.Reasons == nil {
					row.Reasons = map[string]string{}
				}
				reason := e.Reason
				if reason == models.SkipNone {
					reason = models.SkipArithmetic
				}
				row.Reasons[ticker] = reason.String()
			default:
				v := e.Value
				row.Values[ticker] = &v
			}
		}
		resp.Rows = append(resp.Rows, row)
	}

	return resp
}

// TickerResponse is one entry of GET /api/v1/tickers.
type TickerResponse struct {
	Ticker string `json:"ticker" example:"AAPL"`
	Rows   int    `json:"rows" example:"5284"`
}
