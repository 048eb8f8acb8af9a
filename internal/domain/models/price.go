package models

import "time"

// DailyPrice represents one trading day in a ticker's price history.
//
// Column order (as delivered by Yahoo-style exports):
//  1. Date
//  2. Open
//  3. High
//  4. Low
//  5. Close
//  6. AdjClose
//  7. Volume
//
// AdjClose is the canonical price for every metric computed by the service.
type DailyPrice struct {
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   int64
}

// TickerSummary describes one ticker stored in the price database.
type TickerSummary struct {
	Ticker string
	Rows   int
}
