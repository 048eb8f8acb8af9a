// Package pricesource provides the daily price histories consumed by the
// returns package: Yahoo Finance charts, a Postgres price table, or a
// directory of CSV exports loaded into memory.
package pricesource

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/guttosm/pricereturns/internal/domain/models"
)

// ErrUnknownTicker is returned when a source has no history for a symbol.
var ErrUnknownTicker = errors.New("unknown ticker")

// Memory is an in-memory source keyed by upper-cased ticker. Safe for
// concurrent use.
type Memory struct {
	mu        sync.RWMutex
	histories map[string][]models.DailyPrice
}

func NewMemory() *Memory {
	return &Memory{histories: map[string][]models.DailyPrice{}}
}

// Add stores a copy of rows for ticker, sorted by date.
func (m *Memory) Add(ticker string, rows []models.DailyPrice) {
	cp := append([]models.DailyPrice(nil), rows...)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].Date.Before(cp[j].Date) })

	m.mu.Lock()
	m.histories[normalizeTicker(ticker)] = cp
	m.mu.Unlock()
}

// History returns a copy of the stored rows.
func (m *Memory) History(ctx context.Context, ticker string) ([]models.DailyPrice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	rows, ok := m.histories[normalizeTicker(ticker)]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", ticker, ErrUnknownTicker)
	}
	return append([]models.DailyPrice(nil), rows...), nil
}

// Tickers lists the stored symbols in ascending order.
func (m *Memory) Tickers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.histories))
	for t := range m.histories {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func normalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}
