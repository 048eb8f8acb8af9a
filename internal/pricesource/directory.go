package pricesource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/pricereturns/internal/logger"
)

const (
	csvSuffix   = ".csv"
	maxParallel = 8
)

// LoadDirectory parses every "<TICKER>.csv" file in dir into a Memory source.
//
// Behavior:
//   - The ticker is the upper-cased file name without extension.
//   - Files are parsed concurrently, up to parallel at a time
//     (0 = min(8, NumCPU)).
//   - The first failing file cancels the rest and its error is returned.
//
// Returns:
//   - *Memory: the loaded histories.
//   - error: missing directory, no csv files, two files for one ticker,
//     or a malformed file.
func LoadDirectory(ctx context.Context, dir string, parallel int) (*Memory, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), csvSuffix) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files in %s", csvSuffix, dir)
	}

	// AAA.csv and aaa.csv would race for the same key
	owner := make(map[string]string, len(files))
	for _, f := range files {
		base := filepath.Base(f)
		ticker := normalizeTicker(strings.TrimSuffix(base, filepath.Ext(base)))
		if prev, ok := owner[ticker]; ok {
			return nil, fmt.Errorf("duplicate ticker %s: %s and %s", ticker, filepath.Base(prev), base)
		}
		owner[ticker] = f
	}

	limit := maxParallel
	if parallel > 0 {
		if parallel < limit {
			limit = parallel
		}
	} else if c := runtime.NumCPU(); c < limit {
		limit = c
	}

	log := logger.With("pricesource")
	log.Info().Int("files", len(files)).Str("dir", dir).Int("max_parallel", limit).Msg("csv load start")

	mem := NewMemory()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, file := range files {
		idx := i
		f := file
		g.Go(func() error {
			start := time.Now()
			base := filepath.Base(f)
			ticker := strings.TrimSuffix(base, filepath.Ext(base))

			rows, err := parseFile(gctx, f)
			if err != nil {
				log.Error().Str("file", base).Dur("elapsed", time.Since(start)).Err(err).Msg("file failed")
				return fmt.Errorf("file %s: %w", f, err)
			}
			mem.Add(ticker, rows)
			log.Debug().Int("idx", idx+1).Int("total", len(files)).Str("ticker", normalizeTicker(ticker)).Int("rows", len(rows)).Dur("elapsed", time.Since(start)).Msg("file done")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Info().Int("tickers", len(mem.Tickers())).Msg("csv load completed")
	return mem, nil
}
