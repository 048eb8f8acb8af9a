package pricesource

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestLoadDirectory_LoadsAllTickers(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "aaa.csv", validHeader+
		"2020-12-31,0,0,0,0,15.0,0\n"+
		"2020-01-02,0,0,0,0,10.0,0\n")
	writeTempFile(t, dir, "BBB.CSV", validHeader+"2021-01-04,0,0,0,0,20.0,0\n")
	writeTempFile(t, dir, "notes.txt", "ignored")

	mem, err := LoadDirectory(context.Background(), dir, 1)
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	if got := strings.Join(mem.Tickers(), ","); got != "AAA,BBB" {
		t.Fatalf("tickers=%s", got)
	}

	rows, err := mem.History(context.Background(), "aaa")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(rows) != 2 || rows[0].AdjClose != 10.0 {
		t.Fatalf("rows should be sorted ascending: %+v", rows)
	}
}

func TestLoadDirectory_Errors(t *testing.T) {
	cases := []struct {
		name  string
		setup func(t *testing.T) string
		want  string
	}{
		{
			name:  "missing dir",
			setup: func(t *testing.T) string { return t.TempDir() + "/nope" },
			want:  "read dir",
		},
		{
			name:  "no csv files",
			setup: func(t *testing.T) string { return t.TempDir() },
			want:  "no .csv files",
		},
		{
			name: "same ticker twice",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeTempFile(t, dir, "AAA.csv", validHeader+"2020-01-02,1,1,1,1,1,1\n")
				writeTempFile(t, dir, "aaa.csv", validHeader+"2020-01-02,2,2,2,2,2,2\n")
				return dir
			},
			want: "duplicate ticker AAA",
		},
		{
			name: "malformed file",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeTempFile(t, dir, "ok.csv", validHeader+"2020-01-02,1,1,1,1,1,1\n")
				writeTempFile(t, dir, "bad.csv", "X;Y\n")
				return dir
			},
			want: "bad.csv",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadDirectory(context.Background(), tc.setup(t), 0)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestMemory_UnknownTicker(t *testing.T) {
	mem := NewMemory()
	_, err := mem.History(context.Background(), "ZZZ")
	if !errors.Is(err, ErrUnknownTicker) {
		t.Fatalf("expected ErrUnknownTicker, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mem.Add("ZZZ", nil)
	if _, err := mem.History(ctx, "ZZZ"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}
