package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PeriodKey identifies a calendar bucket. Month is zero for yearly keys.
type PeriodKey struct {
	Year  int `json:"year"`
	Month int `json:"month,omitempty"`
}

// YearKey returns the yearly key for year y.
func YearKey(y int) PeriodKey { return PeriodKey{Year: y} }

// MonthKey returns the year-month key for y and m.
func MonthKey(y int, m time.Month) PeriodKey { return PeriodKey{Year: y, Month: int(m)} }

// IsMonthly reports whether the key carries a month.
func (k PeriodKey) IsMonthly() bool { return k.Month != 0 }

// String renders the key as "2020" or "2020-1" (month is not zero padded).
func (k PeriodKey) String() string {
	if k.Month == 0 {
		return strconv.Itoa(k.Year)
	}
	return fmt.Sprintf("%d-%d", k.Year, k.Month)
}

// Less orders keys by year, then month.
func (k PeriodKey) Less(o PeriodKey) bool {
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	return k.Month < o.Month
}

// Contains reports whether t falls inside the period.
func (k PeriodKey) Contains(t time.Time) bool {
	if t.Year() != k.Year {
		return false
	}
	return k.Month == 0 || int(t.Month()) == k.Month
}

// ParsePeriodKey parses a "2020" or "2020-1" label back into a PeriodKey.
func ParsePeriodKey(label string) (PeriodKey, error) {
	parts := strings.Split(strings.TrimSpace(label), "-")
	if len(parts) > 2 || parts[0] == "" {
		return PeriodKey{}, fmt.Errorf("invalid period label %q", label)
	}
	y, err := strconv.Atoi(parts[0])
	if err != nil {
		return PeriodKey{}, fmt.Errorf("invalid year in period label %q: %w", label, err)
	}
	k := PeriodKey{Year: y}
	if len(parts) == 2 {
		m, err := strconv.Atoi(parts[1])
		if err != nil {
			return PeriodKey{}, fmt.Errorf("invalid month in period label %q: %w", label, err)
		}
		if m < 1 || m > 12 {
			return PeriodKey{}, fmt.Errorf("month out of range in period label %q", label)
		}
		k.Month = m
	}
	return k, nil
}
