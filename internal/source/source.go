// Package source defines the asynchronous data source that feeds the chart:
// price samples and news events for a range and series.
package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/dgnsrekt/gas_chart/internal/chart"
)

const (
	SeriesHenryHub  = "HENRY_HUB_SPOT"
	SeriesNGFutures = "NG_FUTURES"

	DefaultRange = "1M"

	dayMillis = 24 * 3600 * 1000
)

// Ranges lists the accepted range codes.
var Ranges = []string{"1D", "5D", "1M", "3M", "6M", "1Y"}

var rangeDays = map[string]int{"1D": 1, "5D": 5, "1M": 30, "3M": 90, "6M": 180, "1Y": 365}

// Query selects a window of data.
type Query struct {
	Range  string `json:"range"`
	Series string `json:"series"`
}

// Source supplies prices and news. Implementations must be safe for
// concurrent use.
type Source interface {
	Prices(ctx context.Context, q Query) ([]chart.PriceSample, error)
	News(ctx context.Context, q Query) ([]chart.Event, error)
}

// RangeDays converts a range code to a day count. Unknown codes map to 30.
func RangeDays(r string) int {
	if d, ok := rangeDays[r]; ok {
		return d
	}
	return 30
}

// RangeMillis is RangeDays in epoch milliseconds.
func RangeMillis(r string) int64 {
	return int64(RangeDays(r)) * dayMillis
}

// ValidRange reports whether r is one of Ranges.
func ValidRange(r string) bool {
	_, ok := rangeDays[r]
	return ok
}

// ValidSeries reports whether s names a known series.
func ValidSeries(s string) bool {
	return s == SeriesHenryHub || s == SeriesNGFutures
}

// Normalize fills defaults and validates q.
func (q Query) Normalize() (Query, error) {
	q.Range = strings.ToUpper(strings.TrimSpace(q.Range))
	q.Series = strings.ToUpper(strings.TrimSpace(q.Series))
	if q.Range == "" {
		q.Range = DefaultRange
	}
	if q.Series == "" {
		q.Series = SeriesHenryHub
	}
	if !ValidRange(q.Range) {
		return q, fmt.Errorf("invalid range %q (want one of %s)", q.Range, strings.Join(Ranges, ", "))
	}
	if !ValidSeries(q.Series) {
		return q, fmt.Errorf("invalid series %q (want %s or %s)", q.Series, SeriesHenryHub, SeriesNGFutures)
	}
	return q, nil
}

// PriceSeries resolves the series prices are stored under. Futures are
// served from the Henry Hub spot series until a futures feed exists.
func PriceSeries(s string) string {
	if s == SeriesNGFutures {
		return SeriesHenryHub
	}
	return s
}
