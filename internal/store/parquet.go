package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/parquet-go/parquet-go"

	"github.com/dgnsrekt/gas_chart/internal/chart"
)

// PriceRecord is the on-disk schema of a price archive.
type PriceRecord struct {
	Series    string  `parquet:"series"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"`
	Price     float64 `parquet:"price"`
}

// WritePriceArchive writes samples of series to a parquet file at path,
// replacing any existing file.
func WritePriceArchive(path, series string, samples []chart.PriceSample) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	records := make([]PriceRecord, len(samples))
	for i, p := range samples {
		records[i] = PriceRecord{Series: series, Timestamp: p.T, Price: p.P}
	}
	if err := parquet.WriteFile(path, records); err != nil {
		return fmt.Errorf("write price archive %s: %w", path, err)
	}
	return nil
}

// ReadPriceArchive reads a parquet price archive. Records are grouped by
// series, sorted by time and deduplicated with the last record winning.
func ReadPriceArchive(path string) (map[string][]chart.PriceSample, error) {
	records, err := parquet.ReadFile[PriceRecord](path)
	if err != nil {
		return nil, fmt.Errorf("read price archive %s: %w", path, err)
	}
	type key struct {
		series string
		ts     int64
	}
	seen := make(map[key]float64, len(records))
	for _, r := range records {
		seen[key{r.Series, r.Timestamp}] = r.Price
	}
	out := make(map[string][]chart.PriceSample)
	for k, p := range seen {
		out[k.series] = append(out[k.series], chart.PriceSample{T: k.ts, P: p})
	}
	for series := range out {
		samples := out[series]
		sort.Slice(samples, func(i, j int) bool { return samples[i].T < samples[j].T })
	}
	return out, nil
}
