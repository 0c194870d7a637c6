package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dgnsrekt/gas_chart/internal/chart"
	"github.com/dgnsrekt/gas_chart/internal/source"
)

const day = int64(24 * 3600 * 1000)

func openTemp(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "gas.sqlite3"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPricesWindowFromLatestSample(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	var samples []chart.PriceSample
	for i := int64(0); i < 10; i++ {
		samples = append(samples, chart.PriceSample{T: i * day, P: 2 + float64(i)/10})
	}
	if n, err := s.UpsertPrices(ctx, source.SeriesHenryHub, "test", samples); err != nil || n != 10 {
		t.Fatalf("UpsertPrices() = %d, %v; want 10", n, err)
	}

	got, err := s.Prices(ctx, source.Query{Range: "5D", Series: source.SeriesHenryHub})
	if err != nil {
		t.Fatalf("Prices() error = %v", err)
	}
	if len(got) != 6 || got[0].T != 4*day || got[5].T != 9*day {
		t.Fatalf("Prices(5D) = %+v; want days 4..9", got)
	}

	futures, err := s.Prices(ctx, source.Query{Range: "5D", Series: source.SeriesNGFutures})
	if err != nil {
		t.Fatalf("Prices(futures) error = %v", err)
	}
	if len(futures) != 6 {
		t.Fatalf("len(Prices(futures)) = %d; want 6 (aliased to Henry Hub)", len(futures))
	}
}

func TestPricesEmptySeries(t *testing.T) {
	s := openTemp(t)
	got, err := s.Prices(context.Background(), source.Query{Range: "1M", Series: source.SeriesHenryHub})
	if err != nil || len(got) != 0 {
		t.Fatalf("Prices() = %v, %v; want empty", got, err)
	}
}

func TestUpsertNewsReplacesByID(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	first := []chart.Event{
		{ID: "rss_1", T: day, Category: "LNG", Title: "old", Source: "a", URL: "u"},
		{T: 2 * day, Category: "POLICY", Title: "no id"},
	}
	if _, err := s.UpsertNews(ctx, source.SeriesHenryHub, first); err != nil {
		t.Fatalf("UpsertNews() error = %v", err)
	}
	if _, err := s.UpsertNews(ctx, source.SeriesHenryHub, []chart.Event{{ID: "rss_1", T: day, Category: "LNG", Title: "new"}}); err != nil {
		t.Fatalf("UpsertNews() error = %v", err)
	}

	got, err := s.News(ctx, source.Query{Range: "1M", Series: source.SeriesHenryHub})
	if err != nil {
		t.Fatalf("News() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(News()) = %d; want 2", len(got))
	}
	if got[0].Title != "new" {
		t.Fatalf("News()[0].Title = %q; want new", got[0].Title)
	}
	if got[1].ID != chart.EventID(first[1]) || got[1].Category != chart.CategorySupply {
		t.Fatalf("News()[1] = %+v; want resolved id and SUPPLY category", got[1])
	}

	prices, news, err := s.Counts(ctx)
	if err != nil || prices != 0 || news != 2 {
		t.Fatalf("Counts() = %d, %d, %v; want 0, 2", prices, news, err)
	}
}

func TestPriceArchiveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive", "hh.parquet")
	samples := []chart.PriceSample{{T: 3000, P: 2.7}, {T: 1000, P: 2.5}, {T: 2000, P: 2.6}}
	if err := WritePriceArchive(path, source.SeriesHenryHub, samples); err != nil {
		t.Fatalf("WritePriceArchive() error = %v", err)
	}

	got, err := ReadPriceArchive(path)
	if err != nil {
		t.Fatalf("ReadPriceArchive() error = %v", err)
	}
	hh := got[source.SeriesHenryHub]
	if len(hh) != 3 || hh[0].T != 1000 || hh[2].P != 2.7 {
		t.Fatalf("ReadPriceArchive() = %+v; want 3 sorted samples", hh)
	}
}

func TestFuturesNewsIncludesSpotHeadlines(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	if _, err := s.UpsertNews(ctx, source.SeriesHenryHub, []chart.Event{{ID: "rss_a", T: 2 * day, Category: "LNG", Title: "spot"}}); err != nil {
		t.Fatalf("UpsertNews(spot) error = %v", err)
	}
	if _, err := s.UpsertNews(ctx, source.SeriesNGFutures, []chart.Event{{ID: "gdelt_b", T: 3 * day, Category: "WEATHER", Title: "futures"}}); err != nil {
		t.Fatalf("UpsertNews(futures) error = %v", err)
	}

	futures, err := s.News(ctx, source.Query{Range: "1M", Series: source.SeriesNGFutures})
	if err != nil {
		t.Fatalf("News(futures) error = %v", err)
	}
	if len(futures) != 2 || futures[0].ID != "rss_a" || futures[1].ID != "gdelt_b" {
		t.Fatalf("News(futures) = %+v; want rss_a then gdelt_b", futures)
	}

	spot, err := s.News(ctx, source.Query{Range: "1M", Series: source.SeriesHenryHub})
	if err != nil {
		t.Fatalf("News(spot) error = %v", err)
	}
	if len(spot) != 1 || spot[0].ID != "rss_a" {
		t.Fatalf("News(spot) = %+v; want only rss_a", spot)
	}
}
