// Package ingest loads prices and headlines from external feeds into the
// store behind the chart's data source.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgnsrekt/gas_chart/internal/chart"
	"github.com/dgnsrekt/gas_chart/internal/journal"
	"github.com/dgnsrekt/gas_chart/internal/source"
)

// Sink receives ingested rows. *store.SQLite implements it.
type Sink interface {
	UpsertPrices(ctx context.Context, series, origin string, samples []chart.PriceSample) (int, error)
	UpsertNews(ctx context.Context, series string, events []chart.Event) (int, error)
}

// Recorder keeps a raw record of every fetch. *journal.Writer implements it.
type Recorder interface {
	Record(e journal.Entry) error
}

// Result counts the rows written by one run.
type Result struct {
	PricesIngested int `json:"prices_ingested"`
	NewsIngested   int `json:"news_ingested"`
}

// Pipeline runs every configured ingestor. Nil fields are skipped.
type Pipeline struct {
	Sink   Sink
	Series string

	RSS       *RSS
	Feeds     []string
	FeedDelay time.Duration

	EIA *EIA

	// GDELT headlines are stored under the futures series.
	GDELT *GDELT

	// Sample seeds synthetic data when no real feed is configured.
	Sample      source.Source
	SampleRange string

	// Journal, when set, receives one entry per fetch including failures.
	Journal Recorder
}

// Run ingests prices first, then news. A failing feed is logged and skipped;
// the run fails only when nothing could be ingested and some step errored.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	if p.Sink == nil {
		return Result{}, errors.New("ingest sink is required")
	}
	series := p.Series
	if series == "" {
		series = source.SeriesHenryHub
	}

	var res Result
	var errs []error

	if p.EIA != nil {
		samples, err := p.EIA.Fetch(ctx)
		var n int
		if err == nil {
			n, err = p.Sink.UpsertPrices(ctx, series, p.EIA.Origin(), samples)
			res.PricesIngested += n
		}
		p.record("eia", p.EIA.Origin(), series, len(samples), n, err, samples)
		if err != nil {
			slog.Warn("EIA ingest failed", "series_id", p.EIA.seriesID(), "error", err)
			errs = append(errs, err)
		} else {
			slog.Info("EIA prices ingested", "series", series, "rows", len(samples))
		}
	}

	if p.RSS != nil {
		for i, feed := range p.Feeds {
			if i > 0 && p.FeedDelay > 0 {
				select {
				case <-ctx.Done():
					return res, ctx.Err()
				case <-time.After(p.FeedDelay):
				}
			}
			events, err := p.RSS.FetchFeed(ctx, feed)
			var n int
			if err == nil {
				n, err = p.Sink.UpsertNews(ctx, series, events)
				res.NewsIngested += n
			}
			p.record("rss", feed, series, len(events), n, err, events)
			if err != nil {
				slog.Warn("RSS feed ingest failed", "feed", feed, "error", err)
				errs = append(errs, err)
				continue
			}
			slog.Info("RSS feed ingested", "feed", feed, "items", len(events))
		}
	}

	if p.GDELT != nil {
		events, err := p.GDELT.Fetch(ctx)
		var n int
		if err == nil {
			n, err = p.Sink.UpsertNews(ctx, source.SeriesNGFutures, events)
			res.NewsIngested += n
		}
		p.record("gdelt", p.GDELT.Origin(), source.SeriesNGFutures, len(events), n, err, events)
		if err != nil {
			slog.Warn("GDELT ingest failed", "query", p.GDELT.query(), "error", err)
			errs = append(errs, err)
		} else {
			slog.Info("GDELT articles ingested", "series", source.SeriesNGFutures, "items", len(events))
		}
	}

	if p.Sample != nil {
		n, m, err := p.seed(ctx, series)
		res.PricesIngested += n
		res.NewsIngested += m
		p.record("sample", "sample", series, n+m, n+m, err, nil)
		if err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 && res.PricesIngested+res.NewsIngested == 0 {
		return res, fmt.Errorf("ingest failed: %w", errors.Join(errs...))
	}
	return res, nil
}

func (p *Pipeline) seed(ctx context.Context, series string) (int, int, error) {
	q := source.Query{Range: p.SampleRange, Series: series}
	if q.Range == "" {
		q.Range = "1Y"
	}
	prices, err := p.Sample.Prices(ctx, q)
	if err != nil {
		return 0, 0, fmt.Errorf("sample prices: %w", err)
	}
	news, err := p.Sample.News(ctx, q)
	if err != nil {
		return 0, 0, fmt.Errorf("sample news: %w", err)
	}
	n, err := p.Sink.UpsertPrices(ctx, series, "sample", prices)
	if err != nil {
		return 0, 0, err
	}
	m, err := p.Sink.UpsertNews(ctx, series, news)
	if err != nil {
		return n, 0, err
	}
	slog.Info("sample data seeded", "series", series, "prices", n, "news", m)
	return n, m, nil
}

func (p *Pipeline) record(kind, origin, series string, rows, written int, err error, items any) {
	if p.Journal == nil {
		return
	}
	e := journal.Entry{
		Kind:      kind,
		Origin:    origin,
		Series:    series,
		FetchedAt: time.Now().UTC(),
		Rows:      rows,
		Written:   written,
	}
	if err != nil {
		e.Error = err.Error()
	} else {
		e.Items = items
	}
	if jerr := p.Journal.Record(e); jerr != nil {
		slog.Debug("ingest journal record failed", "kind", kind, "origin", origin, "error", jerr)
	}
}
