package ingest

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/gas_chart/internal/chart"
	"github.com/dgnsrekt/gas_chart/internal/journal"
	"github.com/dgnsrekt/gas_chart/internal/source"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

const feedXML = `<?xml version="1.0"?>
<rss version="2.0"><channel>
  <item><title>Freeport LNG train trips offline</title><link>https://example.com/a</link><pubDate>Tue, 07 Jan 2025 14:30:00 +0000</pubDate></item>
  <item><title>Untimed headline about rates</title><link>https://example.com/b</link></item>
  <item><title></title><link>https://example.com/c</link></item>
</channel></rss>`

func TestClassify(t *testing.T) {
	tests := map[string]string{
		"EIA storage injection beats":     chart.CategoryStorage,
		"Liquefied gas cargoes":           chart.CategoryLNG,
		"Polar vortex to grip Midwest":    chart.CategoryWeather,
		"Force majeure declared":          chart.CategoryOutages,
		"Haynesville rig count climbs":    chart.CategorySupply,
		"Fed holds rates steady":          chart.CategoryMacro,
		"Company announces new CFO":       chart.CategoryOther,
		"LNG storage tanks near capacity": chart.CategoryStorage,
	}
	for title, want := range tests {
		if got := Classify(title); got != want {
			t.Fatalf("Classify(%q) = %q; want %q", title, got, want)
		}
	}
}

func TestRSSParse(t *testing.T) {
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	r := &RSS{Now: func() time.Time { return now }}

	events, err := r.Parse(strings.NewReader(feedXML), "example.com")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(Parse()) = %d; want 2", len(events))
	}

	first := events[0]
	wantT := time.Date(2025, 1, 7, 14, 30, 0, 0, time.UTC).UnixMilli()
	if first.T != wantT || first.Category != chart.CategoryLNG || first.Source != "example.com" {
		t.Fatalf("events[0] = %+v", first)
	}
	if first.ID != ItemID("https://example.com/a", "Tue, 07 Jan 2025 14:30:00 +0000") || !strings.HasPrefix(first.ID, "rss_") {
		t.Fatalf("events[0].ID = %q", first.ID)
	}
	if events[1].T != now.UnixMilli() || events[1].Category != chart.CategoryMacro {
		t.Fatalf("events[1] = %+v; want stamped now, MACRO", events[1])
	}
}

func TestSourceFromURL(t *testing.T) {
	if got := SourceFromURL("https://www.eia.gov/rss/press_rss.xml"); got != "eia.gov" {
		t.Fatalf("SourceFromURL() = %q; want eia.gov", got)
	}
	if got := SourceFromURL("not a url"); got != "RSS" {
		t.Fatalf("SourceFromURL() = %q; want RSS", got)
	}
}

func TestEIAFetch(t *testing.T) {
	var gotURL string
	e := &EIA{
		APIKey:  "k",
		BaseURL: "https://eia.test/v2",
		Client: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			gotURL = r.URL.String()
			return respond(http.StatusOK, `{"response":{"data":[
				{"period":"2025-01-03","value":3.41},
				{"period":"20250102","value":"3.12"},
				{"period":"bad","value":1},
				{"period":"2025-01-06","value":null}
			]}}`), nil
		})},
	}

	samples, err := e.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if gotURL != "https://eia.test/v2/seriesid/NG.RNGWHHD.D?api_key=k" {
		t.Fatalf("request url = %q", gotURL)
	}
	if len(samples) != 2 || samples[0].P != 3.12 || samples[1].P != 3.41 {
		t.Fatalf("Fetch() = %+v; want two sorted samples", samples)
	}
	if e.Origin() != "EIA:NG.RNGWHHD.D" {
		t.Fatalf("Origin() = %q", e.Origin())
	}
}

func TestEIAFetchRequiresKey(t *testing.T) {
	if _, err := (&EIA{}).Fetch(context.Background()); err == nil {
		t.Fatalf("Fetch() error = nil; want missing key error")
	}
}

type memorySink struct {
	prices     map[string][]chart.PriceSample
	news       []chart.Event
	newsSeries []string
}

func (m *memorySink) UpsertPrices(_ context.Context, series, _ string, samples []chart.PriceSample) (int, error) {
	if m.prices == nil {
		m.prices = make(map[string][]chart.PriceSample)
	}
	m.prices[series] = append(m.prices[series], samples...)
	return len(samples), nil
}

func (m *memorySink) UpsertNews(_ context.Context, series string, events []chart.Event) (int, error) {
	m.news = append(m.news, events...)
	m.newsSeries = append(m.newsSeries, series)
	return len(events), nil
}

func TestPipelineRunSkipsFailingFeed(t *testing.T) {
	sink := &memorySink{}
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if r.URL.Host == "down.example" {
			return respond(http.StatusServiceUnavailable, ""), nil
		}
		return respond(http.StatusOK, feedXML), nil
	})}

	rec := &memoryRecorder{}
	p := &Pipeline{
		Sink:    sink,
		RSS:     &RSS{Client: client},
		Feeds:   []string{"https://down.example/rss", "https://www.example.com/rss"},
		Journal: rec,
	}
	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.NewsIngested != 2 || res.PricesIngested != 0 {
		t.Fatalf("Run() = %+v; want 2 news", res)
	}
	if sink.news[0].Source != "example.com" {
		t.Fatalf("source = %q; want example.com", sink.news[0].Source)
	}
	if len(rec.entries) != 2 {
		t.Fatalf("journal entries = %d; want 2", len(rec.entries))
	}
	if e := rec.entries[0]; e.Kind != "rss" || e.Error == "" || e.Items != nil {
		t.Fatalf("failed feed entry = %+v; want error without items", e)
	}
	if e := rec.entries[1]; e.Rows != 2 || e.Written != 2 || e.Error != "" {
		t.Fatalf("ok feed entry = %+v", e)
	}
}

type memoryRecorder struct {
	entries []journal.Entry
}

func (m *memoryRecorder) Record(e journal.Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

func TestPipelineRunFailsWhenNothingIngested(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return respond(http.StatusInternalServerError, ""), nil
	})}
	p := &Pipeline{Sink: &memorySink{}, RSS: &RSS{Client: client}, Feeds: []string{"https://a.example/rss"}}
	if _, err := p.Run(context.Background()); err == nil {
		t.Fatalf("Run() error = nil; want error")
	}
}

func TestPipelineSeedsSampleData(t *testing.T) {
	sink := &memorySink{}
	p := &Pipeline{Sink: sink, Sample: source.NewSample(3, nil), SampleRange: "1M"}
	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.PricesIngested != 30*24 || res.NewsIngested != 10 {
		t.Fatalf("Run() = %+v; want 720 prices, 10 news", res)
	}
	if len(sink.prices[source.SeriesHenryHub]) != 720 {
		t.Fatalf("sink prices = %d; want 720 under Henry Hub", len(sink.prices[source.SeriesHenryHub]))
	}
}
