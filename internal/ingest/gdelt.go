package ingest

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dgnsrekt/gas_chart/internal/chart"
	"github.com/dgnsrekt/gas_chart/internal/netutil"
)

const (
	DefaultGDELTBaseURL = "https://api.gdeltproject.org/api/v2/doc/doc"
	DefaultGDELTQuery   = "natural gas"

	gdeltSeenLayout = "20060102150405"
	gdeltMaxWait    = 60 * time.Second
)

// GDELT pulls recent articles from the GDELT DOC 2.0 ArtList endpoint.
type GDELT struct {
	Client     *http.Client
	BaseURL    string
	Query      string
	MaxRecords int
	HoursBack  int
	// Attempts bounds the tries per fetch; Delay is the first backoff step.
	Attempts int
	Delay    time.Duration
	Now      func() time.Time
}

type gdeltResponse struct {
	Articles []gdeltArticle `json:"articles"`
}

type gdeltArticle struct {
	Title            string `json:"title"`
	URL              string `json:"url"`
	SeenDate         string `json:"seendate"`
	DateTime         string `json:"datetime"`
	SourceCountry    string `json:"sourceCountry"`
	SourceCollection string `json:"sourceCollection"`
	Source           string `json:"source"`
}

// Origin is the source label used in logs and the ingest journal.
func (g *GDELT) Origin() string {
	return "GDELT:" + g.query()
}

// Fetch queries the last HoursBack hours. Rate limiting, server errors and
// non-JSON bodies are retried; other statuses fail immediately.
func (g *GDELT) Fetch(ctx context.Context) ([]chart.Event, error) {
	client := g.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	attempts := g.Attempts
	if attempts <= 0 {
		attempts = 10
	}
	delay := g.Delay
	if delay <= 0 {
		delay = time.Second
	}
	endpoint := g.endpoint()

	var events []chart.Event
	attempt := 0
	err := netutil.Retry(ctx, attempts, delay, func() error {
		backoff := delay << attempt
		if backoff <= 0 || backoff > gdeltMaxWait {
			backoff = gdeltMaxWait
		}
		attempt++

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return netutil.Permanent(err)
		}
		req.Header.Set("User-Agent", "gas-chart-ingest/1.0")
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("fetch GDELT: %w", err)
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
		if err != nil {
			return fmt.Errorf("read GDELT response: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
		case retryableStatus(resp.StatusCode):
			wait := backoff
			if ra, ok := retryAfter(resp.Header.Get("Retry-After")); ok {
				wait = ra
			}
			return netutil.RetryAfter(fmt.Errorf("fetch GDELT: status=%d", resp.StatusCode), wait)
		default:
			return netutil.Permanent(fmt.Errorf("fetch GDELT: status=%d body=%q", resp.StatusCode, preview(body)))
		}

		parsed, err := g.Parse(body)
		if err != nil {
			return netutil.RetryAfter(err, backoff)
		}
		events = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Parse decodes an ArtList document. Articles missing a title, url or a
// parseable seen date are skipped. The result is sorted by time.
func (g *GDELT) Parse(body []byte) ([]chart.Event, error) {
	var doc gdeltResponse
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode GDELT response: %w (body=%q)", err, preview(body))
	}
	out := make([]chart.Event, 0, len(doc.Articles))
	for _, a := range doc.Articles {
		title := strings.TrimSpace(a.Title)
		link := strings.TrimSpace(a.URL)
		seen := strings.TrimSpace(a.SeenDate)
		if seen == "" {
			seen = strings.TrimSpace(a.DateTime)
		}
		if title == "" || link == "" || seen == "" {
			continue
		}
		ts, err := time.ParseInLocation(gdeltSeenLayout, seen, time.UTC)
		if err != nil {
			continue
		}
		out = append(out, chart.Event{
			ID:       GDELTItemID(link, seen),
			T:        ts.UnixMilli(),
			Category: Classify(title),
			Source:   firstNonEmpty(a.SourceCountry, a.SourceCollection, a.Source, "GDELT"),
			Title:    title,
			URL:      link,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].T < out[j].T })
	return out, nil
}

// GDELTItemID is "gdelt_" plus the hex sha1 of "seendate|url".
func GDELTItemID(link, seen string) string {
	sum := sha1.Sum([]byte(seen + "|" + link))
	return "gdelt_" + hex.EncodeToString(sum[:])
}

func (g *GDELT) endpoint() string {
	base := g.BaseURL
	if base == "" {
		base = DefaultGDELTBaseURL
	}
	maxRecords := g.MaxRecords
	if maxRecords <= 0 {
		maxRecords = 25
	}
	hours := g.HoursBack
	if hours <= 0 {
		hours = 24
	}
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	start := now().UTC().Add(-time.Duration(hours) * time.Hour)

	v := url.Values{}
	v.Set("query", g.query())
	v.Set("mode", "ArtList")
	v.Set("format", "json")
	v.Set("maxrecords", strconv.Itoa(maxRecords))
	v.Set("startdatetime", start.Format(gdeltSeenLayout))
	v.Set("sort", "hybridrel")
	return base + "?" + v.Encode()
}

func (g *GDELT) query() string {
	if q := strings.TrimSpace(g.Query); q != "" {
		return q
	}
	return DefaultGDELTQuery
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// retryAfter reads a delay-seconds Retry-After header.
func retryAfter(h string) (time.Duration, bool) {
	secs, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}

func preview(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
