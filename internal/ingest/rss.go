package ingest

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dgnsrekt/gas_chart/internal/chart"
)

const defaultItemLimit = 75

type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
	Date    string `xml:"http://purl.org/dc/elements/1.1/ date"`
}

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 02 Jan 2006 15:04 MST",
	time.RFC3339,
}

// RSS fetches headline feeds and turns their items into categorized events.
type RSS struct {
	Client *http.Client
	Limit  int
	Now    func() time.Time
}

// FetchFeed downloads one feed. Items missing a title or link are skipped;
// items without a parseable date are stamped with the current time.
func (r *RSS) FetchFeed(ctx context.Context, feedURL string) ([]chart.Event, error) {
	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "gas-chart-ingest/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feedURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetch feed %s: status=%d", feedURL, resp.StatusCode)
	}
	return r.Parse(resp.Body, SourceFromURL(feedURL))
}

// Parse decodes an RSS document into events attributed to src.
func (r *RSS) Parse(body io.Reader, src string) ([]chart.Event, error) {
	var doc rssDocument
	if err := xml.NewDecoder(body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode rss: %w", err)
	}
	limit := r.Limit
	if limit <= 0 {
		limit = defaultItemLimit
	}
	now := r.Now
	if now == nil {
		now = time.Now
	}

	items := doc.Channel.Items
	if len(items) > limit {
		items = items[:limit]
	}
	out := make([]chart.Event, 0, len(items))
	for _, it := range items {
		title := strings.TrimSpace(it.Title)
		link := strings.TrimSpace(it.Link)
		if title == "" || link == "" {
			continue
		}
		published := strings.TrimSpace(it.PubDate)
		if published == "" {
			published = strings.TrimSpace(it.Date)
		}
		ts, ok := parsePubDate(published)
		if !ok {
			ts = now().UnixMilli()
		}
		key := published
		if key == "" {
			key = strconv.FormatInt(ts, 10)
		}
		out = append(out, chart.Event{
			ID:       ItemID(link, key),
			T:        ts,
			Category: Classify(title),
			Source:   src,
			Title:    title,
			URL:      link,
		})
	}
	return out, nil
}

// ItemID is "rss_" plus the hex sha1 of "published|url".
func ItemID(link, published string) string {
	sum := sha1.Sum([]byte(published + "|" + link))
	return "rss_" + hex.EncodeToString(sum[:])
}

// SourceFromURL labels a feed by its host without a leading "www.".
func SourceFromURL(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Host == "" {
		return "RSS"
	}
	return strings.TrimPrefix(u.Host, "www.")
}

func parsePubDate(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}
